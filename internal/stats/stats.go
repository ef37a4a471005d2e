package stats

import (
	"math"

	"github.com/rm-hull/l8tefuel-api/internal/models"
)

// Derive aggregates a user's complete fuel log history. Nothing is cached;
// every call recomputes from the given entries.
func Derive(logs []models.FuelLog) *models.FuelLogStatistics {
	stats := &models.FuelLogStatistics{TotalLogs: len(logs)}
	if len(logs) == 0 {
		return stats
	}

	var totalLiters, totalCost, priceSum float64
	var consumptionSum, kmSum float64
	var consumptionCount, kmCount int

	for _, entry := range logs {
		totalLiters += entry.Liters
		totalCost += entry.TotalPrice
		priceSum += entry.PricePerLiter

		if entry.Consumption != nil {
			consumptionSum += *entry.Consumption
			consumptionCount++
		}
		if entry.KmDriven != nil {
			kmSum += *entry.KmDriven
			kmCount++
		}
	}

	stats.TotalLiters = ptr(Round(totalLiters, 2))
	stats.TotalCost = ptr(Round(totalCost, 2))
	stats.AveragePricePerLiter = ptr(Round(priceSum/float64(len(logs)), 3))

	if consumptionCount > 0 {
		stats.AverageConsumption = ptr(Round(consumptionSum/float64(consumptionCount), 2))
	}
	if kmCount > 0 {
		stats.TotalKm = ptr(Round(kmSum, 1))
	}

	return stats
}

// Round rounds half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}

func ptr(v float64) *float64 {
	return &v
}
