package matcher

import (
	"fmt"

	"github.com/rm-hull/l8tefuel-api/internal/models"
)

// alertFallback is the price priority used for alerts and the map listing.
var alertFallback = []models.FuelType{models.FuelE10, models.FuelE5, models.FuelDiesel}

// candidates returns the ordered fuel types a price may be taken from.
func candidates(mode Mode, fuelType models.FuelType) []models.FuelType {
	if mode == ModeSearch {
		return []models.FuelType{fuelType}
	}
	return alertFallback
}

// selectPrice evaluates the candidates in order and returns the first usable
// price on the station.
func selectPrice(station *models.Station, order []models.FuelType) (float64, bool) {
	for _, fuelType := range order {
		if price := station.PriceFor(fuelType); price.Usable() {
			return price.Value, true
		}
	}
	return 0, false
}

// Normalize converts a raw upstream station into the record returned to
// clients. It reports false when the station is explicitly closed or has no
// usable price for the mode.
func Normalize(station *models.Station, mode Mode, fuelType models.FuelType) (models.NormalizedStation, bool) {
	if station.Closed() {
		return models.NormalizedStation{}, false
	}

	price, ok := selectPrice(station, candidates(mode, fuelType))
	if !ok {
		return models.NormalizedStation{}, false
	}

	return models.NormalizedStation{
		Name:      DisplayName(station),
		Price:     price,
		Distance:  station.Distance,
		Latitude:  station.Latitude,
		Longitude: station.Longitude,
	}, true
}

func DisplayName(station *models.Station) string {
	return fmt.Sprintf("%s - %s %s", station.Brand, station.Street, station.HouseNumber)
}
