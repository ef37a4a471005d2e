package stats

import "github.com/rm-hull/l8tefuel-api/internal/models"

// Consumption derives the distance driven since the prior fill-up and the
// resulting liters per 100 km. prior must be the user's most recent entry
// that recorded an odometer value, or nil if there is none.
//
// Both results are nil when the new entry has no odometer, there is no prior
// reading, or the odometer did not advance (reset or out-of-order entry).
func Consumption(liters float64, odometer *float64, prior *models.FuelLog) (kmDriven, consumption *float64) {
	if odometer == nil || prior == nil || prior.Odometer == nil {
		return nil, nil
	}

	distance := *odometer - *prior.Odometer
	if distance <= 0 {
		return nil, nil
	}

	perHundred := (liters / distance) * 100
	return &distance, &perHundred
}
