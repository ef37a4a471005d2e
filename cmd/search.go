package cmd

import (
	"context"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/rm-hull/l8tefuel-api/internal"
	"github.com/rm-hull/l8tefuel-api/internal/config"
	"github.com/rm-hull/l8tefuel-api/internal/matcher"
	"github.com/rm-hull/l8tefuel-api/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Search runs an ad-hoc search against the price lookup API and writes the
// result as JSON. It needs no database.
func Search(cfg *config.Config, out io.Writer, lat, lng, radius float64, fuelType string, maxPrice float64) error {
	ft, ok := models.ParseFuelType(fuelType)
	if !ok {
		return fmt.Errorf("unknown fuel type %q, expected one of diesel, e5, e10", fuelType)
	}

	req := matcher.Request{
		Mode:      matcher.ModeSearch,
		Latitude:  &lat,
		Longitude: &lng,
		RadiusKm:  radius,
		FuelType:  ft,
	}
	if maxPrice > 0 {
		req.TargetPrice = &maxPrice
	}

	client := internal.NewPriceLookupClient(cfg.TankerkoenigURL, cfg.TankerkoenigAPIKey)
	result := matcher.NewMatcher(client).Match(context.Background(), req)
	if result.Err != nil {
		return result.Err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(models.SearchResponse{
		Status:   string(result.Status),
		FuelType: ft,
		Stations: result.Stations,
		Message:  result.Message,
		Mock:     result.Mock,
	})
}
