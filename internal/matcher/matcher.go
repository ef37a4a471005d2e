package matcher

import (
	"context"
	"log"

	"github.com/rm-hull/l8tefuel-api/internal"
	"github.com/rm-hull/l8tefuel-api/internal/metrics"
	"github.com/rm-hull/l8tefuel-api/internal/models"
	"github.com/rm-hull/l8tefuel-api/internal/stats"
)

type Mode string

const (
	// ModeAlert keeps stations at or below the target price, E10 → E5 → Diesel.
	ModeAlert Mode = "alert"
	// ModeMap keeps every priced station, E10 → E5 → Diesel.
	ModeMap Mode = "map"
	// ModeSearch keeps stations at or below the max price for one fuel type.
	ModeSearch Mode = "search"
)

type Status string

const (
	StatusActive     Status = "active"
	StatusInactive   Status = "inactive"
	StatusNoLocation Status = "no_location"
	StatusAPIError   Status = "api_error"
	StatusError      Status = "error"
)

const (
	DefaultRadiusKm  = 5.0
	FavoriteRadiusKm = 5.0
	DefaultFuelType  = models.FuelDiesel
)

type Request struct {
	Mode        Mode
	Latitude    *float64
	Longitude   *float64
	RadiusKm    float64
	TargetPrice *float64
	FuelType    models.FuelType
}

// Result is always safe to return to a client. Stations is only meaningful
// when Status is StatusActive.
type Result struct {
	Status      Status
	Message     string
	Stations    []models.NormalizedStation
	TargetPrice *float64
	Mock        bool
	Err         error
}

type Matcher struct {
	client internal.PriceLookupClient
}

func NewMatcher(client internal.PriceLookupClient) *Matcher {
	return &Matcher{client: client}
}

// FromSettings builds the alert/map request for a user's stored settings.
// A half-stored location is treated as no location.
func FromSettings(mode Mode, settings *models.UserSettings) Request {
	req := Request{
		Mode:        mode,
		RadiusKm:    settings.Radius,
		TargetPrice: settings.TargetPrice,
	}
	if settings.HasLocation() {
		req.Latitude, req.Longitude = settings.Latitude, settings.Longitude
	}
	return req
}

// Match runs one lookup against the price collaborator and filters the
// result for the request's mode. Upstream failures are reported through
// Result.Status and never returned as errors.
func (m *Matcher) Match(ctx context.Context, req Request) Result {
	result := m.match(ctx, req)
	metrics.ObserveMatch(string(req.Mode), string(result.Status))
	return result
}

func (m *Matcher) match(ctx context.Context, req Request) Result {
	result := Result{
		Stations:    []models.NormalizedStation{},
		TargetPrice: req.TargetPrice,
		Mock:        m.client.IsMock(),
	}

	if req.Latitude == nil || req.Longitude == nil {
		result.Status = StatusNoLocation
		return result
	}

	fuelType := req.FuelType
	if fuelType == "" {
		fuelType = DefaultFuelType
	}

	radius := req.RadiusKm
	if radius <= 0 {
		radius = DefaultRadiusKm
	}

	query := internal.StationQuery{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		RadiusKm:  radius,
	}
	if req.Mode == ModeSearch {
		query.FuelType = fuelType
	}

	resp, err := m.client.ListStations(ctx, query)
	if err != nil {
		log.Printf("error while fetching fuel prices: %v", err)
		result.Status = StatusError
		result.Err = err
		return result
	}
	if resp == nil {
		result.Status = StatusError
		return result
	}
	if !resp.Ok {
		log.Printf("price lookup rejected: %s", resp.Message)
		result.Status = StatusAPIError
		result.Message = resp.Message
		return result
	}

	for i := range resp.Stations {
		station, ok := Normalize(&resp.Stations[i], req.Mode, fuelType)
		if !ok {
			continue
		}
		if req.Mode != ModeMap && !withinPrice(station.Price, req.TargetPrice) {
			continue
		}
		result.Stations = append(result.Stations, station)
	}

	result.Status = StatusActive
	return result
}

// withinPrice treats an unset target as unbounded. Equal prices match.
func withinPrice(price float64, target *float64) bool {
	return target == nil || price <= *target
}

// Summary prices the area around a favorite location for one fuel type.
func (m *Matcher) Summary(ctx context.Context, lat, lng float64, fuelType models.FuelType) models.PriceSummary {
	if fuelType == "" {
		fuelType = DefaultFuelType
	}

	result := m.Match(ctx, Request{
		Mode:      ModeSearch,
		Latitude:  &lat,
		Longitude: &lng,
		RadiusKm:  FavoriteRadiusKm,
		FuelType:  fuelType,
	})

	summary := models.PriceSummary{
		Status:   string(result.Status),
		FuelType: fuelType,
	}
	if result.Status != StatusActive || len(result.Stations) == 0 {
		return summary
	}

	cheapest := result.Stations[0].Price
	sum := 0.0
	for _, station := range result.Stations {
		cheapest = min(cheapest, station.Price)
		sum += station.Price
	}
	average := stats.Round(sum/float64(len(result.Stations)), 3)

	summary.CheapestPrice = &cheapest
	summary.AveragePrice = &average
	summary.StationCount = len(result.Stations)
	return summary
}
