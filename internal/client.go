package internal

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	neturl "net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/tkrajina/gpxgo/gpx"

	"github.com/rm-hull/l8tefuel-api/internal/brands"
	"github.com/rm-hull/l8tefuel-api/internal/metrics"
	"github.com/rm-hull/l8tefuel-api/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultPriceLookupURL = "https://creativecommons.tankerkoenig.de/json/list.php"
	MaxRadiusKm           = 25.0
	RequestTimeout        = 10 * time.Second

	sourceLive = "tankerkoenig"
	sourceMock = "mock"
)

// HTTPStatusError is returned when the remote server responds with a non-2xx status.
type HTTPStatusError struct {
	URL        string
	Status     string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("http status response from %s: %s", e.URL, e.Status)
}

// StationQuery describes one list lookup. FuelType is empty for "all".
type StationQuery struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
	FuelType  models.FuelType
}

// PriceLookupClient returns stations around a point, nearest first. A
// response with Ok == false is an upstream rejection, not a transport error.
type PriceLookupClient interface {
	ListStations(ctx context.Context, query StationQuery) (*models.ListResponse, error)
	IsMock() bool
}

// NewPriceLookupClient picks the live Tankerkönig client when a usable API
// key is configured and the synthetic mock otherwise.
func NewPriceLookupClient(baseUrl, apiKey string) PriceLookupClient {
	if !ValidAPIKey(apiKey) {
		log.Println("WARNING: no valid TANKERKOENIG_API_KEY configured, serving mock station data")
		return NewMockClient()
	}
	if baseUrl == "" {
		baseUrl = DefaultPriceLookupURL
	}
	return &tankerkoenigClient{
		baseUrl: baseUrl,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: RequestTimeout},
	}
}

// ValidAPIKey rejects empty keys and the all-zero placeholder key from the
// Tankerkönig documentation.
func ValidAPIKey(apiKey string) bool {
	apiKey = strings.TrimSpace(apiKey)
	return apiKey != "" && !strings.HasPrefix(apiKey, "0000")
}

// ClampRadius limits a search radius to what the upstream API accepts.
func ClampRadius(radiusKm float64) float64 {
	return min(radiusKm, MaxRadiusKm)
}

type tankerkoenigClient struct {
	baseUrl string
	apiKey  string
	client  *http.Client
}

func (c *tankerkoenigClient) IsMock() bool {
	return false
}

func (c *tankerkoenigClient) ListStations(ctx context.Context, query StationQuery) (*models.ListResponse, error) {
	started := time.Now()
	resp, err := c.listStations(ctx, query)

	result := "success"
	if err != nil {
		result = "error"
	} else if !resp.Ok {
		result = "rejected"
	}
	metrics.ObservePriceLookup(sourceLive, result, time.Since(started).Seconds())

	return resp, err
}

func (c *tankerkoenigClient) listStations(ctx context.Context, query StationQuery) (*models.ListResponse, error) {
	fuelType := "all"
	if query.FuelType != "" {
		fuelType = string(query.FuelType)
	}

	params := neturl.Values{}
	params.Set("lat", strconv.FormatFloat(query.Latitude, 'f', -1, 64))
	params.Set("lng", strconv.FormatFloat(query.Longitude, 'f', -1, 64))
	params.Set("rad", strconv.FormatFloat(ClampRadius(query.RadiusKm), 'f', -1, 64))
	params.Set("sort", "dist")
	params.Set("type", fuelType)
	params.Set("apikey", c.apiKey)

	url := c.baseUrl + "?" + params.Encode()
	log.Printf("GET %s (lat=%.4f lng=%.4f rad=%s type=%s)", c.baseUrl, query.Latitude, query.Longitude, params.Get("rad"), fuelType)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from %s: %w", c.baseUrl, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("failed to close body: %v", err)
		}
	}()

	if resp.StatusCode > 299 {
		return nil, &HTTPStatusError{URL: c.baseUrl, Status: resp.Status, StatusCode: resp.StatusCode}
	}

	var listResp models.ListResponse
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(&listResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &listResp, nil
}

type mockClient struct{}

func NewMockClient() PriceLookupClient {
	return &mockClient{}
}

func (c *mockClient) IsMock() bool {
	return true
}

// ListStations builds the synthetic dataset around the query point. The
// radius is not clamped, mirroring a user's configured radius, and stations
// outside it are dropped the way the live API bounds its results.
func (c *mockClient) ListStations(_ context.Context, query StationQuery) (*models.ListResponse, error) {
	started := time.Now()

	table, err := brands.GetMockStations()
	if err != nil {
		metrics.ObservePriceLookup(sourceMock, "error", time.Since(started).Seconds())
		return nil, fmt.Errorf("failed to load mock stations: %w", err)
	}

	open := true
	stations := make([]models.Station, 0, len(table))
	for i, row := range table {
		lat := query.Latitude + row.LatOffset
		lng := query.Longitude + row.LngOffset
		distanceKm := gpx.Distance2D(query.Latitude, query.Longitude, lat, lng, true) / 1000
		if distanceKm > query.RadiusKm {
			continue
		}

		stations = append(stations, models.Station{
			Id:          fmt.Sprintf("mock-%d", i+1),
			Name:        "MOCK (No API Key) - " + row.Brand,
			Brand:       row.Brand,
			Street:      row.Street,
			HouseNumber: row.HouseNumber,
			Latitude:    lat,
			Longitude:   lng,
			Distance:    math.Round(distanceKm*100) / 100,
			E5:          models.NewPrice(row.E5),
			E10:         models.NewPrice(row.E10),
			Diesel:      models.NewPrice(row.Diesel),
			IsOpen:      &open,
		})
	}

	sort.SliceStable(stations, func(i, j int) bool {
		return stations[i].Distance < stations[j].Distance
	})

	metrics.ObservePriceLookup(sourceMock, "success", time.Since(started).Seconds())
	return &models.ListResponse{
		Ok:       true,
		Status:   "ok",
		Data:     "MOCK",
		Stations: stations,
	}, nil
}
