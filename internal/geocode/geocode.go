package geocode

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/muesli/gominatim"
	"github.com/patrickmn/go-cache"
)

var ErrNoResults = errors.New("no geocoding results")

const (
	cacheExpiration = 24 * time.Hour
	cacheCleanup    = time.Hour
)

type Location struct {
	Latitude    float64
	Longitude   float64
	DisplayName string
}

type Geocoder interface {
	Geocode(ctx context.Context, query string) (*Location, error)
}

type searchFunc func(query string) ([]gominatim.SearchResult, error)

type nominatimGeocoder struct {
	search searchFunc
	cache  *cache.Cache
	// nominatim's usage policy allows a single client one request at a time
	slot chan struct{}
}

var serverOnce sync.Once

// NewNominatimGeocoder resolves free-text place names through a Nominatim
// server. gominatim keeps the server URL in package state, so only the first
// call configures it.
func NewNominatimGeocoder(server string) Geocoder {
	serverOnce.Do(func() {
		gominatim.SetServer(server)
	})
	return newGeocoder(func(query string) ([]gominatim.SearchResult, error) {
		qry := gominatim.SearchQuery{Q: query}
		return qry.Get()
	})
}

func newGeocoder(search searchFunc) *nominatimGeocoder {
	return &nominatimGeocoder{
		search: search,
		cache:  cache.New(cacheExpiration, cacheCleanup),
		slot:   make(chan struct{}, 1),
	}
}

func (g *nominatimGeocoder) Geocode(ctx context.Context, query string) (*Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("empty geocoding query")
	}

	key := strings.ToLower(query)
	if cached, ok := g.cache.Get(key); ok {
		loc := cached.(Location)
		return &loc, nil
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case g.slot <- struct{}{}:
	}

	type outcome struct {
		results []gominatim.SearchResult
		err     error
	}
	done := make(chan outcome, 1)

	// gominatim takes no context; the slot is released when the request
	// finishes, even if the caller has given up on it
	go func() {
		defer func() { <-g.slot }()
		results, err := g.search(query)
		done <- outcome{results, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-done:
		if out.err != nil {
			return nil, errors.Wrapf(out.err, "geocoding %q failed", query)
		}
		if len(out.results) == 0 {
			return nil, errors.Wrapf(ErrNoResults, "%q", query)
		}
		loc, err := toLocation(out.results[0])
		if err != nil {
			return nil, err
		}
		g.cache.Set(key, *loc, cache.DefaultExpiration)
		return loc, nil
	}
}

func toLocation(result gominatim.SearchResult) (*Location, error) {
	lat, err := strconv.ParseFloat(result.Lat, 64)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing latitude")
	}

	lng, err := strconv.ParseFloat(result.Lon, 64)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing longitude")
	}

	return &Location{Latitude: lat, Longitude: lng, DisplayName: result.DisplayName}, nil
}
