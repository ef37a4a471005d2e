package geocode

import (
	"context"
	"testing"
	"time"

	"github.com/muesli/gominatim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToLocation(t *testing.T) {
	loc, err := toLocation(gominatim.SearchResult{Lat: "52.5170365", Lon: "13.3888599", DisplayName: "Berlin, Deutschland"})
	require.NoError(t, err)
	assert.InDelta(t, 52.5170365, loc.Latitude, 1e-9)
	assert.InDelta(t, 13.3888599, loc.Longitude, 1e-9)
	assert.Equal(t, "Berlin, Deutschland", loc.DisplayName)
}

func TestToLocationRejectsGarbage(t *testing.T) {
	_, err := toLocation(gominatim.SearchResult{Lat: "north", Lon: "13.4"})
	assert.Error(t, err)

	_, err = toLocation(gominatim.SearchResult{Lat: "52.5", Lon: ""})
	assert.Error(t, err)
}

func TestGeocodeEmptyQuery(t *testing.T) {
	g := NewNominatimGeocoder("http://127.0.0.1:0/")
	_, err := g.Geocode(context.Background(), "   ")
	assert.Error(t, err)
}

func TestGeocodeCachesResults(t *testing.T) {
	calls := 0
	g := newGeocoder(func(query string) ([]gominatim.SearchResult, error) {
		calls++
		return []gominatim.SearchResult{{Lat: "48.1371", Lon: "11.5754", DisplayName: query}}, nil
	})

	first, err := g.Geocode(context.Background(), "München")
	require.NoError(t, err)
	second, err := g.Geocode(context.Background(), " münchen ")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first.Latitude, second.Latitude)
	assert.Equal(t, first.Longitude, second.Longitude)
}

func TestGeocodeDoesNotCacheFailures(t *testing.T) {
	calls := 0
	g := newGeocoder(func(query string) ([]gominatim.SearchResult, error) {
		calls++
		return nil, nil
	})

	_, err := g.Geocode(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, ErrNoResults)
	_, err = g.Geocode(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, ErrNoResults)
	assert.Equal(t, 2, calls)
}

func TestGeocodeHonoursCancellationWhileBusy(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	g := newGeocoder(func(query string) ([]gominatim.SearchResult, error) {
		close(started)
		<-release
		return []gominatim.SearchResult{{Lat: "1", Lon: "2"}}, nil
	})

	slowDone := make(chan error, 1)
	go func() {
		_, err := g.Geocode(context.Background(), "Slow")
		slowDone <- err
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := g.Geocode(ctx, "Waiting")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, <-slowDone)
}
