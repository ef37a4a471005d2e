package routes

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rm-hull/l8tefuel-api/internal"
	"github.com/rm-hull/l8tefuel-api/internal/auth"
	"github.com/rm-hull/l8tefuel-api/internal/export"
	"github.com/rm-hull/l8tefuel-api/internal/geocode"
	"github.com/rm-hull/l8tefuel-api/internal/matcher"
	"github.com/rm-hull/l8tefuel-api/internal/models"
	"github.com/rm-hull/l8tefuel-api/internal/validation"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type fakeGeocoder struct {
	places map[string]geocode.Location
}

func (g *fakeGeocoder) Geocode(_ context.Context, query string) (*geocode.Location, error) {
	loc, ok := g.places[query]
	if !ok {
		return nil, errors.Wrapf(geocode.ErrNoResults, "%q", query)
	}
	return &loc, nil
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	repo   internal.Repository
	issuer *auth.TokenIssuer
}

func newTestServer(t *testing.T) *testServer {
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.Register())

	dbPath := filepath.Join(t.TempDir(), "routes_test.db")
	db, err := internal.Connect(dbPath)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, internal.Migrate("../../migrations", dbPath))

	repo := internal.NewRepository(db)
	t.Cleanup(func() {
		_ = repo.Close()
	})

	issuer := auth.NewTokenIssuer([]byte("test-secret"), time.Hour)
	geocoder := &fakeGeocoder{places: map[string]geocode.Location{
		"Berlin": {Latitude: 52.52, Longitude: 13.405, DisplayName: "Berlin"},
	}}

	r := gin.New()
	Register(r, repo, issuer, matcher.NewMatcher(internal.NewMockClient()), geocoder)

	return &testServer{t: t, router: r, repo: repo, issuer: issuer}
}

func (s *testServer) user(username string, isAdmin bool) string {
	hashed, err := auth.HashPassword("password")
	require.NoError(s.t, err)
	_, err = s.repo.CreateUser(context.Background(), username, hashed, isAdmin)
	require.NoError(s.t, err)

	token, err := s.issuer.Issue(username)
	require.NoError(s.t, err)
	return token
}

func (s *testServer) do(method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	s.router.ServeHTTP(resp, req)
	return resp
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	var v T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &v), resp.Body.String())
	return v
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	s.user("alice", true)

	form := url.Values{"username": {"alice"}, "password": {"password"}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := httptest.NewRecorder()
	s.router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	token := decode[models.TokenResponse](t, resp)
	assert.Equal(t, "bearer", token.TokenType)
	assert.True(t, token.IsAdmin)

	username, err := s.issuer.Parse(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	form.Set("password", "wrong")
	req = httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp = httptest.NewRecorder()
	s.router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/token?username=nobody&password=x", "").Code)
}

func TestLoginDatabaseFailure(t *testing.T) {
	s := newTestServer(t)
	s.user("alice", false)
	require.NoError(t, s.repo.Close())

	resp := s.do(http.MethodPost, "/token?username=alice&password=password", "")
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Empty(t, resp.Header().Get("WWW-Authenticate"))
}

func TestAdminUserManagement(t *testing.T) {
	s := newTestServer(t)
	admin := s.user("admin", true)
	viewer := s.user("viewer", false)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/admin/users", viewer).Code)

	resp := s.do(http.MethodPost, "/admin/users?username=bob&password=secret", admin)
	assert.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = s.do(http.MethodPost, "/admin/users?username=bob&password=other", admin)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = s.do(http.MethodGet, "/admin/users", admin)
	require.Equal(t, http.StatusOK, resp.Code)
	users := decode[[]models.User](t, resp)
	assert.Len(t, users, 3)
	assert.NotContains(t, resp.Body.String(), "password")

	resp = s.do(http.MethodPut, "/admin/users/bob/reset-password?new_password=fresh", admin)
	assert.Equal(t, http.StatusOK, resp.Code)
	bob, err := s.repo.GetUser(context.Background(), "bob")
	require.NoError(t, err)
	assert.True(t, auth.VerifyPassword(bob.HashedPassword, "fresh"))
	assert.False(t, bob.IsAdmin)

	resp = s.do(http.MethodPut, "/admin/users/ghost/reset-password?new_password=fresh", admin)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestProfileAndSettings(t *testing.T) {
	s := newTestServer(t)
	token := s.user("alice", false)

	resp := s.do(http.MethodGet, "/me", token)
	require.Equal(t, http.StatusOK, resp.Code)
	profile := decode[models.Profile](t, resp)
	assert.Equal(t, "alice", profile.Username)
	assert.False(t, profile.Settings.HasLocation())
	assert.Equal(t, 5.0, profile.Settings.Radius)

	resp = s.do(http.MethodPut, "/me/settings?latitude=52.52&longitude=13.405&target_price=1.6&is_active=true", token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = s.do(http.MethodPut, "/me/settings?radius=8", token)
	require.Equal(t, http.StatusOK, resp.Code)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPut, "/me/settings?latitude=123", token).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPut, "/me/settings?radius=-1", token).Code)

	resp = s.do(http.MethodPut, "/me/settings/heatmap?show_heatmap=true", token)
	require.Equal(t, http.StatusOK, resp.Code)

	profile = decode[models.Profile](t, s.do(http.MethodGet, "/me", token))
	require.True(t, profile.Settings.HasLocation())
	assert.Equal(t, 52.52, *profile.Settings.Latitude)
	assert.Equal(t, 8.0, profile.Settings.Radius)
	assert.Equal(t, 1.6, *profile.Settings.TargetPrice)
	assert.True(t, profile.Settings.IsActive)
	assert.True(t, profile.Settings.ShowHeatmap)

	resp = s.do(http.MethodPut, "/me/password?new_password=changed", token)
	require.Equal(t, http.StatusOK, resp.Code)
	alice, err := s.repo.GetUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, auth.VerifyPassword(alice.HashedPassword, "changed"))
}

func TestCheckPrices(t *testing.T) {
	s := newTestServer(t)
	token := s.user("alice", false)

	alert := decode[models.AlertResponse](t, s.do(http.MethodGet, "/check-prices", token))
	assert.Equal(t, "inactive", alert.Status)
	assert.Empty(t, alert.Matches)

	s.do(http.MethodPut, "/me/settings?is_active=true", token)
	alert = decode[models.AlertResponse](t, s.do(http.MethodGet, "/check-prices", token))
	assert.Equal(t, "no_location", alert.Status)
	assert.NotNil(t, alert.Matches)

	s.do(http.MethodPut, "/me/settings?latitude=52.52&longitude=13.405&target_price=1.6", token)
	resp := s.do(http.MethodGet, "/check-prices", token)
	require.Equal(t, http.StatusOK, resp.Code)
	alert = decode[models.AlertResponse](t, resp)
	assert.Equal(t, "active", alert.Status)
	assert.True(t, alert.Mock)
	require.Len(t, alert.Matches, 1)
	assert.Equal(t, "Aral - Bahnhofstraße ", alert.Matches[0].Name)
	assert.Equal(t, 1.58, alert.Matches[0].Price)
}

func TestMapStations(t *testing.T) {
	s := newTestServer(t)
	token := s.user("alice", false)

	result := decode[models.MapResponse](t, s.do(http.MethodGet, "/map-stations", token))
	assert.Equal(t, "no_location", result.Status)

	s.do(http.MethodPut, "/me/settings?latitude=52.52&longitude=13.405&target_price=1.6", token)
	result = decode[models.MapResponse](t, s.do(http.MethodGet, "/map-stations", token))
	assert.Equal(t, "active", result.Status)
	assert.Len(t, result.Stations, 2, "map listing is not price filtered")
	require.NotNil(t, result.TargetPrice)
	assert.Equal(t, 1.6, *result.TargetPrice)
}

func TestSearchStations(t *testing.T) {
	s := newTestServer(t)
	token := s.user("alice", false)

	result := decode[models.SearchResponse](t, s.do(http.MethodGet, "/search-stations", token))
	assert.Equal(t, "no_location", result.Status)

	result = decode[models.SearchResponse](t, s.do(http.MethodGet, "/search-stations?lat=52.52&lng=13.405", token))
	assert.Equal(t, "active", result.Status)
	assert.Equal(t, models.FuelDiesel, result.FuelType)
	require.Len(t, result.Stations, 2)
	assert.Equal(t, 1.59, result.Stations[0].Price)

	result = decode[models.SearchResponse](t, s.do(http.MethodGet, "/search-stations?lat=52.52&lng=13.405&fuel_type=e5&max_price=1.65", token))
	require.Len(t, result.Stations, 1)
	assert.Equal(t, 1.64, result.Stations[0].Price)

	s.do(http.MethodPut, "/me/settings?latitude=52.52&longitude=13.405&radius=2", token)
	result = decode[models.SearchResponse](t, s.do(http.MethodGet, "/search-stations", token))
	assert.Equal(t, "active", result.Status)
	assert.Len(t, result.Stations, 1, "stored radius applies")

	result = decode[models.SearchResponse](t, s.do(http.MethodGet, "/search-stations?lat=10", token))
	assert.Equal(t, "active", result.Status, "half a query location falls back to the stored one")
	assert.Len(t, result.Stations, 1)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/search-stations?fuel_type=lpg", token).Code)
}

func TestFavoriteLocations(t *testing.T) {
	s := newTestServer(t)
	alice := s.user("alice", false)
	bob := s.user("bob", false)

	resp := s.do(http.MethodPost, "/favorite-locations?name=Work&city=Mitte&latitude=52.53&longitude=13.41", alice)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	work := decode[models.FavoriteLocation](t, resp)

	resp = s.do(http.MethodPost, "/favorite-locations?name=Home&city=Berlin&is_home=true", alice)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	home := decode[models.FavoriteLocation](t, resp)
	assert.Equal(t, 52.52, home.Latitude)
	assert.True(t, home.IsHome)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/favorite-locations?name=Nowhere&city=Atlantis", alice).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/favorite-locations?name=Blank", alice).Code)

	favorites := decode[[]models.FavoriteLocation](t, s.do(http.MethodGet, "/favorite-locations", alice))
	require.Len(t, favorites, 2)
	assert.Equal(t, home.Id, favorites[0].Id, "home location is listed first")

	resp = s.do(http.MethodGet, "/favorite-locations/"+itoa(home.Id)+"/prices?fuel_type=e10", alice)
	require.Equal(t, http.StatusOK, resp.Code)
	summary := decode[models.PriceSummary](t, resp)
	assert.Equal(t, "active", summary.Status)
	assert.Equal(t, 2, summary.StationCount)
	require.NotNil(t, summary.CheapestPrice)
	assert.Equal(t, 1.58, *summary.CheapestPrice)
	require.NotNil(t, summary.AveragePrice)
	assert.Equal(t, 1.615, *summary.AveragePrice)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/favorite-locations/"+itoa(home.Id)+"/prices?fuel_type=lpg", alice).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/favorite-locations/"+itoa(home.Id)+"/prices", bob).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/favorite-locations/"+itoa(work.Id), bob).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodDelete, "/favorite-locations/abc", alice).Code)

	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/favorite-locations/"+itoa(work.Id), alice).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/favorite-locations/"+itoa(work.Id), alice).Code)
}

func TestFuelLogs(t *testing.T) {
	s := newTestServer(t)
	alice := s.user("alice", false)
	bob := s.user("bob", false)

	stats := decode[models.FuelLogStatistics](t, s.do(http.MethodGet, "/fuel-logs/statistics", alice))
	assert.Equal(t, 0, stats.TotalLogs)
	assert.Nil(t, stats.TotalLiters)

	resp := s.do(http.MethodPost, "/fuel-logs?station_name=Shell&liters=50&price_per_liter=1.5&odometer=10000", alice)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	first := decode[models.FuelLogCreated](t, resp)
	assert.Nil(t, first.KmDriven)
	assert.Nil(t, first.Consumption)

	resp = s.do(http.MethodPost, "/fuel-logs?station_name=Aral&city=Berlin&liters=40&price_per_liter=1.6&fuel_type=e10&odometer=10500", alice)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	second := decode[models.FuelLogCreated](t, resp)
	require.NotNil(t, second.KmDriven)
	assert.Equal(t, 500.0, *second.KmDriven)
	require.NotNil(t, second.Consumption)
	assert.Equal(t, 8.0, *second.Consumption)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/fuel-logs?station_name=X&liters=0&price_per_liter=1.5", alice).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/fuel-logs?liters=10&price_per_liter=1.5", alice).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/fuel-logs?station_name=X&liters=10&price_per_liter=1.5&fuel_type=lpg", alice).Code)

	logs := decode[[]models.FuelLog](t, s.do(http.MethodGet, "/fuel-logs", alice))
	require.Len(t, logs, 2)
	assert.Equal(t, second.Id, logs[0].Id, "newest first")
	assert.Equal(t, models.FuelDiesel, logs[1].FuelType)
	assert.Equal(t, 64.0, logs[0].TotalPrice)

	stats = decode[models.FuelLogStatistics](t, s.do(http.MethodGet, "/fuel-logs/statistics", alice))
	assert.Equal(t, 2, stats.TotalLogs)
	assert.Equal(t, 90.0, *stats.TotalLiters)
	assert.Equal(t, 139.0, *stats.TotalCost)
	assert.Equal(t, 1.55, *stats.AveragePricePerLiter)
	assert.Equal(t, 8.0, *stats.AverageConsumption)
	assert.Equal(t, 500.0, *stats.TotalKm)

	assert.Empty(t, decode[[]models.FuelLog](t, s.do(http.MethodGet, "/fuel-logs", bob)))
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/fuel-logs/"+itoa(first.Id), bob).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/fuel-logs/"+itoa(first.Id), alice).Code)

	logs = decode[[]models.FuelLog](t, s.do(http.MethodGet, "/fuel-logs", alice))
	require.Len(t, logs, 1)
	assert.Equal(t, 8.0, *logs[0].Consumption, "no retroactive recalculation")
}

func TestExportFuelLogs(t *testing.T) {
	s := newTestServer(t)
	alice := s.user("alice", false)

	s.do(http.MethodPost, "/fuel-logs?station_name=Shell&liters=50&price_per_liter=1.5", alice)
	s.do(http.MethodPost, "/fuel-logs?station_name=Aral&liters=40&price_per_liter=1.6", alice)

	resp := s.do(http.MethodGet, "/fuel-logs/export", alice)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, export.ContentType, resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Header().Get("Content-Disposition"), "fuel-logs-alice-")

	wb, err := excelize.OpenReader(bytes.NewReader(resp.Body.Bytes()))
	require.NoError(t, err)
	rows, err := wb.GetRows(export.SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestRequiresAuthentication(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/me", "/check-prices", "/map-stations", "/search-stations", "/favorite-locations", "/fuel-logs", "/fuel-logs/statistics"} {
		assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, path, "").Code, path)
	}
}

func TestFrontend(t *testing.T) {
	gin.SetMode(gin.TestMode)
	root := t.TempDir()
	dir := filepath.Join(root, "www")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.txt"), []byte("top secret"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>index</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))

	r := gin.New()
	r.NoRoute(Frontend(dir))

	get := func(path string) *httptest.ResponseRecorder {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		return resp
	}

	assert.Equal(t, "console.log(1)", get("/app.js").Body.String())
	assert.Contains(t, get("/").Body.String(), "index")
	assert.Contains(t, get("/settings").Body.String(), "index")

	resp := get("/../secret.txt")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "index")
	assert.NotContains(t, resp.Body.String(), "secret")

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/nothing", nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
