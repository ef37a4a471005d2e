package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rm-hull/l8tefuel-api/internal"
	"github.com/rm-hull/l8tefuel-api/internal/auth"
	"github.com/rm-hull/l8tefuel-api/internal/matcher"
	"github.com/rm-hull/l8tefuel-api/internal/models"
)

// CheckPrices answers the price alert for the caller's stored settings.
// Upstream trouble is reported in the status field, never as an HTTP error.
func CheckPrices(repo internal.Repository, m *matcher.Matcher) func(c *gin.Context) {
	return func(c *gin.Context) {
		settings, err := repo.GetSettings(c.Request.Context(), auth.CurrentUser(c).Id)
		if err != nil {
			abortWithError(c, "Settings", err)
			return
		}

		if !settings.IsActive {
			c.JSON(http.StatusOK, models.AlertResponse{
				Status:  string(matcher.StatusInactive),
				Matches: []models.NormalizedStation{},
			})
			return
		}

		result := m.Match(c.Request.Context(), matcher.FromSettings(matcher.ModeAlert, settings))
		c.JSON(http.StatusOK, models.AlertResponse{
			Status:  string(result.Status),
			Matches: result.Stations,
			Message: result.Message,
			Mock:    result.Mock,
		})
	}
}

func MapStations(repo internal.Repository, m *matcher.Matcher) func(c *gin.Context) {
	return func(c *gin.Context) {
		settings, err := repo.GetSettings(c.Request.Context(), auth.CurrentUser(c).Id)
		if err != nil {
			abortWithError(c, "Settings", err)
			return
		}

		result := m.Match(c.Request.Context(), matcher.FromSettings(matcher.ModeMap, settings))
		c.JSON(http.StatusOK, models.MapResponse{
			Status:      string(result.Status),
			Stations:    result.Stations,
			TargetPrice: result.TargetPrice,
			ShowHeatmap: settings.ShowHeatmap,
			Message:     result.Message,
			Mock:        result.Mock,
		})
	}
}

// SearchStations uses the query coordinates and radius when given, otherwise
// the caller's stored location.
func SearchStations(repo internal.Repository, m *matcher.Matcher) func(c *gin.Context) {
	return func(c *gin.Context) {
		var req models.SearchRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			badRequest(c, err)
			return
		}

		settings, err := repo.GetSettings(c.Request.Context(), auth.CurrentUser(c).Id)
		if err != nil {
			abortWithError(c, "Settings", err)
			return
		}

		fuelType := matcher.DefaultFuelType
		if req.FuelType != "" {
			fuelType = models.FuelType(req.FuelType)
		}

		search := matcher.Request{
			Mode:        matcher.ModeSearch,
			RadiusKm:    settings.Radius,
			TargetPrice: req.MaxPrice,
			FuelType:    fuelType,
		}
		switch {
		case req.Latitude != nil && req.Longitude != nil:
			search.Latitude, search.Longitude = req.Latitude, req.Longitude
		case settings.HasLocation():
			search.Latitude, search.Longitude = settings.Latitude, settings.Longitude
		}
		if req.Radius != nil {
			search.RadiusKm = *req.Radius
		}

		result := m.Match(c.Request.Context(), search)
		c.JSON(http.StatusOK, models.SearchResponse{
			Status:   string(result.Status),
			FuelType: fuelType,
			Stations: result.Stations,
			Message:  result.Message,
			Mock:     result.Mock,
		})
	}
}
