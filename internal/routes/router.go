package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/rm-hull/l8tefuel-api/internal"
	"github.com/rm-hull/l8tefuel-api/internal/auth"
	"github.com/rm-hull/l8tefuel-api/internal/geocode"
	"github.com/rm-hull/l8tefuel-api/internal/matcher"
)

// Register mounts every API route on r. geocoder may be nil, in which case
// favorite locations must be created with explicit coordinates.
func Register(r gin.IRouter, repo internal.Repository, issuer *auth.TokenIssuer, m *matcher.Matcher, geocoder geocode.Geocoder) {
	r.POST("/token", Login(repo, issuer))

	user := r.Group("/", auth.RequireUser(issuer, repo))

	admin := user.Group("/admin", auth.RequireAdmin())
	admin.POST("/users", CreateUser(repo))
	admin.GET("/users", ListUsers(repo))
	admin.PUT("/users/:username/reset-password", ResetPassword(repo))

	user.GET("/me", Profile(repo))
	user.PUT("/me/password", ChangePassword(repo))
	user.PUT("/me/settings", UpdateSettings(repo))
	user.PUT("/me/settings/heatmap", UpdateHeatmap(repo))

	user.GET("/check-prices", CheckPrices(repo, m))
	user.GET("/map-stations", MapStations(repo, m))
	user.GET("/search-stations", SearchStations(repo, m))

	user.GET("/favorite-locations", ListFavorites(repo))
	user.POST("/favorite-locations", CreateFavorite(repo, geocoder))
	user.DELETE("/favorite-locations/:id", DeleteFavorite(repo))
	user.GET("/favorite-locations/:id/prices", FavoritePrices(repo, m))

	user.GET("/fuel-logs", ListFuelLogs(repo))
	user.POST("/fuel-logs", CreateFuelLog(repo))
	user.GET("/fuel-logs/statistics", FuelLogStatistics(repo))
	user.GET("/fuel-logs/export", ExportFuelLogs(repo))
	user.DELETE("/fuel-logs/:id", DeleteFuelLog(repo))
}
