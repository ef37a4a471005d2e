package routes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/rm-hull/l8tefuel-api/internal"
	"github.com/rm-hull/l8tefuel-api/internal/auth"
	"github.com/rm-hull/l8tefuel-api/internal/geocode"
	"github.com/rm-hull/l8tefuel-api/internal/matcher"
	"github.com/rm-hull/l8tefuel-api/internal/models"
)

func ListFavorites(repo internal.Repository) func(c *gin.Context) {
	return func(c *gin.Context) {
		favorites, err := repo.ListFavorites(c.Request.Context(), auth.CurrentUser(c).Id)
		if err != nil {
			abortWithError(c, "list favorite locations", err)
			return
		}
		c.JSON(http.StatusOK, favorites)
	}
}

// CreateFavorite stores a new location. When no coordinates are given the
// city is geocoded instead.
func CreateFavorite(repo internal.Repository, geocoder geocode.Geocoder) func(c *gin.Context) {
	return func(c *gin.Context) {
		var req models.FavoriteLocationRequest
		if err := c.ShouldBindWith(&req, binding.Form); err != nil {
			badRequest(c, err)
			return
		}

		fav := models.FavoriteLocation{
			UserId: auth.CurrentUser(c).Id,
			Name:   req.Name,
			City:   req.City,
			IsHome: req.IsHome,
		}

		switch {
		case req.Latitude != nil && req.Longitude != nil:
			fav.Latitude, fav.Longitude = *req.Latitude, *req.Longitude

		case req.City != "" && geocoder != nil:
			loc, err := geocoder.Geocode(c.Request.Context(), req.City)
			if err != nil {
				log.Printf("failed to geocode %q: %v", req.City, err)
				c.JSON(http.StatusBadRequest, gin.H{"error": "Could not resolve the location of the city"})
				return
			}
			fav.Latitude, fav.Longitude = loc.Latitude, loc.Longitude

		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude are required"})
			return
		}

		created, err := repo.CreateFavorite(c.Request.Context(), fav)
		if err != nil {
			abortWithError(c, "create favorite location", err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func DeleteFavorite(repo internal.Repository) func(c *gin.Context) {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}

		if err := repo.DeleteFavorite(c.Request.Context(), auth.CurrentUser(c).Id, id); err != nil {
			abortWithError(c, "Favorite location", err)
			return
		}
		c.JSON(http.StatusOK, models.MessageResponse{Message: "Favorite location deleted"})
	}
}

func FavoritePrices(repo internal.Repository, m *matcher.Matcher) func(c *gin.Context) {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}

		fuelType := matcher.DefaultFuelType
		if value := c.Query("fuel_type"); value != "" {
			if fuelType, ok = models.ParseFuelType(value); !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "fuel_type must be one of diesel, e5, e10"})
				return
			}
		}

		fav, err := repo.GetFavorite(c.Request.Context(), auth.CurrentUser(c).Id, id)
		if err != nil {
			abortWithError(c, "Favorite location", err)
			return
		}

		c.JSON(http.StatusOK, m.Summary(c.Request.Context(), fav.Latitude, fav.Longitude, fuelType))
	}
}
