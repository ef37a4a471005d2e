package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/rm-hull/l8tefuel-api/internal"
	"github.com/rm-hull/l8tefuel-api/internal/auth"
	"github.com/rm-hull/l8tefuel-api/internal/models"
)

func Profile(repo internal.Repository) func(c *gin.Context) {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		settings, err := repo.GetSettings(c.Request.Context(), user.Id)
		if err != nil {
			abortWithError(c, "Settings", err)
			return
		}

		c.JSON(http.StatusOK, models.Profile{
			Username: user.Username,
			IsAdmin:  user.IsAdmin,
			Settings: settings,
		})
	}
}

func ChangePassword(repo internal.Repository) func(c *gin.Context) {
	return func(c *gin.Context) {
		var req models.NewPasswordRequest
		if err := c.ShouldBindWith(&req, binding.Form); err != nil {
			badRequest(c, err)
			return
		}

		hashed, err := auth.HashPassword(req.NewPassword)
		if err != nil {
			abortWithError(c, "change password", err)
			return
		}

		if err := repo.UpdatePassword(c.Request.Context(), auth.CurrentUser(c).Username, hashed); err != nil {
			abortWithError(c, "User", err)
			return
		}
		c.JSON(http.StatusOK, models.MessageResponse{Message: "Password updated successfully"})
	}
}

func UpdateSettings(repo internal.Repository) func(c *gin.Context) {
	return func(c *gin.Context) {
		var update models.SettingsUpdate
		if err := c.ShouldBindQuery(&update); err != nil {
			badRequest(c, err)
			return
		}
		// the heatmap flag has its own endpoint
		update.ShowHeatmap = nil

		if err := repo.UpdateSettings(c.Request.Context(), auth.CurrentUser(c).Id, update); err != nil {
			abortWithError(c, "Settings", err)
			return
		}
		c.JSON(http.StatusOK, models.MessageResponse{Message: "Settings updated"})
	}
}

func UpdateHeatmap(repo internal.Repository) func(c *gin.Context) {
	return func(c *gin.Context) {
		var req struct {
			ShowHeatmap *bool `form:"show_heatmap" binding:"required"`
		}
		if err := c.ShouldBindQuery(&req); err != nil {
			badRequest(c, err)
			return
		}

		update := models.SettingsUpdate{ShowHeatmap: req.ShowHeatmap}
		if err := repo.UpdateSettings(c.Request.Context(), auth.CurrentUser(c).Id, update); err != nil {
			abortWithError(c, "Settings", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"show_heatmap": *req.ShowHeatmap})
	}
}
