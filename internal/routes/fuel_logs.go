package routes

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/rm-hull/l8tefuel-api/internal"
	"github.com/rm-hull/l8tefuel-api/internal/auth"
	"github.com/rm-hull/l8tefuel-api/internal/export"
	"github.com/rm-hull/l8tefuel-api/internal/metrics"
	"github.com/rm-hull/l8tefuel-api/internal/models"
	"github.com/rm-hull/l8tefuel-api/internal/stats"
)

func ListFuelLogs(repo internal.Repository) func(c *gin.Context) {
	return func(c *gin.Context) {
		logs, err := repo.ListFuelLogs(c.Request.Context(), auth.CurrentUser(c).Id)
		if err != nil {
			abortWithError(c, "list fuel logs", err)
			return
		}
		c.JSON(http.StatusOK, logs)
	}
}

func CreateFuelLog(repo internal.Repository) func(c *gin.Context) {
	return func(c *gin.Context) {
		var req models.FuelLogRequest
		if err := c.ShouldBindWith(&req, binding.Form); err != nil {
			badRequest(c, err)
			return
		}

		fuelType := models.FuelDiesel
		if req.FuelType != "" {
			fuelType = models.FuelType(req.FuelType)
		}

		entry, err := repo.CreateFuelLog(c.Request.Context(), models.FuelLog{
			UserId:        auth.CurrentUser(c).Id,
			StationName:   req.StationName,
			City:          req.City,
			Liters:        req.Liters,
			PricePerLiter: req.PricePerLiter,
			FuelType:      fuelType,
			Odometer:      req.Odometer,
			Notes:         req.Notes,
		})
		if err != nil {
			abortWithError(c, "create fuel log", err)
			return
		}
		metrics.IncFuelLogsCreated()

		c.JSON(http.StatusCreated, models.FuelLogCreated{
			Message:     "Fuel log created",
			Id:          entry.Id,
			KmDriven:    entry.KmDriven,
			Consumption: entry.Consumption,
		})
	}
}

func DeleteFuelLog(repo internal.Repository) func(c *gin.Context) {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}

		if err := repo.DeleteFuelLog(c.Request.Context(), auth.CurrentUser(c).Id, id); err != nil {
			abortWithError(c, "Fuel log", err)
			return
		}
		c.JSON(http.StatusOK, models.MessageResponse{Message: "Fuel log deleted"})
	}
}

func FuelLogStatistics(repo internal.Repository) func(c *gin.Context) {
	return func(c *gin.Context) {
		logs, err := repo.ListFuelLogs(c.Request.Context(), auth.CurrentUser(c).Id)
		if err != nil {
			abortWithError(c, "fuel log statistics", err)
			return
		}
		c.JSON(http.StatusOK, stats.Derive(logs))
	}
}

func ExportFuelLogs(repo internal.Repository) func(c *gin.Context) {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		logs, err := repo.ListFuelLogs(c.Request.Context(), user.Id)
		if err != nil {
			abortWithError(c, "export fuel logs", err)
			return
		}

		var buf bytes.Buffer
		if err := export.WriteFuelLogs(&buf, logs); err != nil {
			abortWithError(c, "export fuel logs", err)
			return
		}

		filename := fmt.Sprintf("fuel-logs-%s-%s.xlsx", user.Username, time.Now().UTC().Format("20060102"))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, export.ContentType, buf.Bytes())
	}
}
