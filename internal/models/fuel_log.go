package models

import "time"

type FuelLog struct {
	Id            int64     `json:"id"`
	UserId        int64     `json:"-"`
	StationName   string    `json:"station_name"`
	City          *string   `json:"city"`
	Liters        float64   `json:"liters"`
	PricePerLiter float64   `json:"price_per_liter"`
	TotalPrice    float64   `json:"total_price"`
	FuelType      FuelType  `json:"fuel_type"`
	Odometer      *float64  `json:"odometer"`
	KmDriven      *float64  `json:"km_driven"`
	Consumption   *float64  `json:"consumption"`
	CreatedAt     time.Time `json:"created_at"`
	Notes         *string   `json:"notes"`
}

type FuelLogRequest struct {
	StationName   string   `form:"station_name" binding:"required,max=200"`
	City          *string  `form:"city" binding:"omitempty,max=100"`
	Liters        float64  `form:"liters" binding:"required,gt=0"`
	PricePerLiter float64  `form:"price_per_liter" binding:"required,gt=0"`
	FuelType      string   `form:"fuel_type" binding:"omitempty,oneof=diesel e5 e10"`
	Odometer      *float64 `form:"odometer" binding:"omitempty,gte=0"`
	Notes         *string  `form:"notes" binding:"omitempty,max=500"`
}

type FuelLogCreated struct {
	Message     string   `json:"message"`
	Id          int64    `json:"id"`
	KmDriven    *float64 `json:"km_driven"`
	Consumption *float64 `json:"consumption"`
}

// FuelLogStatistics is the aggregate over all of a user's logs. Only
// TotalLogs is populated when the user has no logs.
type FuelLogStatistics struct {
	TotalLogs            int      `json:"total_logs"`
	TotalLiters          *float64 `json:"total_liters,omitempty"`
	TotalCost            *float64 `json:"total_cost,omitempty"`
	AveragePricePerLiter *float64 `json:"average_price_per_liter,omitempty"`
	AverageConsumption   *float64 `json:"average_consumption,omitempty"`
	TotalKm              *float64 `json:"total_km,omitempty"`
}
