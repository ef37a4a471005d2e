package models

import "time"

type FavoriteLocation struct {
	Id        int64     `json:"id"`
	UserId    int64     `json:"-"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	IsHome    bool      `json:"is_home"`
	CreatedAt time.Time `json:"created_at"`
}

type FavoriteLocationRequest struct {
	Name      string   `form:"name" binding:"required,max=100"`
	City      string   `form:"city" binding:"max=100"`
	Latitude  *float64 `form:"latitude" binding:"omitempty,latitude"`
	Longitude *float64 `form:"longitude" binding:"omitempty,longitude"`
	IsHome    bool     `form:"is_home"`
}

type PriceSummary struct {
	Status        string   `json:"status"`
	FuelType      FuelType `json:"fuel_type"`
	CheapestPrice *float64 `json:"cheapest_price"`
	AveragePrice  *float64 `json:"average_price"`
	StationCount  int      `json:"station_count"`
}
