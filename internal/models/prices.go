package models

type AlertResponse struct {
	Status  string              `json:"status"`
	Matches []NormalizedStation `json:"matches"`
	Message string              `json:"message,omitempty"`
	Mock    bool                `json:"mock,omitempty"`
}

type MapResponse struct {
	Status      string              `json:"status"`
	Stations    []NormalizedStation `json:"stations"`
	TargetPrice *float64            `json:"target_price"`
	ShowHeatmap bool                `json:"show_heatmap"`
	Message     string              `json:"message,omitempty"`
	Mock        bool                `json:"mock,omitempty"`
}

type SearchResponse struct {
	Status   string              `json:"status"`
	FuelType FuelType            `json:"fuel_type"`
	Stations []NormalizedStation `json:"stations"`
	Message  string              `json:"message,omitempty"`
	Mock     bool                `json:"mock,omitempty"`
}

type SearchRequest struct {
	Latitude  *float64 `form:"lat" binding:"omitempty,latitude"`
	Longitude *float64 `form:"lng" binding:"omitempty,longitude"`
	Radius    *float64 `form:"radius" binding:"omitempty,gt=0"`
	FuelType  string   `form:"fuel_type" binding:"omitempty,oneof=diesel e5 e10"`
	MaxPrice  *float64 `form:"max_price" binding:"omitempty,gt=0"`
}
