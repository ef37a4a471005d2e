package models

import "time"

type User struct {
	Id             int64     `json:"id"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"`
	IsAdmin        bool      `json:"is_admin"`
	CreatedAt      time.Time `json:"created_at"`
}

type UserSettings struct {
	UserId      int64    `json:"-"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Radius      float64  `json:"radius"`
	TargetPrice *float64 `json:"target_price"`
	IsActive    bool     `json:"is_active"`
	ShowHeatmap bool     `json:"show_heatmap"`
}

// HasLocation reports whether both coordinates have been stored.
func (s *UserSettings) HasLocation() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// SettingsUpdate carries a partial update; nil fields are left untouched.
type SettingsUpdate struct {
	Latitude    *float64 `form:"latitude" binding:"omitempty,latitude"`
	Longitude   *float64 `form:"longitude" binding:"omitempty,longitude"`
	Radius      *float64 `form:"radius" binding:"omitempty,gt=0"`
	TargetPrice *float64 `form:"target_price" binding:"omitempty,gt=0"`
	IsActive    *bool    `form:"is_active"`
	ShowHeatmap *bool    `form:"show_heatmap"`
}

type Profile struct {
	Username string        `json:"username"`
	IsAdmin  bool          `json:"is_admin"`
	Settings *UserSettings `json:"settings"`
}
