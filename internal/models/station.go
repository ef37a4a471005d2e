package models

import (
	"bytes"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type FuelType string

const (
	FuelDiesel FuelType = "diesel"
	FuelE5     FuelType = "e5"
	FuelE10    FuelType = "e10"
)

func ParseFuelType(s string) (FuelType, bool) {
	switch FuelType(s) {
	case FuelDiesel, FuelE5, FuelE10:
		return FuelType(s), true
	}
	return "", false
}

// Price is a per-fuel price as reported upstream. Tankerkönig sends a number,
// null, or false when the station does not sell that fuel.
type Price struct {
	Value float64
	Valid bool
}

func NewPrice(v float64) Price {
	return Price{Value: v, Valid: true}
}

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte("false")) {
		*p = Price{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid price %s: %w", string(data), err)
	}
	*p = Price{Value: v, Valid: true}
	return nil
}

func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

// Usable reports whether the price can be offered to a user.
// Zero and negative values are upstream placeholders, not real prices.
func (p Price) Usable() bool {
	return p.Valid && p.Value > 0
}

// Station is a single record of the Tankerkönig list.php response.
type Station struct {
	Id          string  `json:"id"`
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	Street      string  `json:"street"`
	HouseNumber string  `json:"houseNumber"`
	PostCode    any     `json:"postCode,omitempty"`
	Place       string  `json:"place"`
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lng"`
	Distance    float64 `json:"dist"`
	Diesel      Price   `json:"diesel"`
	E5          Price   `json:"e5"`
	E10         Price   `json:"e10"`
	IsOpen      *bool   `json:"isOpen,omitempty"`
}

func (s *Station) PriceFor(fuelType FuelType) Price {
	switch fuelType {
	case FuelDiesel:
		return s.Diesel
	case FuelE5:
		return s.E5
	case FuelE10:
		return s.E10
	}
	return Price{}
}

// Closed is true only when the upstream explicitly flags the station as closed.
func (s *Station) Closed() bool {
	return s.IsOpen != nil && !*s.IsOpen
}

type ListResponse struct {
	Ok       bool      `json:"ok"`
	License  string    `json:"license,omitempty"`
	Data     string    `json:"data,omitempty"`
	Status   string    `json:"status,omitempty"`
	Message  string    `json:"message,omitempty"`
	Stations []Station `json:"stations"`
}

type NormalizedStation struct {
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Distance  float64 `json:"distance"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}
