package models

import (
	"math"
	"strings"
	"time"

	"github.com/AnshRaj112/catchlog-backend/pkg/utils"
)

// WaterType is the kind of water at a spot.
type WaterType string

const (
	WaterFresh    WaterType = "fresh"
	WaterSalt     WaterType = "salt"
	WaterBrackish WaterType = "brackish"
)

// Valid reports whether w is one of the three known water types.
func (w WaterType) Valid() bool {
	switch w {
	case WaterFresh, WaterSalt, WaterBrackish:
		return true
	}
	return false
}

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Valid reports whether the pair is a finite coordinate within range.
func (l *Location) Valid() bool {
	if l == nil {
		return false
	}
	if math.IsNaN(l.Lat) || math.IsNaN(l.Lng) || math.IsInf(l.Lat, 0) || math.IsInf(l.Lng, 0) {
		return false
	}
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}

// Spot is a named fishing location.
type Spot struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Location    *Location `json:"location"`
	Address     string    `json:"address,omitempty"`
	Image       string    `json:"image,omitempty"`
	WaterType   WaterType `json:"water_type"`
	FishTypes   []string  `json:"fish_types"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
	CreatedBy   string    `json:"created_by"`
}

func (s *Spot) GetID() string { return s.ID }
func (s *Spot) SetID(id string) { s.ID = id }
func (s *Spot) GetCreatedAt() time.Time { return s.CreatedAt }
func (s *Spot) SetCreatedAt(t time.Time) { s.CreatedAt = t }
func (s *Spot) LastModified() time.Time { return lastModified(s.UpdatedAt, s.CreatedAt) }

// SharesFishType reports whether the spot lists at least one of fishTypes.
func (s *Spot) SharesFishType(fishTypes []string) bool {
	for _, a := range s.FishTypes {
		for _, b := range fishTypes {
			if a == b {
				return true
			}
		}
	}
	return false
}

// ValidateSpot checks a spot at creation time. extra holds user-defined
// fish type ids that are accepted in addition to the catalog.
func ValidateSpot(s *Spot, catalog *FishCatalog, extra map[string]bool) error {
	if s == nil {
		return &utils.ValidationError{Field: "spot", Message: "Spot is required"}
	}
	if strings.TrimSpace(s.Name) == "" {
		return &utils.ValidationError{Field: "name", Message: "Spot name is required"}
	}
	if !s.Location.Valid() {
		return &utils.ValidationError{Field: "location", Message: "Location must be a valid coordinate pair"}
	}
	if !s.WaterType.Valid() {
		return &utils.ValidationError{Field: "water_type", Message: "Water type must be fresh, salt or brackish"}
	}
	for _, f := range s.FishTypes {
		if extra[f] {
			continue
		}
		if !catalog.Allows(s.WaterType, f) {
			return &utils.ValidationError{Field: "fish_types", Message: "Fish type " + f + " does not live in " + string(s.WaterType) + " water"}
		}
	}
	return nil
}
