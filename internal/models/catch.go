package models

import (
	"strings"
	"time"

	"github.com/AnshRaj112/catchlog-backend/pkg/utils"
)

// CustomFish marks a caught fish whose species is named in CustomFishType.
const CustomFish = "custom"

// CaughtFish is one fish within a catch.
type CaughtFish struct {
	ID             string   `json:"id"`
	FishType       string   `json:"fish_type"`
	CustomFishType string   `json:"custom_fish_type,omitempty"`
	Name           string   `json:"name,omitempty"`
	Weight         *float64 `json:"weight,omitempty"` // kg
	Length         *float64 `json:"length,omitempty"` // cm
}

// Catch is a logged fishing event.
type Catch struct {
	ID        string       `json:"id"`
	SpotID    string       `json:"spot_id"`
	Fishes    []CaughtFish `json:"fishes"`
	WaterType WaterType    `json:"water_type,omitempty"`
	Photo     string       `json:"photo,omitempty"`
	Bait      string       `json:"bait"`
	Technique string       `json:"technique"`
	Weather   string       `json:"weather"`
	Notes     string       `json:"notes,omitempty"`
	CatchDate time.Time    `json:"catch_date"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at,omitempty"`
	CreatedBy string       `json:"created_by"`
}

func (c *Catch) GetID() string { return c.ID }
func (c *Catch) SetID(id string) { c.ID = id }
func (c *Catch) GetCreatedAt() time.Time { return c.CreatedAt }
func (c *Catch) SetCreatedAt(t time.Time) { c.CreatedAt = t }
func (c *Catch) LastModified() time.Time { return lastModified(c.UpdatedAt, c.CreatedAt) }

// ValidateCatch rejects catches that must never reach the store.
func ValidateCatch(c *Catch) error {
	if c == nil {
		return &utils.ValidationError{Field: "catch", Message: "Catch is required"}
	}
	if strings.TrimSpace(c.SpotID) == "" {
		return &utils.ValidationError{Field: "spot_id", Message: "Spot is required"}
	}
	if len(c.Fishes) == 0 {
		return &utils.ValidationError{Field: "fishes", Message: "At least one fish is required"}
	}
	if c.WaterType != "" && !c.WaterType.Valid() {
		return &utils.ValidationError{Field: "water_type", Message: "Water type must be fresh, salt or brackish"}
	}
	for _, f := range c.Fishes {
		if err := validateCaughtFish(f); err != nil {
			return err
		}
	}
	return nil
}

func validateCaughtFish(f CaughtFish) error {
	if strings.TrimSpace(f.FishType) == "" {
		return &utils.ValidationError{Field: "fish_type", Message: "Every fish needs a fish type"}
	}
	custom := strings.TrimSpace(f.CustomFishType) != ""
	if f.FishType == CustomFish && !custom {
		return &utils.ValidationError{Field: "custom_fish_type", Message: "Custom fish needs a name"}
	}
	if f.FishType != CustomFish && custom {
		return &utils.ValidationError{Field: "custom_fish_type", Message: "Custom fish name is only allowed for custom fish"}
	}
	if f.Weight != nil && *f.Weight <= 0 {
		return &utils.ValidationError{Field: "weight", Message: "Weight must be positive"}
	}
	if f.Length != nil && *f.Length <= 0 {
		return &utils.ValidationError{Field: "length", Message: "Length must be positive"}
	}
	return nil
}
