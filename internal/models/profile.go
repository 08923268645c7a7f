package models

import "time"

type FishingPreferences struct {
	PreferredFishTypes    []string    `json:"preferred_fish_types"`
	PreferredWaterTypes   []WaterType `json:"preferred_water_types"`
	PreferredFishingTypes []string    `json:"preferred_fishing_types"`
}

// UserProfile is the public profile of a user. FavoriteSpots is derived
// from the favorites collection whenever the profile is read.
type UserProfile struct {
	ID                   string             `json:"id"`
	Username             string             `json:"username"`
	FullName             string             `json:"full_name"`
	AvatarURL            string             `json:"avatar_url,omitempty"`
	Bio                  string             `json:"bio,omitempty"`
	Location             string             `json:"location,omitempty"`
	FavoriteSpots        []string           `json:"favorite_spots"`
	FishingPreferences   FishingPreferences `json:"fishing_preferences"`
	NotificationsEnabled bool               `json:"notifications_enabled"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at,omitempty"`
}

func (p *UserProfile) GetID() string { return p.ID }
func (p *UserProfile) SetID(id string) { p.ID = id }
func (p *UserProfile) GetCreatedAt() time.Time { return p.CreatedAt }
func (p *UserProfile) SetCreatedAt(t time.Time) { p.CreatedAt = t }
func (p *UserProfile) LastModified() time.Time { return lastModified(p.UpdatedAt, p.CreatedAt) }
