package models

import "time"

// Favorite links a user to a spot. The pair (UserID, SpotID) is unique and
// doubles as the record id.
type Favorite struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	SpotID    string    `json:"spot_id"`
	CreatedAt time.Time `json:"created_at"`
}

// FavoriteID returns the composite key of a favorite.
func FavoriteID(userID, spotID string) string {
	return userID + ":" + spotID
}

func (f *Favorite) GetID() string { return f.ID }
func (f *Favorite) SetID(id string) { f.ID = id }
func (f *Favorite) GetCreatedAt() time.Time { return f.CreatedAt }
func (f *Favorite) SetCreatedAt(t time.Time) { f.CreatedAt = t }
func (f *Favorite) LastModified() time.Time { return f.CreatedAt }
