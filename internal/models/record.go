package models

import "time"

// Record is implemented by every entity kept in a local collection.
type Record interface {
	GetID() string
	SetID(id string)
	GetCreatedAt() time.Time
	SetCreatedAt(t time.Time)
	// LastModified is UpdatedAt, or CreatedAt when the record was never updated.
	LastModified() time.Time
}

func lastModified(updatedAt, createdAt time.Time) time.Time {
	if !updatedAt.IsZero() {
		return updatedAt
	}
	return createdAt
}
