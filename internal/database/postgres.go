package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var PostgresDB *sql.DB

// ConnectPostgres connects to PostgreSQL database
func ConnectPostgres(postgresURI string) error {
	var err error

	PostgresDB, err = sql.Open("postgres", postgresURI)
	if err != nil {
		return err
	}

	// Set connection pool settings
	PostgresDB.SetMaxOpenConns(25)
	PostgresDB.SetMaxIdleConns(5)
	PostgresDB.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	if err = PostgresDB.Ping(); err != nil {
		return err
	}

	log.Println("✅ Connected to PostgreSQL")

	// Initialize tables
	if err = InitPostgresTables(PostgresDB); err != nil {
		return err
	}

	return nil
}

// InitPostgresTables creates all necessary tables if they don't exist.
// Record ids are generated by clients, so spots, catches and custom fish
// types use TEXT keys and created_by holds the owner's user id as text.
func InitPostgresTables(db *sql.DB) error {
	queries := []string{
		// Accounts
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username VARCHAR(20) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			recovery_email_encrypted TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		`CREATE TABLE IF NOT EXISTS profiles (
			user_id TEXT PRIMARY KEY,
			username VARCHAR(255) NOT NULL DEFAULT '',
			full_name VARCHAR(255) NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			bio TEXT NOT NULL DEFAULT '',
			location VARCHAR(255) NOT NULL DEFAULT '',
			preferred_fish_types TEXT[] NOT NULL DEFAULT '{}',
			preferred_water_types TEXT[] NOT NULL DEFAULT '{}',
			preferred_fishing_types TEXT[] NOT NULL DEFAULT '{}',
			notifications_enabled BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ
		)`,

		`CREATE TABLE IF NOT EXISTS spots (
			id TEXT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL,
			lat DOUBLE PRECISION,
			lng DOUBLE PRECISION,
			address TEXT NOT NULL DEFAULT '',
			image TEXT NOT NULL DEFAULT '',
			water_type VARCHAR(20) NOT NULL,
			fish_types TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ,
			created_by TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS catches (
			id TEXT PRIMARY KEY,
			spot_id TEXT NOT NULL,
			fishes JSONB NOT NULL DEFAULT '[]',
			water_type VARCHAR(20) NOT NULL DEFAULT '',
			photo TEXT NOT NULL DEFAULT '',
			bait TEXT NOT NULL DEFAULT '',
			technique TEXT NOT NULL DEFAULT '',
			weather TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			catch_date TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ,
			created_by TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS favorites (
			user_id TEXT NOT NULL,
			spot_id TEXT NOT NULL REFERENCES spots(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, spot_id)
		)`,

		`CREATE TABLE IF NOT EXISTS custom_fish_types (
			id TEXT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			water_type VARCHAR(20) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_by TEXT NOT NULL
		)`,

		// Spot types are free text; older databases capped them at 20 chars.
		`ALTER TABLE spots ALTER COLUMN type TYPE TEXT`,

		// Create indexes for better performance
		`CREATE INDEX IF NOT EXISTS idx_users_username_lower ON users(LOWER(username))`,
		`CREATE INDEX IF NOT EXISTS idx_spots_created_by ON spots(created_by)`,
		`CREATE INDEX IF NOT EXISTS idx_catches_created_by ON catches(created_by)`,
		`CREATE INDEX IF NOT EXISTS idx_catches_spot_id ON catches(spot_id)`,
		`CREATE INDEX IF NOT EXISTS idx_catches_created_at ON catches(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_favorites_spot_id ON favorites(spot_id)`,
		`CREATE INDEX IF NOT EXISTS idx_custom_fish_types_created_by ON custom_fish_types(created_by)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	log.Println("✅ PostgreSQL tables initialized")
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection
func DisconnectPostgres() error {
	if PostgresDB != nil {
		return PostgresDB.Close()
	}
	return nil
}
