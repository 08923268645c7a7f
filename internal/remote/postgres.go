// Package remote is the durable system of record: PostgreSQL tables with
// row-level ownership checks on every write.
package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AnshRaj112/catchlog-backend/internal/models"
	"github.com/lib/pq"
)

// ErrNotOwner is returned when the acting user does not own the record
// being written.
var ErrNotOwner = errors.New("record is owned by another user")

// ErrRejected marks writes the database refused because of the row itself
// (data exceptions and integrity violations). Retrying them cannot succeed.
var ErrRejected = errors.New("write rejected by remote store")

const defaultListLimit = 1000

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// --- spots ---

func (p *Postgres) UpsertSpot(ctx context.Context, actor string, s *models.Spot) error {
	var lat, lng sql.NullFloat64
	if s.Location != nil {
		lat = sql.NullFloat64{Float64: s.Location.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: s.Location.Lng, Valid: true}
	}
	res, err := p.db.ExecContext(ctx, `
		INSERT INTO spots (id, name, description, type, lat, lng, address, image, water_type, fish_types, created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			type = EXCLUDED.type,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			address = EXCLUDED.address,
			image = EXCLUDED.image,
			water_type = EXCLUDED.water_type,
			fish_types = EXCLUDED.fish_types,
			updated_at = EXCLUDED.updated_at
		WHERE spots.created_by = EXCLUDED.created_by
	`, s.ID, s.Name, s.Description, s.Type, lat, lng, s.Address, s.Image, string(s.WaterType),
		pq.StringArray(s.FishTypes), s.CreatedAt, nullTime(s.UpdatedAt), actor)
	if err != nil {
		return writeErr("upsert spot", err)
	}
	return ownedWrite(res)
}

// DeleteSpot removes a spot and every favorite pointing at it. Deleting a
// spot that does not exist is a no-op.
func (p *Postgres) DeleteSpot(ctx context.Context, actor, id string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM spots WHERE id = $1 AND created_by = $2`, id, actor)
	if err != nil {
		return writeErr("delete spot", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM spots WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrNotOwner
		}
		return nil
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM favorites WHERE spot_id = $1`, id); err != nil {
		return fmt.Errorf("delete spot favorites: %w", err)
	}
	return tx.Commit()
}

// ListSpots returns the most recently created spots of all users.
func (p *Postgres) ListSpots(ctx context.Context) ([]*models.Spot, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, description, type, lat, lng, address, image, water_type, fish_types, created_at, updated_at, created_by
		FROM spots
		ORDER BY created_at DESC
		LIMIT $1
	`, defaultListLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*models.Spot{}
	for rows.Next() {
		var (
			s         models.Spot
			lat, lng  sql.NullFloat64
			water     string
			fish      pq.StringArray
			updatedAt sql.NullTime
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Type, &lat, &lng, &s.Address, &s.Image,
			&water, &fish, &s.CreatedAt, &updatedAt, &s.CreatedBy); err != nil {
			return nil, err
		}
		if lat.Valid && lng.Valid {
			s.Location = &models.Location{Lat: lat.Float64, Lng: lng.Float64}
		}
		s.WaterType = models.WaterType(water)
		s.FishTypes = []string(fish)
		if updatedAt.Valid {
			s.UpdatedAt = updatedAt.Time
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// --- catches ---

func (p *Postgres) UpsertCatch(ctx context.Context, actor string, c *models.Catch) error {
	fishes, err := json.Marshal(c.Fishes)
	if err != nil {
		return err
	}
	res, err := p.db.ExecContext(ctx, `
		INSERT INTO catches (id, spot_id, fishes, water_type, photo, bait, technique, weather, notes, catch_date, created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			spot_id = EXCLUDED.spot_id,
			fishes = EXCLUDED.fishes,
			water_type = EXCLUDED.water_type,
			photo = EXCLUDED.photo,
			bait = EXCLUDED.bait,
			technique = EXCLUDED.technique,
			weather = EXCLUDED.weather,
			notes = EXCLUDED.notes,
			catch_date = EXCLUDED.catch_date,
			updated_at = EXCLUDED.updated_at
		WHERE catches.created_by = EXCLUDED.created_by
	`, c.ID, c.SpotID, fishes, string(c.WaterType), c.Photo, c.Bait, c.Technique, c.Weather, c.Notes,
		c.CatchDate, c.CreatedAt, nullTime(c.UpdatedAt), actor)
	if err != nil {
		return writeErr("upsert catch", err)
	}
	return ownedWrite(res)
}

func (p *Postgres) DeleteCatch(ctx context.Context, actor, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM catches WHERE id = $1 AND created_by = $2`, id, actor)
	if err != nil {
		return writeErr("delete catch", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var exists bool
	if err := p.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM catches WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrNotOwner
	}
	return nil
}

const catchColumns = `c.id, c.spot_id, c.fishes, c.water_type, c.photo, c.bait, c.technique, c.weather, c.notes, c.catch_date, c.created_at, c.updated_at, c.created_by`

func scanCatch(scan func(dest ...interface{}) error, extra ...interface{}) (*models.Catch, error) {
	var (
		c         models.Catch
		fishes    []byte
		water     string
		updatedAt sql.NullTime
	)
	dest := []interface{}{&c.ID, &c.SpotID, &fishes, &water, &c.Photo, &c.Bait, &c.Technique, &c.Weather, &c.Notes,
		&c.CatchDate, &c.CreatedAt, &updatedAt, &c.CreatedBy}
	if err := scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(fishes, &c.Fishes); err != nil {
		return nil, fmt.Errorf("decode fishes of catch %s: %w", c.ID, err)
	}
	c.WaterType = models.WaterType(water)
	if updatedAt.Valid {
		c.UpdatedAt = updatedAt.Time
	}
	return &c, nil
}

func (p *Postgres) ListCatches(ctx context.Context, userID string) ([]*models.Catch, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+catchColumns+`
		FROM catches c
		WHERE c.created_by = $1
		ORDER BY c.catch_date DESC
		LIMIT $2
	`, userID, defaultListLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*models.Catch{}
	for rows.Next() {
		c, err := scanCatch(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// FeedCatch is a catch as shown in the community feed.
type FeedCatch struct {
	Catch    *models.Catch `json:"catch"`
	Username string        `json:"username"`
	SpotName string        `json:"spot_name,omitempty"`
}

// RecentCatches lists catches of all users, newest first. before pages
// backwards through created_at.
func (p *Postgres) RecentCatches(ctx context.Context, before *time.Time, limit int) ([]FeedCatch, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	cutoff := time.Now().Add(time.Minute)
	if before != nil {
		cutoff = *before
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT `+catchColumns+`, COALESCE(u.username, ''), COALESCE(s.name, '')
		FROM catches c
		LEFT JOIN users u ON u.id::text = c.created_by
		LEFT JOIN spots s ON s.id = c.spot_id
		WHERE c.created_at < $1
		ORDER BY c.created_at DESC
		LIMIT $2
	`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []FeedCatch{}
	for rows.Next() {
		var username, spotName string
		c, err := scanCatch(rows.Scan, &username, &spotName)
		if err != nil {
			return nil, err
		}
		out = append(out, FeedCatch{Catch: c, Username: username, SpotName: spotName})
	}
	return out, rows.Err()
}

// CatchExists reports whether a catch is known to the remote store.
func (p *Postgres) CatchExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := p.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM catches WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// --- favorites ---

func (p *Postgres) UpsertFavorite(ctx context.Context, f *models.Favorite) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO favorites (user_id, spot_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, spot_id) DO NOTHING
	`, f.UserID, f.SpotID, f.CreatedAt)
	if err != nil {
		return writeErr("upsert favorite", err)
	}
	return nil
}

func (p *Postgres) DeleteFavorite(ctx context.Context, userID, spotID string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = $1 AND spot_id = $2`, userID, spotID)
	return err
}

func (p *Postgres) ListFavorites(ctx context.Context, userID string) ([]*models.Favorite, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT user_id, spot_id, created_at FROM favorites WHERE user_id = $1 ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*models.Favorite{}
	for rows.Next() {
		var f models.Favorite
		if err := rows.Scan(&f.UserID, &f.SpotID, &f.CreatedAt); err != nil {
			return nil, err
		}
		f.ID = models.FavoriteID(f.UserID, f.SpotID)
		out = append(out, &f)
	}
	return out, rows.Err()
}

// --- custom fish types ---

func (p *Postgres) UpsertCustomFishType(ctx context.Context, actor string, f *models.CustomFishType) error {
	res, err := p.db.ExecContext(ctx, `
		INSERT INTO custom_fish_types (id, name, water_type, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, water_type = EXCLUDED.water_type
		WHERE custom_fish_types.created_by = EXCLUDED.created_by
	`, f.ID, f.Name, string(f.WaterType), f.CreatedAt, actor)
	if err != nil {
		return writeErr("upsert custom fish type", err)
	}
	return ownedWrite(res)
}

func (p *Postgres) ListCustomFishTypes(ctx context.Context, userID string) ([]*models.CustomFishType, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, water_type, created_at, created_by FROM custom_fish_types WHERE created_by = $1 ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*models.CustomFishType{}
	for rows.Next() {
		var (
			f     models.CustomFishType
			water string
		)
		if err := rows.Scan(&f.ID, &f.Name, &water, &f.CreatedAt, &f.CreatedBy); err != nil {
			return nil, err
		}
		f.WaterType = models.WaterType(water)
		out = append(out, &f)
	}
	return out, rows.Err()
}

// --- profiles ---

func (p *Postgres) UpsertProfile(ctx context.Context, pr *models.UserProfile) error {
	prefs := pr.FishingPreferences
	waters := make([]string, len(prefs.PreferredWaterTypes))
	for i, w := range prefs.PreferredWaterTypes {
		waters[i] = string(w)
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, username, full_name, avatar_url, bio, location,
			preferred_fish_types, preferred_water_types, preferred_fishing_types, notifications_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id) DO UPDATE SET
			username = EXCLUDED.username,
			full_name = EXCLUDED.full_name,
			avatar_url = EXCLUDED.avatar_url,
			bio = EXCLUDED.bio,
			location = EXCLUDED.location,
			preferred_fish_types = EXCLUDED.preferred_fish_types,
			preferred_water_types = EXCLUDED.preferred_water_types,
			preferred_fishing_types = EXCLUDED.preferred_fishing_types,
			notifications_enabled = EXCLUDED.notifications_enabled,
			updated_at = EXCLUDED.updated_at
	`, pr.ID, pr.Username, pr.FullName, pr.AvatarURL, pr.Bio, pr.Location,
		pq.StringArray(prefs.PreferredFishTypes), pq.StringArray(waters), pq.StringArray(prefs.PreferredFishingTypes),
		pr.NotificationsEnabled, pr.CreatedAt, nullTime(pr.UpdatedAt))
	if err != nil {
		return writeErr("upsert profile", err)
	}
	return nil
}

// GetProfile returns (nil, nil) when the user has no profile yet.
func (p *Postgres) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var (
		pr                   models.UserProfile
		fish, waters, styles pq.StringArray
		updatedAt            sql.NullTime
	)
	err := p.db.QueryRowContext(ctx, `
		SELECT user_id, username, full_name, avatar_url, bio, location,
			preferred_fish_types, preferred_water_types, preferred_fishing_types, notifications_enabled, created_at, updated_at
		FROM profiles WHERE user_id = $1
	`, userID).Scan(&pr.ID, &pr.Username, &pr.FullName, &pr.AvatarURL, &pr.Bio, &pr.Location,
		&fish, &waters, &styles, &pr.NotificationsEnabled, &pr.CreatedAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	pr.FishingPreferences.PreferredFishTypes = []string(fish)
	pr.FishingPreferences.PreferredFishingTypes = []string(styles)
	for _, w := range waters {
		pr.FishingPreferences.PreferredWaterTypes = append(pr.FishingPreferences.PreferredWaterTypes, models.WaterType(w))
	}
	if updatedAt.Valid {
		pr.UpdatedAt = updatedAt.Time
	}
	return &pr, nil
}

// writeErr wraps err with ErrRejected when Postgres reported SQLSTATE
// class 22 or 23.
func writeErr(what string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "22", "23":
			return fmt.Errorf("%s: %w: %w", what, ErrRejected, err)
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}

func ownedWrite(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotOwner
	}
	return nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
