package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AnshRaj112/catchlog-backend/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var ErrUsernameTaken = errors.New("username already taken")

// UserService reads and writes accounts in the users table.
type UserService struct {
	db *sql.DB
}

func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// CreateUser stores a new account. username must already be normalized.
func (s *UserService) CreateUser(ctx context.Context, username, passwordHash, recoveryEmailEncrypted string) (*models.User, error) {
	var recovery sql.NullString
	if recoveryEmailEncrypted != "" {
		recovery = sql.NullString{String: recoveryEmailEncrypted, Valid: true}
	}

	var (
		id   uuid.UUID
		user models.User
	)
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash, recovery_email_encrypted)
		VALUES ($1, $2, $3)
		RETURNING id, username, created_at, is_active
	`, username, passwordHash, recovery).Scan(&id, &user.Username, &user.CreatedAt, &user.IsActive)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	user.ID = id.String()
	user.PasswordHash = passwordHash
	return &user, nil
}

// GetUserByUsername returns nil when no active user has that name.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, `
		SELECT id, username, password_hash, created_at, is_active
		FROM users WHERE LOWER(username) = LOWER($1) AND is_active = TRUE
	`, username)
}

// GetUserByID returns nil for unknown or inactive users.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	parsedID, err := uuid.Parse(userID)
	if err != nil {
		return nil, nil
	}
	return s.getUser(ctx, `
		SELECT id, username, password_hash, created_at, is_active
		FROM users WHERE id = $1 AND is_active = TRUE
	`, parsedID)
}

func (s *UserService) getUser(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var (
		id   uuid.UUID
		user models.User
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&id, &user.Username, &user.PasswordHash, &user.CreatedAt, &user.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	user.ID = id.String()
	return &user, nil
}
