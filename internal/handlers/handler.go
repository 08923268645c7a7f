package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/AnshRaj112/catchlog-backend/internal/conditions"
	"github.com/AnshRaj112/catchlog-backend/internal/geocode"
	"github.com/AnshRaj112/catchlog-backend/internal/middleware"
	"github.com/AnshRaj112/catchlog-backend/internal/models"
	"github.com/AnshRaj112/catchlog-backend/internal/remote"
	"github.com/AnshRaj112/catchlog-backend/internal/services"
	"github.com/AnshRaj112/catchlog-backend/internal/syncer"
	"github.com/AnshRaj112/catchlog-backend/pkg/utils"
	"github.com/google/uuid"
)

// UserStore is implemented by services.UserService.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash, recoveryEmailEncrypted string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}

// SessionManager is implemented by services.SessionStore.
type SessionManager interface {
	middleware.SessionValidator
	CreateSession(ctx context.Context, userID uuid.UUID) (string, error)
	InvalidateSession(ctx context.Context, token string) error
}

// FeedSource is implemented by remote.Postgres.
type FeedSource interface {
	RecentCatches(ctx context.Context, before *time.Time, limit int) ([]remote.FeedCatch, error)
	CatchExists(ctx context.Context, id string) (bool, error)
}

// InteractionStore is implemented by services.InteractionStore.
type InteractionStore interface {
	Like(ctx context.Context, catchID, userID, username string) (*models.Interaction, bool, error)
	Unlike(ctx context.Context, catchID, userID string) (bool, error)
	AddComment(ctx context.Context, c *models.Interaction) (*models.Interaction, error)
	Comments(ctx context.Context, catchID string, before *time.Time, limit int64) ([]models.Interaction, bool, error)
	Counts(ctx context.Context, catchIDs []string) (map[string]services.InteractionCounts, error)
}

// FeedHub is implemented by services.FeedHub.
type FeedHub interface {
	Register(conn services.FeedConn)
	Unregister(conn services.FeedConn)
	Publish(ctx context.Context, event services.FeedEvent) error
}

// Geocoder is implemented by geocode.Client.
type Geocoder interface {
	Forward(ctx context.Context, query string) *geocode.Place
	Reverse(ctx context.Context, lat, lng float64) *geocode.Address
}

// Uploader is implemented by services.CloudinaryService.
type Uploader interface {
	UploadFileFromHeader(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (string, error)
}

// Presigner is implemented by services.S3Presigner.
type Presigner interface {
	UploadURL(ctx context.Context, folder, fileName, fileType string) (string, string, error)
	ReadURL(ctx context.Context, key string) (string, error)
}

// Handler carries the dependencies of every HTTP endpoint. Optional
// collaborators (Feed, Interactions, Hub, Weather, Geocoder, Uploader,
// Presigner, Encryptor) may be nil; their endpoints then answer 503.
type Handler struct {
	Users        UserStore
	Sessions     SessionManager
	Encryptor    *utils.Encryptor
	Sync         *syncer.Manager
	Feed         FeedSource
	Interactions InteractionStore
	Hub          FeedHub
	Weather      conditions.WeatherFetcher
	Ranker       *conditions.Ranker
	Geocoder     Geocoder
	Uploader     Uploader
	Presigner    Presigner
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

// userSync returns the synchronizer of the authenticated user.
func (h *Handler) userSync(r *http.Request) (*syncer.Synchronizer, string) {
	userID, _ := middleware.UserID(r.Context())
	return h.Sync.For(userID), userID
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("handlers: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

func unavailable(w http.ResponseWriter, what string) {
	writeError(w, http.StatusServiceUnavailable, what+" is not available")
}

// writeErr maps domain errors to status codes. Unknown errors are logged
// and answered with 500 without leaking details.
func writeErr(w http.ResponseWriter, op string, err error) {
	var verr *utils.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": verr.Message,
			"field":   verr.Field,
		})
	case errors.Is(err, remote.ErrNotOwner):
		writeError(w, http.StatusForbidden, "You can only change records you created")
	case errors.Is(err, syncer.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "Username is already taken")
	case errors.Is(err, syncer.ErrNoRemote):
		unavailable(w, "Remote sync")
	default:
		log.Printf("handlers: %s: %v", op, err)
		writeError(w, http.StatusInternalServerError, "Failed to "+op)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
