package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/AnshRaj112/catchlog-backend/internal/models"
	"github.com/AnshRaj112/catchlog-backend/internal/services"
	"github.com/AnshRaj112/catchlog-backend/internal/syncer"
	"github.com/go-chi/chi/v5"
)

// ListCatches returns the user's catches, optionally for one ?spot_id=.
func (h *Handler) ListCatches(w http.ResponseWriter, r *http.Request) {
	local, _ := h.userSync(r)

	var catches []*models.Catch
	if spotID := r.URL.Query().Get("spot_id"); spotID != "" {
		catches = local.CatchesForSpot(r.Context(), spotID)
	} else {
		catches = local.Catches(r.Context())
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"catches": catches,
	})
}

// CreateCatch logs a catch. With sync on it is queued for the remote store
// and announced on the feed once it got there; see AnnounceSyncedCatches.
func (h *Handler) CreateCatch(w http.ResponseWriter, r *http.Request) {
	var c models.Catch
	if !decodeJSON(w, r, &c) {
		return
	}
	local, userID := h.userSync(r)
	c.CreatedBy = userID
	saved, err := local.AddCatchWithSync(r.Context(), &c)
	if err != nil {
		writeErr(w, "create catch", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Catch logged",
		"catch":   saved,
	})
}

// AnnounceSyncedCatches publishes a feed event for every new catch the
// outbox pushed to the remote store. Feed readers load catches from there,
// so announcing earlier would point them at a row that does not exist yet.
func AnnounceSyncedCatches(hub FeedHub) syncer.AppliedFunc {
	return func(ctx context.Context, s *syncer.Synchronizer, e *syncer.OutboxEntry) {
		if e.Kind != syncer.KindCatch || e.Op != syncer.OpUpsert {
			return
		}
		var c models.Catch
		if err := json.Unmarshal(e.Payload, &c); err != nil || !c.UpdatedAt.IsZero() {
			return
		}

		event := services.FeedEvent{
			Type:    services.FeedEventCatch,
			CatchID: c.ID,
			UserID:  s.UserID(),
			Data:    &c,
		}
		if u, ok := s.CurrentUser(ctx); ok {
			event.Username = u.Username
		}
		if err := hub.Publish(ctx, event); err != nil {
			log.Printf("handlers: publish catch %s: %v", c.ID, err)
		}
	}
}

func (h *Handler) UpdateCatch(w http.ResponseWriter, r *http.Request) {
	var c models.Catch
	if !decodeJSON(w, r, &c) {
		return
	}
	local, _ := h.userSync(r)

	var (
		saved *models.Catch
		err   error
	)
	if direct(r) {
		saved, err = local.UpdateCatchRemote(r.Context(), &c)
	} else {
		var ok bool
		saved, ok, err = local.UpdateCatchWithSync(r.Context(), &c)
		if err == nil && !ok {
			err = syncer.ErrNotFound
		}
	}
	if err != nil {
		writeErr(w, "update catch", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Catch updated",
		"catch":   saved,
	})
}

func (h *Handler) DeleteCatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	local, _ := h.userSync(r)

	var err error
	if direct(r) {
		err = local.DeleteCatchRemote(r.Context(), id)
	} else {
		var ok bool
		ok, err = local.DeleteCatchWithSync(r.Context(), id)
		if err == nil && !ok {
			err = syncer.ErrNotFound
		}
	}
	if err != nil {
		writeErr(w, "delete catch", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Catch deleted",
	})
}
