package handlers

import (
	"net/http"
	"strings"

	"github.com/AnshRaj112/catchlog-backend/internal/syncer"
	"github.com/AnshRaj112/catchlog-backend/pkg/utils"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	local, _ := h.userSync(r)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"favorites": local.Favorites(r.Context()),
	})
}

// AddFavorite is idempotent: favoriting twice returns the same record.
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SpotID string `json:"spot_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.SpotID) == "" {
		writeErr(w, "add favorite", &utils.ValidationError{Field: "spot_id", Message: "Spot is required"})
		return
	}

	local, _ := h.userSync(r)
	if _, ok := local.Spot(r.Context(), req.SpotID); !ok {
		writeErr(w, "add favorite", syncer.ErrNotFound)
		return
	}
	fav, err := local.AddFavoriteWithSync(r.Context(), req.SpotID)
	if err != nil {
		writeErr(w, "add favorite", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"favorite": fav,
	})
}

func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	local, _ := h.userSync(r)
	ok, err := local.RemoveFavoriteWithSync(r.Context(), chi.URLParam(r, "spotID"))
	if err != nil {
		writeErr(w, "remove favorite", err)
		return
	}
	if !ok {
		writeErr(w, "remove favorite", syncer.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Favorite removed",
	})
}
