package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/AnshRaj112/catchlog-backend/internal/conditions"
	"github.com/AnshRaj112/catchlog-backend/internal/models"
	"github.com/AnshRaj112/catchlog-backend/internal/syncer"
	"github.com/go-chi/chi/v5"
)

// direct reports whether a write should go straight to the remote store
// instead of through the local store and outbox.
func direct(r *http.Request) bool {
	return r.URL.Query().Get("direct") == "true"
}

// ListSpots returns all known spots, or only favorites with ?favorites=true.
func (h *Handler) ListSpots(w http.ResponseWriter, r *http.Request) {
	local, _ := h.userSync(r)
	spots := local.Spots(r.Context())

	if r.URL.Query().Get("favorites") == "true" {
		fav := make(map[string]bool)
		for _, f := range local.Favorites(r.Context()) {
			fav[f.SpotID] = true
		}
		filtered := []*models.Spot{}
		for _, s := range spots {
			if fav[s.ID] {
				filtered = append(filtered, s)
			}
		}
		spots = filtered
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"spots":   spots,
	})
}

func (h *Handler) GetSpot(w http.ResponseWriter, r *http.Request) {
	local, _ := h.userSync(r)
	spot, ok := local.Spot(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		writeErr(w, "load spot", syncer.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"spot":    spot,
	})
}

func (h *Handler) CreateSpot(w http.ResponseWriter, r *http.Request) {
	var spot models.Spot
	if !decodeJSON(w, r, &spot) {
		return
	}
	local, userID := h.userSync(r)
	spot.CreatedBy = userID
	saved, err := local.AddSpotWithSync(r.Context(), &spot)
	if err != nil {
		writeErr(w, "create spot", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Spot created",
		"spot":    saved,
	})
}

// UpdateSpot takes the full spot, id included.
func (h *Handler) UpdateSpot(w http.ResponseWriter, r *http.Request) {
	var spot models.Spot
	if !decodeJSON(w, r, &spot) {
		return
	}
	local, _ := h.userSync(r)

	var (
		saved *models.Spot
		err   error
	)
	if direct(r) {
		saved, err = local.UpdateSpotRemote(r.Context(), &spot)
	} else {
		var ok bool
		saved, ok, err = local.UpdateSpotWithSync(r.Context(), &spot)
		if err == nil && !ok {
			err = syncer.ErrNotFound
		}
	}
	if err != nil {
		writeErr(w, "update spot", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Spot updated",
		"spot":    saved,
	})
}

// DeleteSpot also removes every favorite pointing at the spot.
func (h *Handler) DeleteSpot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	local, _ := h.userSync(r)

	var err error
	if direct(r) {
		err = local.DeleteSpotRemote(r.Context(), id)
	} else {
		var ok bool
		ok, err = local.DeleteSpotWithSync(r.Context(), id)
		if err == nil && !ok {
			err = syncer.ErrNotFound
		}
	}
	if err != nil {
		writeErr(w, "delete spot", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Spot deleted",
	})
}

// SpotConditions scores the current weather at a spot. A failed weather
// lookup yields an "insufficient data" evaluation, never an error.
func (h *Handler) SpotConditions(w http.ResponseWriter, r *http.Request) {
	local, _ := h.userSync(r)
	spot, ok := local.Spot(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		writeErr(w, "load spot", syncer.ErrNotFound)
		return
	}

	weather := h.currentWeather(r.Context(), spot)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"spot_id":    spot.ID,
		"evaluation": conditions.Evaluate(weather, spot.FishTypes),
	})
}

// SpotAlternatives suggests up to three better spots sharing a fish type.
func (h *Handler) SpotAlternatives(w http.ResponseWriter, r *http.Request) {
	if h.Weather == nil {
		unavailable(w, "Weather")
		return
	}
	local, _ := h.userSync(r)
	spot, ok := local.Spot(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		writeErr(w, "load spot", syncer.ErrNotFound)
		return
	}

	var candidates []*models.Spot
	for _, s := range local.Spots(r.Context()) {
		if s.ID != spot.ID {
			candidates = append(candidates, s)
		}
	}

	current := conditions.Current{
		Weather:   h.currentWeather(r.Context(), spot),
		FishTypes: spot.FishTypes,
	}
	ranked := h.Ranker.RankAlternatives(r.Context(), candidates, current, h.Weather)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"current":      conditions.Evaluate(current.Weather, current.FishTypes),
		"alternatives": ranked,
	})
}

func (h *Handler) currentWeather(ctx context.Context, spot *models.Spot) *conditions.Weather {
	if h.Weather == nil || !spot.Location.Valid() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, conditions.DefaultFetchTimeout)
	defer cancel()
	weather, err := h.Weather.Current(ctx, spot.Location.Lat, spot.Location.Lng)
	if err != nil {
		log.Printf("handlers: weather for spot %s: %v", spot.ID, err)
		return nil
	}
	return weather
}
