package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/AnshRaj112/catchlog-backend/internal/models"
)

// Geocode resolves ?q= to a coordinate. No match is a 404, not an error.
func (h *Handler) Geocode(w http.ResponseWriter, r *http.Request) {
	if h.Geocoder == nil {
		unavailable(w, "Geocoding")
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	place := h.Geocoder.Forward(r.Context(), q)
	if place == nil {
		writeError(w, http.StatusNotFound, "No location found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"place":   place,
	})
}

func (h *Handler) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	if h.Geocoder == nil {
		unavailable(w, "Geocoding")
		return
	}
	lat, err1 := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, err2 := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	loc := &models.Location{Lat: lat, Lng: lng}
	if err1 != nil || err2 != nil || !loc.Valid() {
		writeError(w, http.StatusBadRequest, "lat and lng must be valid coordinates")
		return
	}
	addr := h.Geocoder.Reverse(r.Context(), lat, lng)
	if addr == nil {
		writeError(w, http.StatusNotFound, "No address found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"address": addr,
	})
}
