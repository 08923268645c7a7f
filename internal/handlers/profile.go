package handlers

import (
	"net/http"

	"github.com/AnshRaj112/catchlog-backend/internal/models"
)

// GetProfile returns the profile with its favorite spots filled in.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	local, _ := h.userSync(r)
	profile, ok := local.Profile(r.Context())
	if !ok {
		writeError(w, http.StatusNotFound, "Profile not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"profile": profile,
	})
}

func (h *Handler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var p models.UserProfile
	if !decodeJSON(w, r, &p) {
		return
	}
	local, _ := h.userSync(r)
	if p.Username == "" {
		if u, ok := local.CurrentUser(r.Context()); ok {
			p.Username = u.Username
		}
	}
	saved, err := local.SaveProfileWithSync(r.Context(), &p)
	if err != nil {
		writeErr(w, "save profile", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Profile saved",
		"profile": saved,
	})
}
