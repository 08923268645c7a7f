package handlers

import (
	"net/http"
)

// SyncStatus reports whether sync is on and how many writes are queued.
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	local, _ := h.userSync(r)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"enabled": local.SyncEnabled(r.Context()),
		"pending": local.Outbox().Len(r.Context()),
	})
}

// SetSync toggles sync. Writes made while it was off are not queued
// retroactively; POST /api/sync/push sends them.
func (h *Handler) SetSync(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "enabled is required")
		return
	}
	local, _ := h.userSync(r)
	if err := local.SetSyncEnabled(r.Context(), *req.Enabled); err != nil {
		writeErr(w, "update sync setting", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"enabled": *req.Enabled,
		"pending": local.Outbox().Len(r.Context()),
	})
}

// Push uploads every locally owned record.
func (h *Handler) Push(w http.ResponseWriter, r *http.Request) {
	local, _ := h.userSync(r)
	if err := local.PushAll(r.Context()); err != nil {
		writeErr(w, "push to remote", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Local data pushed",
	})
}

// Pull merges remote records into the local store, newest write winning.
func (h *Handler) Pull(w http.ResponseWriter, r *http.Request) {
	local, _ := h.userSync(r)
	if err := local.Pull(r.Context()); err != nil {
		writeErr(w, "pull from remote", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Remote data merged",
	})
}

// Drain flushes the outbox now instead of waiting for the worker.
func (h *Handler) Drain(w http.ResponseWriter, r *http.Request) {
	local, _ := h.userSync(r)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"result":  local.Drain(r.Context()),
	})
}
