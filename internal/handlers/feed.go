package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/AnshRaj112/catchlog-backend/internal/models"
	"github.com/AnshRaj112/catchlog-backend/internal/remote"
	"github.com/AnshRaj112/catchlog-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

// FeedItem is a public catch with its interaction counts.
type FeedItem struct {
	remote.FeedCatch
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
}

// parseBefore reads an RFC3339 ?before= cursor.
func parseBefore(r *http.Request) (*time.Time, bool) {
	raw := r.URL.Query().Get("before")
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}

func parseLimit(r *http.Request) int {
	n, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return n
}

// ListFeed lists recent catches of all users, newest first.
func (h *Handler) ListFeed(w http.ResponseWriter, r *http.Request) {
	if h.Feed == nil {
		unavailable(w, "Feed")
		return
	}
	before, ok := parseBefore(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "before must be an RFC3339 timestamp")
		return
	}

	catches, err := h.Feed.RecentCatches(r.Context(), before, parseLimit(r))
	if err != nil {
		writeErr(w, "load feed", err)
		return
	}

	counts := map[string]services.InteractionCounts{}
	if h.Interactions != nil && len(catches) > 0 {
		ids := make([]string, len(catches))
		for i, c := range catches {
			ids[i] = c.Catch.ID
		}
		if counts, err = h.Interactions.Counts(r.Context(), ids); err != nil {
			// Counts are decoration; the feed still renders.
			log.Printf("handlers: interaction counts: %v", err)
			counts = map[string]services.InteractionCounts{}
		}
	}

	items := make([]FeedItem, len(catches))
	for i, c := range catches {
		items[i] = FeedItem{FeedCatch: c, Likes: counts[c.Catch.ID].Likes, Comments: counts[c.Catch.ID].Comments}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"items":   items,
	})
}

// publicCatch answers 404 unless the catch has reached the remote store.
func (h *Handler) publicCatch(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h.Feed == nil || h.Interactions == nil {
		unavailable(w, "Feed")
		return "", false
	}
	catchID := chi.URLParam(r, "id")
	exists, err := h.Feed.CatchExists(r.Context(), catchID)
	if err != nil {
		writeErr(w, "load catch", err)
		return "", false
	}
	if !exists {
		writeError(w, http.StatusNotFound, "Catch not found")
		return "", false
	}
	return catchID, true
}

func (h *Handler) username(r *http.Request) string {
	local, _ := h.userSync(r)
	if u, ok := local.CurrentUser(r.Context()); ok {
		return u.Username
	}
	return ""
}

func (h *Handler) publish(r *http.Request, event services.FeedEvent) {
	if h.Hub == nil {
		return
	}
	if err := h.Hub.Publish(r.Context(), event); err != nil {
		log.Printf("handlers: publish %s event: %v", event.Type, err)
	}
}

func (h *Handler) LikeCatch(w http.ResponseWriter, r *http.Request) {
	catchID, ok := h.publicCatch(w, r)
	if !ok {
		return
	}
	_, userID := h.userSync(r)
	username := h.username(r)

	like, created, err := h.Interactions.Like(r.Context(), catchID, userID, username)
	if err != nil {
		writeErr(w, "like catch", err)
		return
	}
	if created {
		h.publish(r, services.FeedEvent{
			Type:     services.FeedEventLike,
			CatchID:  catchID,
			UserID:   userID,
			Username: username,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"liked":   true,
		"like":    like,
	})
}

func (h *Handler) UnlikeCatch(w http.ResponseWriter, r *http.Request) {
	catchID, ok := h.publicCatch(w, r)
	if !ok {
		return
	}
	_, userID := h.userSync(r)
	removed, err := h.Interactions.Unlike(r.Context(), catchID, userID)
	if err != nil {
		writeErr(w, "unlike catch", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"liked":   false,
		"removed": removed,
	})
}

// AddComment rejects comments caught by the moderation filter with 422.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	catchID, ok := h.publicCatch(w, r)
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if res := services.CheckComment(req.Content); res.Flagged {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"success":    false,
			"message":    "Comment violates community guidelines",
			"categories": res.Categories,
		})
		return
	}

	_, userID := h.userSync(r)
	comment, err := h.Interactions.AddComment(r.Context(), &models.Interaction{
		CatchID:  catchID,
		UserID:   userID,
		Username: h.username(r),
		Content:  req.Content,
	})
	if err != nil {
		writeErr(w, "add comment", err)
		return
	}
	h.publish(r, services.FeedEvent{
		Type:      services.FeedEventComment,
		CatchID:   catchID,
		UserID:    userID,
		Username:  comment.Username,
		Content:   comment.Content,
		Timestamp: comment.CreatedAt,
	})
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"comment": comment,
	})
}

// ListComments pages oldest-first comments with ?before= and ?limit=.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	catchID, ok := h.publicCatch(w, r)
	if !ok {
		return
	}
	before, ok := parseBefore(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "before must be an RFC3339 timestamp")
		return
	}
	comments, hasMore, err := h.Interactions.Comments(r.Context(), catchID, before, int64(parseLimit(r)))
	if err != nil {
		writeErr(w, "load comments", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"comments": comments,
		"has_more": hasMore,
	})
}
