package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const feedReadTimeout = 90 * time.Second

// feedUpgrader is the shared upgrader for feed WebSocket connections.
var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS for WebSocket is handled at the HTTP layer already.
		return true
	},
}

// FeedWebSocket streams feed events (new catches, likes, comments) to the
// client. The connection is receive-only; incoming frames just keep it alive.
func (h *Handler) FeedWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.Hub == nil {
		unavailable(w, "Realtime feed")
		return
	}

	conn, err := feedUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	h.Hub.Register(conn)
	defer h.Hub.Unregister(conn)

	conn.SetReadLimit(4 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(feedReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(feedReadTimeout))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(feedReadTimeout))
	}
}
