package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// FeedChannel is the Redis channel carrying feed events between instances.
const FeedChannel = "feed:events"

const (
	FeedEventCatch   = "catch"
	FeedEventLike    = "like"
	FeedEventComment = "comment"
)

// FeedEvent represents the payload broadcast over Redis and WebSocket.
type FeedEvent struct {
	Type      string      `json:"type"`
	CatchID   string      `json:"catch_id,omitempty"`
	UserID    string      `json:"user_id,omitempty"`
	Username  string      `json:"username,omitempty"`
	Content   string      `json:"content,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// FeedConn is the minimal interface our WebSocket implementation must satisfy.
type FeedConn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// feedClient serializes writes; a websocket connection allows one writer at a time.
type feedClient struct {
	conn FeedConn
	mu   sync.Mutex
}

// FeedHub fans feed events out to the WebSocket clients of this instance.
// With a Redis client, events published on any instance reach all of them.
type FeedHub struct {
	mu      sync.RWMutex
	clients map[FeedConn]*feedClient

	redis   *redis.Client
	started sync.Once
}

func NewFeedHub(client *redis.Client) *FeedHub {
	return &FeedHub{clients: make(map[FeedConn]*feedClient), redis: client}
}

func (h *FeedHub) Register(conn FeedConn) {
	h.mu.Lock()
	h.clients[conn] = &feedClient{conn: conn}
	h.mu.Unlock()
}

func (h *FeedHub) Unregister(conn FeedConn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

func (h *FeedHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// FanOut sends an event to all local connections.
func (h *FeedHub) FanOut(event FeedEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		// Non-blocking best-effort send.
		go func(c *feedClient) {
			c.mu.Lock()
			defer c.mu.Unlock()
			if err := c.conn.WriteJSON(event); err != nil {
				log.Printf("feed: error writing event to websocket: %v", err)
			}
		}(c)
	}
}

// Publish broadcasts an event. Without Redis it is delivered to local
// connections only.
func (h *FeedHub) Publish(ctx context.Context, event FeedEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if h.redis == nil {
		h.FanOut(event)
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return h.redis.Publish(ctx, FeedChannel, data).Err()
}

// Start ensures a single shared Redis listener per instance.
func (h *FeedHub) Start(ctx context.Context) {
	if h.redis == nil {
		log.Println("feed: Redis client not initialized; realtime feed is local only")
		return
	}
	h.started.Do(func() {
		go h.runSubscriber(ctx)
	})
}

func (h *FeedHub) runSubscriber(ctx context.Context) {
	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := h.redis.Subscribe(ctx, FeedChannel)
			defer pubsub.Close()

			log.Printf("✅ Feed Redis subscriber started (channel: %s)", FeedChannel)

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Printf("feed: Redis subscriber error: %v", err)
					time.Sleep(backoff)
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				var event FeedEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("feed: failed to unmarshal event: %v", err)
					continue
				}
				h.FanOut(event)
			}
		}()
	}
}
