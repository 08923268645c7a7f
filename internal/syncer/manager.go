package syncer

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/AnshRaj112/catchlog-backend/internal/localstore"
)

// Manager hands out per-user synchronizers over one shared root store.
// Synchronizers for the same user share a lock, so concurrent requests do
// not lose each other's writes.
type Manager struct {
	root   localstore.Store
	remote Remote
	opts   []Option

	locks     sync.Map // userID -> *sync.Mutex
	pendingMu sync.Mutex
}

func NewManager(root localstore.Store, rem Remote, opts ...Option) *Manager {
	return &Manager{root: root, remote: rem, opts: opts}
}

// For returns the synchronizer of userID. It is cheap; callers build one
// per request.
func (m *Manager) For(userID string) *Synchronizer {
	s := New(localstore.WithNamespace(m.root, userID), userID, m.remote, m.opts...)
	mu, _ := m.locks.LoadOrStore(userID, &sync.Mutex{})
	s.mu = mu.(*sync.Mutex)
	s.onEnqueue = m.markPending
	return s
}

// PendingUsers lists users whose outbox had entries at the last check.
func (m *Manager) PendingUsers(ctx context.Context) []string {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	return m.readPending(ctx)
}

func (m *Manager) markPending(userID string) {
	ctx := context.Background()
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()

	users := m.readPending(ctx)
	for _, u := range users {
		if u == userID {
			return
		}
	}
	m.writePending(ctx, append(users, userID))
}

// DrainAll drains the outbox of every pending user and forgets users whose
// outbox is empty afterwards.
func (m *Manager) DrainAll(ctx context.Context) DrainResult {
	var total DrainResult
	done := make(map[string]bool)

	for _, userID := range m.PendingUsers(ctx) {
		if ctx.Err() != nil {
			break
		}
		res := m.For(userID).Drain(ctx)
		total.Applied += res.Applied
		total.Dropped += res.Dropped
		total.Retrying += res.Retrying
		total.Pending += res.Pending
		if res.Pending == 0 {
			done[userID] = true
		}
	}
	if len(done) == 0 {
		return total
	}

	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	users := m.readPending(ctx)
	kept := users[:0]
	for _, u := range users {
		// A user may have queued again since the drain.
		if done[u] && m.For(u).Outbox().Len(ctx) == 0 {
			continue
		}
		kept = append(kept, u)
	}
	m.writePending(ctx, kept)
	return total
}

func (m *Manager) readPending(ctx context.Context) []string {
	raw, ok, err := m.root.Get(ctx, localstore.KeyPendingUsers)
	if err != nil {
		log.Printf("syncer: reading pending users failed: %v", err)
		return []string{}
	}
	if !ok {
		return []string{}
	}
	var users []string
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		log.Printf("syncer: decoding pending users failed: %v", err)
		return []string{}
	}
	return users
}

func (m *Manager) writePending(ctx context.Context, users []string) {
	if users == nil {
		users = []string{}
	}
	data, err := json.Marshal(users)
	if err != nil {
		log.Printf("syncer: encoding pending users failed: %v", err)
		return
	}
	if err := m.root.Set(ctx, localstore.KeyPendingUsers, string(data)); err != nil {
		log.Printf("syncer: saving pending users failed: %v", err)
	}
}
