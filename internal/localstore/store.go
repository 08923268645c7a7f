// Package localstore is the string-keyed store that holds JSON-encoded
// collections on the local side of the synchronizer.
package localstore

import "context"

// Fixed collection keys.
const (
	KeySpots           = "spots"
	KeyCatches         = "catches"
	KeyFavorites       = "favorites"
	KeyUsers           = "users"
	KeyCustomFishTypes = "custom-fish-types"
	KeyCurrentUser     = "current-user"
	KeySyncEnabled     = "sync-enabled"
	KeySyncOutbox      = "sync-outbox"

	// KeyPendingUsers lives in the root store and lists the namespaces
	// whose outbox is not empty.
	KeyPendingUsers = "sync-pending-users"
)

// Store is a string-keyed get/set store.
type Store interface {
	// Get returns (value, true, nil) on hit and ("", false, nil) on miss.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// SetNX writes value only when key is absent and reports whether it did.
	SetNX(ctx context.Context, key, value string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// Namespaced prefixes every key with a namespace so one backing store can
// hold the collections of many users.
type Namespaced struct {
	store  Store
	prefix string
}

// WithNamespace returns a view of s whose keys live under "local:<ns>:".
func WithNamespace(s Store, ns string) *Namespaced {
	return &Namespaced{store: s, prefix: "local:" + ns + ":"}
}

func (n *Namespaced) Get(ctx context.Context, key string) (string, bool, error) {
	return n.store.Get(ctx, n.prefix+key)
}

func (n *Namespaced) Set(ctx context.Context, key, value string) error {
	return n.store.Set(ctx, n.prefix+key, value)
}

func (n *Namespaced) SetNX(ctx context.Context, key, value string) (bool, error) {
	return n.store.SetNX(ctx, n.prefix+key, value)
}

func (n *Namespaced) Delete(ctx context.Context, key string) error {
	return n.store.Delete(ctx, n.prefix+key)
}
