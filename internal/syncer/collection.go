// Package syncer keeps entity collections in the local store and mirrors
// them to the remote store on a best-effort basis.
package syncer

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/AnshRaj112/catchlog-backend/internal/localstore"
	"github.com/AnshRaj112/catchlog-backend/internal/models"
	"github.com/google/uuid"
)

// Collection is a JSON array of records stored under one local key.
// A missing key reads as an empty collection and is initialized on first
// read. Initialization never overwrites a value written in the meantime.
type Collection[T models.Record] struct {
	store localstore.Store
	key   string
	now   func() time.Time
}

func NewCollection[T models.Record](store localstore.Store, key string) *Collection[T] {
	return &Collection[T]{store: store, key: key, now: time.Now}
}

// GetAll never fails: read and decode errors are logged and yield an empty slice.
func (c *Collection[T]) GetAll(ctx context.Context) []T {
	raw, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		log.Printf("syncer: read %s failed: %v", c.key, err)
		return []T{}
	}
	if !ok {
		created, err := c.store.SetNX(ctx, c.key, "[]")
		if err != nil {
			log.Printf("syncer: init %s failed: %v", c.key, err)
			return []T{}
		}
		if created {
			return []T{}
		}
		if raw, ok, err = c.store.Get(ctx, c.key); err != nil || !ok {
			return []T{}
		}
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.Printf("syncer: decode %s failed: %v", c.key, err)
		return []T{}
	}
	if items == nil {
		items = []T{}
	}
	return items
}

func (c *Collection[T]) Find(ctx context.Context, id string) (T, bool) {
	for _, item := range c.GetAll(ctx) {
		if item.GetID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Add assigns an id and creation time when missing, appends and persists.
func (c *Collection[T]) Add(ctx context.Context, item T) (T, error) {
	if item.GetID() == "" {
		item.SetID(uuid.NewString())
	}
	if item.GetCreatedAt().IsZero() {
		item.SetCreatedAt(c.now().UTC())
	}

	items := append(c.GetAll(ctx), item)
	if err := c.ReplaceAll(ctx, items); err != nil {
		return item, err
	}
	return item, nil
}

// Update replaces the record with the same id wholesale. It reports false
// when no record has that id.
func (c *Collection[T]) Update(ctx context.Context, item T) (T, bool, error) {
	items := c.GetAll(ctx)
	for i := range items {
		if items[i].GetID() != item.GetID() {
			continue
		}
		items[i] = item
		if err := c.ReplaceAll(ctx, items); err != nil {
			return item, true, err
		}
		return item, true, nil
	}
	var zero T
	return zero, false, nil
}

// Upsert updates the record when present and adds it otherwise.
func (c *Collection[T]) Upsert(ctx context.Context, item T) (T, error) {
	if item.GetID() != "" {
		updated, ok, err := c.Update(ctx, item)
		if ok || err != nil {
			return updated, err
		}
	}
	return c.Add(ctx, item)
}

// Delete removes the record with id and reports whether one was removed.
func (c *Collection[T]) Delete(ctx context.Context, id string) (bool, error) {
	n, err := c.DeleteWhere(ctx, func(item T) bool { return item.GetID() == id })
	return n > 0, err
}

// DeleteWhere removes every record matching pred and returns how many went.
func (c *Collection[T]) DeleteWhere(ctx context.Context, pred func(T) bool) (int, error) {
	items := c.GetAll(ctx)
	kept := items[:0]
	removed := 0
	for _, item := range items {
		if pred(item) {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, c.ReplaceAll(ctx, kept)
}

// ReplaceAll persists items as the whole collection.
func (c *Collection[T]) ReplaceAll(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, c.key, string(data)); err != nil {
		log.Printf("syncer: write %s failed: %v", c.key, err)
		return err
	}
	return nil
}
