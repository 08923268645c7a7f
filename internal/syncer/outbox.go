package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/AnshRaj112/catchlog-backend/internal/localstore"
	"github.com/AnshRaj112/catchlog-backend/internal/remote"
)

// Kind names the entity an outbox entry refers to.
type Kind string

const (
	KindSpot           Kind = "spot"
	KindCatch          Kind = "catch"
	KindFavorite       Kind = "favorite"
	KindCustomFishType Kind = "custom_fish_type"
	KindProfile        Kind = "profile"
)

type Op string

const (
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
)

const (
	minRetryBackoff = time.Second
	maxRetryBackoff = 5 * time.Minute
)

// OutboxEntry is one pending remote write.
type OutboxEntry struct {
	ID          string          `json:"id"`
	Kind        Kind            `json:"kind"`
	Op          Op              `json:"op"`
	RecordID    string          `json:"record_id"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Attempts    int             `json:"attempts"`
	NextAttempt time.Time       `json:"next_attempt"`
	LastError   string          `json:"last_error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (e *OutboxEntry) GetID() string { return e.ID }
func (e *OutboxEntry) SetID(id string) { e.ID = id }
func (e *OutboxEntry) GetCreatedAt() time.Time { return e.CreatedAt }
func (e *OutboxEntry) SetCreatedAt(t time.Time) { e.CreatedAt = t }
func (e *OutboxEntry) LastModified() time.Time { return e.CreatedAt }

func (e *OutboxEntry) recordKey() string { return string(e.Kind) + "/" + e.RecordID }

// ErrPermanent marks an apply failure that retrying cannot fix.
var ErrPermanent = errors.New("permanent sync failure")

// DrainResult summarizes one pass over the outbox.
type DrainResult struct {
	Applied  int `json:"applied"`
	Dropped  int `json:"dropped"`
	Retrying int `json:"retrying"`
	Pending  int `json:"pending"`
}

// Outbox is the queue of local writes waiting to reach the remote store.
// It lives in the local store next to the collections it mirrors.
type Outbox struct {
	entries *Collection[*OutboxEntry]
	lock    func() func()
	now     func() time.Time
}

func newOutbox(store localstore.Store, lock func() func(), now func() time.Time) *Outbox {
	c := NewCollection[*OutboxEntry](store, localstore.KeySyncOutbox)
	c.now = now
	return &Outbox{entries: c, lock: lock, now: now}
}

// Enqueue appends a pending write. payload may be nil for deletes that only
// need the record id.
func (o *Outbox) Enqueue(ctx context.Context, kind Kind, op Op, recordID string, payload interface{}) error {
	entry := &OutboxEntry{Kind: kind, Op: op, RecordID: recordID}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		entry.Payload = data
	}
	entry.NextAttempt = o.now().UTC()

	unlock := o.lock()
	defer unlock()
	_, err := o.entries.Add(ctx, entry)
	return err
}

func (o *Outbox) Pending(ctx context.Context) []*OutboxEntry {
	return o.entries.GetAll(ctx)
}

func (o *Outbox) Len(ctx context.Context) int {
	return len(o.entries.GetAll(ctx))
}

// pendingDeletes returns the records of kind that have a delete waiting.
func (o *Outbox) pendingDeletes(ctx context.Context, kind Kind) map[string]bool {
	out := make(map[string]bool)
	for _, e := range o.entries.GetAll(ctx) {
		if e.Kind == kind && e.Op == OpDelete {
			out[e.RecordID] = true
		}
	}
	return out
}

// Drain applies due entries in queue order. Successful and permanently
// failed entries are removed; others are rescheduled with exponential
// backoff. Once an entry for a record fails, later entries for the same
// record wait so that writes reach the remote store in order. The apply
// calls run without holding the lock, so writers are never blocked on the
// remote store.
func (o *Outbox) Drain(ctx context.Context, apply func(context.Context, *OutboxEntry) error) DrainResult {
	var res DrainResult

	snapshot := o.entries.GetAll(ctx)
	now := o.now().UTC()

	done := make(map[string]bool)
	retry := make(map[string]*OutboxEntry)
	blocked := make(map[string]bool)

	for _, e := range snapshot {
		if ctx.Err() != nil {
			break
		}
		if blocked[e.recordKey()] || e.NextAttempt.After(now) {
			blocked[e.recordKey()] = true
			continue
		}

		err := apply(ctx, e)
		switch {
		case err == nil:
			done[e.ID] = true
			res.Applied++
		case errors.Is(err, remote.ErrNotOwner) || errors.Is(err, remote.ErrRejected) || errors.Is(err, ErrPermanent):
			log.Printf("syncer: dropping %s %s %s: %v", e.Op, e.Kind, e.RecordID, err)
			done[e.ID] = true
			res.Dropped++
		default:
			e.Attempts++
			e.LastError = err.Error()
			e.NextAttempt = now.Add(backoff(e.Attempts))
			retry[e.ID] = e
			blocked[e.recordKey()] = true
			res.Retrying++
			log.Printf("syncer: %s %s %s failed (attempt %d, next in %s): %v", e.Op, e.Kind, e.RecordID, e.Attempts, backoff(e.Attempts), err)
		}
	}

	if len(done) == 0 && len(retry) == 0 {
		res.Pending = len(snapshot)
		return res
	}

	unlock := o.lock()
	defer unlock()

	// Re-read so entries enqueued while draining are kept.
	current := o.entries.GetAll(ctx)
	kept := make([]*OutboxEntry, 0, len(current))
	for _, e := range current {
		if done[e.ID] {
			continue
		}
		if r, ok := retry[e.ID]; ok {
			e = r
		}
		kept = append(kept, e)
	}
	if err := o.entries.ReplaceAll(ctx, kept); err != nil {
		log.Printf("syncer: saving outbox failed: %v", err)
	}
	res.Pending = len(kept)
	return res
}

func backoff(attempts int) time.Duration {
	if attempts < 1 {
		return minRetryBackoff
	}
	d := minRetryBackoff
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= maxRetryBackoff {
			return maxRetryBackoff
		}
	}
	return d
}
