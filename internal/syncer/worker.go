package syncer

import (
	"context"
	"log"
	"time"
)

const DefaultSyncInterval = 30 * time.Second

// Worker periodically drains the outboxes of all pending users.
type Worker struct {
	manager  *Manager
	interval time.Duration
}

func NewWorker(m *Manager, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	return &Worker{manager: m, interval: interval}
}

// Start runs the drain loop in the background until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	go w.Run(ctx)
}

// Run blocks, draining once per interval, until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.Printf("syncer: worker started (every %s)", w.interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("syncer: worker stopped")
			return
		case <-ticker.C:
			res := w.manager.DrainAll(ctx)
			if res.Applied > 0 || res.Dropped > 0 || res.Retrying > 0 {
				log.Printf("syncer: drained outboxes: applied=%d dropped=%d retrying=%d pending=%d",
					res.Applied, res.Dropped, res.Retrying, res.Pending)
			}
		}
	}
}
