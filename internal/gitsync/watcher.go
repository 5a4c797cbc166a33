package gitsync

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"os"
	"time"
)

const DefaultWatchInterval = 30 * time.Second

// Pusher propagates local ledger changes to the remote. Implemented by
// both the git Syncer and the contents-API uploader, so the watcher works
// with or without a local git checkout.
type Pusher interface {
	Push(ctx context.Context) (bool, error)
}

// Watcher runs beside the interactive bot and pushes the ledgers to the
// remote whenever the state file changes on disk (button presses write
// through immediately, so a hash change means a user acted).
type Watcher struct {
	pusher   Pusher
	path     string
	interval time.Duration
}

func NewWatcher(pusher Pusher, path string, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	return &Watcher{pusher: pusher, path: path, interval: interval}
}

func fileHash(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Run polls until the context is cancelled. Sync failures are logged and
// retried on the next tick; local state is never blocked by them.
func (w *Watcher) Run(ctx context.Context) {
	log.Printf("👀 Watching %s for ledger changes (every %s)", w.path, w.interval)

	last := fileHash(w.path)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("🛑 Ledger watcher stopped")
			return
		case <-ticker.C:
			current := fileHash(w.path)
			if current == "" || current == last {
				continue
			}
			log.Printf("🔄 Ledger changed, syncing to remote...")
			if _, err := w.pusher.Push(ctx); err != nil {
				log.Printf("⚠️ Ledger sync failed (will retry next change): %v", err)
				continue
			}
			last = current
		}
	}
}
