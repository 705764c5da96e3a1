// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package files

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"docchat/internal/logging"
)

// =============================================================================
// INBOX WATCHER
// =============================================================================

// Watcher watches a single flat drop directory and reports accepted
// document files as they appear. Rejected drops are logged and never
// reported. Events are debounced: editors and file managers commonly emit
// several writes while a file lands.
type Watcher struct {
	dir      string
	debounce time.Duration
	events   chan string

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	pending map[string]time.Time
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewWatcher creates a watcher over dir. Settled, accepted files arrive on
// Events; callers hand each path back to their own event loop (the UI
// wraps it into a tea message).
func NewWatcher(dir string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		events:   make(chan string, 8),
		watcher:  fsw,
		pending:  make(map[string]time.Time),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Events returns the channel accepted file paths are delivered on.
func (w *Watcher) Events() <-chan string {
	return w.events
}

// Watch starts watching. The drop directory is one flat directory; nothing
// recursive.
func (w *Watcher) Watch() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}

	w.wg.Add(2)
	go w.processEvents()
	go w.processPending()
	return nil
}

// Close stops watching and waits for both goroutines to exit. Delivery
// selects on the cancelled context, so Close returns even when nobody is
// draining Events.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

// processEvents records create/write events for debouncing.
func (w *Watcher) processEvents() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.mu.Lock()
			w.pending[event.Name] = time.Now()
			w.mu.Unlock()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.L().Warn("inbox watcher error", zap.Error(err))
		}
	}
}

// processPending flushes files whose events have settled.
func (w *Watcher) processPending() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			var ready []string

			w.mu.Lock()
			for path, last := range w.pending {
				if now.Sub(last) >= w.debounce {
					ready = append(ready, path)
					delete(w.pending, path)
				}
			}
			w.mu.Unlock()

			for _, path := range ready {
				if !AcceptedPath(path) {
					logging.L().Info("ignoring dropped file of unsupported type",
						zap.String("path", path))
					continue
				}
				select {
				case w.events <- path:
				case <-w.ctx.Done():
					return
				}
			}
		}
	}
}
