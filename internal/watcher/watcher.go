// Package watcher re-ingests documents when files in a watched folder
// change. Rapid event bursts for the same file (editors typically emit
// several writes per save) are debounced into a single ingestion.
package watcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driving"
	"github.com/custodia-labs/askdocs-cli/internal/logger"
)

// DefaultDebounce is the quiet period after the last event before a file
// is re-ingested.
const DefaultDebounce = 500 * time.Millisecond

// Watcher re-ingests supported files on create and write events.
type Watcher struct {
	ingest    driving.IngestService
	extractor driven.Extractor
	debounce  time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New creates a watcher. A non-positive debounce falls back to the default.
func New(ingest driving.IngestService, extractor driven.Extractor, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		ingest:    ingest,
		extractor: extractor,
		debounce:  debounce,
		pending:   make(map[string]*time.Timer),
	}
}

// Watch blocks watching dir until ctx is cancelled. Ingestion failures
// are logged and watching continues.
func (w *Watcher) Watch(ctx context.Context, dir string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Info("Watching %s for changes", dir)

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !w.extractor.Supported(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch error: %v", err)
		}
	}
}

// schedule resets the debounce timer for path; the ingestion fires only
// after the quiet period elapses with no further events.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.debounce)
		return
	}

	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}

		count, err := w.ingest.IngestFile(ctx, path)
		if err != nil {
			logger.Warn("Failed to re-ingest %s: %v", path, err)
			return
		}
		logger.Info("Re-ingested %s: %d chunks", path, count)
	})
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}
