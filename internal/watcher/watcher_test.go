package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driving"
)

type countingIngest struct {
	mu    sync.Mutex
	paths []string
}

func (c *countingIngest) IngestFile(_ context.Context, path string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = append(c.paths, path)
	return 1, nil
}

func (c *countingIngest) IngestText(_ context.Context, _, _ string, _ int) (int, error) {
	return 0, nil
}

func (c *countingIngest) IngestFolder(_ context.Context, _ string) (*driving.IngestResult, error) {
	return &driving.IngestResult{}, nil
}

func (c *countingIngest) ingested() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.paths...)
}

type txtOnly struct{}

func (txtOnly) Supported(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".txt")
}

func (txtOnly) Extract(_ context.Context, _ string) (*driven.Extracted, error) {
	return nil, nil
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestWatcher_schedule(t *testing.T) {
	t.Run("a burst of events produces one ingestion", func(t *testing.T) {
		ingest := &countingIngest{}
		w := New(ingest, txtOnly{}, 50*time.Millisecond)

		for i := 0; i < 5; i++ {
			w.schedule(context.Background(), "/data/doc.txt")
			time.Sleep(5 * time.Millisecond)
		}

		require.True(t, waitFor(t, 2*time.Second, func() bool {
			return len(ingest.ingested()) > 0
		}))
		time.Sleep(100 * time.Millisecond)
		assert.Equal(t, []string{"/data/doc.txt"}, ingest.ingested())
	})

	t.Run("distinct paths debounce independently", func(t *testing.T) {
		ingest := &countingIngest{}
		w := New(ingest, txtOnly{}, 20*time.Millisecond)

		w.schedule(context.Background(), "/data/a.txt")
		w.schedule(context.Background(), "/data/b.txt")

		require.True(t, waitFor(t, 2*time.Second, func() bool {
			return len(ingest.ingested()) == 2
		}))
		assert.ElementsMatch(t, []string{"/data/a.txt", "/data/b.txt"}, ingest.ingested())
	})

	t.Run("cancelled context suppresses the pending ingestion", func(t *testing.T) {
		ingest := &countingIngest{}
		w := New(ingest, txtOnly{}, 20*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		w.schedule(ctx, "/data/doc.txt")
		cancel()

		time.Sleep(100 * time.Millisecond)
		assert.Empty(t, ingest.ingested())
	})
}

func TestWatcher_Watch(t *testing.T) {
	t.Run("re-ingests written files until cancelled", func(t *testing.T) {
		dir := t.TempDir()
		ingest := &countingIngest{}
		w := New(ingest, txtOnly{}, 20*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- w.Watch(ctx, dir) }()

		// Give the watcher a moment to register before writing.
		time.Sleep(50 * time.Millisecond)
		path := filepath.Join(dir, "doc.txt")
		require.NoError(t, os.WriteFile(path, []byte("content"), 0600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.bin"), []byte("x"), 0600))

		require.True(t, waitFor(t, 3*time.Second, func() bool {
			return len(ingest.ingested()) > 0
		}))
		assert.Equal(t, []string{path}, ingest.ingested())

		cancel()
		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(2 * time.Second):
			t.Fatal("watcher did not stop after cancellation")
		}
	})

	t.Run("missing directory fails", func(t *testing.T) {
		w := New(&countingIngest{}, txtOnly{}, 0)

		err := w.Watch(context.Background(), filepath.Join(t.TempDir(), "missing"))

		assert.Error(t, err)
	})
}

func TestNew(t *testing.T) {
	t.Run("non-positive debounce falls back to the default", func(t *testing.T) {
		w := New(&countingIngest{}, txtOnly{}, 0)

		assert.Equal(t, DefaultDebounce, w.debounce)
	})
}
