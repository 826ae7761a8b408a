package generator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driven"
)

// mockGenerator fails a configurable number of times before succeeding.
type mockGenerator struct {
	failures int
	calls    int
	reply    string
	err      error
}

func (m *mockGenerator) Reply(_ context.Context, _, _ string, _ []driven.Exchange) (string, error) {
	m.calls++
	if m.calls <= m.failures {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockGenerator) ModelName() string            { return "mock" }
func (m *mockGenerator) Ping(_ context.Context) error { return nil }
func (m *mockGenerator) Close() error                 { return nil }

func TestSystemPrompt(t *testing.T) {
	t.Run("includes excerpts when context was retrieved", func(t *testing.T) {
		prompt := SystemPrompt("chunk one\n\nchunk two")

		assert.Contains(t, prompt, "Document excerpts:")
		assert.Contains(t, prompt, "chunk one")
		assert.Contains(t, prompt, "chunk two")
	})

	t.Run("tells the model nothing was found for an empty context", func(t *testing.T) {
		prompt := SystemPrompt("")

		assert.Contains(t, prompt, "No relevant document excerpts were found")
		assert.NotContains(t, prompt, "Document excerpts:")
	})
}

func TestRetrying(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the first successful reply", func(t *testing.T) {
		mock := &mockGenerator{reply: "hello"}
		r := NewRetrying(mock, 3, time.Millisecond)

		reply, err := r.Reply(ctx, "hi", "", nil)

		require.NoError(t, err)
		assert.Equal(t, "hello", reply)
		assert.Equal(t, 1, mock.calls)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		mock := &mockGenerator{failures: 2, reply: "eventually", err: errors.New("overloaded")}
		r := NewRetrying(mock, 3, time.Millisecond)

		reply, err := r.Reply(ctx, "hi", "", nil)

		require.NoError(t, err)
		assert.Equal(t, "eventually", reply)
		assert.Equal(t, 3, mock.calls)
	})

	t.Run("exhausted attempts wrap ErrGeneration with the last error", func(t *testing.T) {
		mock := &mockGenerator{failures: 10, err: errors.New("boom")}
		r := NewRetrying(mock, 3, time.Millisecond)

		_, err := r.Reply(ctx, "hi", "", nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrGeneration)
		assert.True(t, strings.Contains(err.Error(), "boom"))
		assert.Equal(t, 3, mock.calls)
	})

	t.Run("context cancellation aborts the backoff sleep", func(t *testing.T) {
		mock := &mockGenerator{failures: 10, err: errors.New("boom")}
		r := NewRetrying(mock, 3, time.Hour)

		cancelled, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := r.Reply(cancelled, "hi", "", nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second)
		assert.Equal(t, 1, mock.calls)
	})

	t.Run("non-positive settings fall back to defaults", func(t *testing.T) {
		r := NewRetrying(&mockGenerator{reply: "ok"}, 0, 0)

		assert.Equal(t, DefaultAttempts, r.attempts)
		assert.Equal(t, DefaultBackoff, r.backoff)
	})
}
