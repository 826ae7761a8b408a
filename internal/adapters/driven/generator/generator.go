// Package generator provides answer-generation adapters and the retry
// wrapper every configured adapter is composed with.
package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driven"
)

// Ensure Retrying implements the interface.
var _ driven.Generator = (*Retrying)(nil)

// SystemPrompt builds the system instruction handed to chat models.
// When retrievedContext is empty the model is told to answer from the
// conversation alone rather than invent document content.
func SystemPrompt(retrievedContext string) string {
	if retrievedContext == "" {
		return "You are a helpful assistant answering questions about the user's documents. " +
			"No relevant document excerpts were found for this question. " +
			"Say so when the question needs document knowledge, and answer from the conversation otherwise."
	}
	return "You are a helpful assistant answering questions about the user's documents. " +
		"Use the following document excerpts to answer. If they do not contain the answer, say so.\n\n" +
		"Document excerpts:\n" + retrievedContext
}

// Retry defaults.
const (
	DefaultAttempts = 3
	DefaultBackoff  = 500 * time.Millisecond
)

// Retrying wraps a generator with bounded retry and doubling backoff.
// Context cancellation aborts both the in-flight attempt and the sleep
// between attempts.
type Retrying struct {
	inner    driven.Generator
	attempts int
	backoff  time.Duration
}

// NewRetrying wraps the given generator. Non-positive attempts or
// backoff fall back to the defaults.
func NewRetrying(inner driven.Generator, attempts int, backoff time.Duration) *Retrying {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	return &Retrying{inner: inner, attempts: attempts, backoff: backoff}
}

// Reply attempts the wrapped generator up to the configured number of
// times. Exhausted retries return ErrGeneration wrapping the last error.
func (r *Retrying) Reply(ctx context.Context, userMessage, retrievedContext string, history []driven.Exchange) (string, error) {
	var lastErr error
	delay := r.backoff

	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		reply, err := r.inner.Reply(ctx, userMessage, retrievedContext, history)
		if err == nil {
			return reply, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
	}

	return "", fmt.Errorf("%w: %d attempts failed: %v", domain.ErrGeneration, r.attempts, lastErr)
}

func (r *Retrying) ModelName() string              { return r.inner.ModelName() }
func (r *Retrying) Ping(ctx context.Context) error { return r.inner.Ping(ctx) }
func (r *Retrying) Close() error                   { return r.inner.Close() }
