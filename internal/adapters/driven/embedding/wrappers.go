package embedding

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driven"
)

// Ensure wrappers implement the interface.
var (
	_ driven.EmbeddingService = (*Normalised)(nil)
	_ driven.EmbeddingService = (*Lazy)(nil)
	_ driven.EmbeddingService = (*RateLimited)(nil)
)

// Normalised wraps an embedding service so that every produced vector
// has unit L2 norm. With unit vectors, dot product equals cosine
// similarity, which is what the store's search relies on.
type Normalised struct {
	inner driven.EmbeddingService
}

// NewNormalised wraps the given service with unit normalisation.
func NewNormalised(inner driven.EmbeddingService) *Normalised {
	return &Normalised{inner: inner}
}

// Embed generates a unit-normalised embedding.
func (n *Normalised) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := n.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	Normalise(vec)
	return vec, nil
}

// EmbedBatch generates unit-normalised embeddings for multiple texts.
func (n *Normalised) EmbedBatch(ctx context.Context, texts []string) ([]driven.BatchEmbedding, error) {
	results, err := n.inner.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	for i := range results {
		Normalise(results[i].Vector)
	}
	return results, nil
}

func (n *Normalised) Dimensions() int                { return n.inner.Dimensions() }
func (n *Normalised) ModelName() string              { return n.inner.ModelName() }
func (n *Normalised) Ping(ctx context.Context) error { return n.inner.Ping(ctx) }
func (n *Normalised) Close() error                   { return n.inner.Close() }

// Normalise scales vec in place to unit L2 norm. Zero vectors are left
// untouched.
func Normalise(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}

// Lazy defers connectivity validation of the underlying service until
// the first embedding request. Concurrent first requests share a single
// Ping via singleflight, so a slow or unreachable backend is probed at
// most once at a time. Dimensions and ModelName are available without
// touching the backend.
type Lazy struct {
	inner driven.EmbeddingService
	group singleflight.Group
	ready atomic.Bool
}

// NewLazy wraps the given service with lazy, deduplicated readiness checks.
func NewLazy(inner driven.EmbeddingService) *Lazy {
	return &Lazy{inner: inner}
}

func (l *Lazy) ensure(ctx context.Context) error {
	if l.ready.Load() {
		return nil
	}
	_, err, _ := l.group.Do("ping", func() (any, error) {
		if err := l.inner.Ping(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
		}
		l.ready.Store(true)
		return nil, nil
	})
	return err
}

// Embed validates the backend on first use, then delegates.
func (l *Lazy) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := l.ensure(ctx); err != nil {
		return nil, err
	}
	return l.inner.Embed(ctx, text)
}

// EmbedBatch validates the backend on first use, then delegates.
func (l *Lazy) EmbedBatch(ctx context.Context, texts []string) ([]driven.BatchEmbedding, error) {
	if err := l.ensure(ctx); err != nil {
		return nil, err
	}
	return l.inner.EmbedBatch(ctx, texts)
}

func (l *Lazy) Dimensions() int                { return l.inner.Dimensions() }
func (l *Lazy) ModelName() string              { return l.inner.ModelName() }
func (l *Lazy) Ping(ctx context.Context) error { return l.ensure(ctx) }
func (l *Lazy) Close() error                   { return l.inner.Close() }

// RateLimited throttles embedding requests against local or remote
// backends. Each Embed call and each batch item consumes one token.
type RateLimited struct {
	inner   driven.EmbeddingService
	limiter *rate.Limiter
}

// NewRateLimited wraps the given service with a token-bucket limiter
// allowing rps requests per second with the given burst.
func NewRateLimited(inner driven.EmbeddingService, rps float64, burst int) *RateLimited {
	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Embed waits for the limiter, then delegates.
func (r *RateLimited) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.Embed(ctx, text)
}

// EmbedBatch reserves one token per text, capped at the burst size,
// then delegates the whole batch.
func (r *RateLimited) EmbedBatch(ctx context.Context, texts []string) ([]driven.BatchEmbedding, error) {
	n := len(texts)
	if n == 0 {
		n = 1
	}
	if burst := r.limiter.Burst(); n > burst {
		n = burst
	}
	if err := r.limiter.WaitN(ctx, n); err != nil {
		return nil, err
	}
	return r.inner.EmbedBatch(ctx, texts)
}

func (r *RateLimited) Dimensions() int                { return r.inner.Dimensions() }
func (r *RateLimited) ModelName() string              { return r.inner.ModelName() }
func (r *RateLimited) Ping(ctx context.Context) error { return r.inner.Ping(ctx) }
func (r *RateLimited) Close() error                   { return r.inner.Close() }
