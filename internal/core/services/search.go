package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driving"
	"github.com/custodia-labs/askdocs-cli/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService answers similarity queries against the ingested corpus.
type SearchService struct {
	embedder  driven.EmbeddingService
	docStore  driven.DocumentStore
	topK      int
	threshold float64
}

// NewSearchService creates a new search service. defaultTopK and
// defaultThreshold are used when a caller passes non-positive values.
func NewSearchService(
	embedder driven.EmbeddingService,
	docStore driven.DocumentStore,
	defaultTopK int,
	defaultThreshold float64,
) *SearchService {
	if defaultTopK <= 0 {
		defaultTopK = domain.DefaultTopK
	}
	if defaultThreshold <= 0 {
		defaultThreshold = domain.DefaultThreshold
	}
	return &SearchService{
		embedder:  embedder,
		docStore:  docStore,
		topK:      defaultTopK,
		threshold: defaultThreshold,
	}
}

// Search embeds the query and scores it against every stored chunk.
func (s *SearchService) Search(ctx context.Context, query string, topK int, threshold float64) ([]domain.SearchResult, error) {
	logger.Section("Similarity Search")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}

	if s.embedder == nil {
		return nil, fmt.Errorf("%w: no embedding provider configured", domain.ErrEmbeddingUnavailable)
	}

	if topK <= 0 {
		topK = s.topK
	}
	if topK > domain.MaxTopK {
		topK = domain.MaxTopK
	}
	if threshold <= 0 {
		threshold = s.threshold
	}
	if threshold > 1 {
		return nil, fmt.Errorf("%w: threshold must be in [0, 1]", domain.ErrInvalidInput)
	}
	logger.Debug("TopK: %d, Threshold: %.2f", topK, threshold)

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.docStore.Search(ctx, vec, topK, threshold)
	if err != nil {
		return nil, err
	}

	logger.Debug("Found %d results", len(results))
	return results, nil
}
