package driving

import (
	"context"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
)

// SearchService answers similarity queries against the ingested corpus.
type SearchService interface {
	// Search embeds the query and returns up to topK chunks with
	// similarity >= threshold, ordered by descending similarity.
	// topK <= 0 and threshold <= 0 fall back to configured defaults.
	Search(ctx context.Context, query string, topK int, threshold float64) ([]domain.SearchResult, error)
}
