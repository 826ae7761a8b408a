package domain

// Default search parameters, used when a caller passes zero values.
const (
	// DefaultTopK is the default maximum number of search results.
	DefaultTopK = 5

	// DefaultThreshold is the default minimum similarity score.
	DefaultThreshold = 0.1

	// MaxTopK caps the number of results a single search may request.
	MaxTopK = 20
)

// SearchResult represents a single similarity hit. It is ephemeral:
// produced only as a response to a query, never persisted.
type SearchResult struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// DocumentID is the owning document.
	DocumentID string

	// DocumentName is the owning document's natural key.
	DocumentName string

	// Content is the chunk text.
	Content string

	// Position is the chunk's ordinal position within the document.
	Position int

	// Similarity is the cosine similarity score in [0, 1].
	Similarity float64
}
