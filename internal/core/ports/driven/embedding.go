package driven

import "context"

// BatchEmbedding pairs a vector with the index of the input text that
// produced it. Batch embedding skips blank inputs rather than failing the
// whole batch, so positions are made explicit instead of relying on the
// output being aligned with the input.
type BatchEmbedding struct {
	// Index is the position of the source text in the input slice.
	Index int

	// Vector is the unit-normalised embedding.
	Vector []float32
}

// EmbeddingService generates vector embeddings from text.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//
// Every returned vector is unit-normalised (Euclidean norm 1), which makes
// cosine similarity and dot product interchangeable at search time.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// Blank text fails with domain.ErrInvalidInput.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts. Blank entries
	// are skipped, not errors; each result carries the index of the
	// input text it belongs to, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([]BatchEmbedding, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768).
	// This must match the dimensionality the DocumentStore was
	// provisioned with.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
