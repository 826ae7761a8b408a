package domain

import "time"

// Document represents an ingested document with its full extracted text.
// Documents are keyed by name: re-ingesting a document with an existing
// name replaces its content and all of its chunks.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Name is the natural key (typically the originating filename).
	// Unique across the store.
	Name string

	// Content is the full extracted text before chunking.
	Content string

	// PageCount is the number of logical pages or sections in the source.
	PageCount int

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last replaced.
	UpdatedAt time.Time
}

// Chunk represents a retrievable unit within a document.
// Documents are split into chunks for granular similarity search.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document,
	// contiguous from 0.
	Position int

	// Embedding is the unit-normalised vector representation.
	// Its length matches the embedding model's dimensionality.
	Embedding []float32

	// Metadata contains chunk-specific key-value pairs
	// (originating filename, chunk size, total chunks).
	Metadata map[string]any
}
