package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or empty input
	// (blank query, blank chat message, blank embedding text).
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates invalid chunking or search parameters,
	// e.g. an overlap that is not smaller than the chunk size.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrExtraction indicates an unreadable or unsupported source
	// document. Recovered per-document during folder ingestion and
	// recorded as a failed filename, never fatal to the batch.
	ErrExtraction = errors.New("extraction failed")

	// ErrDimensionMismatch indicates an embedding whose dimensionality
	// does not match what the store was provisioned with. Fatal to the
	// operation, not retried.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrStore indicates a storage failure. Writes that could leave
	// partial state roll back fully before this is surfaced.
	ErrStore = errors.New("store failure")

	// ErrGeneration indicates the reply generator failed after all
	// retry attempts. The turn is not persisted.
	ErrGeneration = errors.New("generation failed")

	// ErrSessionNotFound indicates an unknown chat session id.
	// Surfaced to callers as a client error.
	ErrSessionNotFound = errors.New("chat session not found")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGeneratorUnavailable indicates the reply generator is not
	// configured or unreachable.
	ErrGeneratorUnavailable = errors.New("generator service unavailable")
)
