package driving

import (
	"context"
	"time"
)

// IngestResult summarises a batch ingestion. Batch operations always
// return a result enumerating successes and failures rather than failing
// on the first bad document.
type IngestResult struct {
	// Processed is the number of documents stored successfully.
	Processed int

	// TotalChunks is the number of chunks stored across all documents.
	TotalChunks int

	// Failed lists the filenames that could not be processed.
	Failed []string

	// Duration is the wall-clock processing time.
	Duration time.Duration
}

// IngestService runs the document-to-chunk pipeline:
// extract -> chunk -> embed -> store.
type IngestService interface {
	// IngestFile processes a single file. Returns the number of chunks
	// stored.
	IngestFile(ctx context.Context, path string) (int, error)

	// IngestText processes already-extracted text under the given name.
	IngestText(ctx context.Context, name, text string, pageCount int) (int, error)

	// IngestFolder processes every supported file in dir. Per-document
	// failures are collected in the result, never abort the batch.
	IngestFolder(ctx context.Context, dir string) (*IngestResult, error)
}
