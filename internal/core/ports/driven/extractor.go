package driven

import "context"

// Extracted is the output of text extraction: a document's plain text
// plus the metadata the chunker and store need.
type Extracted struct {
	// Name is the natural document key (the base filename).
	Name string

	// Content is the extracted plain text.
	Content string

	// PageCount is the number of logical pages or sections.
	PageCount int

	// Metadata contains format-specific key-value pairs
	// (file type, size, row or line counts).
	Metadata map[string]any
}

// Extractor turns a source file into plain document text. Unreadable or
// unsupported files fail with domain.ErrExtraction, which folder ingestion
// records per-document instead of aborting the batch.
type Extractor interface {
	// Supported reports whether the path's extension can be extracted.
	Supported(path string) bool

	// Extract reads and converts the file at path.
	Extract(ctx context.Context, path string) (*Extracted, error)
}
