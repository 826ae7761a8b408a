package driven

import (
	"context"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
)

// DocumentStore persists documents and their chunk vectors and performs
// nearest-neighbour similarity search. Backed by SQLite.
type DocumentStore interface {
	// UpsertDocument inserts a new document or updates an existing one
	// matched by name, returning its id. The write is transactional: a
	// concurrent reader never observes a half-replaced document.
	UpsertDocument(ctx context.Context, name, content string, pageCount int) (string, error)

	// ReplaceChunks deletes all existing chunks for the document and
	// inserts the new set inside the same transaction, returning the
	// number stored. An empty slice is valid and yields a chunk-less
	// document. Chunk vectors whose dimensionality differs from the
	// store's provisioned dimension fail with domain.ErrDimensionMismatch.
	ReplaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) (int, error)

	// Search scores every stored chunk vector against the query vector,
	// discards hits below threshold, sorts by descending similarity with
	// ties broken by insertion order, and truncates to topK. An empty
	// corpus or nothing above threshold returns an empty slice, not an
	// error.
	Search(ctx context.Context, query []float32, topK int, threshold float64) ([]domain.SearchResult, error)

	// GetDocument retrieves a document by id.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetDocumentByName retrieves a document by its natural key.
	GetDocumentByName(ctx context.Context, name string) (*domain.Document, error)

	// GetChunks returns a document's chunks ordered by position.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// ListDocuments returns all documents, newest first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document and cascades to its chunks.
	DeleteDocument(ctx context.Context, id string) error
}
