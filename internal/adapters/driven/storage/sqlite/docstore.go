package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driven"
)

// Ensure documentStore implements the interface.
var _ driven.DocumentStore = (*documentStore)(nil)

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

// UpsertDocument inserts a new document or updates an existing one matched
// by name, keeping the existing id on update so chunk ownership survives
// content replacement. The whole write runs in one transaction.
func (s *documentStore) UpsertDocument(ctx context.Context, name, content string, pageCount int) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: document name is empty", domain.ErrInvalidInput)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%w: beginning transaction: %v", domain.ErrStore, err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	id := uuid.New().String()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, name, content, page_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			content = excluded.content,
			page_count = excluded.page_count,
			updated_at = excluded.updated_at
	`, id, name, content, pageCount, now, now)
	if err != nil {
		return "", fmt.Errorf("%w: upserting document %q: %v", domain.ErrStore, name, err)
	}

	// On conflict the original row (and id) is kept, so read it back.
	if err := tx.QueryRowContext(ctx,
		"SELECT id FROM documents WHERE name = ?", name).Scan(&id); err != nil {
		return "", fmt.Errorf("%w: resolving document id for %q: %v", domain.ErrStore, name, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%w: committing upsert: %v", domain.ErrStore, err)
	}
	return id, nil
}

// ReplaceChunks deletes all existing chunks for the document and inserts
// the new set in the same transaction. A failed insert rolls the delete
// back too, so a document is never left partially chunked.
func (s *documentStore) ReplaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) (int, error) {
	for _, chunk := range chunks {
		if len(chunk.Embedding) != s.store.dimensions {
			return 0, fmt.Errorf("%w: chunk %d has %d dimensions, store expects %d",
				domain.ErrDimensionMismatch, chunk.Position, len(chunk.Embedding), s.store.dimensions)
		}
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: beginning transaction: %v", domain.ErrStore, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return 0, fmt.Errorf("%w: deleting old chunks: %v", domain.ErrStore, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, content, position, embedding, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("%w: preparing insert: %v", domain.ErrStore, err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, chunk := range chunks {
		id := chunk.ID
		if id == "" {
			id = uuid.New().String()
		}
		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return 0, fmt.Errorf("%w: marshalling chunk metadata: %v", domain.ErrStore, err)
		}

		if _, err := stmt.ExecContext(ctx, id, documentID, chunk.Content, chunk.Position,
			float32SliceToBytes(chunk.Embedding), string(metadataJSON), now); err != nil {
			return 0, fmt.Errorf("%w: inserting chunk %d: %v", domain.ErrStore, chunk.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: committing chunk replacement: %v", domain.ErrStore, err)
	}
	return len(chunks), nil
}

// Search scores every stored chunk against the query vector. Vectors are
// unit-normalised at embedding time, so the dot product is the cosine
// similarity. Rows are scanned in insertion order and sorted stably, which
// gives the tie-break the contract requires.
func (s *documentStore) Search(ctx context.Context, query []float32, topK int, threshold float64) ([]domain.SearchResult, error) {
	if len(query) != s.store.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, store expects %d",
			domain.ErrDimensionMismatch, len(query), s.store.dimensions)
	}
	if topK < 1 {
		return nil, fmt.Errorf("%w: top_k must be at least 1, got %d", domain.ErrInvalidConfig, topK)
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: threshold must be in [0, 1], got %g", domain.ErrInvalidConfig, threshold)
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT c.id, c.document_id, d.name, c.content, c.position, c.embedding
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE c.embedding IS NOT NULL
		ORDER BY c.rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying chunks: %v", domain.ErrStore, err)
	}
	defer rows.Close()

	results := []domain.SearchResult{}
	for rows.Next() {
		var r domain.SearchResult
		var blob []byte
		if err := rows.Scan(&r.ChunkID, &r.DocumentID, &r.DocumentName,
			&r.Content, &r.Position, &blob); err != nil {
			return nil, fmt.Errorf("%w: scanning chunk: %v", domain.ErrStore, err)
		}

		embedding := bytesToFloat32Slice(blob)
		if len(embedding) != len(query) {
			continue // stored before a reprovision; not comparable
		}

		r.Similarity = dot(query, embedding)
		if r.Similarity >= threshold {
			results = append(results, r)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating chunks: %v", domain.ErrStore, err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// GetDocument retrieves a document by id.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, content, page_count, created_at, updated_at
		FROM documents WHERE id = ?
	`, id)
	return scanDocument(row)
}

// GetDocumentByName retrieves a document by its natural key.
func (s *documentStore) GetDocumentByName(ctx context.Context, name string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, content, page_count, created_at, updated_at
		FROM documents WHERE name = ?
	`, name)
	return scanDocument(row)
}

// GetChunks returns a document's chunks ordered by position.
func (s *documentStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, content, position, embedding, metadata
		FROM chunks WHERE document_id = ?
		ORDER BY position
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying chunks: %v", domain.ErrStore, err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		var blob []byte
		var metadataJSON string
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Content,
			&chunk.Position, &blob, &metadataJSON); err != nil {
			return nil, fmt.Errorf("%w: scanning chunk: %v", domain.ErrStore, err)
		}
		chunk.Embedding = bytesToFloat32Slice(blob)
		if err := json.Unmarshal([]byte(metadataJSON), &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("%w: unmarshalling chunk metadata: %v", domain.ErrStore, err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating chunks: %v", domain.ErrStore, err)
	}
	return chunks, nil
}

// ListDocuments returns all documents, newest first.
func (s *documentStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, content, page_count, created_at, updated_at
		FROM documents ORDER BY updated_at DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying documents: %v", domain.ErrStore, err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.Content, &doc.PageCount,
			&doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning document: %v", domain.ErrStore, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating documents: %v", domain.ErrStore, err)
	}
	return docs, nil
}

// DeleteDocument removes a document; chunks go with it via the foreign key.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: deleting document: %v", domain.ErrStore, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking delete result: %v", domain.ErrStore, err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanDocument scans a single document row.
func scanDocument(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	if err := row.Scan(&doc.ID, &doc.Name, &doc.Content, &doc.PageCount,
		&doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning document: %v", domain.ErrStore, err)
	}
	return &doc, nil
}

// dot computes the inner product of two equal-length vectors.
func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
