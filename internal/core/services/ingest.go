package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/askdocs-cli/internal/chunker"
	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driving"
	"github.com/custodia-labs/askdocs-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// folderConcurrency bounds parallel file ingestion.
const folderConcurrency = 4

// IngestService runs the extract -> chunk -> embed -> store pipeline.
type IngestService struct {
	extractor driven.Extractor
	splitter  *chunker.Splitter
	embedder  driven.EmbeddingService
	docStore  driven.DocumentStore
}

// NewIngestService creates a new ingestion service.
func NewIngestService(
	extractor driven.Extractor,
	splitter *chunker.Splitter,
	embedder driven.EmbeddingService,
	docStore driven.DocumentStore,
) *IngestService {
	return &IngestService{
		extractor: extractor,
		splitter:  splitter,
		embedder:  embedder,
		docStore:  docStore,
	}
}

// IngestFile processes a single file and returns the number of chunks stored.
func (s *IngestService) IngestFile(ctx context.Context, path string) (int, error) {
	logger.Debug("Ingesting file: %s", path)

	extracted, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return 0, err
	}

	return s.ingest(ctx, extracted.Name, extracted.Content, extracted.PageCount, extracted.Metadata)
}

// IngestText processes already-extracted text under the given name.
func (s *IngestService) IngestText(ctx context.Context, name, text string, pageCount int) (int, error) {
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("%w: document name is empty", domain.ErrInvalidInput)
	}
	return s.ingest(ctx, name, text, pageCount, nil)
}

// ingest stores the document, embeds its chunks, and replaces the stored
// chunk set. Re-ingesting the same content is idempotent: the splitter
// and embedder are deterministic and the replace is transactional.
func (s *IngestService) ingest(ctx context.Context, name, text string, pageCount int, metadata map[string]any) (int, error) {
	if s.embedder == nil {
		return 0, fmt.Errorf("%w: no embedding provider configured", domain.ErrEmbeddingUnavailable)
	}

	pieces := s.splitter.Split(text)
	logger.Debug("Document %q split into %d chunks", name, len(pieces))

	var vectors map[int][]float32
	if len(pieces) > 0 {
		batch, err := s.embedder.EmbedBatch(ctx, pieces)
		if err != nil {
			return 0, fmt.Errorf("embed chunks for %q: %w", name, err)
		}
		vectors = make(map[int][]float32, len(batch))
		for _, b := range batch {
			vectors[b.Index] = b.Vector
		}
	}

	docID, err := s.docStore.UpsertDocument(ctx, name, text, pageCount)
	if err != nil {
		return 0, err
	}

	chunks := make([]domain.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		vec, ok := vectors[i]
		if !ok {
			// Blank pieces are skipped by the embedder.
			continue
		}
		chunks = append(chunks, domain.Chunk{
			DocumentID: docID,
			Content:    piece,
			Position:   len(chunks),
			Embedding:  vec,
			Metadata:   metadata,
		})
	}

	stored, err := s.docStore.ReplaceChunks(ctx, docID, chunks)
	if err != nil {
		return 0, err
	}

	logger.Info("Ingested %q: %d chunks", name, stored)
	return stored, nil
}

// IngestFolder processes every supported file in dir with bounded
// concurrency. Per-file failures are recorded in the result and never
// abort the batch.
func (s *IngestService) IngestFolder(ctx context.Context, dir string) (*driving.IngestResult, error) {
	logger.Section("Folder Ingestion")
	start := time.Now()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read folder %s: %v", domain.ErrInvalidInput, dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if s.extractor.Supported(path) {
			paths = append(paths, path)
		}
	}
	logger.Debug("Found %d supported files in %s", len(paths), dir)

	var (
		mu     sync.Mutex
		result driving.IngestResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(folderConcurrency)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			count, err := s.IngestFile(gctx, path)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn("Failed to ingest %s: %v", path, err)
				result.Failed = append(result.Failed, filepath.Base(path))
				return nil
			}
			result.Processed++
			result.TotalChunks += count
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	logger.Info("Folder ingestion complete: %d processed, %d failed, %d chunks in %s",
		result.Processed, len(result.Failed), result.TotalChunks, result.Duration)
	return &result, nil
}
