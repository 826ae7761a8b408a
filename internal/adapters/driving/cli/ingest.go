package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/askdocs-cli/internal/extract"
	"github.com/custodia-labs/askdocs-cli/internal/watcher"
)

var (
	ingestChunkSize int
	ingestOverlap   int
	ingestWatch     bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest a file or folder into the knowledge base",
	Long: `Extracts text from the given file or folder, splits it into chunks,
embeds each chunk, and stores the result for similarity search.
Re-ingesting a document replaces its chunks.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", 0, "chunk size in characters (default from config)")
	ingestCmd.Flags().IntVar(&ingestOverlap, "overlap", 0, "chunk overlap in characters (default from config)")
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "keep watching a folder and re-ingest on changes")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]

	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if err := applyChunkingOverrides(); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	ctx := context.Background()

	if !info.IsDir() {
		if ingestWatch {
			return errors.New("--watch requires a folder")
		}
		if !extractor.Supported(path) {
			exts := extract.SupportedExtensions()
			sort.Strings(exts)
			return fmt.Errorf("unsupported file type %q (supported: %s)",
				filepath.Ext(path), strings.Join(exts, ", "))
		}
		count, err := ingestService.IngestFile(ctx, path)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		cmd.Printf("Ingested %s: %d chunks\n", path, count)
		return nil
	}

	result, err := ingestService.IngestFolder(ctx, path)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Processed %d documents (%d chunks) in %s\n",
		result.Processed, result.TotalChunks, result.Duration.Round(time.Millisecond))
	for _, name := range result.Failed {
		cmd.Printf("  failed: %s\n", name)
	}

	if !ingestWatch {
		return nil
	}

	watchCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd.Printf("Watching %s (Ctrl-C to stop)\n", path)
	w := watcher.New(ingestService, extractor, 0)
	if err := w.Watch(watchCtx, path); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// applyChunkingOverrides rebuilds the ingest pipeline when the chunking
// flags differ from the configured defaults.
func applyChunkingOverrides() error {
	if ingestChunkSize == 0 && ingestOverlap == 0 {
		return nil
	}
	if ingestChunkSize != 0 {
		cfg.Chunking.ChunkSize = ingestChunkSize
	}
	if ingestOverlap != 0 {
		cfg.Chunking.ChunkOverlap = ingestOverlap
	}
	return rebuildIngestService()
}
