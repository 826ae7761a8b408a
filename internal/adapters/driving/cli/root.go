// Package cli implements the askdocs command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/askdocs-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/askdocs-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/askdocs-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/askdocs-cli/internal/chunker"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driving"
	"github.com/custodia-labs/askdocs-cli/internal/core/services"
	"github.com/custodia-labs/askdocs-cli/internal/extract"
	"github.com/custodia-labs/askdocs-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Global flags.
var (
	verbose   bool
	configDir string
	dataDir   string
)

// Services wired in setupServices, shared by all commands.
var (
	cfg            file.Config
	configStore    *file.Store
	store          *sqlite.Store
	embedder       driven.EmbeddingService
	generator      driven.Generator
	extractor      driven.Extractor
	ingestService  driving.IngestService
	searchService  driving.SearchService
	chatService    driving.ChatService
	sessionService driving.SessionService
)

var rootCmd = &cobra.Command{
	Use:   "askdocs",
	Short: "Chat with your documents",
	Long: `askdocs ingests local documents into a searchable knowledge base
and answers questions about them using retrieval-augmented generation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// .env is optional; flags and the config file still apply.
		_ = godotenv.Load()

		logger.SetVerbose(verbose)
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		return setupServices()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		teardownServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.askdocs)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.askdocs/data)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		teardownServices()
		os.Exit(1)
	}
}

// setupServices loads configuration, opens the store, and wires the
// service layer. AI providers that fail to construct degrade to nil
// services so commands that don't need them keep working.
func setupServices() error {
	var err error
	configStore, err = file.NewStore(configDir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	cfg, err = configStore.Load()
	if err != nil {
		return err
	}
	logger.Debug("Config loaded from %s", configStore.Path())

	dimensions := cfg.Embedding.Dimensions
	store, err = sqlite.NewStore(dataDir, dimensions)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	embedder, err = ai.CreateEmbeddingService(cfg.EmbeddingSettings())
	if err != nil {
		logger.Warn("Embedding provider unavailable: %v", err)
	}
	generator, err = ai.CreateGenerator(cfg.GeneratorSettings())
	if err != nil {
		logger.Warn("Generation provider unavailable: %v", err)
	}

	splitter, err := chunker.New(
		chunker.WithChunkSize(cfg.Chunking.ChunkSize),
		chunker.WithOverlap(cfg.Chunking.ChunkOverlap),
	)
	if err != nil {
		return err
	}

	extractor = extract.New()
	docStore := store.DocumentStore()
	sessionStore := store.SessionStore()

	ingestService = services.NewIngestService(extractor, splitter, embedder, docStore)
	searchService = services.NewSearchService(embedder, docStore, cfg.Retrieval.TopK, cfg.Retrieval.Threshold)
	chatService = services.NewChatService(sessionStore, docStore, embedder, generator, cfg.Retrieval.TopK, cfg.Retrieval.Threshold)
	sessionService = services.NewSessionService(sessionStore)

	return nil
}

// rebuildIngestService re-wires the ingest pipeline after chunking
// overrides, leaving the other services untouched.
func rebuildIngestService() error {
	splitter, err := chunker.New(
		chunker.WithChunkSize(cfg.Chunking.ChunkSize),
		chunker.WithOverlap(cfg.Chunking.ChunkOverlap),
	)
	if err != nil {
		return err
	}
	ingestService = services.NewIngestService(extractor, splitter, embedder, store.DocumentStore())
	return nil
}

func teardownServices() {
	if embedder != nil {
		embedder.Close()
		embedder = nil
	}
	if generator != nil {
		generator.Close()
		generator = nil
	}
	if store != nil {
		store.Close()
		store = nil
	}
}
