package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/askdocs-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
)

var (
	configProvider string
	configModel    string
	configBaseURL  string
	configAPIKey   string
	configSkipPing bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and configure chunking, retrieval, and AI provider settings.`,
	RunE:  runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure the embedding provider",
	Long: `Configure the embedding provider for document and query vectors.

  askdocs config embedding --provider ollama --model all-minilm
  askdocs config embedding --provider openai --model text-embedding-3-small --api-key sk-...`,
	Args: cobra.NoArgs,
	RunE: runConfigEmbedding,
}

var configGeneratorCmd = &cobra.Command{
	Use:   "generator",
	Short: "Configure the answer-generation provider",
	Long: `Configure the model that turns retrieved context into answers.

  askdocs config generator --provider ollama --model llama3.2
  askdocs config generator --provider openai --model gpt-4o-mini --api-key sk-...`,
	Args: cobra.NoArgs,
	RunE: runConfigGenerator,
}

func init() {
	for _, c := range []*cobra.Command{configEmbeddingCmd, configGeneratorCmd} {
		c.Flags().StringVar(&configProvider, "provider", "", "provider (ollama or openai)")
		c.Flags().StringVar(&configModel, "model", "", "model name (default per provider)")
		c.Flags().StringVar(&configBaseURL, "base-url", "", "override the provider base URL")
		c.Flags().StringVar(&configAPIKey, "api-key", "", "API key (cloud providers)")
		c.Flags().BoolVar(&configSkipPing, "skip-ping", false, "save without validating connectivity")
	}

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEmbeddingCmd)
	configCmd.AddCommand(configGeneratorCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Printf("Config file: %s\n\n", configStore.Path())

	cmd.Println("[Chunking]")
	cmd.Printf("  Chunk size: %d\n", cfg.Chunking.ChunkSize)
	cmd.Printf("  Overlap: %d\n\n", cfg.Chunking.ChunkOverlap)

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top K: %d\n", cfg.Retrieval.TopK)
	cmd.Printf("  Threshold: %.2f\n\n", cfg.Retrieval.Threshold)

	embedSettings := cfg.EmbeddingSettings()
	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", cfg.Embedding.Provider)
	cmd.Printf("  Model: %s\n", cfg.Embedding.Model)
	cmd.Printf("  Dimensions: %d\n", cfg.Embedding.Dimensions)
	printProviderDetails(cmd, embedSettings.Provider, cfg.Embedding.BaseURL, embedSettings.APIKey)
	cmd.Printf("  Status: %s\n\n", configuredStatus(embedSettings.IsConfigured()))

	genSettings := cfg.GeneratorSettings()
	cmd.Println("[Generator]")
	cmd.Printf("  Provider: %s\n", cfg.Generator.Provider)
	cmd.Printf("  Model: %s\n", cfg.Generator.Model)
	printProviderDetails(cmd, genSettings.Provider, cfg.Generator.BaseURL, genSettings.APIKey)
	cmd.Printf("  Status: %s\n", configuredStatus(genSettings.IsConfigured()))

	return nil
}

func runConfigEmbedding(cmd *cobra.Command, _ []string) error {
	provider, err := resolveProvider(configProvider)
	if err != nil {
		return err
	}

	cfg.Embedding.Provider = provider.String()
	cfg.Embedding.Model = configModel
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	cfg.Embedding.BaseURL = configBaseURL
	if configAPIKey != "" {
		cfg.Embedding.APIKey = configAPIKey
	}
	if dims, ok := domain.EmbeddingDimensions()[cfg.Embedding.Model]; ok {
		cfg.Embedding.Dimensions = dims
	}

	settings := cfg.EmbeddingSettings()
	if !settings.IsConfigured() {
		return fmt.Errorf("%w: provider %s requires an API key", domain.ErrInvalidConfig, provider)
	}

	if !configSkipPing {
		cmd.Print("Validating configuration... ")
		if err := ai.ValidateEmbeddingConfig(settings); err != nil {
			cmd.Println("FAILED")
			return err
		}
		cmd.Println("OK")
	}

	if err := configStore.Save(cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	cmd.Printf("Embedding provider configured: %s (%s)\n", provider, cfg.Embedding.Model)
	return nil
}

func runConfigGenerator(cmd *cobra.Command, _ []string) error {
	provider, err := resolveProvider(configProvider)
	if err != nil {
		return err
	}

	cfg.Generator.Provider = provider.String()
	cfg.Generator.Model = configModel
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = domain.DefaultGeneratorModels()[provider]
	}
	cfg.Generator.BaseURL = configBaseURL
	if configAPIKey != "" {
		cfg.Generator.APIKey = configAPIKey
	}

	settings := cfg.GeneratorSettings()
	if !settings.IsConfigured() {
		return fmt.Errorf("%w: provider %s requires an API key", domain.ErrInvalidConfig, provider)
	}

	if !configSkipPing {
		cmd.Print("Validating configuration... ")
		if err := ai.ValidateGeneratorConfig(settings); err != nil {
			cmd.Println("FAILED")
			return err
		}
		cmd.Println("OK")
	}

	if err := configStore.Save(cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	cmd.Printf("Generation provider configured: %s (%s)\n", provider, cfg.Generator.Model)
	return nil
}

func resolveProvider(name string) (domain.AIProvider, error) {
	if name == "" {
		return "", fmt.Errorf("%w: --provider is required", domain.ErrInvalidConfig)
	}
	provider := domain.AIProvider(name)
	if !provider.IsValid() {
		return "", fmt.Errorf("%w: unsupported provider %q", domain.ErrInvalidConfig, name)
	}
	return provider, nil
}

func printProviderDetails(cmd *cobra.Command, provider domain.AIProvider, baseURL, apiKey string) {
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
