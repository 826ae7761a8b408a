// Package file provides the TOML configuration store.
// Configuration lives at <configDir>/config.toml, default ~/.askdocs.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
)

// ConfigFileName is the file the store reads and writes.
const ConfigFileName = "config.toml"

// Config is the full application configuration.
type Config struct {
	Chunking  ChunkingConfig  `toml:"chunking"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Generator GeneratorConfig `toml:"generator"`
}

// ChunkingConfig controls how documents are split before embedding.
type ChunkingConfig struct {
	// ChunkSize is the target chunk size in runes.
	ChunkSize int `toml:"chunk_size"`

	// ChunkOverlap is the number of trailing runes carried into the
	// next chunk.
	ChunkOverlap int `toml:"chunk_overlap"`
}

// RetrievalConfig controls similarity search behaviour.
type RetrievalConfig struct {
	// TopK is the maximum number of results returned.
	TopK int `toml:"top_k"`

	// Threshold is the minimum cosine similarity for a hit.
	Threshold float64 `toml:"threshold"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider   string `toml:"provider"`
	Model      string `toml:"model"`
	BaseURL    string `toml:"base_url"`
	APIKey     string `toml:"api_key"`
	Dimensions int    `toml:"dimensions"`
}

// GeneratorConfig selects and configures the answer-generation provider.
type GeneratorConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	BaseURL  string `toml:"base_url"`
	APIKey   string `toml:"api_key"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Chunking: ChunkingConfig{
			ChunkSize:    500,
			ChunkOverlap: 50,
		},
		Retrieval: RetrievalConfig{
			TopK:      domain.DefaultTopK,
			Threshold: domain.DefaultThreshold,
		},
		Embedding: EmbeddingConfig{
			Provider:   domain.AIProviderOllama.String(),
			Model:      domain.DefaultEmbeddingModels()[domain.AIProviderOllama],
			Dimensions: 384,
		},
		Generator: GeneratorConfig{
			Provider: domain.AIProviderOllama.String(),
			Model:    domain.DefaultGeneratorModels()[domain.AIProviderOllama],
		},
	}
}

// Store loads and persists the configuration file.
type Store struct {
	path string
}

// NewStore creates a config store rooted at configDir. If configDir is
// empty, defaults to ~/.askdocs. The directory is created if missing.
func NewStore(configDir string) (*Store, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".askdocs")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &Store{path: filepath.Join(configDir, ConfigFileName)}, nil
}

// Path returns the location of the config file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the configuration, layering file values over defaults.
// A missing file yields the defaults without error.
func (s *Store) Load() (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("%w: read config: %v", domain.ErrInvalidConfig, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parse %s: %v", domain.ErrInvalidConfig, s.path, err)
	}

	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save persists the configuration. Config files may hold API keys, so
// the file is not group or world readable.
func (s *Store) Save(cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(s.path, data, 0600)
}

func validate(cfg Config) error {
	if cfg.Chunking.ChunkSize < 1 {
		return fmt.Errorf("%w: chunk_size must be at least 1", domain.ErrInvalidConfig)
	}
	if cfg.Chunking.ChunkOverlap < 0 || cfg.Chunking.ChunkOverlap >= cfg.Chunking.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap must be in [0, chunk_size)", domain.ErrInvalidConfig)
	}
	if cfg.Retrieval.TopK < 1 {
		return fmt.Errorf("%w: top_k must be at least 1", domain.ErrInvalidConfig)
	}
	if cfg.Retrieval.Threshold < 0 || cfg.Retrieval.Threshold > 1 {
		return fmt.Errorf("%w: threshold must be in [0, 1]", domain.ErrInvalidConfig)
	}
	return nil
}

// EmbeddingSettings maps the config to domain settings, falling back to
// the OPENAI_API_KEY environment variable for the API key.
func (c Config) EmbeddingSettings() domain.EmbeddingSettings {
	apiKey := c.Embedding.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	return domain.EmbeddingSettings{
		Provider:   domain.AIProvider(c.Embedding.Provider),
		Model:      c.Embedding.Model,
		BaseURL:    c.Embedding.BaseURL,
		APIKey:     apiKey,
		Dimensions: c.Embedding.Dimensions,
	}
}

// GeneratorSettings maps the config to domain settings, falling back to
// the OPENAI_API_KEY environment variable for the API key.
func (c Config) GeneratorSettings() domain.GeneratorSettings {
	apiKey := c.Generator.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	return domain.GeneratorSettings{
		Provider: domain.AIProvider(c.Generator.Provider),
		Model:    c.Generator.Model,
		BaseURL:  c.Generator.BaseURL,
		APIKey:   apiKey,
	}
}
