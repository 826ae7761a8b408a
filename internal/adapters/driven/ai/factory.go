// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/askdocs-cli/internal/adapters/driven/embedding"
	ollamaembed "github.com/custodia-labs/askdocs-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/askdocs-cli/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/askdocs-cli/internal/adapters/driven/generator"
	ollamagen "github.com/custodia-labs/askdocs-cli/internal/adapters/driven/generator/ollama"
	openaigen "github.com/custodia-labs/askdocs-cli/internal/adapters/driven/generator/openai"
	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Cloud providers get a conservative client-side rate limit.
const (
	cloudRequestsPerSecond = 5
	cloudBurst             = 32
)

// CreateEmbeddingService creates the configured embedding service wrapped
// with lazy readiness checks and unit normalisation. Cloud providers are
// additionally rate limited. Returns nil if the provider is not configured.
func CreateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}

	var (
		svc driven.EmbeddingService
		err error
	)

	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = createOllamaEmbedding(settings)

	case domain.AIProviderOpenAI:
		svc, err = createOpenAIEmbedding(settings)
		if err != nil {
			return nil, err
		}
		svc = embedding.NewRateLimited(svc, cloudRequestsPerSecond, cloudBurst)

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %s",
			domain.ErrInvalidConfig, settings.Provider)
	}

	return embedding.NewLazy(embedding.NewNormalised(svc)), nil
}

// CreateGenerator creates the configured answer generator wrapped with
// bounded retry. Returns nil if the provider is not configured.
func CreateGenerator(settings domain.GeneratorSettings) (driven.Generator, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}

	var gen driven.Generator

	switch settings.Provider {
	case domain.AIProviderOllama:
		gen = ollamagen.NewGenerator(ollamagen.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderOpenAI:
		g, err := openaigen.NewGenerator(openaigen.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		gen = g

	default:
		return nil, fmt.Errorf("%w: unsupported generator provider: %s",
			domain.ErrInvalidConfig, settings.Provider)
	}

	return generator.NewRetrying(gen, generator.DefaultAttempts, generator.DefaultBackoff), nil
}

// ValidateEmbeddingConfig validates an embedding configuration by
// creating a service and pinging it.
func ValidateEmbeddingConfig(settings domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateGeneratorConfig validates a generator configuration by
// creating a service and pinging it.
func ValidateGeneratorConfig(settings domain.GeneratorSettings) error {
	gen, err := CreateGenerator(settings)
	if err != nil {
		return err
	}
	if gen == nil {
		return nil
	}
	defer gen.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := gen.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrGeneratorUnavailable, err)
	}
	return nil
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := settings.Dimensions
	if dimensions == 0 {
		dimensions = domain.EmbeddingDimensions()[settings.Model]
	}
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: settings.Dimensions,
	})
}
