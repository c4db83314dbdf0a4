// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	localembed "github.com/parchment-labs/passage-cli/internal/adapters/driven/embedding/local"
	ollamaembed "github.com/parchment-labs/passage-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/parchment-labs/passage-cli/internal/adapters/driven/embedding/openai"
	"github.com/parchment-labs/passage-cli/internal/adapters/driven/embedding/retry"
	mockresponder "github.com/parchment-labs/passage-cli/internal/adapters/driven/responder/mock"
	ollamaresponder "github.com/parchment-labs/passage-cli/internal/adapters/driven/responder/ollama"
	openairesponder "github.com/parchment-labs/passage-cli/internal/adapters/driven/responder/openai"
	boltindex "github.com/parchment-labs/passage-cli/internal/adapters/driven/vectorindex/bolt"
	memoryindex "github.com/parchment-labs/passage-cli/internal/adapters/driven/vectorindex/memory"
	pineconeindex "github.com/parchment-labs/passage-cli/internal/adapters/driven/vectorindex/pinecone"
	"github.com/parchment-labs/passage-cli/internal/core/domain"
	"github.com/parchment-labs/passage-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// defaultIndexFile is the bolt index location under the data directory.
const defaultIndexFile = "vectors.db"

// pinger is implemented by adapters that can check connectivity.
type pinger interface {
	Ping(ctx context.Context) error
}

// CreateAndValidateEmbeddingService creates an embedding service and validates
// connectivity. Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'passage config' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	if svc == nil {
		return nil, nil
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'passage config' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// CreateAndValidateResponder creates a responder and validates connectivity
// for backends that support a ping. Returns the responder if successful,
// or an error with guidance.
func CreateAndValidateResponder(settings *domain.ResponderSettings) (driven.Responder, error) {
	svc, err := CreateResponder(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'passage config' to fix",
			domain.ErrResponderUnavailable, err)
	}

	if svc == nil {
		return nil, nil
	}

	p, ok := svc.(pinger)
	if !ok {
		return svc, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		if closer, ok := svc.(io.Closer); ok {
			closer.Close()
		}
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'passage config' to fix",
			domain.ErrResponderUnavailable, err)
	}

	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a
// service and pinging it. This is intended for use by the config command to
// validate credentials on configuration.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

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

// ValidateResponderConfig validates a responder configuration by creating it
// and pinging it where the backend supports that. This is intended for use
// by the config command to validate credentials on configuration.
func ValidateResponderConfig(settings *domain.ResponderSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateResponder(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	if closer, ok := svc.(io.Closer); ok {
		defer closer.Close()
	}

	p, ok := svc.(pinger)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return p.Ping(ctx)
}

// CreateEmbeddingService creates the appropriate embedding service based on
// settings. Remote providers are wrapped with rate limiting and retries.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderLocal:
		return createLocalEmbedding(settings), nil

	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	case domain.AIProviderMock:
		// The mock provider only answers questions.
		return nil, fmt.Errorf("mock does not support embeddings, use local, ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateResponder creates the appropriate answer backend based on settings.
// Returns nil if the provider is not configured.
func CreateResponder(settings *domain.ResponderSettings) (driven.Responder, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderMock:
		return createMockResponder(settings), nil

	case domain.AIProviderOllama:
		return createOllamaResponder(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIResponder(settings)

	case domain.AIProviderLocal:
		// The local provider only embeds.
		return nil, fmt.Errorf("local does not support answer generation, use mock, ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported responder provider: %s", settings.Provider)
	}
}

// CreateVectorIndex creates the vector index selected by the settings.
// The dimensions must match the embedding service in use.
func CreateVectorIndex(settings *domain.IndexSettings, dimensions int) (driven.VectorIndex, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: index settings are required", domain.ErrInvalidConfig)
	}

	switch settings.Backend {
	case domain.IndexBackendMemory:
		return memoryindex.New(memoryindex.Config{
			Dimensions: dimensions,
		})

	case domain.IndexBackendBolt:
		path := settings.Path
		if path == "" {
			var err error
			path, err = defaultIndexPath()
			if err != nil {
				return nil, err
			}
		}
		return boltindex.Open(boltindex.Config{
			Path:       path,
			Dimensions: dimensions,
		})

	case domain.IndexBackendPinecone:
		return pineconeindex.New(pineconeindex.Config{
			APIKey:     settings.APIKey,
			Host:       settings.Host,
			Dimensions: dimensions,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported index backend: %s", domain.ErrInvalidConfig, settings.Backend)
	}
}

// createLocalEmbedding creates the built-in feature-hashing embedder.
func createLocalEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	return localembed.NewEmbeddingService(localembed.Config{
		Model:      settings.Model,
		Dimensions: settings.Dimensions,
	})
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := settings.Dimensions
	if dimensions == 0 {
		dimensions = domain.EmbeddingDimensions()[settings.Model]
	}
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	svc := ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
	return retry.Wrap(svc, retry.Config{})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: settings.Dimensions,
	})
	if err != nil {
		return nil, err
	}
	return retry.Wrap(svc, retry.Config{}), nil
}

// createMockResponder creates the built-in mock responder.
func createMockResponder(settings *domain.ResponderSettings) driven.Responder {
	return mockresponder.New(mockresponder.Config{
		RelevanceThreshold: settings.RelevanceThreshold,
	})
}

// createOllamaResponder creates an Ollama responder.
func createOllamaResponder(settings *domain.ResponderSettings) driven.Responder {
	return ollamaresponder.NewResponder(ollamaresponder.Config{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOpenAIResponder creates an OpenAI responder.
func createOpenAIResponder(settings *domain.ResponderSettings) (driven.Responder, error) {
	return openairesponder.NewResponder(openairesponder.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// defaultIndexPath returns the bolt index location under ~/.passage/data,
// creating the directory when missing.
func defaultIndexPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	dir := filepath.Join(home, ".passage", "data")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}

	return filepath.Join(dir, defaultIndexFile), nil
}
