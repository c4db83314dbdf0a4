package driving

import "github.com/parchment-labs/passage-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetQueryMode updates the default query mode.
	SetQueryMode(mode domain.QueryMode) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetResponderProvider configures the answer backend.
	SetResponderProvider(provider domain.AIProvider, model, apiKey string) error

	// SetIndexBackend selects the vector index implementation.
	SetIndexBackend(backend domain.IndexBackend) error

	// SetChunking updates the chunker parameters after validating them.
	SetChunking(chunkSize, overlap int) error

	// Validate checks if current settings are coherent for the configured mode.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration
	// by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateResponderConfig validates the current responder configuration
	// by pinging the provider.
	ValidateResponderConfig() error
}
