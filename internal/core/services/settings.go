package services

import (
	"fmt"

	"github.com/parchment-labs/passage-cli/internal/core/domain"
	"github.com/parchment-labs/passage-cli/internal/core/ports/driven"
	"github.com/parchment-labs/passage-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keySearchMode         = "search.mode"
	keySearchTopK         = "search.top_k"
	keyChunkSize          = "chunking.chunk_size"
	keyChunkOverlap       = "chunking.overlap"
	keyEmbedProvider      = "embedding.provider"
	keyEmbedModel         = "embedding.model"
	keyEmbedBaseURL       = "embedding.base_url"
	keyEmbedAPIKey        = "embedding.api_key"
	keyEmbedDims          = "embedding.dimensions"
	keyResponderProvider  = "responder.provider"
	keyResponderModel     = "responder.model"
	keyResponderBaseURL   = "responder.base_url"
	keyResponderAPIKey    = "responder.api_key"
	keyResponderThreshold = "responder.relevance_threshold"
	keyIndexBackend       = "index.backend"
	keyIndexPath          = "index.path"
	keyIndexAPIKey        = "index.api_key"
	keyIndexHost          = "index.host"
)

// defaultOllamaURL is where a locally running Ollama server listens.
const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Chunking: domain.ChunkingSettings{
			ChunkSize: s.getInt(keyChunkSize, defaults.Chunking.ChunkSize),
			Overlap:   s.getIntAllowZero(keyChunkOverlap, defaults.Chunking.Overlap),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:      s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			Dimensions: s.getInt(keyEmbedDims, defaults.Embedding.Dimensions),
		},
		Responder: domain.ResponderSettings{
			Provider:           s.getProvider(keyResponderProvider, defaults.Responder.Provider),
			Model:              s.getString(keyResponderModel, defaults.Responder.Model),
			BaseURL:            s.configStore.GetString(keyResponderBaseURL), // No default - empty is valid for cloud providers
			APIKey:             s.configStore.GetString(keyResponderAPIKey),
			RelevanceThreshold: s.configStore.GetFloat(keyResponderThreshold),
		},
		Index: domain.IndexSettings{
			Backend: s.getIndexBackend(defaults.Index.Backend),
			Path:    s.configStore.GetString(keyIndexPath),
			APIKey:  s.configStore.GetString(keyIndexAPIKey),
			Host:    s.configStore.GetString(keyIndexHost),
		},
		Search: domain.SearchSettings{
			Mode: s.getQueryMode(defaults.Search.Mode),
			TopK: s.getInt(keySearchTopK, defaults.Search.TopK),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	// Save search settings
	if err := s.configStore.Set(keySearchMode, settings.Search.Mode.String()); err != nil {
		return fmt.Errorf("save search mode: %w", err)
	}
	if err := s.configStore.Set(keySearchTopK, settings.Search.TopK); err != nil {
		return fmt.Errorf("save search top_k: %w", err)
	}

	// Save chunking settings
	if err := s.configStore.Set(keyChunkSize, settings.Chunking.ChunkSize); err != nil {
		return fmt.Errorf("save chunk size: %w", err)
	}
	if err := s.configStore.Set(keyChunkOverlap, settings.Chunking.Overlap); err != nil {
		return fmt.Errorf("save chunk overlap: %w", err)
	}

	// Save embedding settings
	if err := s.configStore.Set(keyEmbedProvider, settings.Embedding.Provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, settings.Embedding.Model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, settings.Embedding.BaseURL); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if err := s.configStore.Set(keyEmbedDims, settings.Embedding.Dimensions); err != nil {
		return fmt.Errorf("save embedding dimensions: %w", err)
	}

	// Save responder settings
	if err := s.configStore.Set(keyResponderProvider, settings.Responder.Provider.String()); err != nil {
		return fmt.Errorf("save responder provider: %w", err)
	}
	if err := s.configStore.Set(keyResponderModel, settings.Responder.Model); err != nil {
		return fmt.Errorf("save responder model: %w", err)
	}
	if err := s.configStore.Set(keyResponderBaseURL, settings.Responder.BaseURL); err != nil {
		return fmt.Errorf("save responder base_url: %w", err)
	}
	if settings.Responder.APIKey != "" {
		if err := s.configStore.Set(keyResponderAPIKey, settings.Responder.APIKey); err != nil {
			return fmt.Errorf("save responder api_key: %w", err)
		}
	}
	if settings.Responder.RelevanceThreshold > 0 {
		if err := s.configStore.Set(keyResponderThreshold, settings.Responder.RelevanceThreshold); err != nil {
			return fmt.Errorf("save responder relevance_threshold: %w", err)
		}
	}

	// Save index settings
	if err := s.configStore.Set(keyIndexBackend, settings.Index.Backend.String()); err != nil {
		return fmt.Errorf("save index backend: %w", err)
	}
	if err := s.configStore.Set(keyIndexPath, settings.Index.Path); err != nil {
		return fmt.Errorf("save index path: %w", err)
	}
	if settings.Index.APIKey != "" {
		if err := s.configStore.Set(keyIndexAPIKey, settings.Index.APIKey); err != nil {
			return fmt.Errorf("save index api_key: %w", err)
		}
	}
	if err := s.configStore.Set(keyIndexHost, settings.Index.Host); err != nil {
		return fmt.Errorf("save index host: %w", err)
	}

	return nil
}

// SetQueryMode updates the default query mode.
func (s *SettingsService) SetQueryMode(mode domain.QueryMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("%w: invalid query mode: %s", domain.ErrInvalidConfig, mode)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Search.Mode = mode

	return s.Save(settings)
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidConfig, provider)
	}

	// Validate provider supports embeddings
	valid := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidConfig, provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidConfig, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else {
		defaults := domain.DefaultEmbeddingModels()
		if defaultModel, ok := defaults[provider]; ok {
			settings.Embedding.Model = defaultModel
		}
	}

	// Ollama needs a server URL; the built-in and cloud providers don't
	switch provider {
	case domain.AIProviderOllama:
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = defaultOllamaURL
		}
	default:
		settings.Embedding.BaseURL = ""
	}

	// Set API key
	settings.Embedding.APIKey = apiKey

	// Update vector dimensions based on model
	dims := domain.EmbeddingDimensions()
	if d, ok := dims[settings.Embedding.Model]; ok {
		settings.Embedding.Dimensions = d
	}

	return s.Save(settings)
}

// SetResponderProvider configures the answer backend.
func (s *SettingsService) SetResponderProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid responder provider: %s", domain.ErrInvalidConfig, provider)
	}

	// Validate provider supports answer generation
	valid := false
	for _, p := range domain.AllResponderProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: provider %s does not support answer generation", domain.ErrInvalidConfig, provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidConfig, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Responder.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Responder.Model = model
	} else {
		defaults := domain.DefaultResponderModels()
		if defaultModel, ok := defaults[provider]; ok {
			settings.Responder.Model = defaultModel
		}
	}

	// Ollama needs a server URL; the mock and cloud providers don't
	switch provider {
	case domain.AIProviderOllama:
		if settings.Responder.BaseURL == "" {
			settings.Responder.BaseURL = defaultOllamaURL
		}
	default:
		settings.Responder.BaseURL = ""
	}

	// Set API key
	settings.Responder.APIKey = apiKey

	return s.Save(settings)
}

// SetIndexBackend selects the vector index implementation.
func (s *SettingsService) SetIndexBackend(backend domain.IndexBackend) error {
	if !backend.IsValid() {
		return fmt.Errorf("%w: invalid index backend: %s", domain.ErrInvalidConfig, backend)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	if backend == domain.IndexBackendPinecone && (settings.Index.APIKey == "" || settings.Index.Host == "") {
		return fmt.Errorf("%w: pinecone backend needs index.api_key and index.host", domain.ErrInvalidConfig)
	}

	settings.Index.Backend = backend

	return s.Save(settings)
}

// SetChunking updates the chunker parameters after validating them.
func (s *SettingsService) SetChunking(chunkSize, overlap int) error {
	chunking := domain.ChunkingSettings{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
	if err := chunking.Validate(); err != nil {
		return fmt.Errorf("%w: chunk size %d with overlap %d", domain.ErrInvalidConfig, chunkSize, overlap)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Chunking = chunking

	return s.Save(settings)
}

// Validate checks if current settings are coherent for the configured mode.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	// Validate query mode
	if !settings.Search.Mode.IsValid() {
		return fmt.Errorf("%w: invalid query mode: %s", domain.ErrInvalidConfig, settings.Search.Mode)
	}

	if settings.Search.TopK <= 0 {
		return fmt.Errorf("%w: search top_k must be positive", domain.ErrInvalidConfig)
	}

	if err := settings.Chunking.Validate(); err != nil {
		return fmt.Errorf("%w: chunking parameters", domain.ErrInvalidConfig)
	}

	if !settings.Index.Backend.IsValid() {
		return fmt.Errorf("%w: invalid index backend: %s", domain.ErrInvalidConfig, settings.Index.Backend)
	}

	// Check embedding configuration if required
	if settings.Search.Mode.RequiresEmbedding() {
		if !settings.Embedding.IsConfigured() {
			return fmt.Errorf(
				"%w: query mode %q requires embedding provider to be configured",
				domain.ErrInvalidConfig, settings.Search.Mode,
			)
		}
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateResponderConfig validates the current responder configuration by pinging the provider.
func (s *SettingsService) ValidateResponderConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateResponder(&settings.Responder)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getIntAllowZero treats an explicitly stored zero as a value, not an
// absence. Needed for the chunk overlap, where zero is legitimate.
func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getQueryMode(defaultVal domain.QueryMode) domain.QueryMode {
	val := s.configStore.GetString(keySearchMode)
	if val == "" {
		return defaultVal
	}
	mode := domain.QueryMode(val)
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getIndexBackend(defaultVal domain.IndexBackend) domain.IndexBackend {
	val := s.configStore.GetString(keyIndexBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.IndexBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
