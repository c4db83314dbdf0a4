package domain

const unknownDescription = "Unknown"

// QueryMode defines how a query retrieves candidate chunks.
type QueryMode string

// Available query modes.
const (
	// QueryModeVector uses embedding similarity only.
	QueryModeVector QueryMode = "vector"

	// QueryModeKeyword uses full-text term matching only.
	QueryModeKeyword QueryMode = "keyword"

	// QueryModeHybrid fuses vector and keyword rankings.
	QueryModeHybrid QueryMode = "hybrid"
)

// IsValid returns true if the query mode is recognised.
func (m QueryMode) IsValid() bool {
	switch m {
	case QueryModeVector, QueryModeKeyword, QueryModeHybrid:
		return true
	default:
		return false
	}
}

// RequiresEmbedding returns true if this mode needs an embedding provider.
func (m QueryMode) RequiresEmbedding() bool {
	return m == QueryModeVector || m == QueryModeHybrid
}

// RequiresKeywordEngine returns true if this mode needs the keyword engine.
func (m QueryMode) RequiresKeywordEngine() bool {
	return m == QueryModeKeyword || m == QueryModeHybrid
}

// String returns the string representation.
func (m QueryMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m QueryMode) Description() string {
	switch m {
	case QueryModeVector:
		return "Vector (embedding similarity)"
	case QueryModeKeyword:
		return "Keyword (full-text)"
	case QueryModeHybrid:
		return "Hybrid (vector + keyword fusion)"
	default:
		return unknownDescription
	}
}

// AllQueryModes returns all available query modes.
func AllQueryModes() []QueryMode {
	return []QueryMode{
		QueryModeVector,
		QueryModeKeyword,
		QueryModeHybrid,
	}
}

// AIProvider identifies an embedding or responder backend.
type AIProvider string

// Available AI providers.
const (
	// AIProviderLocal is the built-in deterministic embedder. It needs no
	// running service and exists so the tool works offline out of the box.
	AIProviderLocal AIProvider = "local"

	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderMock is the canned-answer responder used for development.
	AIProviderMock AIProvider = "mock"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderLocal, AIProviderOllama, AIProviderOpenAI, AIProviderMock:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs without network access.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderLocal || p == AIProviderMock
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderLocal:
		return "Local (built-in, deterministic)"
	case AIProviderOllama:
		return "Ollama (local server)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderMock:
		return "Mock (canned answers)"
	default:
		return unknownDescription
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderLocal,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllResponderProviders returns providers that support answer generation.
func AllResponderProviders() []AIProvider {
	return []AIProvider{
		AIProviderMock,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// IndexBackend identifies a vector index implementation.
type IndexBackend string

// Available vector index backends.
const (
	// IndexBackendMemory holds vectors in process memory only.
	IndexBackendMemory IndexBackend = "memory"

	// IndexBackendBolt persists vectors in a local bbolt file.
	IndexBackendBolt IndexBackend = "bolt"

	// IndexBackendPinecone delegates to a Pinecone deployment.
	IndexBackendPinecone IndexBackend = "pinecone"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendMemory, IndexBackendBolt, IndexBackendPinecone:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b IndexBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b IndexBackend) Description() string {
	switch b {
	case IndexBackendMemory:
		return "Memory (volatile, fastest)"
	case IndexBackendBolt:
		return "Bolt (local file persistence)"
	case IndexBackendPinecone:
		return "Pinecone (managed cloud index)"
	default:
		return unknownDescription
	}
}

// AllIndexBackends returns all available vector index backends.
func AllIndexBackends() []IndexBackend {
	return []IndexBackend{
		IndexBackendMemory,
		IndexBackendBolt,
		IndexBackendPinecone,
	}
}

// ChunkingSettings holds the sliding-window chunker configuration.
type ChunkingSettings struct {
	// ChunkSize is the window width in runes. Must be positive.
	ChunkSize int

	// Overlap is how many runes consecutive chunks share.
	// Must be non-negative and strictly less than ChunkSize.
	Overlap int
}

// Validate reports whether the chunking parameters satisfy the
// chunker's contract.
func (c ChunkingSettings) Validate() error {
	if c.ChunkSize <= 0 {
		return ErrInvalidConfig
	}
	if c.Overlap < 0 || c.Overlap >= c.ChunkSize {
		return ErrInvalidConfig
	}
	return nil
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding backend.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama and OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's default vector size when non-zero.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// ResponderSettings holds answer backend configuration.
type ResponderSettings struct {
	// Provider is the responder backend.
	Provider AIProvider

	// Model is the chat model name (ignored by the mock responder).
	Model string

	// BaseURL is the API endpoint (for Ollama and OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// RelevanceThreshold is the minimum top-hit score the mock responder
	// needs before it grounds an answer. Zero means use its default.
	RelevanceThreshold float64
}

// IsConfigured returns true if the responder is set up.
func (r ResponderSettings) IsConfigured() bool {
	if !r.Provider.IsValid() {
		return false
	}
	if r.Provider.RequiresAPIKey() && r.APIKey == "" {
		return false
	}
	return true
}

// IndexSettings holds vector index configuration.
type IndexSettings struct {
	// Backend is the vector index implementation.
	Backend IndexBackend

	// Path is the index file location (bolt backend).
	Path string

	// APIKey authenticates against the managed index (pinecone backend).
	APIKey string

	// Host is the index endpoint URL (pinecone backend).
	Host string
}

// SearchSettings holds retrieval behaviour configuration.
type SearchSettings struct {
	// Mode is the default query mode.
	Mode QueryMode

	// TopK is the default result count.
	TopK int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Chunking holds chunker parameters.
	Chunking ChunkingSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Responder holds answer backend settings.
	Responder ResponderSettings

	// Index holds vector index settings.
	Index IndexSettings

	// Search holds retrieval behaviour settings.
	Search SearchSettings
}

// DefaultAppSettings returns settings that work with no external services:
// the local embedder, the in-memory index, and the mock responder.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Chunking: ChunkingSettings{
			ChunkSize: 1000,
			Overlap:   200,
		},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderLocal,
			Model:      "feature-hash-v1",
			Dimensions: 384,
		},
		Responder: ResponderSettings{
			Provider: AIProviderMock,
		},
		Index: IndexSettings{
			Backend: IndexBackendMemory,
		},
		Search: SearchSettings{
			Mode: QueryModeVector,
			TopK: 5,
		},
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:  "feature-hash-v1",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultResponderModels returns default models for each responder provider.
func DefaultResponderModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "llama3.2",
		AIProviderOpenAI: "gpt-4o-mini",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Built-in
		"feature-hash-v1": 384,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
