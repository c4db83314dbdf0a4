package driven

import "github.com/parchment-labs/passage-cli/internal/core/domain"

// AIConfigValidator validates AI provider configurations.
// Implementations verify that configurations are valid by testing connectivity
// to the underlying services.
type AIConfigValidator interface {
	// ValidateEmbedding validates an embedding configuration by pinging the provider.
	// Returns nil if configuration is valid or not configured.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateResponder validates a responder configuration by pinging the provider.
	// Returns nil if configuration is valid or not configured.
	ValidateResponder(config *domain.ResponderSettings) error
}
