package ai

import (
	"github.com/parchment-labs/passage-cli/internal/core/domain"
	"github.com/parchment-labs/passage-cli/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator validates AI provider configurations.
type ConfigValidator struct{}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding validates an embedding configuration by pinging the provider.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	return ValidateEmbeddingConfig(config)
}

// ValidateResponder validates a responder configuration by pinging the provider.
func (v *ConfigValidator) ValidateResponder(config *domain.ResponderSettings) error {
	return ValidateResponderConfig(config)
}
