package ai

import (
	"github.com/tessera-labs/quaero-cli/internal/core/domain"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator validates AI provider configurations.
type ConfigValidator struct{}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateStrategy validates one embedding strategy's prerequisites,
// pinging the provider for strategies that need one.
func (v *ConfigValidator) ValidateStrategy(strategy domain.EmbeddingStrategy, config *domain.EmbeddingSettings) error {
	return ValidateStrategyConfig(strategy, config)
}

// ValidateLLM validates an LLM configuration by pinging the provider.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	return ValidateLLMConfig(config)
}
