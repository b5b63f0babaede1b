package driven

import "github.com/tessera-labs/quaero-cli/internal/core/domain"

// AIConfigValidator validates AI provider configurations.
// Implementations verify that configurations are valid by testing connectivity
// to the underlying AI services.
type AIConfigValidator interface {
	// ValidateStrategy validates an embedding strategy's prerequisites,
	// pinging the provider for strategies that need one.
	// Returns nil if the strategy is usable with the given settings.
	ValidateStrategy(strategy domain.EmbeddingStrategy, config *domain.EmbeddingSettings) error

	// ValidateLLM validates an LLM configuration by pinging the provider.
	// Returns nil if configuration is valid or not configured.
	ValidateLLM(config *domain.LLMSettings) error
}
