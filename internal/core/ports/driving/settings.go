package driving

import "github.com/tessera-labs/quaero-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetSearchMode updates the default search mode.
	SetSearchMode(mode domain.SearchMode) error

	// SetSearchWeights updates the hybrid fusion weights.
	SetSearchWeights(vector, keyword float64) error

	// SetChunking updates the chunk size and overlap.
	SetChunking(chunkSize, overlap int) error

	// SetOpenAIKey stores the OpenAI API key used by the embedding
	// chain's first strategy.
	SetOpenAIKey(apiKey string) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks if current settings are internally consistent.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
