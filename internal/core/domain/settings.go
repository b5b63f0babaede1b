package domain

const unknownDescription = "Unknown"

// EmbeddingStrategy identifies one strategy in the embedding fallback
// chain. Strategies are quality-ordered; resolution walks them once at
// startup and the winner is recorded in the index manifest.
type EmbeddingStrategy string

// The fallback chain, best first.
const (
	// StrategyOpenAI is the external high-quality service, dimension 1536.
	StrategyOpenAI EmbeddingStrategy = "openai"

	// StrategyOllama is the local neural inference server, dimension 384.
	StrategyOllama EmbeddingStrategy = "ollama"

	// StrategyLexical is token-frequency vectors fitted on the first
	// document batch, dimension configurable (default 1000).
	StrategyLexical EmbeddingStrategy = "lexical"

	// StrategyHashing is the deterministic hash embedding, dimension 384.
	// It is a pure function of the text and never fails; the guaranteed
	// terminal fallback.
	StrategyHashing EmbeddingStrategy = "hashing"
)

// IsValid returns true if the strategy is recognised.
func (s EmbeddingStrategy) IsValid() bool {
	switch s {
	case StrategyOpenAI, StrategyOllama, StrategyLexical, StrategyHashing:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s EmbeddingStrategy) String() string {
	return string(s)
}

// Description returns a human-readable description of the strategy.
func (s EmbeddingStrategy) Description() string {
	switch s {
	case StrategyOpenAI:
		return "OpenAI (remote, 1536 dimensions)"
	case StrategyOllama:
		return "Ollama (local neural, 384 dimensions)"
	case StrategyLexical:
		return "Lexical (token frequency, fitted vocabulary)"
	case StrategyHashing:
		return "Hashing (deterministic, always available)"
	default:
		return unknownDescription
	}
}

// FallbackChain returns the embedding strategies in resolution order.
func FallbackChain() []EmbeddingStrategy {
	return []EmbeddingStrategy{
		StrategyOpenAI,
		StrategyOllama,
		StrategyLexical,
		StrategyHashing,
	}
}

// AIProvider identifies an LLM service provider for answer generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// AllLLMProviders returns providers that support answer generation.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// SearchSettings holds retrieval behaviour configuration.
type SearchSettings struct {
	// Mode is the default search mode.
	Mode SearchMode

	// TopK is the default number of results per query.
	TopK int

	// VectorWeight scales vector relevance in hybrid fusion.
	VectorWeight float64

	// KeywordWeight scales keyword scores in hybrid fusion.
	KeywordWeight float64
}

// EmbeddingSettings configures the strategies of the fallback chain.
// Nothing here selects a strategy directly: resolution is automatic,
// best-available-first. Settings only supply endpoints and credentials.
type EmbeddingSettings struct {
	// OpenAIModel is the remote embedding model (default text-embedding-3-small).
	OpenAIModel string

	// OpenAIBaseURL overrides the remote API endpoint (empty = api.openai.com).
	OpenAIBaseURL string

	// OpenAIAPIKey is the remote service credential. Without it strategy 1
	// is skipped.
	OpenAIAPIKey string

	// OllamaModel is the local neural model (default all-minilm).
	OllamaModel string

	// OllamaBaseURL is the local inference endpoint (default http://localhost:11434).
	OllamaBaseURL string

	// LexicalDimensions is the token-frequency vector size (default 1000).
	LexicalDimensions int
}

// LLMSettings holds answer-generation provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider. Empty means no LLM: answers
	// fall back to the excerpt template.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// MaxTokens bounds the generated answer length.
	MaxTokens int

	// Temperature controls generation randomness.
	Temperature float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChunkingSettings holds the chunker parameters.
type ChunkingSettings struct {
	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int

	// Overlap is the carried-forward overlap between adjacent chunks.
	Overlap int
}

// IngestSettings holds ingestion limits.
type IngestSettings struct {
	// MaxFileSizeMB rejects larger files at validation time.
	MaxFileSizeMB float64

	// SupportedTypes lists accepted file extensions (with leading dot).
	SupportedTypes []string

	// Workers bounds the embedding worker pool.
	Workers int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Search holds retrieval behaviour settings.
	Search SearchSettings

	// Embedding holds fallback-chain endpoints and credentials.
	Embedding EmbeddingSettings

	// LLM holds answer-generation provider settings.
	LLM LLMSettings

	// Chunking holds chunker parameters.
	Chunking ChunkingSettings

	// Ingest holds ingestion limits.
	Ingest IngestSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The LLM is left unconfigured by default; answers degrade to the
// excerpt template until a provider is set via the settings wizard.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Search: SearchSettings{
			Mode:          SearchModeHybrid,
			TopK:          DefaultSearchLimit,
			VectorWeight:  DefaultVectorWeight,
			KeywordWeight: DefaultKeywordWeight,
		},
		Embedding: EmbeddingSettings{
			OpenAIModel:       "text-embedding-3-small",
			OllamaModel:       "all-minilm",
			OllamaBaseURL:     "http://localhost:11434",
			LexicalDimensions: 1000,
		},
		LLM: LLMSettings{
			MaxTokens:   500,
			Temperature: 0.7,
		},
		Chunking: ChunkingSettings{
			ChunkSize: 1000,
			Overlap:   200,
		},
		Ingest: IngestSettings{
			MaxFileSizeMB:  50,
			SupportedTypes: []string{".txt", ".md", ".markdown", ".text"},
			Workers:        4,
		},
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-haiku-latest",
	}
}

// StrategyDimensions returns the fixed vector dimension per strategy.
// The lexical dimension is the default; it is configurable via
// EmbeddingSettings.LexicalDimensions.
func StrategyDimensions() map[EmbeddingStrategy]int {
	return map[EmbeddingStrategy]int{
		StrategyOpenAI:  1536,
		StrategyOllama:  384,
		StrategyLexical: 1000,
		StrategyHashing: 384,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config for extensibility - new processors can be
// added without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the default pipeline configuration:
// chunking followed by rule-based classification.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker", "classifier"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": 1000,
				"overlap":    200,
			},
		},
	}
}
