package services

import (
	"fmt"
	"time"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driven"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keySearchMode    = "search.mode"
	keySearchTopK    = "search.top_k"
	keyVectorWeight  = "search.vector_weight"
	keyKeywordWeight = "search.keyword_weight"

	keyOpenAIModel   = "embedding.openai_model"
	keyOpenAIBaseURL = "embedding.openai_base_url"
	keyOpenAIAPIKey  = "embedding.openai_api_key"
	keyOllamaModel   = "embedding.ollama_model"
	keyOllamaBaseURL = "embedding.ollama_base_url"
	keyLexicalDims   = "embedding.lexical_dimensions"

	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keyLLMMaxTokens   = "llm.max_tokens"
	keyLLMTemperature = "llm.temperature"

	keyChunkSize    = "chunking.size"
	keyChunkOverlap = "chunking.overlap"

	keyIngestMaxFileSize = "ingest.max_file_size_mb"
	keyIngestExtensions  = "ingest.extensions"
	keyIngestWorkers     = "ingest.workers"
)

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
		Search: domain.SearchSettings{
			Mode:          s.getSearchMode(defaults.Search.Mode),
			TopK:          s.getInt(keySearchTopK, defaults.Search.TopK),
			VectorWeight:  s.getFloat64(keyVectorWeight, defaults.Search.VectorWeight),
			KeywordWeight: s.getFloat64(keyKeywordWeight, defaults.Search.KeywordWeight),
		},
		Embedding: domain.EmbeddingSettings{
			OpenAIModel:       s.getString(keyOpenAIModel, defaults.Embedding.OpenAIModel),
			OpenAIBaseURL:     s.configStore.GetString(keyOpenAIBaseURL), // No default - empty means api.openai.com
			OpenAIAPIKey:      s.configStore.GetString(keyOpenAIAPIKey),
			OllamaModel:       s.getString(keyOllamaModel, defaults.Embedding.OllamaModel),
			OllamaBaseURL:     s.getString(keyOllamaBaseURL, defaults.Embedding.OllamaBaseURL),
			LexicalDimensions: s.getInt(keyLexicalDims, defaults.Embedding.LexicalDimensions),
		},
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:       s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:     s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:      s.configStore.GetString(keyLLMAPIKey),
			MaxTokens:   s.getInt(keyLLMMaxTokens, defaults.LLM.MaxTokens),
			Temperature: s.getFloat64(keyLLMTemperature, defaults.LLM.Temperature),
		},
		Chunking: domain.ChunkingSettings{
			ChunkSize: s.getInt(keyChunkSize, defaults.Chunking.ChunkSize),
			// Overlap 0 is a legitimate setting, so it needs the
			// exists-check rather than the zero-means-unset getter.
			Overlap: s.getIntAllowZero(keyChunkOverlap, defaults.Chunking.Overlap),
		},
		Ingest: domain.IngestSettings{
			MaxFileSizeMB:  s.getFloat64(keyIngestMaxFileSize, defaults.Ingest.MaxFileSizeMB),
			SupportedTypes: s.getStringSlice(keyIngestExtensions, defaults.Ingest.SupportedTypes),
			Workers:        s.getInt(keyIngestWorkers, defaults.Ingest.Workers),
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
	if err := s.configStore.Set(keyVectorWeight, settings.Search.VectorWeight); err != nil {
		return fmt.Errorf("save vector weight: %w", err)
	}
	if err := s.configStore.Set(keyKeywordWeight, settings.Search.KeywordWeight); err != nil {
		return fmt.Errorf("save keyword weight: %w", err)
	}

	// Save embedding settings
	if err := s.configStore.Set(keyOpenAIModel, settings.Embedding.OpenAIModel); err != nil {
		return fmt.Errorf("save openai model: %w", err)
	}
	if err := s.configStore.Set(keyOpenAIBaseURL, settings.Embedding.OpenAIBaseURL); err != nil {
		return fmt.Errorf("save openai base_url: %w", err)
	}
	if settings.Embedding.OpenAIAPIKey != "" {
		if err := s.configStore.Set(keyOpenAIAPIKey, settings.Embedding.OpenAIAPIKey); err != nil {
			return fmt.Errorf("save openai api_key: %w", err)
		}
	}
	if err := s.configStore.Set(keyOllamaModel, settings.Embedding.OllamaModel); err != nil {
		return fmt.Errorf("save ollama model: %w", err)
	}
	if err := s.configStore.Set(keyOllamaBaseURL, settings.Embedding.OllamaBaseURL); err != nil {
		return fmt.Errorf("save ollama base_url: %w", err)
	}
	if err := s.configStore.Set(keyLexicalDims, settings.Embedding.LexicalDimensions); err != nil {
		return fmt.Errorf("save lexical dimensions: %w", err)
	}

	// Save LLM settings
	if err := s.configStore.Set(keyLLMProvider, settings.LLM.Provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, settings.LLM.Model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if err := s.configStore.Set(keyLLMBaseURL, settings.LLM.BaseURL); err != nil {
		return fmt.Errorf("save llm base_url: %w", err)
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}
	if err := s.configStore.Set(keyLLMMaxTokens, settings.LLM.MaxTokens); err != nil {
		return fmt.Errorf("save llm max_tokens: %w", err)
	}
	if err := s.configStore.Set(keyLLMTemperature, settings.LLM.Temperature); err != nil {
		return fmt.Errorf("save llm temperature: %w", err)
	}

	// Save chunking settings
	if err := s.configStore.Set(keyChunkSize, settings.Chunking.ChunkSize); err != nil {
		return fmt.Errorf("save chunk size: %w", err)
	}
	if err := s.configStore.Set(keyChunkOverlap, settings.Chunking.Overlap); err != nil {
		return fmt.Errorf("save chunk overlap: %w", err)
	}

	// Save ingest settings
	if err := s.configStore.Set(keyIngestMaxFileSize, settings.Ingest.MaxFileSizeMB); err != nil {
		return fmt.Errorf("save max file size: %w", err)
	}
	if err := s.configStore.Set(keyIngestExtensions, settings.Ingest.SupportedTypes); err != nil {
		return fmt.Errorf("save extensions: %w", err)
	}
	if err := s.configStore.Set(keyIngestWorkers, settings.Ingest.Workers); err != nil {
		return fmt.Errorf("save workers: %w", err)
	}

	return nil
}

// SetSearchMode updates the default search mode.
func (s *SettingsService) SetSearchMode(mode domain.SearchMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("invalid search mode: %s", mode)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Search.Mode = mode

	return s.Save(settings)
}

// SetSearchWeights updates the hybrid fusion weights.
func (s *SettingsService) SetSearchWeights(vector, keyword float64) error {
	if vector < 0 || keyword < 0 {
		return fmt.Errorf("search weights must be non-negative")
	}
	if vector == 0 && keyword == 0 {
		return fmt.Errorf("at least one search weight must be positive")
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Search.VectorWeight = vector
	settings.Search.KeywordWeight = keyword

	return s.Save(settings)
}

// SetChunking updates the chunk size and overlap.
func (s *SettingsService) SetChunking(chunkSize, overlap int) error {
	if chunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive")
	}
	if overlap < 0 {
		return fmt.Errorf("overlap must be non-negative")
	}
	if overlap >= chunkSize {
		return fmt.Errorf("overlap (%d) must be smaller than chunk size (%d)", overlap, chunkSize)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Chunking.ChunkSize = chunkSize
	settings.Chunking.Overlap = overlap

	return s.Save(settings)
}

// SetOpenAIKey stores the OpenAI API key used by the embedding chain's
// first strategy. An empty key clears it, demoting the chain to the
// local strategies on next startup.
func (s *SettingsService) SetOpenAIKey(apiKey string) error {
	return s.configStore.Set(keyOpenAIAPIKey, apiKey)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else {
		defaults := domain.DefaultLLMModels()
		if defaultModel, ok := defaults[provider]; ok {
			settings.LLM.Model = defaultModel
		}
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		// Local providers need a base URL
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = "http://localhost:11434"
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.LLM.BaseURL = ""
	}

	// Set API key
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks if current settings are internally consistent.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Search.Mode.IsValid() {
		return fmt.Errorf("invalid search mode: %s", settings.Search.Mode)
	}
	if settings.Search.TopK <= 0 {
		return fmt.Errorf("search top_k must be positive, got %d", settings.Search.TopK)
	}
	if settings.Search.VectorWeight < 0 || settings.Search.KeywordWeight < 0 {
		return fmt.Errorf("search weights must be non-negative")
	}
	if settings.Search.VectorWeight == 0 && settings.Search.KeywordWeight == 0 {
		return fmt.Errorf("at least one search weight must be positive")
	}

	if settings.Chunking.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", settings.Chunking.ChunkSize)
	}
	if settings.Chunking.Overlap < 0 || settings.Chunking.Overlap >= settings.Chunking.ChunkSize {
		return fmt.Errorf(
			"overlap (%d) must be non-negative and smaller than chunk size (%d)",
			settings.Chunking.Overlap, settings.Chunking.ChunkSize,
		)
	}

	if settings.Embedding.LexicalDimensions <= 0 {
		return fmt.Errorf("lexical dimensions must be positive, got %d", settings.Embedding.LexicalDimensions)
	}

	if settings.Ingest.MaxFileSizeMB <= 0 {
		return fmt.Errorf("max file size must be positive, got %v", settings.Ingest.MaxFileSizeMB)
	}
	if settings.Ingest.Workers <= 0 {
		return fmt.Errorf("ingest workers must be positive, got %d", settings.Ingest.Workers)
	}

	// An unset LLM provider is fine: answers degrade to the excerpt
	// template. A set provider must be complete.
	if settings.LLM.Provider != "" {
		if !settings.LLM.Provider.IsValid() {
			return fmt.Errorf("invalid LLM provider: %s", settings.LLM.Provider)
		}
		if settings.LLM.Provider.RequiresAPIKey() && settings.LLM.APIKey == "" {
			return fmt.Errorf("LLM provider %s requires an API key", settings.LLM.Provider)
		}
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
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

func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat64(key string, defaultVal float64) float64 {
	// Zero is a legitimate stored value for weights and temperature.
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat64(key)
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	if val := s.configStore.GetStringSlice(key); len(val) > 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getSearchMode(defaultVal domain.SearchMode) domain.SearchMode {
	val := s.configStore.GetString(keySearchMode)
	if val == "" {
		return defaultVal
	}
	mode := domain.SearchMode(val)
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

// GetPipelineConfig returns the post-processor pipeline configuration.
// Returns default configuration if nothing is configured. The chunker
// section is kept in sync with the chunking settings so `quaero
// settings chunking` affects the pipeline without a separate key.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	defaults := domain.DefaultPipelineConfig()

	// Try to load processors list from config
	if processors := s.configStore.GetStringSlice("pipeline.processors"); len(processors) > 0 {
		defaults.Processors = processors
	}

	// Chunking settings feed the chunker processor
	settings, err := s.Get()
	if err == nil {
		if defaults.ProcessorConfigs == nil {
			defaults.ProcessorConfigs = make(map[string]map[string]any)
		}
		defaults.ProcessorConfigs["chunker"] = map[string]any{
			"chunk_size": settings.Chunking.ChunkSize,
			"overlap":    settings.Chunking.Overlap,
		}
	}

	// Load per-processor configs
	// For each known processor, check if config exists
	for _, name := range defaults.Processors {
		prefix := "pipeline." + name + "."
		cfg := s.loadProcessorConfig(prefix)
		if len(cfg) > 0 {
			if defaults.ProcessorConfigs == nil {
				defaults.ProcessorConfigs = make(map[string]map[string]any)
			}
			// Merge with existing defaults
			existing := defaults.ProcessorConfigs[name]
			if existing == nil {
				existing = make(map[string]any)
			}
			for k, v := range cfg {
				existing[k] = v
			}
			defaults.ProcessorConfigs[name] = existing
		}
	}

	return defaults
}

// loadProcessorConfig loads config keys with a given prefix into a map.
func (s *SettingsService) loadProcessorConfig(prefix string) map[string]any {
	cfg := make(map[string]any)

	// Check common processor config keys
	knownKeys := []string{"chunk_size", "overlap", "max_length", "model"}
	for _, key := range knownKeys {
		fullKey := prefix + key
		if val, exists := s.configStore.Get(fullKey); exists {
			cfg[key] = val
		}
	}

	return cfg
}

// GetSchedulerConfig returns the scheduler configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetSchedulerConfig() domain.SchedulerConfig {
	defaults := domain.DefaultSchedulerConfig()

	// Master switch
	if _, exists := s.configStore.Get("scheduler.enabled"); exists {
		defaults.Enabled = s.configStore.GetBool("scheduler.enabled")
	}

	// Per-task config
	// Map from task ID to config key (underscore version for TOML)
	taskKeys := map[string]string{
		domain.TaskIDIngestRescan: "ingest_rescan",
	}

	for taskID, configKey := range taskKeys {
		prefix := "scheduler." + configKey + "."

		taskCfg := defaults.TaskConfigs[taskID]

		// Check enabled
		if _, exists := s.configStore.Get(prefix + "enabled"); exists {
			taskCfg.Enabled = s.configStore.GetBool(prefix + "enabled")
		}

		// Check interval (duration string like "45m", "1h")
		if interval := s.configStore.GetString(prefix + "interval"); interval != "" {
			if d, err := time.ParseDuration(interval); err == nil {
				taskCfg.Interval = d
			}
		}

		defaults.TaskConfigs[taskID] = taskCfg
	}

	return defaults
}
