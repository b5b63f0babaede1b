// Package ai resolves the embedding fallback chain and the optional LLM
// provider at startup, producing validated service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	hashingembed "github.com/tessera-labs/quaero-cli/internal/adapters/driven/embedding/hashing"
	lexicalembed "github.com/tessera-labs/quaero-cli/internal/adapters/driven/embedding/lexical"
	ollamaembed "github.com/tessera-labs/quaero-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/tessera-labs/quaero-cli/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/tessera-labs/quaero-cli/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/tessera-labs/quaero-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/tessera-labs/quaero-cli/internal/adapters/driven/llm/openai"
	"github.com/tessera-labs/quaero-cli/internal/core/domain"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driven"
	"github.com/tessera-labs/quaero-cli/internal/logger"
)

// pingTimeout bounds each connectivity probe during resolution.
const pingTimeout = 5 * time.Second

// InitResult contains the resolved AI services.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService // nil when no provider is usable
	Warnings         []string          // Non-fatal downgrades hit during resolution.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Resolve walks the embedding fallback chain and probes the configured
// LLM provider. The returned result always carries a usable embedding
// service; the LLM service may be nil, in which case answers degrade to
// the excerpt template.
func Resolve(ctx context.Context, settings domain.AppSettings, manifest *domain.IndexManifest) (*InitResult, error) {
	embedding, warnings, err := ResolveEmbedding(ctx, &settings.Embedding, manifest)
	if err != nil {
		return nil, err
	}

	llm, llmWarnings := ResolveLLM(ctx, &settings.LLM)

	return &InitResult{
		EmbeddingService: embedding,
		LLMService:       llm,
		Warnings:         append(warnings, llmWarnings...),
	}, nil
}

// ResolveEmbedding probes the fallback chain in quality order and returns
// the first strategy that answers. A non-empty index pins resolution: the
// manifest's strategy is tried first so vectors written by one strategy
// are never silently queried with another's embeddings. Probe failures
// are downgrades, collected as warnings and never propagated.
func ResolveEmbedding(ctx context.Context, settings *domain.EmbeddingSettings, manifest *domain.IndexManifest) (driven.EmbeddingService, []string, error) {
	var warnings []string

	for _, strategy := range resolutionOrder(manifest) {
		svc, err := CreateEmbeddingService(strategy, settings)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("embedding %s: %v", strategy, err))
			logger.Warn("embedding %s unusable: %v", strategy, err)
			continue
		}
		if svc == nil {
			warnings = append(warnings, fmt.Sprintf("embedding %s: not configured, skipped", strategy))
			logger.Debug("embedding %s not configured, skipped", strategy)
			continue
		}

		probeCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err = svc.Ping(probeCtx)
		cancel()
		if err != nil {
			svc.Close()
			warnings = append(warnings, fmt.Sprintf("embedding %s: unreachable (%v)", strategy, err))
			logger.Warn("embedding %s unreachable: %v", strategy, err)
			continue
		}

		warnings = append(warnings, manifestWarnings(svc, manifest)...)
		logger.Debug("embedding resolved: %s (%d dimensions)", svc.Strategy(), svc.Dimensions())
		return svc, warnings, nil
	}

	// Unreachable in practice: the hashing strategy never fails.
	return nil, warnings, fmt.Errorf("resolving embedding strategy: %w", domain.ErrEmbeddingUnavailable)
}

// ResolveLLM probes the configured LLM provider. An unconfigured provider
// is the documented default and returns nil without warnings; a configured
// but unusable provider is a downgrade and returns nil with a warning.
func ResolveLLM(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, []string) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		logger.Warn("LLM %s unusable: %v", settings.Provider, err)
		return nil, []string{fmt.Sprintf("LLM %s: %v; answers fall back to excerpts", settings.Provider, err)}
	}
	if svc == nil {
		return nil, nil
	}

	probeCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	err = svc.Ping(probeCtx)
	cancel()
	if err != nil {
		svc.Close()
		logger.Warn("LLM %s unreachable: %v", settings.Provider, err)
		return nil, []string{fmt.Sprintf("LLM %s: unreachable (%v); answers fall back to excerpts", settings.Provider, err)}
	}

	logger.Debug("LLM resolved: %s (%s)", settings.Provider, svc.ModelName())
	return svc, nil
}

// resolutionOrder returns the fallback chain, reordered so a persisted
// manifest strategy is tried first.
func resolutionOrder(manifest *domain.IndexManifest) []domain.EmbeddingStrategy {
	chain := domain.FallbackChain()
	if manifest == nil || !manifest.Strategy.IsValid() {
		return chain
	}

	ordered := make([]domain.EmbeddingStrategy, 0, len(chain))
	ordered = append(ordered, manifest.Strategy)
	for _, strategy := range chain {
		if strategy != manifest.Strategy {
			ordered = append(ordered, strategy)
		}
	}
	return ordered
}

// manifestWarnings reports when the resolved strategy cannot query the
// stored index. The vector index's dimension guard blocks mismatched
// queries; the warning tells the user why searches return nothing.
func manifestWarnings(svc driven.EmbeddingService, manifest *domain.IndexManifest) []string {
	if manifest == nil || !manifest.Strategy.IsValid() {
		return nil
	}

	if svc.Strategy() != manifest.Strategy {
		return []string{fmt.Sprintf(
			"index was built with %s (%d dimensions) but %s (%d dimensions) is active; vector search is unavailable until 'quaero reset' and re-ingest",
			manifest.Strategy, manifest.Dimension, svc.Strategy(), svc.Dimensions())}
	}

	if svc.Strategy() == domain.StrategyLexical {
		// The lexical vocabulary lives for the process; stored vectors
		// keep the fit that produced them.
		return []string{"lexical vocabulary is rebuilt on the next ingest; vector queries decline until then"}
	}

	return nil
}

// CreateEmbeddingService builds the adapter for a single strategy without
// probing it. Returns nil when the strategy's prerequisites are absent
// (e.g. no API key for the remote service).
func CreateEmbeddingService(strategy domain.EmbeddingStrategy, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		settings = &domain.EmbeddingSettings{}
	}

	switch strategy {
	case domain.StrategyOpenAI:
		if settings.OpenAIAPIKey == "" {
			return nil, nil
		}
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.OpenAIAPIKey,
			BaseURL: settings.OpenAIBaseURL,
			Model:   settings.OpenAIModel,
		})

	case domain.StrategyOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.OllamaBaseURL,
			Model:   settings.OllamaModel,
		}), nil

	case domain.StrategyLexical:
		return lexicalembed.NewEmbeddingService(lexicalembed.Config{
			Dimensions: settings.LexicalDimensions,
		}), nil

	case domain.StrategyHashing:
		return hashingembed.NewEmbeddingService(hashingembed.Config{}), nil

	default:
		return nil, fmt.Errorf("unsupported embedding strategy: %s", strategy)
	}
}

// CreateLLMService creates the LLM service for the configured provider.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// ValidateStrategyConfig checks that a single embedding strategy is usable
// with the given settings, pinging providers that need one. Intended for
// the settings wizard to validate credentials as they are entered.
func ValidateStrategyConfig(strategy domain.EmbeddingStrategy, settings *domain.EmbeddingSettings) error {
	switch strategy {
	case domain.StrategyLexical, domain.StrategyHashing:
		// No external dependency.
		return nil
	case domain.StrategyOpenAI:
		if settings == nil || settings.OpenAIAPIKey == "" {
			return fmt.Errorf("openai: API key is required")
		}
	case domain.StrategyOllama:
		// Reachability is the only prerequisite.
	default:
		return fmt.Errorf("unsupported embedding strategy: %s", strategy)
	}

	svc, err := CreateEmbeddingService(strategy, settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateLLMConfig validates an LLM configuration by creating a service
// and pinging it. Returns nil when no provider is configured.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}
