// quaero indexes local text documents into a hybrid search index and
// answers questions about them with cited, confidence-scored answers.
//
// This is the composition root: adapters are constructed here and wired
// into the core services through their ports.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/tessera-labs/quaero-cli/internal/adapters/driven/ai"
	configfile "github.com/tessera-labs/quaero-cli/internal/adapters/driven/config/file"
	keywordnull "github.com/tessera-labs/quaero-cli/internal/adapters/driven/keyword/null"
	"github.com/tessera-labs/quaero-cli/internal/adapters/driven/storage/sqlite"
	vectormemory "github.com/tessera-labs/quaero-cli/internal/adapters/driven/vector/memory"
	"github.com/tessera-labs/quaero-cli/internal/adapters/driving/cli"
	"github.com/tessera-labs/quaero-cli/internal/core/domain"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driven"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driving"
	"github.com/tessera-labs/quaero-cli/internal/core/services"
	"github.com/tessera-labs/quaero-cli/internal/ingestion/filesystem"
	"github.com/tessera-labs/quaero-cli/internal/logger"
	"github.com/tessera-labs/quaero-cli/internal/normalisers"
	"github.com/tessera-labs/quaero-cli/internal/postprocessors"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional .env next to the working directory; absence is fine.
	_ = godotenv.Load()

	ctx := context.Background()

	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("init config store: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	applyEnvCredentials(settings)

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	docStore := store.DocumentStore()
	manifests := store.IndexManifestStore()
	historyStore := store.SearchHistoryStore()

	manifest, err := manifests.Get(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("load index manifest: %w", err)
	}

	aiResult, err := ai.Resolve(ctx, *settings, manifest)
	if err != nil {
		return fmt.Errorf("resolve AI services: %w", err)
	}
	defer aiResult.Close()
	for _, warning := range aiResult.Warnings {
		logger.Warn("%s", warning)
	}

	embedding := aiResult.EmbeddingService

	// The manifest pins the index geometry; before the first ingest the
	// resolved strategy defines it.
	dimension := embedding.Dimensions()
	strategy := embedding.Strategy()
	if manifest != nil {
		dimension = manifest.Dimension
		strategy = manifest.Strategy
	}

	vectorIndex := vectormemory.NewIndex(dimension, strategy)
	defer vectorIndex.Close()
	if err := hydrateVectorIndex(ctx, docStore, vectorIndex, dimension); err != nil {
		return fmt.Errorf("hydrate vector index: %w", err)
	}

	keywordIndex := keywordnull.NewIndex()
	defer keywordIndex.Close()

	loader := filesystem.New(settings.Ingest)
	registry := normalisers.NewDefaultRegistry()

	pipeline, err := buildPipeline(settingsService.GetPipelineConfig())
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	ingestService := services.NewIngestService(
		loader, registry, pipeline,
		embedding, docStore, keywordIndex, vectorIndex, manifests,
		settings.Ingest.Workers,
	)

	searchService := services.NewSearchService(
		docStore, vectorIndex, keywordIndex, embedding, historyStore,
	)

	answerService := services.NewAnswerService(searchService, aiResult.LLMService)
	answerService.SetGenerationOptions(settings.LLM.MaxTokens, settings.LLM.Temperature)
	if promptStore, err := configfile.NewPromptStore(""); err == nil {
		answerService.SetPromptStore(promptStore)
	}

	historyService := services.NewHistoryService(historyStore)
	libraryService := services.NewLibraryService(
		docStore, keywordIndex, vectorIndex, manifests, historyStore, aiResult.LLMService,
	)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Search:   searchService,
		Answer:   answerService,
		Ingest:   ingestService,
		Library:  libraryService,
		History:  historyService,
		Settings: settingsService,
		NewScheduler: func(root string) driving.Scheduler {
			return services.NewScheduler(
				settingsService.GetSchedulerConfig(),
				store.SchedulerStore(),
				ingestService,
				root,
			)
		},
		ConfigureChunking: func(chunkSize, overlap int) error {
			cfg := domain.PipelineConfig{
				Processors: []string{"chunker", "classifier"},
				ProcessorConfigs: map[string]map[string]any{
					"chunker": {
						"chunk_size": chunkSize,
						"overlap":    overlap,
					},
				},
			}
			pipeline, err := buildPipeline(cfg)
			if err != nil {
				return err
			}
			ingestService.SetPipeline(pipeline)
			return nil
		},
	})

	return cli.Execute()
}

// applyEnvCredentials fills credential gaps from the environment so an
// exported key works without touching config.toml.
func applyEnvCredentials(settings *domain.AppSettings) {
	if settings.Embedding.OpenAIAPIKey == "" {
		if key := os.Getenv("QUAERO_OPENAI_API_KEY"); key != "" {
			settings.Embedding.OpenAIAPIKey = key
		} else if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			settings.Embedding.OpenAIAPIKey = key
		}
	}
	if settings.LLM.APIKey == "" && settings.LLM.Provider.RequiresAPIKey() {
		switch settings.LLM.Provider {
		case domain.AIProviderOpenAI:
			settings.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case domain.AIProviderAnthropic:
			settings.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
}

// hydrateVectorIndex reloads stored chunk embeddings so a restart never
// re-embeds. Chunks whose embedding does not match the index dimension
// are skipped; the manifest warning already explains the mismatch.
func hydrateVectorIndex(ctx context.Context, docStore driven.DocumentStore, index driven.VectorIndex, dimension int) error {
	chunks, err := docStore.AllChunks(ctx)
	if err != nil {
		return err
	}

	matched := make([]domain.Chunk, 0, len(chunks))
	embeddings := make([][]float32, 0, len(chunks))
	for i := range chunks {
		if len(chunks[i].Embedding) != dimension {
			continue
		}
		matched = append(matched, chunks[i])
		embeddings = append(embeddings, chunks[i].Embedding)
	}

	if len(matched) == 0 {
		return nil
	}
	if err := index.Add(ctx, matched, embeddings); err != nil {
		return err
	}
	logger.Debug("Hydrated vector index: %d records (%d dimensions)", len(matched), dimension)
	return nil
}

// buildPipeline assembles the post-processing pipeline from its
// configuration: chunking followed by classification by default.
func buildPipeline(cfg domain.PipelineConfig) (driven.PostProcessorPipeline, error) {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	pipeline := postprocessors.NewPipeline()
	for _, name := range cfg.Processors {
		processor, err := registry.Build(name, cfg.GetProcessorConfig(name))
		if err != nil {
			return nil, fmt.Errorf("build processor %s: %w", name, err)
		}
		pipeline.Add(processor)
	}
	return pipeline, nil
}
