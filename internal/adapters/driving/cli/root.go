// Package cli provides the cobra command tree for the quaero binary.
// Commands talk to the core exclusively through driving ports; wiring
// happens once in the composition root via SetServices.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
	"github.com/tessera-labs/quaero-cli/internal/core/ports/driving"
	"github.com/tessera-labs/quaero-cli/internal/logger"
)

// version is overridden at build time via -ldflags.
var version = "dev"

// Injected driving ports. Commands check for nil so a partially wired
// binary degrades to a clear error instead of a panic.
var (
	searchService   driving.SearchService
	answerService   driving.AnswerService
	ingestService   driving.IngestOrchestrator
	libraryService  driving.LibraryService
	historyService  driving.HistoryService
	settingsService driving.SettingsService

	// newScheduler builds the watch-mode rescan scheduler for a root
	// path. Set by the composition root.
	newScheduler func(root string) driving.Scheduler

	// configureChunking rebuilds the ingestion pipeline with new
	// chunker parameters. Set by the composition root; used when the
	// ingest command overrides chunk size or overlap for one run.
	configureChunking func(chunkSize, overlap int) error
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "quaero",
	Short: "Local document search and grounded Q&A",
	Long: `Quaero indexes local text documents into a hybrid search index and
answers questions about them with cited, confidence-scored answers.

All state lives under ~/.quaero. Start with:

  quaero ingest ./notes
  quaero search "vector databases"
  quaero ask "what did I write about vector databases?"`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose logging")
}

// Services aggregates everything the command tree needs. All fields are
// optional; commands whose ports are missing fail with a message.
type Services struct {
	Search   driving.SearchService
	Answer   driving.AnswerService
	Ingest   driving.IngestOrchestrator
	Library  driving.LibraryService
	History  driving.HistoryService
	Settings driving.SettingsService

	// NewScheduler builds the periodic rescan scheduler for watch mode.
	NewScheduler func(root string) driving.Scheduler

	// ConfigureChunking rebuilds the ingestion pipeline with the given
	// chunker parameters.
	ConfigureChunking func(chunkSize, overlap int) error
}

// SetServices injects the driving ports the commands run against.
func SetServices(s Services) {
	searchService = s.Search
	answerService = s.Answer
	ingestService = s.Ingest
	libraryService = s.Library
	historyService = s.History
	settingsService = s.Settings
	newScheduler = s.NewScheduler
	configureChunking = s.ConfigureChunking
}

// SetVersion overrides the reported version string.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// defaultSearchOptions builds search options from the persisted
// settings, falling back to the domain defaults when settings are
// unavailable.
func defaultSearchOptions() domain.SearchOptions {
	opts := domain.SearchOptions{
		Limit:         domain.DefaultSearchLimit,
		Mode:          domain.SearchModeHybrid,
		VectorWeight:  domain.DefaultVectorWeight,
		KeywordWeight: domain.DefaultKeywordWeight,
	}

	if settingsService == nil {
		return opts
	}
	settings, err := settingsService.Get()
	if err != nil {
		return opts
	}

	if settings.Search.TopK > 0 {
		opts.Limit = settings.Search.TopK
	}
	if settings.Search.Mode.IsValid() {
		opts.Mode = settings.Search.Mode
	}
	if settings.Search.VectorWeight > 0 {
		opts.VectorWeight = settings.Search.VectorWeight
	}
	if settings.Search.KeywordWeight > 0 {
		opts.KeywordWeight = settings.Search.KeywordWeight
	}
	return opts
}
