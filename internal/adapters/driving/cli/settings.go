package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure search behaviour, embedding credentials, the LLM
provider and chunking parameters.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

var settingsModeCmd = &cobra.Command{
	Use:   "mode",
	Short: "Set the default search mode",
	Long: `Set the default search mode.

Available modes:
  hybrid   - Vector similarity fused with keyword scores (default)
  semantic - Vector similarity only`,
	RunE: runSettingsMode,
}

var settingsWeightsCmd = &cobra.Command{
	Use:   "weights [vector] [keyword]",
	Short: "Set the hybrid fusion weights",
	Long: `Set the vector and keyword weights used by hybrid fusion.
The weights are independent multipliers and need not sum to 1.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsWeights,
}

var settingsChunkingCmd = &cobra.Command{
	Use:   "chunking [chunk-size] [overlap]",
	Short: "Set the chunker parameters",
	Long: `Set the chunk size and overlap, in characters. The overlap must be
smaller than the chunk size. Applies to future ingests only.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsChunking,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure the OpenAI embedding credential",
	Long: `Store the OpenAI API key used by the highest-quality embedding
strategy. Without it the fallback chain resolves a local strategy.`,
	RunE: runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure the LLM provider",
	Long:  `Configure the LLM provider used for answer generation.`,
	RunE:  runSettingsLLM,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsModeCmd)
	settingsCmd.AddCommand(settingsWeightsCmd)
	settingsCmd.AddCommand(settingsChunkingCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Mode: %s\n", settings.Search.Mode.Description())
	cmd.Printf("  Top K: %d\n", settings.Search.TopK)
	cmd.Printf("  Weights: vector %.2f, keyword %.2f\n",
		settings.Search.VectorWeight, settings.Search.KeywordWeight)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Println("  Strategy resolution: automatic, best available first")
	if settings.Embedding.OpenAIAPIKey != "" {
		cmd.Printf("  OpenAI: %s (key %s)\n",
			settings.Embedding.OpenAIModel, maskAPIKey(settings.Embedding.OpenAIAPIKey))
	} else {
		cmd.Printf("  OpenAI: skipped (no API key)\n")
	}
	cmd.Printf("  Ollama: %s at %s\n",
		settings.Embedding.OllamaModel, settings.Embedding.OllamaBaseURL)
	cmd.Printf("  Lexical: %d dimensions\n", settings.Embedding.LexicalDimensions)
	cmd.Printf("  Hashing: always available\n")
	cmd.Println()

	cmd.Println("[LLM]")
	if settings.LLM.Provider.IsValid() {
		cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
		cmd.Printf("  Model: %s\n", settings.LLM.Model)
		if settings.LLM.Provider.IsLocal() && settings.LLM.BaseURL != "" {
			cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
		}
		if settings.LLM.Provider.RequiresAPIKey() {
			if settings.LLM.APIKey != "" {
				cmd.Printf("  API Key: %s\n", maskAPIKey(settings.LLM.APIKey))
			} else {
				cmd.Printf("  API Key: (not set)\n")
			}
		}
		status := "configured"
		if !settings.LLM.IsConfigured() {
			status = "not configured"
		}
		cmd.Printf("  Status: %s\n", status)
	} else {
		cmd.Println("  Provider: (none, answers use excerpt fallback)")
	}
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Chunk size: %d characters\n", settings.Chunking.ChunkSize)
	cmd.Printf("  Overlap: %d characters\n", settings.Chunking.Overlap)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'quaero settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("Quaero Settings Wizard")
	cmd.Println("======================")
	cmd.Println()

	reader := bufio.NewReader(os.Stdin)

	// Step 1: Search Mode
	cmd.Println("Step 1: Select Search Mode")
	cmd.Println("--------------------------")
	modes := domain.AllSearchModes()
	for i, mode := range modes {
		cmd.Printf("  %d. %s\n", i+1, mode.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	modeIdx := parseChoice(input, len(modes), 1)
	selectedMode := modes[modeIdx-1]

	if err := settingsService.SetSearchMode(selectedMode); err != nil {
		return fmt.Errorf("failed to set search mode: %w", err)
	}
	cmd.Printf("Set search mode to: %s\n\n", selectedMode.Description())

	// Step 2: OpenAI embedding credential (optional)
	cmd.Println("Step 2: OpenAI Embedding Key (optional)")
	cmd.Println("---------------------------------------")
	cmd.Println("With an OpenAI API key the best embedding strategy is used.")
	cmd.Println("Without one the chain falls back to local strategies.")
	cmd.Print("\nEnter API key (empty to skip): ")
	apiKey := readPassword()
	cmd.Println()
	if apiKey != "" {
		if err := settingsService.SetOpenAIKey(apiKey); err != nil {
			return fmt.Errorf("failed to store API key: %w", err)
		}
		cmd.Println("OpenAI embedding key stored.")
	} else {
		cmd.Println("Skipped.")
	}
	cmd.Println()

	// Step 3: LLM provider (optional)
	cmd.Println("Step 3: Configure LLM Provider (optional)")
	cmd.Println("-----------------------------------------")
	cmd.Println("An LLM provider enables generated answers; without one,")
	cmd.Println("'quaero ask' returns excerpts of the top-ranked chunks.")
	cmd.Print("\nConfigure an LLM provider now? [y/N]: ")
	if strings.EqualFold(readLine(reader), "y") {
		if err := configureLLMProvider(cmd, reader); err != nil {
			return err
		}
	} else {
		cmd.Println("Skipped.")
	}
	cmd.Println()

	// Final validation
	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func runSettingsMode(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Select Search Mode")
	cmd.Println("------------------")
	modes := domain.AllSearchModes()
	for i, mode := range modes {
		cmd.Printf("  %d. %s\n", i+1, mode.Description())
	}
	cmd.Print("\nEnter choice: ")
	input := readLine(reader)
	idx := parseChoice(input, len(modes), 0)
	if idx == 0 {
		return errors.New("invalid selection")
	}

	selectedMode := modes[idx-1]
	if err := settingsService.SetSearchMode(selectedMode); err != nil {
		return fmt.Errorf("failed to set search mode: %w", err)
	}

	cmd.Printf("Search mode set to: %s\n", selectedMode.Description())
	return nil
}

func runSettingsWeights(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	vector, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid vector weight %q", args[0])
	}
	keyword, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid keyword weight %q", args[1])
	}

	if err := settingsService.SetSearchWeights(vector, keyword); err != nil {
		return fmt.Errorf("failed to set weights: %w", err)
	}

	cmd.Printf("Fusion weights set: vector %.2f, keyword %.2f\n", vector, keyword)
	return nil
}

func runSettingsChunking(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	chunkSize, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid chunk size %q", args[0])
	}
	overlap, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid overlap %q", args[1])
	}

	if err := settingsService.SetChunking(chunkSize, overlap); err != nil {
		return fmt.Errorf("failed to set chunking: %w", err)
	}

	cmd.Printf("Chunking set: %d characters per chunk, %d overlap\n", chunkSize, overlap)
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Print("Enter OpenAI API key: ")
	apiKey := readPassword()
	cmd.Println()
	if apiKey == "" {
		return errors.New("API key is required")
	}

	if err := settingsService.SetOpenAIKey(apiKey); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}

	cmd.Println("OpenAI embedding key stored. It takes effect on the next start.")
	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)
	return configureLLMProvider(cmd, reader)
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultLLMModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
