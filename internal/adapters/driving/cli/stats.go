package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	Long:  `Reports document, chunk and vector counts, the active embedding strategy, and the search history size.`,
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

// statsOutput is the stable JSON shape for index statistics.
type statsOutput struct {
	Documents     int    `json:"documents"`
	Chunks        int    `json:"chunks"`
	Vectors       int    `json:"vectors"`
	Dimension     int    `json:"dimension"`
	Strategy      string `json:"strategy"`
	History       int    `json:"history"`
	LLMConfigured bool   `json:"llm_configured"`
}

func runStats(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	stats, err := libraryService.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get statistics: %w", err)
	}

	out := statsOutput{
		Documents:     stats.Documents,
		Chunks:        stats.Chunks,
		Vectors:       stats.Index.RecordCount,
		Dimension:     stats.Index.Dimension,
		Strategy:      stats.Index.Strategy,
		History:       stats.History,
		LLMConfigured: stats.LLMConfigured,
	}

	if statsJSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal statistics: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println("Index statistics:")
	cmd.Println()
	cmd.Printf("  Documents: %d\n", out.Documents)
	cmd.Printf("  Chunks:    %d\n", out.Chunks)
	cmd.Printf("  Vectors:   %d (%d dimensions)\n", out.Vectors, out.Dimension)
	if out.Strategy != "" {
		cmd.Printf("  Embedding: %s\n", out.Strategy)
	} else {
		cmd.Printf("  Embedding: (not resolved yet)\n")
	}
	cmd.Printf("  Searches:  %d recorded\n", out.History)
	if out.LLMConfigured {
		cmd.Printf("  Answers:   LLM-generated\n")
	} else {
		cmd.Printf("  Answers:   excerpt fallback (no LLM configured)\n")
	}

	return nil
}
