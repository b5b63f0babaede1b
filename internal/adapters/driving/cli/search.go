package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
)

var (
	searchLimit    int
	searchMode     string
	searchJSON     bool
	searchFilename string
	searchCategory string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Performs hybrid search across all indexed documents.
Fuses semantic (vector) relevance with keyword scores into one ranking.
Use --mode semantic to rank by vector similarity alone.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 = configured default)")
	searchCmd.Flags().StringVar(&searchMode, "mode", "", "search mode: hybrid or semantic")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringVar(&searchFilename, "filename", "", "restrict results to one document")
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "restrict results to one category")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	opts := defaultSearchOptions()
	if searchLimit > 0 {
		opts.Limit = searchLimit
	}
	if searchMode != "" {
		mode := domain.SearchMode(searchMode)
		if !mode.IsValid() {
			return fmt.Errorf("invalid mode %q (want hybrid or semantic)", searchMode)
		}
		opts.Mode = mode
	}
	opts.Filter = buildSearchFilter()

	results, err := searchService.Search(context.Background(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func buildSearchFilter() domain.MetadataFilter {
	filter := domain.MetadataFilter{}
	if searchFilename != "" {
		filter["filename"] = searchFilename
	}
	if searchCategory != "" {
		filter["category"] = searchCategory
	}
	if len(filter) == 0 {
		return nil
	}
	return filter
}

// searchResultJSON is the stable JSON shape for one result.
type searchResultJSON struct {
	Filename       string  `json:"filename"`
	ChunkIndex     int     `json:"chunk_index"`
	Category       string  `json:"category"`
	RelevanceScore float64 `json:"relevance_score"`
	CombinedScore  float64 `json:"combined_score"`
	Content        string  `json:"content"`
}

func outputSearchJSON(cmd *cobra.Command, results []domain.RetrievalResult) error {
	out := make([]searchResultJSON, 0, len(results))
	for i := range results {
		out = append(out, searchResultJSON{
			Filename:       results[i].Chunk.Metadata.Filename,
			ChunkIndex:     results[i].Chunk.Metadata.ChunkIndex,
			Category:       results[i].Chunk.Metadata.Category.String(),
			RelevanceScore: results[i].RelevanceScore,
			CombinedScore:  results[i].CombinedScore,
			Content:        results[i].Chunk.Content,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.RetrievalResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		meta := results[i].Chunk.Metadata

		cmd.Printf("  [%d] %s (part %d/%d, relevance %.2f)\n",
			i+1, meta.Filename, meta.ChunkIndex+1, meta.ChunkCount, results[i].RelevanceScore)
		if meta.Category.IsValid() {
			cmd.Printf("      Category: %s\n", meta.Category)
		}
		if meta.Summary != "" {
			cmd.Printf("      %s\n", meta.Summary)
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d results\n", len(results))
	return nil
}
