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
	askTopK int
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about indexed documents",
	Long: `Retrieves the most relevant chunks and generates a grounded answer
from them, with per-claim source citations and a confidence score.

Without a configured LLM provider the answer degrades to verbatim
excerpts of the top-ranked chunks. Run 'quaero settings llm' to
configure a provider.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to ground the answer on (0 = configured default)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]

	if answerService == nil {
		return errors.New("answer service not configured")
	}

	opts := defaultSearchOptions()
	if askTopK > 0 {
		opts.Limit = askTopK
	}

	result, err := answerService.Ask(context.Background(), question, opts)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, result)
	}
	return outputAnswerText(cmd, result)
}

// answerJSON is the stable JSON shape for an answer.
type answerJSON struct {
	Answer         string             `json:"answer"`
	Confidence     float64            `json:"confidence"`
	Sources        []answerSourceJSON `json:"sources"`
	RetrievedCount int                `json:"retrieved_count"`
}

type answerSourceJSON struct {
	Filename       string  `json:"filename"`
	RelevanceScore float64 `json:"relevance_score"`
	ChunkIndex     int     `json:"chunk_index"`
}

func outputAnswerJSON(cmd *cobra.Command, result *domain.AnswerResult) error {
	out := answerJSON{
		Answer:         result.Answer,
		Confidence:     result.Confidence,
		Sources:        make([]answerSourceJSON, 0, len(result.Sources)),
		RetrievedCount: result.RetrievedCount,
	}
	for _, src := range result.Sources {
		out.Sources = append(out.Sources, answerSourceJSON{
			Filename:       src.Filename,
			RelevanceScore: src.RelevanceScore,
			ChunkIndex:     src.ChunkIndex,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, result *domain.AnswerResult) error {
	cmd.Println(result.Answer)
	cmd.Println()
	cmd.Printf("Confidence: %.0f%%\n", result.Confidence*100)

	if len(result.Sources) > 0 {
		cmd.Println("Sources:")
		for i, src := range result.Sources {
			cmd.Printf("  [%d] %s (part %d, relevance %.2f)\n",
				i+1, src.Filename, src.ChunkIndex+1, src.RelevanceScore)
		}
	}
	return nil
}
