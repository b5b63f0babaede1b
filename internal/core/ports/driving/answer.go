package driving

import (
	"context"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
)

// AnswerService produces grounded answers from indexed documents.
type AnswerService interface {
	// Ask retrieves context for the question and generates an answer
	// from it, with source attributions and a confidence score.
	// When nothing relevant is indexed the answer says so and carries
	// zero confidence. When no LLM is configured the answer degrades
	// to a stitched excerpt of the top chunks.
	Ask(ctx context.Context, question string, opts domain.SearchOptions) (*domain.AnswerResult, error)
}
