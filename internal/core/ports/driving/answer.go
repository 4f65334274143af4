package driving

import (
	"context"

	"github.com/custodia-labs/pdfqa/internal/core/domain"
)

// AnswerService answers questions from a loaded index.
type AnswerService interface {
	// Answer retrieves k chunks for query and asks the language model to
	// answer from them. k <= 0 uses the configured default.
	Answer(ctx context.Context, index Index, query string, k int) (*domain.QueryResult, error)
}
