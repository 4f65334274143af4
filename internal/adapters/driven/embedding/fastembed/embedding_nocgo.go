//go:build !cgo

package fastembed

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pdfqa/internal/core/domain"
	"github.com/custodia-labs/pdfqa/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

var errNoCGO = fmt.Errorf("%w: fastembed requires a cgo build; use the ollama or openai embedding provider", domain.ErrNotImplemented)

// EmbeddingService is a stub for builds without cgo.
type EmbeddingService struct{}

// NewEmbeddingService always fails without cgo.
func NewEmbeddingService(_ Config) (*EmbeddingService, error) {
	return nil, errNoCGO
}

func (s *EmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, errNoCGO
}

func (s *EmbeddingService) EmbedBatch(_ context.Context, _ []string) ([][]float32, error) {
	return nil, errNoCGO
}

func (s *EmbeddingService) Dimensions() int { return 0 }

func (s *EmbeddingService) ModelName() string { return "" }

func (s *EmbeddingService) Ping(_ context.Context) error { return errNoCGO }

func (s *EmbeddingService) Close() error { return nil }
