package driven

import (
	"context"

	"github.com/custodia-labs/pdfqa/internal/core/domain"
)

// DocumentExtractor reads a document from disk into cleaned pages.
type DocumentExtractor interface {
	// Name returns the extractor name for logging.
	Name() string

	// CheckAvailable reports whether the extractor can read documents.
	CheckAvailable() error

	// Extract returns one Page per page with non-blank cleaned text.
	// Returns domain.ErrNotFound if path does not exist and
	// domain.ErrExtraction if the file cannot be parsed.
	Extract(ctx context.Context, path string) ([]domain.Page, error)
}

// Chunker splits pages into retrieval-sized chunks.
type Chunker interface {
	// Name returns the chunker name for logging and configuration.
	Name() string

	// ChunkSize returns the configured maximum chunk length.
	ChunkSize() int

	// Overlap returns the configured overlap between consecutive chunks.
	Overlap() int

	// Chunk splits pages into ordered chunks. Chunks never span pages.
	Chunk(ctx context.Context, pages []domain.Page) ([]domain.Chunk, error)
}
