package driven

import (
	"context"

	"github.com/custodia-labs/pdfqa/internal/core/domain"
)

// ChunkStore persists chunks and the manifest of one index.
type ChunkStore interface {
	// SaveChunks stores chunks, replacing any with the same ID.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetChunk retrieves a chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// ListChunks returns all chunks ordered by position.
	ListChunks(ctx context.Context) ([]domain.Chunk, error)

	// SaveManifest stores the index manifest.
	SaveManifest(ctx context.Context, manifest domain.IndexManifest) error

	// LoadManifest retrieves the index manifest.
	// Returns domain.ErrNotFound if no manifest has been committed.
	LoadManifest(ctx context.Context) (*domain.IndexManifest, error)

	// Close releases resources.
	Close() error
}
