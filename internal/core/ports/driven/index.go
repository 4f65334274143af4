package driven

import (
	"context"

	"github.com/custodia-labs/pdfqa/internal/core/domain"
)

// IndexRepository persists vector indexes in directories.
type IndexRepository interface {
	// Exists returns true if something is present at dir.
	Exists(dir string) bool

	// Create starts writing a new index for dir. Nothing visible at dir
	// changes until the writer is committed.
	Create(ctx context.Context, dir string, backend domain.VectorBackend) (IndexWriter, error)

	// Open loads the committed index at dir.
	// Returns domain.ErrNotFound if dir does not exist and
	// domain.ErrIndexCorrupt if it holds no committed index.
	Open(ctx context.Context, dir string) (IndexReader, error)
}

// IndexWriter receives the contents of an index under construction.
type IndexWriter interface {
	// Write stores chunks and their vectors. vectors[i] belongs to chunks[i].
	Write(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error

	// Commit records the manifest and atomically replaces the target directory.
	Commit(ctx context.Context, manifest domain.IndexManifest) error

	// Abort discards everything written so far. Safe to call after Commit.
	Abort() error
}

// IndexReader queries a loaded index. It is read-only.
type IndexReader interface {
	// Manifest returns how the index was built.
	Manifest() domain.IndexManifest

	// Search returns up to k chunks nearest to the query vector,
	// ordered by similarity descending.
	Search(ctx context.Context, query []float32, k int) ([]domain.RetrievedChunk, error)

	// Close releases resources.
	Close() error
}
