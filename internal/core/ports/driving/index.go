package driving

import (
	"context"

	"github.com/custodia-labs/pdfqa/internal/core/domain"
)

// IndexService builds vector indexes from PDFs or loads them from disk.
type IndexService interface {
	// BuildOrLoad returns an index for the request. An existing index at
	// IndexDir is loaded unless ForceRebuild is set; otherwise the PDF is
	// extracted, chunked, embedded and persisted first.
	BuildOrLoad(ctx context.Context, req domain.BuildRequest) (Index, error)
}

// Index is a loaded, queryable vector index bound to the embedding model
// that built it. It is safe for concurrent read-only use.
type Index interface {
	// Manifest returns how the index was built.
	Manifest() domain.IndexManifest

	// Retrieve returns the k chunks most similar to query, ranked by
	// similarity descending. Fewer are returned when the index is smaller.
	Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error)

	// Close releases resources.
	Close() error
}
