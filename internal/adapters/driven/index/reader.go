package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/pdfqa/internal/core/domain"
	"github.com/custodia-labs/pdfqa/internal/core/ports/driven"
)

var _ driven.IndexReader = (*reader)(nil)

// reader joins vector hits with their chunks.
type reader struct {
	manifest domain.IndexManifest
	chunks   driven.ChunkStore
	vectors  driven.VectorIndex
}

func (r *reader) Manifest() domain.IndexManifest {
	return r.manifest
}

func (r *reader) Search(ctx context.Context, query []float32, k int) ([]domain.RetrievedChunk, error) {
	hits, err := r.vectors.Search(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return r.hydrate(ctx, hits)
}

// hydrate converts vector hits to chunks, keeping hit order.
func (r *reader) hydrate(ctx context.Context, hits []driven.VectorHit) ([]domain.RetrievedChunk, error) {
	out := make([]domain.RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		chunk, err := r.chunks.GetChunk(ctx, hit.ChunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: vector %s has no chunk", domain.ErrIndexCorrupt, hit.ChunkID)
			}
			return nil, fmt.Errorf("get chunk %s: %w", hit.ChunkID, err)
		}
		out = append(out, domain.RetrievedChunk{Chunk: *chunk, Similarity: hit.Similarity})
	}
	return out, nil
}

func (r *reader) Close() error {
	return errors.Join(r.vectors.Close(), r.chunks.Close())
}
