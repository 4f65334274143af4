// Package memory provides an exact, in-memory vector index.
package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/pdfqa/internal/core/ports/driven"
)

var _ driven.VectorIndex = (*Index)(nil)

var errClosed = errors.New("memory index: index is closed")

type entry struct {
	chunkID string
	vector  []float32
	norm    float64
	seq     int
}

// Index scores every stored vector against the query. Equal scores keep
// insertion order, so loading vectors by chunk position yields a stable
// ranking.
type Index struct {
	mu        sync.RWMutex
	entries   map[string]*entry
	dimension int
	nextSeq   int
	closed    bool
}

// New creates an empty index. A dimension of 0 is fixed by the first Add.
func New(dimension int) *Index {
	return &Index{
		entries:   make(map[string]*entry),
		dimension: dimension,
	}
}

// Add inserts or replaces the vector for chunkID.
func (idx *Index) Add(_ context.Context, chunkID string, embedding []float32) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return errClosed
	}
	if len(embedding) == 0 {
		return fmt.Errorf("memory index: empty embedding for %s", chunkID)
	}
	if idx.dimension == 0 {
		idx.dimension = len(embedding)
	}
	if len(embedding) != idx.dimension {
		return fmt.Errorf("memory index: embedding dimension %d, want %d", len(embedding), idx.dimension)
	}

	vec := make([]float32, len(embedding))
	copy(vec, embedding)

	seq := idx.nextSeq
	if prev, ok := idx.entries[chunkID]; ok {
		seq = prev.seq
	} else {
		idx.nextSeq++
	}
	idx.entries[chunkID] = &entry{chunkID: chunkID, vector: vec, norm: norm(vec), seq: seq}
	return nil
}

// Search returns the min(k, Count()) most similar vectors.
func (idx *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.closed {
		return nil, errClosed
	}
	if k <= 0 || len(idx.entries) == 0 {
		return nil, nil
	}
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("memory index: query dimension %d, want %d", len(query), idx.dimension)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	qnorm := norm(query)
	type scored struct {
		hit driven.VectorHit
		seq int
	}
	all := make([]scored, 0, len(idx.entries))
	for _, e := range idx.entries {
		all = append(all, scored{
			hit: driven.VectorHit{ChunkID: e.chunkID, Similarity: cosine(query, qnorm, e.vector, e.norm)},
			seq: e.seq,
		})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].hit.Similarity != all[j].hit.Similarity {
			return all[i].hit.Similarity > all[j].hit.Similarity
		}
		return all[i].seq < all[j].seq
	})

	if k > len(all) {
		k = len(all)
	}
	hits := make([]driven.VectorHit, k)
	for i := range hits {
		hits[i] = all[i].hit
	}
	return hits, nil
}

// Count returns the number of stored vectors.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Dimension returns the vector size, or 0 before the first Add.
func (idx *Index) Dimension() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.dimension
}

// Close releases the stored vectors.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.closed = true
	idx.entries = nil
	return nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func cosine(a []float32, anorm float64, b []float32, bnorm float64) float64 {
	if anorm == 0 || bnorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (anorm * bnorm)
}
