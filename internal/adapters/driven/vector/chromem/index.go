// Package chromem provides a persistent vector index backed by chromem-go.
package chromem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/custodia-labs/pdfqa/internal/core/ports/driven"
)

var _ driven.VectorIndex = (*Index)(nil)

// CollectionName is the single collection each index directory holds.
const CollectionName = "chunks"

var errClosed = errors.New("chromem: index is closed")

// errNoTextEmbedding guards against chromem embedding raw text. Vectors
// are always computed by the configured embedding service.
var errNoTextEmbedding = errors.New("chromem: text embedding is not supported, pass vectors")

func noTextEmbedding(context.Context, string) ([]float32, error) {
	return nil, errNoTextEmbedding
}

// Config holds configuration for the chromem vector index.
type Config struct {
	// Path is the directory the collection is persisted to.
	Path string

	// Compress gzips documents on disk.
	Compress bool

	// Concurrency is the number of goroutines used by AddBatch (default: 1).
	Concurrency int
}

// Index stores vectors in a persistent chromem collection. Documents are
// written to disk as they are added.
type Index struct {
	mu          sync.RWMutex
	db          *chromem.DB
	collection  *chromem.Collection
	concurrency int
}

// Open creates or opens the collection at cfg.Path.
func Open(cfg Config) (*Index, error) {
	if cfg.Path == "" {
		return nil, errors.New("chromem: path cannot be empty")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("chromem: creating directory %s: %w", cfg.Path, err)
	}

	db, err := chromem.NewPersistentDB(cfg.Path, cfg.Compress)
	if err != nil {
		return nil, fmt.Errorf("chromem: opening db: %w", err)
	}

	collection, err := db.GetOrCreateCollection(CollectionName, nil, noTextEmbedding)
	if err != nil {
		return nil, fmt.Errorf("chromem: getting collection: %w", err)
	}

	return &Index{db: db, collection: collection, concurrency: cfg.Concurrency}, nil
}

// Add inserts the vector for chunkID.
func (idx *Index) Add(ctx context.Context, chunkID string, embedding []float32) error {
	return idx.AddBatch(ctx, []string{chunkID}, [][]float32{embedding})
}

// AddBatch inserts many vectors at once. vectors[i] belongs to chunkIDs[i].
func (idx *Index) AddBatch(ctx context.Context, chunkIDs []string, vectors [][]float32) error {
	if len(chunkIDs) != len(vectors) {
		return fmt.Errorf("chromem: %d chunk IDs for %d vectors", len(chunkIDs), len(vectors))
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.collection == nil {
		return errClosed
	}

	docs := make([]chromem.Document, len(chunkIDs))
	for i, id := range chunkIDs {
		if len(vectors[i]) == 0 {
			return fmt.Errorf("chromem: empty embedding for %s", id)
		}
		// chromem normalises in place; keep the caller's slice intact.
		vec := make([]float32, len(vectors[i]))
		copy(vec, vectors[i])
		docs[i] = chromem.Document{ID: id, Embedding: vec}
	}

	if err := idx.collection.AddDocuments(ctx, docs, idx.concurrency); err != nil {
		return fmt.Errorf("chromem: adding documents: %w", err)
	}
	return nil
}

// Search returns the min(k, Count()) most similar vectors. chromem
// rejects result counts above the collection size, so k is capped first.
func (idx *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.collection == nil {
		return nil, errClosed
	}
	count := idx.collection.Count()
	if k <= 0 || count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	vec := make([]float32, len(query))
	copy(vec, query)

	results, err := idx.collection.QueryEmbedding(ctx, vec, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem: query: %w", err)
	}

	hits := make([]driven.VectorHit, len(results))
	for i, r := range results {
		hits[i] = driven.VectorHit{ChunkID: r.ID, Similarity: float64(r.Similarity)}
	}
	return hits, nil
}

// Count returns the number of stored vectors.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if idx.collection == nil {
		return 0
	}
	return idx.collection.Count()
}

// Close detaches from the collection. Data is already on disk.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.collection = nil
	idx.db = nil
	return nil
}
