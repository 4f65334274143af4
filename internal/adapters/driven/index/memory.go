package index

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	memvec "github.com/custodia-labs/pdfqa/internal/adapters/driven/vector/memory"
	memstore "github.com/custodia-labs/pdfqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pdfqa/internal/core/domain"
	"github.com/custodia-labs/pdfqa/internal/core/ports/driven"
)

var _ driven.IndexRepository = (*MemoryRepository)(nil)

// MemoryRepository keeps committed indexes in process memory, keyed by
// directory name. Nothing touches the filesystem.
type MemoryRepository struct {
	mu      sync.Mutex
	indexes map[string]*memoryIndex
	now     func() time.Time
}

type memoryIndex struct {
	manifest domain.IndexManifest
	chunks   []domain.Chunk
	vectors  [][]float32
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		indexes: make(map[string]*memoryIndex),
		now:     time.Now,
	}
}

// Exists returns true if an index has been committed for dir.
func (r *MemoryRepository) Exists(dir string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.indexes[dir]
	return ok
}

// Create starts an in-memory build. Backends are recorded but all
// vectors are searched by brute force.
func (r *MemoryRepository) Create(_ context.Context, dir string, backend domain.VectorBackend) (driven.IndexWriter, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: index directory is required", domain.ErrInvalidInput)
	}
	if !backend.IsValid() {
		return nil, fmt.Errorf("%w: unknown vector backend %q", domain.ErrConfiguration, backend)
	}
	return &memoryWriter{repo: r, dir: dir, backend: backend}, nil
}

// Open builds a reader over the committed index for dir.
func (r *MemoryRepository) Open(ctx context.Context, dir string) (driven.IndexReader, error) {
	r.mu.Lock()
	idx, ok := r.indexes[dir]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: no index at %s", domain.ErrNotFound, dir)
	}

	store := memstore.NewChunkStore()
	if err := store.SaveChunks(ctx, idx.chunks); err != nil {
		return nil, err
	}
	vectors := memvec.New(idx.manifest.Dimensions)
	for i, c := range idx.chunks {
		if err := vectors.Add(ctx, c.ID, idx.vectors[i]); err != nil {
			return nil, err
		}
	}
	return &reader{manifest: idx.manifest, chunks: store, vectors: vectors}, nil
}

type memoryWriter struct {
	repo    *MemoryRepository
	dir     string
	backend domain.VectorBackend
	chunks  []domain.Chunk
	vectors [][]float32
	done    bool
}

func (w *memoryWriter) Write(_ context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if w.done {
		return errors.New("index: writer already finished")
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: %d chunks for %d vectors", domain.ErrInvalidInput, len(chunks), len(vectors))
	}
	w.chunks = append(w.chunks, chunks...)
	w.vectors = append(w.vectors, vectors...)
	return nil
}

func (w *memoryWriter) Commit(_ context.Context, manifest domain.IndexManifest) error {
	if w.done {
		return errors.New("index: writer already finished")
	}
	w.done = true

	manifest.FormatVersion = domain.IndexFormatVersion
	manifest.VectorBackend = w.backend
	manifest.ChunkCount = len(w.chunks)
	if manifest.Dimensions == 0 && len(w.vectors) > 0 {
		manifest.Dimensions = len(w.vectors[0])
	}
	if manifest.BuiltAt.IsZero() {
		manifest.BuiltAt = w.repo.now().UTC()
	}

	w.repo.mu.Lock()
	defer w.repo.mu.Unlock()
	w.repo.indexes[w.dir] = &memoryIndex{manifest: manifest, chunks: w.chunks, vectors: w.vectors}
	return nil
}

func (w *memoryWriter) Abort() error {
	w.done = true
	return nil
}
