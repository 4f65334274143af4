package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/pdfqa/internal/core/domain"
	"github.com/custodia-labs/pdfqa/internal/core/ports/driven"
)

var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory driven.ChunkStore.
type ChunkStore struct {
	mu       sync.RWMutex
	chunks   map[string]domain.Chunk
	manifest *domain.IndexManifest
}

// NewChunkStore creates an empty in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{chunks: make(map[string]domain.Chunk)}
}

// SaveChunks stores chunks, replacing any with the same ID.
func (s *ChunkStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		s.chunks[c.ID] = c
	}
	return nil
}

// GetChunk retrieves a chunk by ID.
func (s *ChunkStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chunks[id]
	if !ok {
		return nil, fmt.Errorf("%w: chunk %s", domain.ErrNotFound, id)
	}
	return &c, nil
}

// ListChunks returns all chunks ordered by position.
func (s *ChunkStore) ListChunks(_ context.Context) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Chunk, 0, len(s.chunks))
	for _, c := range s.chunks {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// SaveManifest stores the index manifest.
func (s *ChunkStore) SaveManifest(_ context.Context, manifest domain.IndexManifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifest = &manifest
	return nil
}

// LoadManifest retrieves the index manifest.
func (s *ChunkStore) LoadManifest(_ context.Context) (*domain.IndexManifest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.manifest == nil {
		return nil, fmt.Errorf("%w: no manifest", domain.ErrNotFound)
	}
	m := *s.manifest
	return &m, nil
}

// Close is a no-op.
func (s *ChunkStore) Close() error { return nil }
