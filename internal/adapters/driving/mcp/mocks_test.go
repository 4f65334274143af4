package mcp

import (
	"context"

	"github.com/custodia-labs/pdfqa/internal/core/domain"
	"github.com/custodia-labs/pdfqa/internal/core/ports/driving"
)

// mockIndex is a mock implementation of driving.Index.
type mockIndex struct {
	manifest domain.IndexManifest
	results  []domain.RetrievedChunk
	err      error
	lastK    int
}

func (m *mockIndex) Manifest() domain.IndexManifest { return m.manifest }

func (m *mockIndex) Retrieve(_ context.Context, _ string, k int) ([]domain.RetrievedChunk, error) {
	m.lastK = k
	if m.err != nil {
		return nil, m.err
	}
	if k < len(m.results) {
		return m.results[:k], nil
	}
	return m.results, nil
}

func (m *mockIndex) Close() error { return nil }

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	result *domain.QueryResult
	err    error
	lastQ  string
	lastK  int
}

func (m *mockAnswerService) Answer(_ context.Context, _ driving.Index, query string, k int) (*domain.QueryResult, error) {
	m.lastQ = query
	m.lastK = k
	return m.result, m.err
}
