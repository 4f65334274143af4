package cli

import (
	"bytes"
	"context"
	"strings"

	"github.com/custodia-labs/pdfqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pdfqa/internal/core/domain"
	"github.com/custodia-labs/pdfqa/internal/core/ports/driving"
	"github.com/custodia-labs/pdfqa/internal/core/services"
)

// mockIndex implements driving.Index.
type mockIndex struct {
	manifest domain.IndexManifest
	closed   bool
}

func (m *mockIndex) Manifest() domain.IndexManifest { return m.manifest }

func (m *mockIndex) Retrieve(_ context.Context, _ string, _ int) ([]domain.RetrievedChunk, error) {
	return nil, nil
}

func (m *mockIndex) Close() error {
	m.closed = true
	return nil
}

// mockIndexService implements driving.IndexService.
type mockIndexService struct {
	index   *mockIndex
	err     error
	lastReq domain.BuildRequest
	calls   int
}

func (m *mockIndexService) BuildOrLoad(_ context.Context, req domain.BuildRequest) (driving.Index, error) {
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.index, nil
}

// mockAnswerService implements driving.AnswerService.
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

type testServices struct {
	index    *mockIndexService
	answer   *mockAnswerService
	config   *memory.ConfigStore
	settings *services.SettingsService
}

func sampleManifest() domain.IndexManifest {
	return domain.IndexManifest{
		FormatVersion:  domain.IndexFormatVersion,
		EmbeddingModel: "sentence-transformers/all-MiniLM-L6-v2",
		Dimensions:     384,
		VectorBackend:  domain.VectorBackendChromem,
		SourcePath:     "swiggy.pdf",
		PageCount:      1,
		ChunkCount:     1,
		ChunkSize:      800,
		ChunkOverlap:   100,
	}
}

func sampleResult() *domain.QueryResult {
	rc := domain.RetrievedChunk{
		Chunk:      domain.Chunk{ID: "c1", Text: "Swiggy had 500 restaurants in 2023.", PageNumber: 1},
		Similarity: 0.87,
	}
	return &domain.QueryResult{
		Answer:     "Swiggy had 500 restaurants in 2023.",
		Sources:    []domain.Source{domain.NewSource(rc)},
		NumSources: 1,
	}
}

// setupTestServices installs mocks and returns a cleanup func that also
// resets flag state, since cobra keeps flag values between executions.
func setupTestServices() (*testServices, func()) {
	config := memory.NewConfigStore()
	ts := &testServices{
		index:    &mockIndexService{index: &mockIndex{manifest: sampleManifest()}},
		answer:   &mockAnswerService{result: sampleResult()},
		config:   config,
		settings: services.NewSettingsService(config, nil),
	}
	SetServices(&Services{Index: ts.index, Answer: ts.answer, Settings: ts.settings})

	return ts, func() {
		SetServices(nil)
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}
}

func resetFlags() {
	indexDir, indexForce, indexWatch = "", false, false
	askPDF, askIndexDir, askK, askJSON = "", "", 0, false
	mcpPort, mcpPDF, mcpIndexDir = 0, "", ""
	settingsIndexBackend = ""
	verbose, configDir = false, ""
}

// execute runs the root command with args and returns combined output.
func execute(stdin string, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}
