package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfqa/internal/adapters/driven/index"
	"github.com/custodia-labs/pdfqa/internal/core/domain"
	"github.com/custodia-labs/pdfqa/internal/postprocessors/chunker"
)

func twoPageExtractor() *mockExtractor {
	return &mockExtractor{pages: []domain.Page{
		{Text: "Swiggy had 500 restaurants in 2023.", PageNumber: 1},
		{Text: "The office cafeteria serves lunch at noon.", PageNumber: 3},
	}}
}

func newTestIndexService(extractor *mockExtractor, embedder *hashEmbedder, repo *index.MemoryRepository) *IndexService {
	return NewIndexService(extractor, chunker.New(), embedder, repo, "")
}

func TestIndexService_BuildOrLoad_Builds(t *testing.T) {
	ctx := context.Background()
	pdf := writePDF(t, "pdf-v1")
	embedder := newHashEmbedder()
	repo := index.NewMemoryRepository()
	service := newTestIndexService(twoPageExtractor(), embedder, repo)

	idx, err := service.BuildOrLoad(ctx, domain.BuildRequest{PDFPath: pdf, IndexDir: "idx"})
	require.NoError(t, err)
	defer idx.Close()

	m := idx.Manifest()
	assert.Equal(t, "hash-embed", m.EmbeddingModel)
	assert.Equal(t, 64, m.Dimensions)
	assert.Equal(t, 2, m.ChunkCount)
	assert.Equal(t, 2, m.PageCount)
	assert.Equal(t, pdf, m.SourcePath)
	assert.Len(t, m.SourceSHA256, 64)
	assert.Equal(t, domain.DefaultChunkSize, m.ChunkSize)
	assert.Equal(t, domain.DefaultChunkOverlap, m.ChunkOverlap)
	assert.Equal(t, domain.VectorBackendChromem, m.VectorBackend)
	assert.True(t, repo.Exists("idx"))

	_, batch := embedder.calls()
	assert.Equal(t, 1, batch)
}

func TestIndexService_BuildOrLoad_DefaultDir(t *testing.T) {
	repo := index.NewMemoryRepository()
	service := newTestIndexService(twoPageExtractor(), newHashEmbedder(), repo)

	idx, err := service.BuildOrLoad(context.Background(), domain.BuildRequest{PDFPath: writePDF(t, "x")})
	require.NoError(t, err)
	defer idx.Close()

	assert.True(t, repo.Exists(domain.DefaultIndexDir))
}

func TestIndexService_BuildOrLoad_LoadMakesNoEmbeddingCalls(t *testing.T) {
	ctx := context.Background()
	pdf := writePDF(t, "pdf-v1")
	embedder := newHashEmbedder()
	extractor := twoPageExtractor()
	service := newTestIndexService(extractor, embedder, index.NewMemoryRepository())
	req := domain.BuildRequest{PDFPath: pdf, IndexDir: "idx"}

	first, err := service.BuildOrLoad(ctx, req)
	require.NoError(t, err)
	require.NoError(t, first.Close())
	embedBefore, batchBefore := embedder.calls()

	second, err := service.BuildOrLoad(ctx, req)
	require.NoError(t, err)
	defer second.Close()

	embedAfter, batchAfter := embedder.calls()
	assert.Equal(t, embedBefore, embedAfter)
	assert.Equal(t, batchBefore, batchAfter)
	assert.Equal(t, 1, extractor.calls, "second call must not re-extract")
	assert.Equal(t, first.Manifest(), second.Manifest())
}

func TestIndexService_BuildOrLoad_ForceRebuild(t *testing.T) {
	ctx := context.Background()
	pdf := writePDF(t, "pdf-v1")
	embedder := newHashEmbedder()
	extractor := twoPageExtractor()
	service := newTestIndexService(extractor, embedder, index.NewMemoryRepository())

	first, err := service.BuildOrLoad(ctx, domain.BuildRequest{PDFPath: pdf, IndexDir: "idx"})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	extractor.pages = extractor.pages[:1]
	second, err := service.BuildOrLoad(ctx, domain.BuildRequest{PDFPath: pdf, IndexDir: "idx", ForceRebuild: true})
	require.NoError(t, err)
	defer second.Close()

	_, batch := embedder.calls()
	assert.Equal(t, 2, batch)
	assert.Equal(t, 1, second.Manifest().ChunkCount)
}

func TestIndexService_BuildOrLoad_StalePDFStillLoads(t *testing.T) {
	ctx := context.Background()
	pdf := writePDF(t, "pdf-v1")
	embedder := newHashEmbedder()
	repo := index.NewMemoryRepository()
	service := newTestIndexService(twoPageExtractor(), embedder, repo)

	first, err := service.BuildOrLoad(ctx, domain.BuildRequest{PDFPath: pdf, IndexDir: "idx"})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	changed := writePDF(t, "pdf-v2")
	idx, err := service.BuildOrLoad(ctx, domain.BuildRequest{PDFPath: changed, IndexDir: "idx"})
	require.NoError(t, err)
	defer idx.Close()

	_, batch := embedder.calls()
	assert.Equal(t, 1, batch)
}

func TestIndexService_BuildOrLoad_IncompatibleModel(t *testing.T) {
	ctx := context.Background()
	pdf := writePDF(t, "pdf-v1")
	repo := index.NewMemoryRepository()

	built, err := newTestIndexService(twoPageExtractor(), newHashEmbedder(), repo).
		BuildOrLoad(ctx, domain.BuildRequest{PDFPath: pdf, IndexDir: "idx"})
	require.NoError(t, err)
	require.NoError(t, built.Close())

	other := newHashEmbedder()
	other.model = "other-model"
	_, err = newTestIndexService(twoPageExtractor(), other, repo).
		BuildOrLoad(ctx, domain.BuildRequest{PDFPath: pdf, IndexDir: "idx"})

	assert.ErrorIs(t, err, domain.ErrIndexIncompatible)
}

func TestIndexService_BuildOrLoad_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("no index and no pdf", func(t *testing.T) {
		service := newTestIndexService(twoPageExtractor(), newHashEmbedder(), index.NewMemoryRepository())
		_, err := service.BuildOrLoad(ctx, domain.BuildRequest{IndexDir: "missing"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("no embedder", func(t *testing.T) {
		service := NewIndexService(twoPageExtractor(), chunker.New(), nil, index.NewMemoryRepository(), "")
		_, err := service.BuildOrLoad(ctx, domain.BuildRequest{PDFPath: "doc.pdf"})
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})

	t.Run("extraction failure", func(t *testing.T) {
		extractor := &mockExtractor{err: domain.ErrExtraction}
		service := newTestIndexService(extractor, newHashEmbedder(), index.NewMemoryRepository())
		_, err := service.BuildOrLoad(ctx, domain.BuildRequest{PDFPath: writePDF(t, "x")})
		assert.ErrorIs(t, err, domain.ErrExtraction)
	})

	t.Run("extractor unavailable", func(t *testing.T) {
		extractor := twoPageExtractor()
		extractor.availErr = assert.AnError
		embedder := newHashEmbedder()
		repo := index.NewMemoryRepository()
		service := newTestIndexService(extractor, embedder, repo)

		_, err := service.BuildOrLoad(ctx, domain.BuildRequest{PDFPath: writePDF(t, "x"), IndexDir: "idx"})

		assert.ErrorIs(t, err, domain.ErrExtraction)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Zero(t, extractor.calls)
		_, batch := embedder.calls()
		assert.Zero(t, batch)
		assert.False(t, repo.Exists("idx"))
	})

	t.Run("no text", func(t *testing.T) {
		extractor := &mockExtractor{}
		embedder := newHashEmbedder()
		service := newTestIndexService(extractor, embedder, index.NewMemoryRepository())
		_, err := service.BuildOrLoad(ctx, domain.BuildRequest{PDFPath: writePDF(t, "x")})
		assert.ErrorIs(t, err, domain.ErrExtraction)
		_, batch := embedder.calls()
		assert.Zero(t, batch)
	})

	t.Run("embedding failure leaves no index", func(t *testing.T) {
		embedder := newHashEmbedder()
		embedder.embedErr = assert.AnError
		repo := index.NewMemoryRepository()
		service := newTestIndexService(twoPageExtractor(), embedder, repo)

		_, err := service.BuildOrLoad(ctx, domain.BuildRequest{PDFPath: writePDF(t, "x"), IndexDir: "idx"})

		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
		assert.ErrorIs(t, err, assert.AnError)
		assert.False(t, repo.Exists("idx"))
	})
}

func TestIndex_Retrieve(t *testing.T) {
	ctx := context.Background()
	service := newTestIndexService(twoPageExtractor(), newHashEmbedder(), index.NewMemoryRepository())
	idx, err := service.BuildOrLoad(ctx, domain.BuildRequest{PDFPath: writePDF(t, "x")})
	require.NoError(t, err)
	defer idx.Close()

	results, err := idx.Retrieve(ctx, "How many restaurants did Swiggy have in 2023?", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Chunk.PageNumber)

	results, err = idx.Retrieve(ctx, "When does the cafeteria serve lunch?", 4)
	require.NoError(t, err)
	require.Len(t, results, 2, "k larger than the index returns every chunk once")
	assert.Equal(t, 3, results[0].Chunk.PageNumber)
	assert.GreaterOrEqual(t, results[0].Similarity, results[1].Similarity)
	assert.NotEqual(t, results[0].Chunk.ID, results[1].Chunk.ID)
}

func TestIndex_Retrieve_InvalidInput(t *testing.T) {
	ctx := context.Background()
	embedder := newHashEmbedder()
	service := newTestIndexService(twoPageExtractor(), embedder, index.NewMemoryRepository())
	idx, err := service.BuildOrLoad(ctx, domain.BuildRequest{PDFPath: writePDF(t, "x")})
	require.NoError(t, err)
	defer idx.Close()

	_, err = idx.Retrieve(ctx, " \n\t", 4)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = idx.Retrieve(ctx, "restaurants", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	embed, _ := embedder.calls()
	assert.Zero(t, embed)
}

func TestIndex_Retrieve_EmbeddingFailure(t *testing.T) {
	ctx := context.Background()
	embedder := newHashEmbedder()
	service := newTestIndexService(twoPageExtractor(), embedder, index.NewMemoryRepository())
	idx, err := service.BuildOrLoad(ctx, domain.BuildRequest{PDFPath: writePDF(t, "x")})
	require.NoError(t, err)
	defer idx.Close()

	embedder.embedErr = assert.AnError
	_, err = idx.Retrieve(ctx, "restaurants", 2)

	assert.ErrorIs(t, err, domain.ErrQuery)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestIndexService_DiskRepository_SQLiteBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir() + "/handbook_index"
	pdf := writePDF(t, "pdf-v1")
	embedder := newHashEmbedder()
	service := NewIndexService(twoPageExtractor(), chunker.New(), embedder, index.NewRepository(), domain.VectorBackendSQLite)

	built, err := service.BuildOrLoad(ctx, domain.BuildRequest{PDFPath: pdf, IndexDir: dir})
	require.NoError(t, err)
	want, err := built.Retrieve(ctx, "Swiggy restaurants", 2)
	require.NoError(t, err)
	require.NoError(t, built.Close())

	loaded, err := service.BuildOrLoad(ctx, domain.BuildRequest{PDFPath: pdf, IndexDir: dir})
	require.NoError(t, err)
	defer loaded.Close()

	got, err := loaded.Retrieve(ctx, "Swiggy restaurants", 2)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Chunk.ID, got[i].Chunk.ID)
	}
	assert.Equal(t, domain.VectorBackendSQLite, loaded.Manifest().VectorBackend)

	_, batch := embedder.calls()
	assert.Equal(t, 1, batch)
}
