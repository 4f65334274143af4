package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/custodia-labs/pdfqa/internal/core/domain"
	"github.com/custodia-labs/pdfqa/internal/core/ports/driven"
	"github.com/custodia-labs/pdfqa/internal/core/ports/driving"
	"github.com/custodia-labs/pdfqa/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// IndexService builds indexes from PDFs and loads persisted ones.
type IndexService struct {
	extractor driven.DocumentExtractor
	chunker   driven.Chunker
	embedder  driven.EmbeddingService
	repo      driven.IndexRepository
	backend   domain.VectorBackend
}

// NewIndexService creates a new index service. An empty backend uses chromem.
func NewIndexService(
	extractor driven.DocumentExtractor,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	repo driven.IndexRepository,
	backend domain.VectorBackend,
) *IndexService {
	if backend == "" {
		backend = domain.VectorBackendChromem
	}
	return &IndexService{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		repo:      repo,
		backend:   backend,
	}
}

// BuildOrLoad returns a queryable index for req. An index already at
// req.IndexDir is loaded without any embedding calls unless
// req.ForceRebuild is set.
func (s *IndexService) BuildOrLoad(ctx context.Context, req domain.BuildRequest) (driving.Index, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("%w: no embedding provider configured", domain.ErrConfiguration)
	}

	dir := req.IndexDir
	if dir == "" {
		dir = domain.DefaultIndexDir
	}

	if s.repo.Exists(dir) && !req.ForceRebuild {
		return s.load(ctx, dir, req.PDFPath)
	}

	if req.PDFPath == "" {
		return nil, fmt.Errorf("%w: no index at %s and no PDF given to build one", domain.ErrNotFound, dir)
	}
	return s.build(ctx, dir, req.PDFPath)
}

func (s *IndexService) load(ctx context.Context, dir, pdfPath string) (*loadedIndex, error) {
	logger.Section("Loading index")

	reader, err := s.repo.Open(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", dir, err)
	}

	manifest := reader.Manifest()
	if !manifest.CompatibleWith(s.embedder.ModelName(), s.embedder.Dimensions()) {
		_ = reader.Close()
		return nil, fmt.Errorf("%w: %s was built with %s (%d dims), configured model is %s; rebuild with --force",
			domain.ErrIndexIncompatible, dir, manifest.EmbeddingModel, manifest.Dimensions, s.embedder.ModelName())
	}

	if pdfPath != "" && manifest.SourceSHA256 != "" {
		sum, err := fileSHA256(pdfPath)
		switch {
		case err != nil:
			logger.Debug("index: cannot hash %s: %v", pdfPath, err)
		case sum != manifest.SourceSHA256:
			logger.Warn("index at %s was built from a different version of %s; rebuild with --force to refresh it", dir, pdfPath)
		}
	}

	logger.Debug("index: loaded %d chunks from %s (model %s)", manifest.ChunkCount, dir, manifest.EmbeddingModel)
	return &loadedIndex{reader: reader, embedder: s.embedder}, nil
}

func (s *IndexService) build(ctx context.Context, dir, pdfPath string) (*loadedIndex, error) {
	logger.Section("Building index")

	if err := s.extractor.CheckAvailable(); err != nil {
		return nil, fmt.Errorf("%w: %s extractor: %w", domain.ErrExtraction, s.extractor.Name(), err)
	}

	pages, err := s.extractor.Extract(ctx, pdfPath)
	if err != nil {
		return nil, fmt.Errorf("extract pdf: %w", err)
	}

	chunks, err := s.chunker.Chunk(ctx, pages)
	if err != nil {
		return nil, fmt.Errorf("chunk pages: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no text found in %s", domain.ErrExtraction, pdfPath)
	}
	logger.Debug("index: %d pages, %d chunks", len(pages), len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: embed chunks: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d chunks", domain.ErrEmbeddingUnavailable, len(vectors), len(chunks))
	}

	sum, err := fileSHA256(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("%w: hash %s: %w", domain.ErrExtraction, pdfPath, err)
	}

	manifest := domain.IndexManifest{
		EmbeddingModel: s.embedder.ModelName(),
		Dimensions:     len(vectors[0]),
		SourcePath:     pdfPath,
		SourceSHA256:   sum,
		PageCount:      len(pages),
		ChunkSize:      s.chunker.ChunkSize(),
		ChunkOverlap:   s.chunker.Overlap(),
	}

	if err := s.persist(ctx, dir, chunks, vectors, manifest); err != nil {
		return nil, err
	}
	logger.Info("index: saved %d chunks to %s", len(chunks), dir)

	reader, err := s.repo.Open(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", dir, err)
	}
	return &loadedIndex{reader: reader, embedder: s.embedder}, nil
}

func (s *IndexService) persist(
	ctx context.Context,
	dir string,
	chunks []domain.Chunk,
	vectors [][]float32,
	manifest domain.IndexManifest,
) (err error) {
	writer, err := s.repo.Create(ctx, dir, s.backend)
	if err != nil {
		return fmt.Errorf("create index %s: %w", dir, err)
	}
	defer func() {
		if err != nil {
			if abortErr := writer.Abort(); abortErr != nil {
				logger.Warn("index: abort %s: %v", dir, abortErr)
			}
		}
	}()

	if err = writer.Write(ctx, chunks, vectors); err != nil {
		return fmt.Errorf("write index %s: %w", dir, err)
	}
	if err = writer.Commit(ctx, manifest); err != nil {
		return fmt.Errorf("commit index %s: %w", dir, err)
	}
	return nil
}

// loadedIndex binds a persisted index to the embedder that queries it.
type loadedIndex struct {
	reader   driven.IndexReader
	embedder driven.EmbeddingService
}

func (i *loadedIndex) Manifest() domain.IndexManifest {
	return i.reader.Manifest()
}

func (i *loadedIndex) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", domain.ErrInvalidInput, k)
	}

	vec, err := i.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrQuery, err)
	}

	results, err := i.reader.Search(ctx, vec, k)
	if err != nil {
		if errors.Is(err, domain.ErrIndexCorrupt) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: search index: %w", domain.ErrQuery, err)
	}

	logger.Debug("retrieve: %d of %d requested chunks", len(results), k)
	return results, nil
}

func (i *loadedIndex) Close() error {
	return i.reader.Close()
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is the user's PDF.
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
