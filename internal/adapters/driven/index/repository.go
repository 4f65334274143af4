package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	chromemvec "github.com/custodia-labs/pdfqa/internal/adapters/driven/vector/chromem"
	memvec "github.com/custodia-labs/pdfqa/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/pdfqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pdfqa/internal/core/domain"
	"github.com/custodia-labs/pdfqa/internal/core/ports/driven"
	"github.com/custodia-labs/pdfqa/internal/logger"
)

// VectorsDir is the chromem collection directory inside an index.
const VectorsDir = "vectors"

var _ driven.IndexRepository = (*Repository)(nil)

// Repository stores indexes on the local filesystem.
type Repository struct {
	compress bool
	now      func() time.Time
}

// Option configures a Repository.
type Option func(*Repository)

// WithCompression gzips chromem documents.
func WithCompression(compress bool) Option {
	return func(r *Repository) {
		r.compress = compress
	}
}

// NewRepository creates a filesystem index repository.
func NewRepository(opts ...Option) *Repository {
	r := &Repository{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Exists returns true if something is present at dir.
func (r *Repository) Exists(dir string) bool {
	_, err := os.Stat(dir)
	return err == nil
}

// Create takes the rebuild lock for dir and opens a staging directory.
func (r *Repository) Create(_ context.Context, dir string, backend domain.VectorBackend) (driven.IndexWriter, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: index directory is required", domain.ErrInvalidInput)
	}
	if !backend.IsValid() {
		return nil, fmt.Errorf("%w: unknown vector backend %q", domain.ErrConfiguration, backend)
	}

	dir = filepath.Clean(dir)
	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("create parent directory: %w", err)
	}

	lock := flock.New(dir + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", dir, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s is being rebuilt by another process", domain.ErrIndexLocked, dir)
	}

	staging := filepath.Join(parent, "."+filepath.Base(dir)+".staging-"+uuid.NewString())
	w := &writer{
		target:   dir,
		staging:  staging,
		backend:  backend,
		lock:     lock,
		now:      r.now,
		compress: r.compress,
	}
	if err := w.open(); err != nil {
		w.Abort() //nolint:errcheck
		return nil, err
	}

	logger.Debug("index: staging build for %s in %s", dir, staging)
	return w, nil
}

// Open loads the committed index at dir.
func (r *Repository) Open(ctx context.Context, dir string) (driven.IndexReader, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: index directory is required", domain.ErrInvalidInput)
	}

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: no index at %s", domain.ErrNotFound, dir)
		}
		return nil, fmt.Errorf("stat index: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrIndexCorrupt, dir)
	}
	if _, err := os.Stat(filepath.Join(dir, sqlite.DBFileName)); err != nil {
		return nil, fmt.Errorf("%w: %s has no %s", domain.ErrIndexCorrupt, dir, sqlite.DBFileName)
	}

	store, err := sqlite.NewStore(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexCorrupt, err)
	}

	rd, err := r.openReader(ctx, dir, store)
	if err != nil {
		store.Close()
		return nil, err
	}
	return rd, nil
}

func (r *Repository) openReader(ctx context.Context, dir string, store *sqlite.Store) (*reader, error) {
	manifest, err := store.LoadManifest(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s has no committed manifest", domain.ErrIndexCorrupt, dir)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexCorrupt, err)
	}
	if manifest.FormatVersion != domain.IndexFormatVersion {
		return nil, fmt.Errorf("%w: index format %d, this build reads %d; rebuild with --force",
			domain.ErrIndexIncompatible, manifest.FormatVersion, domain.IndexFormatVersion)
	}

	var vectors driven.VectorIndex
	switch manifest.VectorBackend {
	case domain.VectorBackendChromem:
		vectors, err = chromemvec.Open(chromemvec.Config{
			Path:     filepath.Join(dir, VectorsDir),
			Compress: r.compress,
		})
	case domain.VectorBackendSQLite:
		vectors, err = loadSQLiteVectors(ctx, store, manifest.Dimensions)
	default:
		err = fmt.Errorf("unknown vector backend %q", manifest.VectorBackend)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexCorrupt, err)
	}

	if vectors.Count() != manifest.ChunkCount {
		vectors.Close()
		return nil, fmt.Errorf("%w: manifest lists %d chunks, found %d vectors",
			domain.ErrIndexCorrupt, manifest.ChunkCount, vectors.Count())
	}

	logger.Debug("index: opened %s (%d chunks, %s backend)", dir, manifest.ChunkCount, manifest.VectorBackend)
	return &reader{manifest: *manifest, chunks: store, vectors: vectors}, nil
}

func loadSQLiteVectors(ctx context.Context, store *sqlite.Store, dims int) (*memvec.Index, error) {
	stored, err := store.ListVectors(ctx)
	if err != nil {
		return nil, err
	}
	idx := memvec.New(dims)
	for _, v := range stored {
		if err := idx.Add(ctx, v.ChunkID, v.Embedding); err != nil {
			idx.Close()
			return nil, err
		}
	}
	return idx, nil
}
