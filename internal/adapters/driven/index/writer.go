package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	chromemvec "github.com/custodia-labs/pdfqa/internal/adapters/driven/vector/chromem"
	"github.com/custodia-labs/pdfqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pdfqa/internal/core/domain"
	"github.com/custodia-labs/pdfqa/internal/core/ports/driven"
	"github.com/custodia-labs/pdfqa/internal/logger"
)

var _ driven.IndexWriter = (*writer)(nil)

// writer fills a staging directory and swaps it into place on Commit.
type writer struct {
	target   string
	staging  string
	backend  domain.VectorBackend
	lock     *flock.Flock
	now      func() time.Time
	compress bool

	store   *sqlite.Store
	vectors *chromemvec.Index
	count   int
	dims    int
	done    bool
}

func (w *writer) open() error {
	store, err := sqlite.NewStore(w.staging)
	if err != nil {
		return fmt.Errorf("open staging store: %w", err)
	}
	w.store = store

	if w.backend == domain.VectorBackendChromem {
		vectors, err := chromemvec.Open(chromemvec.Config{
			Path:     filepath.Join(w.staging, VectorsDir),
			Compress: w.compress,
		})
		if err != nil {
			return fmt.Errorf("open staging vectors: %w", err)
		}
		w.vectors = vectors
	}
	return nil
}

func (w *writer) Write(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if w.done {
		return errors.New("index: writer already finished")
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: %d chunks for %d vectors", domain.ErrInvalidInput, len(chunks), len(vectors))
	}
	for i, v := range vectors {
		if w.dims == 0 {
			w.dims = len(v)
		}
		if len(v) != w.dims {
			return fmt.Errorf("%w: vector %d has %d dimensions, want %d", domain.ErrInvalidInput, i, len(v), w.dims)
		}
	}

	if err := w.store.SaveChunks(ctx, chunks); err != nil {
		return err
	}

	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
	}
	switch w.backend {
	case domain.VectorBackendSQLite:
		if err := w.store.SaveVectors(ctx, ids, vectors); err != nil {
			return err
		}
	default:
		if err := w.vectors.AddBatch(ctx, ids, vectors); err != nil {
			return err
		}
	}

	w.count += len(chunks)
	return nil
}

// Commit writes the manifest last, then replaces the target directory.
// The previous index is moved aside first so the target is never half
// written.
func (w *writer) Commit(ctx context.Context, manifest domain.IndexManifest) error {
	if w.done {
		return errors.New("index: writer already finished")
	}

	manifest.FormatVersion = domain.IndexFormatVersion
	manifest.VectorBackend = w.backend
	manifest.ChunkCount = w.count
	if manifest.Dimensions == 0 {
		manifest.Dimensions = w.dims
	}
	if manifest.BuiltAt.IsZero() {
		manifest.BuiltAt = w.now().UTC()
	}

	if err := w.store.SaveManifest(ctx, manifest); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}
	if err := w.closeStores(); err != nil {
		return fmt.Errorf("close staging index: %w", err)
	}

	backup := ""
	if _, err := os.Stat(w.target); err == nil {
		backup = w.staging + ".old"
		if err := os.Rename(w.target, backup); err != nil {
			return fmt.Errorf("move previous index aside: %w", err)
		}
	}
	if err := os.Rename(w.staging, w.target); err != nil {
		if backup != "" {
			_ = os.Rename(backup, w.target)
		}
		return fmt.Errorf("install index: %w", err)
	}
	if backup != "" {
		if err := os.RemoveAll(backup); err != nil {
			logger.Warn("could not remove previous index at %s: %v", backup, err)
		}
	}

	w.done = true
	logger.Debug("index: committed %d chunks to %s", w.count, w.target)
	return w.lock.Unlock()
}

func (w *writer) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	err := w.closeStores()
	if rmErr := os.RemoveAll(w.staging); rmErr != nil {
		err = errors.Join(err, rmErr)
	}
	return errors.Join(err, w.lock.Unlock())
}

func (w *writer) closeStores() error {
	var err error
	if w.vectors != nil {
		err = w.vectors.Close()
		w.vectors = nil
	}
	if w.store != nil {
		err = errors.Join(err, w.store.Close())
		w.store = nil
	}
	return err
}
