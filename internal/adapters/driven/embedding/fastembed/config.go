// Package fastembed provides an in-process embedding service backed by
// ONNX sentence-transformer models. The real implementation needs cgo;
// builds without it get a stub that reports domain.ErrNotImplemented.
package fastembed

import (
	"os"
	"path/filepath"
)

// Default configuration values.
const (
	DefaultModel     = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultMaxLength = 512
	DefaultBatchSize = 64
)

// Config holds configuration for the FastEmbed embedding service.
type Config struct {
	// Model is the sentence-transformer model (default: all-MiniLM-L6-v2).
	Model string

	// CacheDir is where model files are downloaded (default: ~/.pdfqa/models).
	CacheDir string

	// MaxLength is the maximum input sequence length in tokens.
	MaxLength int

	// BatchSize is the number of texts embedded per ONNX run.
	BatchSize int
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir()
	}
	if c.MaxLength == 0 {
		c.MaxLength = DefaultMaxLength
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	return c
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "local_cache")
	}
	return filepath.Join(home, ".pdfqa", "models")
}
