package domain

import "time"

// IndexFormatVersion is bumped whenever the on-disk index layout changes.
const IndexFormatVersion = 1

// DefaultIndexDir is the directory an index is persisted to when none is given.
const DefaultIndexDir = "faiss_index"

// VectorBackend selects how vectors are persisted inside an index directory.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendChromem persists vectors in a chromem-go collection.
	VectorBackendChromem VectorBackend = "chromem"

	// VectorBackendSQLite persists vectors as blobs next to the chunks
	// and searches them in memory.
	VectorBackendSQLite VectorBackend = "sqlite"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	return b == VectorBackendChromem || b == VectorBackendSQLite
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// IndexManifest describes how a persisted index was built.
type IndexManifest struct {
	// FormatVersion is the on-disk layout version.
	FormatVersion int `json:"format_version"`

	// EmbeddingModel identifies the model that produced the vectors.
	EmbeddingModel string `json:"embedding_model"`

	// Dimensions is the vector size.
	Dimensions int `json:"dimensions"`

	// VectorBackend is where the vectors live.
	VectorBackend VectorBackend `json:"vector_backend"`

	// SourcePath is the PDF the index was built from.
	SourcePath string `json:"source_path"`

	// SourceSHA256 is the hex digest of the PDF at build time.
	SourceSHA256 string `json:"source_sha256"`

	// PageCount is the number of non-blank pages extracted.
	PageCount int `json:"page_count"`

	// ChunkCount is the number of chunks indexed.
	ChunkCount int `json:"chunk_count"`

	// ChunkSize and ChunkOverlap record the chunking policy.
	ChunkSize    int `json:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap"`

	// BuiltAt is when the index was committed.
	BuiltAt time.Time `json:"built_at"`
}

// CompatibleWith returns true if vectors in this index can be compared with
// vectors produced by the given embedding model.
func (m IndexManifest) CompatibleWith(model string, dimensions int) bool {
	if m.EmbeddingModel != model {
		return false
	}
	// Zero means the embedder only learns its size after the first call.
	return dimensions == 0 || m.Dimensions == dimensions
}

// BuildRequest asks for an index to be built or loaded.
type BuildRequest struct {
	// PDFPath is the document to index. It may be empty when only loading.
	PDFPath string

	// IndexDir is where the index is persisted. Defaults to DefaultIndexDir.
	IndexDir string

	// ForceRebuild discards any existing index at IndexDir.
	ForceRebuild bool
}
