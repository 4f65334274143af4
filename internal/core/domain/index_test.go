package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestVectorBackend_IsValid tests vector backend validation
func TestVectorBackend_IsValid(t *testing.T) {
	assert.True(t, VectorBackendChromem.IsValid())
	assert.True(t, VectorBackendSQLite.IsValid())
	assert.False(t, VectorBackend("").IsValid())
	assert.False(t, VectorBackend("faiss").IsValid())
}

// TestIndexManifest_CompatibleWith tests the embedding model compatibility check
func TestIndexManifest_CompatibleWith(t *testing.T) {
	m := IndexManifest{EmbeddingModel: "sentence-transformers/all-MiniLM-L6-v2", Dimensions: 384}

	tests := []struct {
		name       string
		model      string
		dimensions int
		expected   bool
	}{
		{"same model and size", "sentence-transformers/all-MiniLM-L6-v2", 384, true},
		{"same model unknown size", "sentence-transformers/all-MiniLM-L6-v2", 0, true},
		{"same model different size", "sentence-transformers/all-MiniLM-L6-v2", 768, false},
		{"different model", "text-embedding-3-small", 384, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, m.CompatibleWith(tt.model, tt.dimensions))
		})
	}
}
