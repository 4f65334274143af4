package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSnippet tests snippet truncation at SnippetLength characters
func TestSnippet(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "short text unchanged",
			text:     "short",
			expected: "short",
		},
		{
			name:     "exactly snippet length unchanged",
			text:     strings.Repeat("a", SnippetLength),
			expected: strings.Repeat("a", SnippetLength),
		},
		{
			name:     "long text truncated with ellipsis",
			text:     strings.Repeat("b", SnippetLength+50),
			expected: strings.Repeat("b", SnippetLength) + "...",
		},
		{
			name:     "multibyte characters counted as characters",
			text:     strings.Repeat("é", SnippetLength+1),
			expected: strings.Repeat("é", SnippetLength) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Snippet(tt.text))
		})
	}
}

// TestNewSource tests building a Source from a retrieved chunk
func TestNewSource(t *testing.T) {
	rc := RetrievedChunk{
		Chunk:      Chunk{ID: "c1", Text: "Swiggy had 500 restaurants in 2023.", PageNumber: 1},
		Similarity: 0.9,
	}

	src := NewSource(rc)

	assert.Equal(t, "Swiggy had 500 restaurants in 2023.", src.Snippet)
	assert.Equal(t, "Swiggy had 500 restaurants in 2023.", src.Content)
	assert.Equal(t, 1, src.PageNumber)
	assert.InDelta(t, 0.9, src.Similarity, 1e-9)
}

// TestQueryResult_JSON tests the JSON field names of a query result
func TestQueryResult_JSON(t *testing.T) {
	result := QueryResult{
		Answer:     "500",
		Sources:    []Source{{Snippet: "s", Content: "full", PageNumber: 2}},
		NumSources: 1,
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "500", decoded["answer"])
	assert.EqualValues(t, 1, decoded["num_sources"])
	sources, ok := decoded["sources"].([]any)
	require.True(t, ok)
	first, ok := sources[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "s", first["content"])
	assert.Equal(t, "full", first["full_content"])
	assert.EqualValues(t, 2, first["page"])
}
