package chromem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_AddAndSearch(t *testing.T) {
	ctx := context.Background()
	idx, err := Open(Config{Path: t.TempDir()})
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.AddBatch(ctx,
		[]string{"x", "y", "xy"},
		[][]float32{{1, 0, 0}, {0, 1, 0}, {1, 1, 0}},
	))
	assert.Equal(t, 3, idx.Count())

	hits, err := idx.Search(ctx, []float32{2, 0.1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "x", hits[0].ChunkID)
	assert.Equal(t, "xy", hits[1].ChunkID)
	assert.GreaterOrEqual(t, hits[0].Similarity, hits[1].Similarity)
}

func TestIndex_KCappedAtCount(t *testing.T) {
	ctx := context.Background()
	idx, err := Open(Config{Path: t.TempDir()})
	require.NoError(t, err)

	require.NoError(t, idx.Add(ctx, "a", []float32{1, 0}))
	require.NoError(t, idx.Add(ctx, "b", []float32{0, 1}))

	hits, err := idx.Search(ctx, []float32{1, 1}, 4)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestIndex_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := Open(Config{Path: dir, Compress: true})
	require.NoError(t, err)
	require.NoError(t, first.AddBatch(ctx, []string{"a", "b"}, [][]float32{{1, 0}, {0, 1}}))
	require.NoError(t, first.Close())

	second, err := Open(Config{Path: dir, Compress: true})
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, 2, second.Count())
	hits, err := second.Search(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "b", hits[0].ChunkID)
}

func TestIndex_DoesNotMutateInput(t *testing.T) {
	idx, err := Open(Config{Path: t.TempDir()})
	require.NoError(t, err)

	vec := []float32{3, 4}
	require.NoError(t, idx.Add(context.Background(), "a", vec))
	assert.Equal(t, []float32{3, 4}, vec)
}

func TestIndex_Empty(t *testing.T) {
	idx, err := Open(Config{Path: t.TempDir()})
	require.NoError(t, err)

	hits, err := idx.Search(context.Background(), []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, hits)

	require.NoError(t, idx.Close())
	_, err = idx.Search(context.Background(), []float32{1, 0}, 3)
	assert.Error(t, err)
	assert.Zero(t, idx.Count())
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}
