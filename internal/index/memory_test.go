package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedIndex(t *testing.T) *MemoryIndex {
	t.Helper()
	idx := NewMemoryIndex()
	err := idx.Add(context.Background(), []Entry{
		{ChunkID: 1, DocumentID: 7, Vector: []float32{0, 0}},
		{ChunkID: 2, DocumentID: 7, Vector: []float32{3, 4}},
		{ChunkID: 3, DocumentID: 7, Vector: []float32{1, 0}},
		{ChunkID: 4, DocumentID: 8, Vector: []float32{0, 0}},
	})
	require.NoError(t, err)
	return idx
}

func chunkIDs(matches []Match) []uint {
	ids := make([]uint, len(matches))
	for i, m := range matches {
		ids[i] = m.ChunkID
	}
	return ids
}

func TestMemoryIndex_SearchOrdersByDistance(t *testing.T) {
	idx := seedIndex(t)

	matches, err := idx.Search(context.Background(), 7, []float32{0, 0}, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 3, 2}, chunkIDs(matches))
	for i := 1; i < len(matches); i++ {
		assert.LessOrEqual(t, matches[i-1].Distance, matches[i].Distance)
	}
}

func TestMemoryIndex_TieBreaksByChunkID(t *testing.T) {
	idx := NewMemoryIndex()
	// Insert out of ID order so map iteration cannot mask a missing sort.
	err := idx.Add(context.Background(), []Entry{
		{ChunkID: 9, DocumentID: 1, Vector: []float32{1, 0}},
		{ChunkID: 2, DocumentID: 1, Vector: []float32{0, 1}},
		{ChunkID: 5, DocumentID: 1, Vector: []float32{-1, 0}},
	})
	require.NoError(t, err)

	// All three are equidistant from the origin.
	matches, err := idx.Search(context.Background(), 1, []float32{0, 0}, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{2, 5, 9}, chunkIDs(matches))
}

func TestMemoryIndex_SearchIsDeterministic(t *testing.T) {
	idx := seedIndex(t)

	first, err := idx.Search(context.Background(), 7, []float32{2, 2}, 10)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := idx.Search(context.Background(), 7, []float32{2, 2}, 10)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestMemoryIndex_LimitTrims(t *testing.T) {
	idx := seedIndex(t)

	matches, err := idx.Search(context.Background(), 7, []float32{0, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 3}, chunkIDs(matches))
}

func TestMemoryIndex_ScopedToDocument(t *testing.T) {
	idx := seedIndex(t)

	matches, err := idx.Search(context.Background(), 8, []float32{0, 0}, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{4}, chunkIDs(matches))
}

func TestMemoryIndex_UnknownDocumentIsEmpty(t *testing.T) {
	idx := seedIndex(t)

	matches, err := idx.Search(context.Background(), 99, []float32{0, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMemoryIndex_DeleteByDocument(t *testing.T) {
	idx := seedIndex(t)
	require.NoError(t, idx.DeleteByDocument(context.Background(), 7))

	matches, err := idx.Search(context.Background(), 7, []float32{0, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, matches)

	// The other document's vectors survive.
	matches, err = idx.Search(context.Background(), 8, []float32{0, 0}, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{4}, chunkIDs(matches))
}

func TestMemoryIndex_AddCopiesVectors(t *testing.T) {
	idx := NewMemoryIndex()
	vec := []float32{1, 1}
	require.NoError(t, idx.Add(context.Background(), []Entry{{ChunkID: 1, DocumentID: 1, Vector: vec}}))

	vec[0] = 100 // mutating the caller's slice must not move the stored vector

	matches, err := idx.Search(context.Background(), 1, []float32{1, 1}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, float32(0), matches[0].Distance)
}
