package app

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docquery/internal/index"
	"docquery/internal/model"
)

type fakeCache struct {
	store  map[string][]float32
	getErr error
	setErr error
	sets   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string][]float32)}
}

func (c *fakeCache) Get(_ context.Context, text string) ([]float32, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	vec, ok := c.store[text]
	return vec, ok, nil
}

func (c *fakeCache) Set(_ context.Context, text string, vec []float32) error {
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	c.store[text] = vec
	return nil
}

type retrievalFixture struct {
	svc      *RetrievalService
	chunks   *fakeChunkStore
	idx      *index.MemoryIndex
	embedder *fakeEmbedder
	cache    *fakeCache
}

// newRetrievalFixture indexes three chunks for document 1 at distinct
// positions on one axis, so questions can be steered to any of them.
func newRetrievalFixture(t *testing.T) *retrievalFixture {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	f := &retrievalFixture{
		chunks:   newFakeChunkStore(),
		idx:      index.NewMemoryIndex(),
		embedder: &fakeEmbedder{vectors: map[string][]float32{}},
		cache:    newFakeCache(),
	}

	rows := []model.Chunk{
		{DocumentID: 1, Position: 0, Content: "Cats are mammals."},
		{DocumentID: 1, Position: 1, Content: "Dogs bark loudly."},
		{DocumentID: 1, Position: 2, Content: "Birds can fly."},
	}
	require.NoError(t, f.chunks.CreateBatch(rows))
	entries := make([]index.Entry, len(rows))
	for i, row := range rows {
		entries[i] = index.Entry{
			ChunkID:    row.ID,
			DocumentID: row.DocumentID,
			Vector:     []float32{float32(i * 10), 0},
		}
	}
	require.NoError(t, f.idx.Add(context.Background(), entries))

	f.svc = NewRetrievalService(f.chunks, f.idx, f.embedder, f.cache, 2, log)
	return f
}

func TestRetrieve_OrdersByDistance(t *testing.T) {
	f := newRetrievalFixture(t)
	f.embedder.vectors["about dogs"] = []float32{11, 0}

	results, err := f.svc.Retrieve(context.Background(), 1, "about dogs", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "Dogs bark loudly.", results[0].Text)
	assert.Equal(t, "Birds can fly.", results[1].Text)
	assert.Equal(t, "Cats are mammals.", results[2].Text)
	assert.Equal(t, uint(2), results[0].ChunkID)
}

func TestRetrieve_DefaultLimit(t *testing.T) {
	f := newRetrievalFixture(t)
	f.embedder.vectors["anything"] = []float32{0, 0}

	// limit 0 falls back to the configured default of 2.
	results, err := f.svc.Retrieve(context.Background(), 1, "anything", 0)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRetrieve_NegativeLimit(t *testing.T) {
	f := newRetrievalFixture(t)
	_, err := f.svc.Retrieve(context.Background(), 1, "anything", -1)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestRetrieve_BlankQuestion(t *testing.T) {
	f := newRetrievalFixture(t)
	_, err := f.svc.Retrieve(context.Background(), 1, "  \n ", 3)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRetrieve_UnknownDocumentIsEmpty(t *testing.T) {
	f := newRetrievalFixture(t)
	f.embedder.vectors["anything"] = []float32{0, 0}

	results, err := f.svc.Retrieve(context.Background(), 99, "anything", 3)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestRetrieve_CachesQuestionEmbedding(t *testing.T) {
	f := newRetrievalFixture(t)
	f.embedder.vectors["about dogs"] = []float32{11, 0}

	_, err := f.svc.Retrieve(context.Background(), 1, "about dogs", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, f.embedder.calls)
	assert.Equal(t, []float32{11, 0}, f.cache.store["about dogs"])

	// Second run hits the cache, not the embedder.
	_, err = f.svc.Retrieve(context.Background(), 1, "about dogs", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, f.embedder.calls)
}

func TestRetrieve_CacheErrorDegradesToMiss(t *testing.T) {
	f := newRetrievalFixture(t)
	f.cache.getErr = errors.New("redis down")
	f.cache.setErr = errors.New("redis down")
	f.embedder.vectors["about dogs"] = []float32{11, 0}

	results, err := f.svc.Retrieve(context.Background(), 1, "about dogs", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Dogs bark loudly.", results[0].Text)
	assert.Equal(t, 1, f.embedder.calls)
}

func TestRetrieve_NilCache(t *testing.T) {
	f := newRetrievalFixture(t)
	log := logrus.New()
	log.SetOutput(io.Discard)
	svc := NewRetrievalService(f.chunks, f.idx, f.embedder, nil, 2, log)
	f.embedder.vectors["anything"] = []float32{0, 0}

	results, err := svc.Retrieve(context.Background(), 1, "anything", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestRetrieve_MissingChunkRowSkipped(t *testing.T) {
	f := newRetrievalFixture(t)
	f.embedder.vectors["anything"] = []float32{0, 0}

	// Simulate an index entry whose row was deleted out from under it.
	delete(f.chunks.chunks, 1)

	results, err := f.svc.Retrieve(context.Background(), 1, "anything", 3)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, uint(2), results[0].ChunkID)
	assert.Equal(t, uint(3), results[1].ChunkID)
}
