package index

import (
	"context"
	"sync"
)

// MemoryIndex is an exact-scan VectorIndex. It backs tests and is good
// enough for single-node deployments with few documents; the Milvus index
// is the sizable-deployment implementation.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[uint]Entry
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{entries: make(map[uint]Entry)}
}

func (m *MemoryIndex) Add(_ context.Context, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		vec := make([]float32, len(e.Vector))
		copy(vec, e.Vector)
		e.Vector = vec
		m.entries[e.ChunkID] = e
	}
	return nil
}

func (m *MemoryIndex) Search(_ context.Context, documentID uint, vector []float32, limit int) ([]Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []Match
	for _, e := range m.entries {
		if e.DocumentID != documentID {
			continue
		}
		matches = append(matches, Match{
			ChunkID:  e.ChunkID,
			Distance: squaredL2(vector, e.Vector),
		})
	}
	sortMatches(matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (m *MemoryIndex) DeleteByDocument(_ context.Context, documentID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.entries {
		if e.DocumentID == documentID {
			delete(m.entries, id)
		}
	}
	return nil
}

// squaredL2 orders identically to true L2 distance.
func squaredL2(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
