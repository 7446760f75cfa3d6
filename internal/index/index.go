// Package index provides the nearest-neighbor store for chunk embeddings.
package index

import (
	"context"
	"sort"
)

// Entry is one chunk's vector, keyed by chunk and owning document.
type Entry struct {
	ChunkID    uint
	DocumentID uint
	Vector     []float32
}

// Match is a single nearest-neighbor result. Distance is the L2 metric
// reported by the index (squared L2 for both implementations here); only
// its ordering is meaningful to callers.
type Match struct {
	ChunkID  uint
	Distance float32
}

// VectorIndex persists chunk vectors and answers nearest-neighbor queries
// scoped to one document. Results are ordered by ascending distance; equal
// distances break by ascending chunk ID, so repeating a query against
// unchanged data returns identical output.
type VectorIndex interface {
	Add(ctx context.Context, entries []Entry) error
	Search(ctx context.Context, documentID uint, vector []float32, limit int) ([]Match, error)
	DeleteByDocument(ctx context.Context, documentID uint) error
}

func sortMatches(matches []Match) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].ChunkID < matches[j].ChunkID
	})
}
