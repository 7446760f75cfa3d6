package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"docquery/internal/index"
)

const defaultQueryLimit = 10

// RetrievedChunk is one ranked retrieval result.
type RetrievedChunk struct {
	ChunkID uint   `json:"chunk_id"`
	Text    string `json:"chunk_text"`
}

// RetrievalService answers a question against one document's chunks:
// embed the question, nearest-neighbor search scoped to the document,
// resolve chunk texts. A document with no chunks (or an unknown document)
// yields an empty result, not an error.
type RetrievalService struct {
	chunkRepo    ChunkStore
	vectorIdx    index.VectorIndex
	embedder     Embedder
	cache        QueryEmbeddingCache // nil disables caching
	defaultLimit int
	log          *logrus.Logger
}

func NewRetrievalService(
	chunkRepo ChunkStore,
	vectorIdx index.VectorIndex,
	embedder Embedder,
	cache QueryEmbeddingCache,
	defaultLimit int,
	log *logrus.Logger,
) *RetrievalService {
	if defaultLimit <= 0 {
		defaultLimit = defaultQueryLimit
	}
	return &RetrievalService{
		chunkRepo:    chunkRepo,
		vectorIdx:    vectorIdx,
		embedder:     embedder,
		cache:        cache,
		defaultLimit: defaultLimit,
		log:          log,
	}
}

// Retrieve returns up to limit chunks of documentID ordered by ascending
// distance to the question's embedding; ties break by ascending chunk ID.
// limit 0 means the configured default; a negative limit is rejected.
func (s *RetrievalService) Retrieve(ctx context.Context, documentID uint, question string, limit int) ([]RetrievedChunk, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrInvalidInput
	}
	if limit == 0 {
		limit = s.defaultLimit
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	vec, err := s.queryEmbedding(ctx, question)
	if err != nil {
		return nil, err
	}

	matches, err := s.vectorIdx.Search(ctx, documentID, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	if len(matches) == 0 {
		return []RetrievedChunk{}, nil
	}

	ids := make([]uint, len(matches))
	for i, m := range matches {
		ids[i] = m.ChunkID
	}
	rows, err := s.chunkRepo.GetByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]string, len(rows))
	for _, row := range rows {
		byID[row.ID] = row.Content
	}

	results := make([]RetrievedChunk, 0, len(matches))
	for _, m := range matches {
		text, ok := byID[m.ChunkID]
		if !ok {
			s.log.WithFields(logrus.Fields{
				"chunk_id":    m.ChunkID,
				"document_id": documentID,
			}).Warn("indexed chunk missing from storage")
			continue
		}
		results = append(results, RetrievedChunk{ChunkID: m.ChunkID, Text: text})
	}
	return results, nil
}

func (s *RetrievalService) queryEmbedding(ctx context.Context, question string) ([]float32, error) {
	if s.cache != nil {
		vec, ok, err := s.cache.Get(ctx, question)
		if err != nil {
			s.log.Warnf("embedding cache read failed: %v", err)
		} else if ok {
			return vec, nil
		}
	}

	vec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question failed: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, question, vec); err != nil {
			s.log.Warnf("embedding cache write failed: %v", err)
		}
	}
	return vec, nil
}
