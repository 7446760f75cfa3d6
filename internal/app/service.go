// Package app wires the ingestion and retrieval pipelines over their
// boundary dependencies (embedder, vector index, repositories, job queue).
package app

import (
	"context"
	"errors"

	"docquery/internal/model"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidLimit     = errors.New("result limit must be positive")
	ErrDocumentNotFound = errors.New("document not found")
)

// Embedder converts text into fixed-dimension vectors over a remote model.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// IngestScheduler queues background ingestion of a stored document.
type IngestScheduler interface {
	PublishIngest(ctx context.Context, documentID uint) error
}

// QueryEmbeddingCache memoizes question embeddings. Implementations may
// fail; callers treat any cache error as a miss.
type QueryEmbeddingCache interface {
	Get(ctx context.Context, text string) ([]float32, bool, error)
	Set(ctx context.Context, text string, vec []float32) error
}

// DocumentStore and ChunkStore are the slices of the repositories the
// services depend on; the gorm repositories satisfy them, tests substitute
// in-memory fakes.
type DocumentStore interface {
	Create(doc *model.Document) error
	GetByID(id uint) (*model.Document, error)
	List() ([]model.Document, error)
	UpdateStatus(id uint, status string) error
	Delete(id uint) error
}

type ChunkStore interface {
	CreateBatch(chunks []model.Chunk) error
	GetByIDs(ids []uint) ([]model.Chunk, error)
	ListByDocumentID(documentID uint) ([]model.Chunk, error)
	CountByDocumentID(documentID uint) (int64, error)
	DeleteByDocumentID(documentID uint) error
}
