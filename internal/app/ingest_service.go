package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"docquery/internal/chunker"
	"docquery/internal/extract"
	"docquery/internal/index"
	"docquery/internal/model"
)

const embeddingBatchSize = 10 // most embedding APIs cap batch size

// IngestService owns the document lifecycle: synchronous extraction and
// document creation at upload time, and the chunk -> embed -> index pipeline
// that the background worker runs afterwards.
type IngestService struct {
	docRepo   DocumentStore
	chunkRepo ChunkStore
	vectorIdx index.VectorIndex
	embedder  Embedder
	scheduler IngestScheduler
	parser    *extract.Parser
	chunker   *chunker.Chunker
	log       *logrus.Logger
}

func NewIngestService(
	docRepo DocumentStore,
	chunkRepo ChunkStore,
	vectorIdx index.VectorIndex,
	embedder Embedder,
	scheduler IngestScheduler,
	parser *extract.Parser,
	textChunker *chunker.Chunker,
	log *logrus.Logger,
) *IngestService {
	return &IngestService{
		docRepo:   docRepo,
		chunkRepo: chunkRepo,
		vectorIdx: vectorIdx,
		embedder:  embedder,
		scheduler: scheduler,
		parser:    parser,
		chunker:   textChunker,
		log:       log,
	}
}

// CreateFromFile extracts the file's text, records the document, and
// schedules background ingestion. It returns once the document and its raw
// text are durable; chunking, embedding and indexing happen asynchronously.
// Structural extraction failures (unsupported type, missing file) surface
// here, before any background work is queued.
func (s *IngestService) CreateFromFile(ctx context.Context, name, path string) (*model.Document, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Untitled"
	}

	text, err := s.parser.Parse(path)
	if err != nil {
		return nil, err
	}

	doc := &model.Document{
		Name:    name,
		Content: text,
		Status:  model.DocumentStatusPending,
	}
	if err := s.docRepo.Create(doc); err != nil {
		return nil, err
	}

	if err := s.scheduler.PublishIngest(ctx, doc.ID); err != nil {
		_ = s.docRepo.UpdateStatus(doc.ID, model.DocumentStatusFailed)
		return nil, fmt.Errorf("schedule ingest failed: %w", err)
	}
	return doc, nil
}

// ProcessDocument is the worker-side pipeline for one document. Chunk rows
// and vectors are written all-or-nothing: an embedding or storage failure
// marks the document failed and leaves no partial chunks behind.
func (s *IngestService) ProcessDocument(ctx context.Context, documentID uint) error {
	doc, err := s.docRepo.GetByID(documentID)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("%w: %d", ErrDocumentNotFound, documentID)
	}

	if extract.IsDegraded(doc.Content) {
		s.log.WithField("document_id", doc.ID).Warn("ingesting degraded extraction placeholder")
	}

	chunks := s.chunker.Split(doc.Content)
	if len(chunks) == 0 {
		// No retrievable text; the document is trivially retrieval-ready.
		return s.docRepo.UpdateStatus(doc.ID, model.DocumentStatusReady)
	}

	embeddings := make([][]float32, 0, len(chunks))
	for i := 0; i < len(chunks); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch, err := s.embedder.EmbedBatch(ctx, chunks[i:end])
		if err != nil {
			_ = s.docRepo.UpdateStatus(doc.ID, model.DocumentStatusFailed)
			return fmt.Errorf("embed chunks failed: %w", err)
		}
		embeddings = append(embeddings, batch...)
	}

	rows := make([]model.Chunk, len(chunks))
	for i := range chunks {
		rows[i] = model.Chunk{
			DocumentID: doc.ID,
			Position:   i,
			Content:    chunks[i],
		}
	}
	if err := s.chunkRepo.CreateBatch(rows); err != nil {
		_ = s.docRepo.UpdateStatus(doc.ID, model.DocumentStatusFailed)
		return fmt.Errorf("store chunks failed: %w", err)
	}

	entries := make([]index.Entry, len(rows))
	for i := range rows {
		entries[i] = index.Entry{
			ChunkID:    rows[i].ID,
			DocumentID: doc.ID,
			Vector:     embeddings[i],
		}
	}
	if err := s.vectorIdx.Add(ctx, entries); err != nil {
		// Roll the chunk rows back so no partially indexed document exists.
		_ = s.chunkRepo.DeleteByDocumentID(doc.ID)
		_ = s.docRepo.UpdateStatus(doc.ID, model.DocumentStatusFailed)
		return fmt.Errorf("index chunks failed: %w", err)
	}

	if err := s.docRepo.UpdateStatus(doc.ID, model.DocumentStatusReady); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"document_id": doc.ID,
		"chunk_count": len(rows),
	}).Info("document ingested")
	return nil
}

func (s *IngestService) GetDocument(id uint) (*model.Document, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	return s.docRepo.GetByID(id)
}

func (s *IngestService) ListDocuments() ([]model.Document, error) {
	return s.docRepo.List()
}

// DocumentChunks returns the document's chunks in position order.
func (s *IngestService) DocumentChunks(id uint) ([]model.Chunk, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	doc, err := s.docRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %d", ErrDocumentNotFound, id)
	}
	return s.chunkRepo.ListByDocumentID(id)
}

// DeleteDocument removes the document, its chunk rows and its vectors.
func (s *IngestService) DeleteDocument(ctx context.Context, id uint) error {
	if id == 0 {
		return ErrInvalidInput
	}
	doc, err := s.docRepo.GetByID(id)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("%w: %d", ErrDocumentNotFound, id)
	}

	chunkCount, err := s.chunkRepo.CountByDocumentID(id)
	if err != nil {
		return err
	}

	if err := s.vectorIdx.DeleteByDocument(ctx, id); err != nil {
		return err
	}
	if err := s.chunkRepo.DeleteByDocumentID(id); err != nil {
		return err
	}
	if err := s.docRepo.Delete(id); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"document_id": id,
		"chunk_count": chunkCount,
	}).Info("document deleted")
	return nil
}
