package model

import "time"

// Chunk is a contiguous group of whole sentences from one document, the
// atomic unit of retrieval. Position is the zero-based offset of the chunk
// within its document; storage order alone is not relied on to reconstruct
// document order. The embedding vector lives in the vector index, keyed by
// chunk ID.
type Chunk struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DocumentID uint      `gorm:"not null;index" json:"document_id"`
	Position   int       `gorm:"not null" json:"position"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}
