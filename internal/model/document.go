package model

import "time"

// Document ingestion status. A document is created as pending when its raw
// text is stored, becomes ready once all chunks are embedded and indexed,
// and failed if the embed/index phase aborts.
const (
	DocumentStatusPending = "pending"
	DocumentStatusReady   = "ready"
	DocumentStatusFailed  = "failed"
)

type Document struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:256;not null" json:"name"`
	Content   string    `gorm:"type:longtext;not null" json:"-"`
	Status    string    `gorm:"size:16;not null;default:pending" json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
