package models

import (
	"time"
)

// QueueCounter is the per-date sequence behind queue numbers. The
// allocator increments LastNumber inside the order transaction while
// holding the per-date lock, so numbers are never skipped or duplicated.
type QueueCounter struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QueueDate  string    `gorm:"uniqueIndex;not null" json:"queue_date"` // YYYY-MM-DD
	LastNumber int       `gorm:"not null;default:0" json:"last_number"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for the QueueCounter model
func (QueueCounter) TableName() string {
	return "queue_counters"
}

// QueueReset records a manual daily queue reset. The unique index on
// ResetDate enforces at most one reset per calendar day.
type QueueReset struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ResetDate string    `gorm:"uniqueIndex;not null" json:"reset_date"` // YYYY-MM-DD
	ResetBy   uint      `gorm:"not null" json:"reset_by"`               // staff student ID
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the QueueReset model
func (QueueReset) TableName() string {
	return "queue_resets"
}
