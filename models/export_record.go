package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Export status constants
const (
	ExportStatusSucceeded = "succeeded"
	ExportStatusFailed    = "failed"
)

// ExportRecord is an immutable log entry for one PDF export
type ExportRecord struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_export_created_at" json:"created_at"`

	// Source draft, nil for ad-hoc exports of posted markup
	DocumentID *string   `gorm:"type:uuid;index:idx_export_document" json:"document_id,omitempty"`
	Document   *Document `gorm:"foreignKey:DocumentID" json:"-"`

	Status     string  `gorm:"not null;index:idx_export_status" json:"status"`
	Engine     string  `gorm:"not null" json:"engine"`
	DurationMs int64   `json:"duration_ms"`
	Error      *string `gorm:"type:text" json:"error,omitempty"`

	// Result
	FileSize  int64 `json:"file_size"`
	PageCount int   `json:"page_count"`

	// Archive (only when ARCHIVE_EXPORTS is on)
	StorageKey     string     `json:"storage_key,omitempty"`
	StorageBackend string     `json:"storage_backend,omitempty"`
	ExpiresAt      *time.Time `gorm:"index:idx_export_expires_at" json:"expires_at,omitempty"`
}

// BeforeCreate hook to generate UUID
func (e *ExportRecord) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for ExportRecord model
func (ExportRecord) TableName() string {
	return "export_records"
}

// IsArchived reports whether the export PDF is still kept in storage
func (e *ExportRecord) IsArchived() bool {
	return e.StorageKey != ""
}
