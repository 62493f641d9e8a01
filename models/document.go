package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Save status constants, mirrored by the editor's autosave indicator
const (
	SaveStatusSaved   = "saved"
	SaveStatusSaving  = "saving"
	SaveStatusUnsaved = "unsaved"
)

// DefaultDocumentTitle is used when a draft is created without a title
const DefaultDocumentTitle = "Untitled strategy"

// Document is a case strategy draft edited in the paginated editor
type Document struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Title string `gorm:"not null" json:"title"`

	// Content is the sanitized editor HTML; ContentJSON the same document in
	// the editor's JSON form. Neither ever contains pagination markers.
	Content     string `gorm:"type:text;not null;default:''" json:"content"`
	ContentJSON string `gorm:"type:text" json:"content_json,omitempty"`

	// Versioning
	Version    int    `gorm:"not null;default:1" json:"version"`
	SaveStatus string `gorm:"not null;default:saved" json:"save_status"`

	// Pagination snapshot from the last server-side pass or export
	PageCount      int        `gorm:"not null;default:1" json:"page_count"`
	LastSavedAt    *time.Time `json:"last_saved_at,omitempty"`
	LastExportedAt *time.Time `json:"last_exported_at,omitempty"`
}

// BeforeCreate hook to generate UUID
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.Title == "" {
		d.Title = DefaultDocumentTitle
	}
	return nil
}

// TableName specifies the table name for Document model
func (Document) TableName() string {
	return "documents"
}

// IsValidSaveStatus checks if the save status is valid
func IsValidSaveStatus(status string) bool {
	return status == SaveStatusSaved || status == SaveStatusSaving || status == SaveStatusUnsaved
}
