package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"case_strategy_editor/models"
	"case_strategy_editor/services/document"
	"case_strategy_editor/services/printbridge"

	"gorm.io/gorm"
)

var (
	// ErrDocumentNotFound is returned for unknown or deleted drafts
	ErrDocumentNotFound = errors.New("document not found")
	// ErrVersionConflict is returned when an autosave was based on an older
	// version than the stored one
	ErrVersionConflict = errors.New("document was modified by another save")
)

// SaveInput is one autosave of a draft
type SaveInput struct {
	Title *string
	// Content is editor HTML as serialized by the client
	Content string
	// BaseVersion is the version the client edited; 0 skips the check
	BaseVersion int
}

// NormalizeContent sanitizes editor markup and runs it through the document
// model. The returned HTML and JSON hold content only: pagination widgets
// and chrome are dropped by the parser.
func NormalizeContent(markup string) (string, string, *document.Document, error) {
	clean := printbridge.NewPolicy().Sanitize(markup)
	doc, err := document.ParseHTML(clean)
	if err != nil {
		return "", "", nil, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return doc.HTML(), string(data), doc, nil
}

// CreateDocument stores a new draft
func CreateDocument(db *gorm.DB, title, markup string) (*models.Document, error) {
	content, contentJSON, _, err := NormalizeContent(markup)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	doc := &models.Document{
		Title:       strings.TrimSpace(title),
		Content:     content,
		ContentJSON: contentJSON,
		Version:     1,
		SaveStatus:  models.SaveStatusSaved,
		PageCount:   1,
		LastSavedAt: &now,
	}
	if err := db.Create(doc).Error; err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	log.Printf("Document %s created", doc.ID)
	return doc, nil
}

// GetDocument loads a draft by ID
func GetDocument(db *gorm.DB, id string) (*models.Document, error) {
	var doc models.Document
	if err := db.Where("id = ?", id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	return &doc, nil
}

// ListDocuments returns the most recently edited drafts
func ListDocuments(db *gorm.DB, limit int) ([]models.Document, error) {
	if limit <= 0 {
		limit = 50
	}
	var docs []models.Document
	if err := db.Select("id", "title", "version", "save_status", "page_count", "updated_at", "last_exported_at").
		Order("updated_at DESC").
		Limit(limit).
		Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// SaveDocument applies an autosave. The version only increases when the
// content actually changed.
func SaveDocument(db *gorm.DB, id string, in SaveInput) (*models.Document, error) {
	content, contentJSON, _, err := NormalizeContent(in.Content)
	if err != nil {
		return nil, err
	}

	var saved *models.Document
	err = db.Transaction(func(tx *gorm.DB) error {
		doc, err := GetDocument(tx, id)
		if err != nil {
			return err
		}
		if in.BaseVersion > 0 && in.BaseVersion != doc.Version {
			return fmt.Errorf("%w: base %d, stored %d", ErrVersionConflict, in.BaseVersion, doc.Version)
		}

		// Increment version if content changed
		if doc.Content != content {
			doc.Version++
		}
		doc.Content = content
		doc.ContentJSON = contentJSON
		if in.Title != nil {
			doc.Title = strings.TrimSpace(*in.Title)
			if doc.Title == "" {
				doc.Title = models.DefaultDocumentTitle
			}
		}
		now := time.Now()
		doc.SaveStatus = models.SaveStatusSaved
		doc.LastSavedAt = &now

		if err := tx.Save(doc).Error; err != nil {
			return fmt.Errorf("failed to save document: %w", err)
		}
		saved = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// UpdatePageCount records the page count of the last pagination pass
func UpdatePageCount(db *gorm.DB, id string, pages int) error {
	res := db.Model(&models.Document{}).Where("id = ?", id).UpdateColumn("page_count", pages)
	if res.Error != nil {
		return fmt.Errorf("failed to update page count: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

// DeleteDocument soft deletes a draft
func DeleteDocument(db *gorm.DB, id string) error {
	res := db.Where("id = ?", id).Delete(&models.Document{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete document: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrDocumentNotFound
	}
	log.Printf("Document %s deleted", id)
	return nil
}
