package pages

import (
	"time"

	"case_strategy_editor/models"
	"case_strategy_editor/services/pagination"
)

// AutosaveDelay is how long the page waits after the last keystroke before
// saving
const AutosaveDelay = 1200 * time.Millisecond

// PaginateDelay is how long the page waits after the last keystroke before
// asking the server for fresh page breaks
const PaginateDelay = 400 * time.Millisecond

// EditorPage holds the data for the editor page
type EditorPage struct {
	DocumentID     string
	Title          string
	Content        string
	Version        int
	SaveStatus     string
	LastSavedAt    *time.Time
	Geometry       pagination.Geometry
	FontStylesheet string
}

// NewEditorPage builds the page for a stored draft, or for a blank one when
// doc is nil
func NewEditorPage(doc *models.Document, g pagination.Geometry, fontStylesheet string) EditorPage {
	page := EditorPage{
		Title:          models.DefaultDocumentTitle,
		SaveStatus:     models.SaveStatusSaved,
		Geometry:       g,
		FontStylesheet: fontStylesheet,
	}
	if doc != nil {
		page.DocumentID = doc.ID
		page.Title = doc.Title
		page.Content = doc.Content
		page.Version = doc.Version
		page.SaveStatus = doc.SaveStatus
		page.LastSavedAt = doc.LastSavedAt
	}
	return page
}

// editorConfig is handed to the page script as JSON
type editorConfig struct {
	DocumentID      string              `json:"documentId"`
	Version         int                 `json:"version"`
	Geometry        pagination.Geometry `json:"geometry"`
	AutosaveDelayMs int64               `json:"autosaveDelayMs"`
	PaginateDelayMs int64               `json:"paginateDelayMs"`
	MarkerClass     string              `json:"markerClass"`
	MarkerAttr      string              `json:"markerAttr"`
}

func (p EditorPage) config() editorConfig {
	return editorConfig{
		DocumentID:      p.DocumentID,
		Version:         p.Version,
		Geometry:        p.Geometry,
		AutosaveDelayMs: AutosaveDelay.Milliseconds(),
		PaginateDelayMs: PaginateDelay.Milliseconds(),
		MarkerClass:     pagination.MarkerClass,
		MarkerAttr:      pagination.MarkerAttr,
	}
}
