package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"time"

	"case_strategy_editor/config"
	"case_strategy_editor/models"
	"case_strategy_editor/services/browser"
	"case_strategy_editor/services/pagination"
	"case_strategy_editor/services/printbridge"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"gorm.io/gorm"
)

// pointsPerInch is the PDF user space unit.
const pointsPerInch = 72.0

var (
	// ErrExportNotFound is returned for an unknown export record
	ErrExportNotFound = errors.New("export not found")
	// ErrExportNotArchived is returned when an export's PDF was never kept
	// or has been purged
	ErrExportNotArchived = errors.New("export is not archived")
)

// PDFRenderer renders markup to PDF bytes. *printbridge.Bridge satisfies it.
type PDFRenderer interface {
	RenderTitled(ctx context.Context, markup, title string) ([]byte, error)
}

// ExportOptions describes one export request
type ExportOptions struct {
	DocumentID string
	Title      string
}

// ExportResult is a rendered PDF with what could be learned about it
type ExportResult struct {
	PDF       []byte
	PageCount int
	Record    *models.ExportRecord
}

// ExportService prints markup through the render bridge, inspects the PDF,
// optionally archives it and keeps an export log
type ExportService struct {
	renderer  PDFRenderer
	engine    string
	geometry  pagination.Geometry
	archive   bool
	retention time.Duration
	db        *gorm.DB
}

// Exports is the global export service
var Exports *ExportService

// NewExportService creates an export service. database may be nil, in which
// case no export records are written.
func NewExportService(renderer PDFRenderer, engine string, geometry pagination.Geometry, database *gorm.DB) *ExportService {
	return &ExportService{renderer: renderer, engine: engine, geometry: geometry, db: database}
}

// WithArchive keeps every successful export in Storage for retention.
func (s *ExportService) WithArchive(retention time.Duration) *ExportService {
	s.archive = true
	s.retention = retention
	return s
}

// InitializeExports builds the render bridge for the configured engine and
// installs the global export service
func InitializeExports(cfg *config.Config, database *gorm.DB) error {
	bridge, err := NewBridge(cfg)
	if err != nil {
		return err
	}
	Exports = NewExportService(bridge, cfg.RenderEngine, cfg.Geometry, database)
	if cfg.ArchiveExports {
		Exports.WithArchive(cfg.ExportRetention)
	}
	log.Printf("Export service ready (engine: %s, archive: %t)", cfg.RenderEngine, cfg.ArchiveExports)
	return nil
}

// NewBridge creates the render-to-print bridge described by cfg
func NewBridge(cfg *config.Config) (*printbridge.Bridge, error) {
	engine, err := printbridge.NewEngine(cfg.RenderEngine, printbridge.EngineOptions{
		Browser: BrowserOptions(cfg),
		Viewport: printbridge.Viewport{
			Width:  int(math.Round(cfg.Geometry.PageWidth)),
			Height: int(math.Round(cfg.Geometry.PageHeight)),
		},
	})
	if err != nil {
		return nil, err
	}
	return printbridge.NewBridge(engine, printbridge.Config{
		Geometry:       cfg.Geometry,
		FontStylesheet: cfg.FontStylesheet,
		Timeout:        cfg.ExportTimeout,
	}), nil
}

// BrowserOptions maps configuration to headless Chrome options
func BrowserOptions(cfg *config.Config) browser.Options {
	return browser.Options{
		ExecPath:     cfg.ChromePath,
		RemoteURL:    cfg.BrowserRemoteURL,
		NoSandbox:    true,
		WindowWidth:  int(math.Round(cfg.Geometry.PageWidth)),
		WindowHeight: int(math.Round(cfg.Geometry.PageHeight)),
	}
}

// Export renders markup to PDF
func (s *ExportService) Export(ctx context.Context, markup string, opts ExportOptions) (*ExportResult, error) {
	start := time.Now()
	pdf, err := s.renderer.RenderTitled(ctx, markup, opts.Title)
	if err != nil {
		if !errors.Is(err, printbridge.ErrMarkupRequired) {
			log.Printf("[PDF] Export failed: %v", err)
			s.record(&models.ExportRecord{
				DocumentID: ptrIfNotEmpty(opts.DocumentID),
				Status:     models.ExportStatusFailed,
				Engine:     s.engine,
				DurationMs: time.Since(start).Milliseconds(),
				Error:      ptrIfNotEmpty(err.Error()),
			})
		}
		return nil, err
	}

	result := &ExportResult{PDF: pdf}
	if info, err := InspectPDF(pdf, s.geometry); err != nil {
		log.Printf("[PDF] Could not inspect exported PDF: %v", err)
	} else {
		result.PageCount = info.Pages
		if info.SheetMismatch {
			log.Printf("[WARNING] Exported sheet %.0fx%.0fpt does not match geometry sheet %s", info.WidthPt, info.HeightPt, s.geometry.Sheet.Name)
		}
	}

	rec := &models.ExportRecord{
		DocumentID: ptrIfNotEmpty(opts.DocumentID),
		Status:     models.ExportStatusSucceeded,
		Engine:     s.engine,
		DurationMs: time.Since(start).Milliseconds(),
		FileSize:   int64(len(pdf)),
		PageCount:  result.PageCount,
	}
	if s.archive && Storage != nil {
		now := time.Now().UTC()
		key := GenerateExportKey(opts.DocumentID, now)
		if _, err := Storage.Put(ctx, bytes.NewReader(pdf), key, "application/pdf", int64(len(pdf))); err != nil {
			log.Printf("[WARNING] Failed to archive export: %v", err)
		} else {
			expires := now.Add(s.retention)
			rec.StorageKey = key
			rec.StorageBackend = Storage.Name()
			rec.ExpiresAt = &expires
		}
	}
	s.record(rec)
	result.Record = rec
	return result, nil
}

func (s *ExportService) record(rec *models.ExportRecord) {
	if s.db == nil {
		return
	}
	if err := s.db.Create(rec).Error; err != nil {
		log.Printf("[PDF] Failed to create export record: %v", err)
	}
}

// PDFInfo is what the export path reads back from a rendered PDF
type PDFInfo struct {
	Pages         int
	WidthPt       float64
	HeightPt      float64
	SheetMismatch bool
}

// InspectPDF counts the pages of pdf and checks the first page against the
// geometry's sheet size
func InspectPDF(pdf []byte, g pagination.Geometry) (*PDFInfo, error) {
	conf := model.NewDefaultConfiguration()
	pages, err := api.PageCount(bytes.NewReader(pdf), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu page count: %w", err)
	}
	info := &PDFInfo{Pages: pages}

	dims, err := api.PageDims(bytes.NewReader(pdf), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu page dims: %w", err)
	}
	if len(dims) > 0 {
		info.WidthPt = dims[0].Width
		info.HeightPt = dims[0].Height
		wantW := g.Sheet.WidthIn * pointsPerInch
		wantH := g.Sheet.HeightIn * pointsPerInch
		info.SheetMismatch = math.Abs(info.WidthPt-wantW) > 1 || math.Abs(info.HeightPt-wantH) > 1
	}
	return info, nil
}

// ExportDocument exports a stored draft and updates its export snapshot
func (s *ExportService) ExportDocument(ctx context.Context, database *gorm.DB, id string) (*ExportResult, *models.Document, error) {
	doc, err := GetDocument(database, id)
	if err != nil {
		return nil, nil, err
	}

	result, err := s.Export(ctx, doc.Content, ExportOptions{DocumentID: doc.ID, Title: doc.Title})
	if err != nil {
		return nil, doc, err
	}

	now := time.Now()
	updates := map[string]interface{}{"last_exported_at": now}
	if result.PageCount > 0 {
		updates["page_count"] = result.PageCount
	}
	if err := database.Model(doc).UpdateColumns(updates).Error; err != nil {
		log.Printf("[PDF] Failed to update export snapshot for %s: %v", doc.ID, err)
	}
	doc.LastExportedAt = &now
	if result.PageCount > 0 {
		doc.PageCount = result.PageCount
	}
	return result, doc, nil
}

// ptrIfNotEmpty returns a pointer to the string if not empty, nil otherwise
func ptrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// OpenArchivedExport opens the archived PDF of an export record. The caller
// closes the reader.
func OpenArchivedExport(ctx context.Context, database *gorm.DB, storage StorageProvider, id string) (io.ReadCloser, *models.ExportRecord, error) {
	var rec models.ExportRecord
	if err := database.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrExportNotFound
		}
		return nil, nil, err
	}
	if !rec.IsArchived() || storage == nil || rec.StorageBackend != storage.Name() {
		return nil, &rec, ErrExportNotArchived
	}

	reader, _, err := storage.Get(ctx, rec.StorageKey)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, &rec, ErrExportNotArchived
		}
		return nil, &rec, fmt.Errorf("failed to open archived export: %w", err)
	}
	return reader, &rec, nil
}
