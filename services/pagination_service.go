package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"case_strategy_editor/config"
	"case_strategy_editor/services/browser"
	"case_strategy_editor/services/document"
	"case_strategy_editor/services/editor"
	"case_strategy_editor/services/layout"
	"case_strategy_editor/services/pagination"
	"case_strategy_editor/services/printbridge"
)

// SurfaceFactory opens a fresh rendered surface for one pagination run
type SurfaceFactory func(ctx context.Context) (editor.Surface, error)

// PaginationResult is the outcome of one server-side pagination pass
type PaginationResult struct {
	Boundaries   []pagination.Boundary `json:"boundaries"`
	// BlockIndexes holds, per boundary, the index of the top-level block
	// the break is placed before
	BlockIndexes []int                 `json:"block_indexes"`
	Pages        int                   `json:"pages"`
	Geometry     pagination.Geometry   `json:"geometry"`
}

// PaginationService runs the live pagination pipeline (view, observer,
// calculator, renderer) against a headless surface so clients and the CLI
// get the same boundaries the editor shows
type PaginationService struct {
	geometry      pagination.Geometry
	frameInterval time.Duration
	timeout       time.Duration
	newSurface    SurfaceFactory
}

// Paginator is the global pagination service
var Paginator *PaginationService

// NewPaginationService creates a pagination service over surfaces
func NewPaginationService(g pagination.Geometry, frameInterval, timeout time.Duration, surfaces SurfaceFactory) *PaginationService {
	if timeout <= 0 {
		timeout = printbridge.DefaultTimeout
	}
	return &PaginationService{geometry: g, frameInterval: frameInterval, timeout: timeout, newSurface: surfaces}
}

// InitializePagination installs the global pagination service backed by a
// lazily started Chrome session. The returned func shuts the session down.
func InitializePagination(cfg *config.Config) func() {
	surfaces, shutdown := BrowserSurfaces(BrowserOptions(cfg), cfg.Geometry, cfg.FontStylesheet)
	Paginator = NewPaginationService(cfg.Geometry, cfg.FrameInterval, cfg.ExportTimeout, surfaces)
	return shutdown
}

// BrowserSurfaces returns a factory opening one Chrome tab per surface. The
// browser itself is started on first use and shared by every tab.
func BrowserSurfaces(opts browser.Options, g pagination.Geometry, fontStylesheet string) (SurfaceFactory, func()) {
	shared := &sharedBrowser{
		start: func(ctx context.Context) (tabSource, error) {
			return browser.Start(ctx, opts)
		},
		open: func(tab context.Context, cancel context.CancelFunc) (editor.Surface, error) {
			return layout.NewBrowserSurface(tab, cancel, g, fontStylesheet)
		},
	}
	return shared.Surface, shared.Shutdown
}

// tabSource is a running browser that hands out tabs. *browser.Session
// implements it.
type tabSource interface {
	NewTab() (context.Context, context.CancelFunc)
	Alive() bool
	Close()
}

// sharedBrowser keeps one browser for every surface and replaces it when it
// dies
type sharedBrowser struct {
	mu      sync.Mutex
	session tabSource
	start   func(ctx context.Context) (tabSource, error)
	open    func(tab context.Context, cancel context.CancelFunc) (editor.Surface, error)
}

// Surface opens a surface in a fresh tab. Both the browser start and the tab
// setup are bounded by ctx.
func (b *sharedBrowser) Surface(ctx context.Context) (editor.Surface, error) {
	b.mu.Lock()
	if b.session != nil && !b.session.Alive() {
		log.Printf("[BROWSER] Shared Chrome session is gone, restarting")
		b.session.Close()
		b.session = nil
	}
	if b.session == nil {
		s, err := b.start(ctx)
		if err != nil {
			b.mu.Unlock()
			return nil, err
		}
		b.session = s
	}
	session := b.session
	tab, cancel := session.NewTab()
	b.mu.Unlock()

	stop := context.AfterFunc(ctx, cancel)
	surface, err := b.open(tab, cancel)
	if !stop() && err == nil {
		_ = surface.Close()
		return nil, ctx.Err()
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// A tab that fails while the caller still has time means the browser
		// went away; the next call starts a new one.
		b.drop(session)
		return nil, err
	}
	return surface, nil
}

func (b *sharedBrowser) drop(session tabSource) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session == session {
		log.Printf("[BROWSER] Discarding shared Chrome session after a failed tab")
		b.session.Close()
		b.session = nil
	}
}

// Shutdown closes the shared browser if one is running.
func (b *sharedBrowser) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session != nil {
		b.session.Close()
		b.session = nil
	}
}

// Geometry returns the page geometry used for every pass
func (s *PaginationService) Geometry() pagination.Geometry {
	return s.geometry
}

// Paginate lays markup out on a fresh surface and returns the boundaries of
// the first pagination pass
func (s *PaginationService) Paginate(ctx context.Context, markup string) (*PaginationResult, error) {
	if strings.TrimSpace(markup) == "" {
		return nil, printbridge.ErrMarkupRequired
	}
	doc, err := document.ParseHTML(printbridge.NewPolicy().Sanitize(markup))
	if err != nil {
		return nil, err
	}
	return s.PaginateDocument(ctx, doc)
}

// PaginateDocument paginates an already parsed document
func (s *PaginationService) PaginateDocument(ctx context.Context, doc *document.Document) (*PaginationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	surface, err := s.newSurface(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open layout surface: %w", err)
	}

	scheduler := pagination.NewTimerScheduler(s.frameInterval)
	defer scheduler.Stop()

	results := make(chan []pagination.Boundary, 1)
	ext := pagination.NewExtension(s.geometry, scheduler, pagination.OnResult(func(b []pagination.Boundary) {
		select {
		case results <- b:
		default:
		}
	}))

	view, err := editor.NewView(editor.NewState(document.Empty(), ext.Plugin()), surface)
	if err != nil {
		_ = surface.Close()
		return nil, err
	}
	defer func() {
		if err := view.Destroy(); err != nil {
			log.Printf("[PAGINATION] Failed to release surface: %v", err)
		}
	}()
	if err := view.Execute(editor.SetContent(doc)); err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	// Content equal to the blank starting document schedules nothing, so the
	// first pass is requested explicitly.
	ext.Observer().Schedule()

	select {
	case boundaries := <-results:
		if boundaries == nil {
			boundaries = []pagination.Boundary{}
		}
		indexes := make([]int, 0, len(boundaries))
		for _, b := range boundaries {
			i, _ := doc.IndexAt(b.Pos)
			indexes = append(indexes, i)
		}
		return &PaginationResult{
			Boundaries:   boundaries,
			BlockIndexes: indexes,
			Pages:        pagination.PageCount(boundaries),
			Geometry:     s.geometry,
		}, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("pagination pass did not complete: %w", ctx.Err())
	}
}
