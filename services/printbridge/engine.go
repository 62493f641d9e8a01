// Package printbridge turns exported editor markup into a paged PDF. The
// markup is wrapped in a print document sharing the editor's typography and
// page geometry, loaded into a headless browser and printed with the
// browser's native pagination.
package printbridge

import (
	"context"
	"fmt"
	"strings"

	"case_strategy_editor/services/browser"
)

// Engine launches isolated rendering instances. Every call to Launch yields
// a fresh instance that belongs to exactly one export.
type Engine interface {
	Launch(ctx context.Context) (Instance, error)
}

// Instance is one launched rendering environment.
type Instance interface {
	// SetContent loads a complete HTML document and waits for it to settle.
	SetContent(ctx context.Context, html string) error
	// WaitFonts blocks until web fonts have finished loading.
	WaitFonts(ctx context.Context) error
	// PrintPDF rasterizes the loaded document honoring its @page rule.
	PrintPDF(ctx context.Context) ([]byte, error)
	Close() error
}

// Viewport is the size of the rendering window in CSS pixels.
type Viewport struct {
	Width  int
	Height int
}

// Engine names accepted by NewEngine.
const (
	EngineChromedp = "chromedp"
	EngineRod      = "rod"
)

// EngineOptions configures either engine.
type EngineOptions struct {
	Browser  browser.Options
	Viewport Viewport
}

// engines maps configured names to constructors. NewEngine resolves the
// name given in RENDER_ENGINE.
var engines = map[string]func(opts EngineOptions) Engine{
	EngineChromedp: func(opts EngineOptions) Engine { return NewChromedpEngine(opts) },
	EngineRod:      func(opts EngineOptions) Engine { return NewRodEngine(opts) },
}

// NewEngine returns the engine registered under name (case-insensitive).
func NewEngine(name string, opts EngineOptions) (Engine, error) {
	if name == "" {
		name = EngineChromedp
	}
	build, ok := engines[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown render engine %q", name)
	}
	return build(opts), nil
}
