package printbridge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"case_strategy_editor/services/pagination"
	"case_strategy_editor/templates/printdoc"

	"github.com/microcosm-cc/bluemonday"
)

// DefaultTimeout bounds one export when Config.Timeout is unset.
const DefaultTimeout = 60 * time.Second

var (
	// ErrMarkupRequired is returned before any engine launch when there is
	// nothing to print.
	ErrMarkupRequired = errors.New("HTML content is required")
	// ErrEmptyPDF is returned when the engine produced no bytes.
	ErrEmptyPDF = errors.New("rendering engine returned an empty PDF")
)

// Config configures a Bridge.
type Config struct {
	Geometry       pagination.Geometry
	FontStylesheet string
	Timeout        time.Duration
}

// Bridge renders markup to PDF with one engine instance per call.
type Bridge struct {
	engine Engine
	policy *bluemonday.Policy
	cfg    Config
}

// NewBridge creates a bridge on engine.
func NewBridge(engine Engine, cfg Config) *Bridge {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Bridge{engine: engine, policy: NewPolicy(), cfg: cfg}
}

// Geometry returns the page geometry the bridge prints with.
func (b *Bridge) Geometry() pagination.Geometry {
	return b.cfg.Geometry
}

// Document builds the complete print document for markup.
func (b *Bridge) Document(ctx context.Context, markup, title string) (string, error) {
	return printdoc.Render(ctx, printdoc.Document(printdoc.DocumentProps{
		Markup:         b.policy.Sanitize(markup),
		Geometry:       b.cfg.Geometry,
		FontStylesheet: b.cfg.FontStylesheet,
		Title:          title,
	}))
}

// Render prints markup to PDF. The engine instance is closed on every path
// once it has been launched.
func (b *Bridge) Render(ctx context.Context, markup string) ([]byte, error) {
	return b.RenderTitled(ctx, markup, "")
}

// RenderTitled is Render with a document title.
func (b *Bridge) RenderTitled(ctx context.Context, markup, title string) (pdf []byte, err error) {
	if strings.TrimSpace(markup) == "" {
		return nil, ErrMarkupRequired
	}

	doc, err := b.Document(ctx, markup, title)
	if err != nil {
		return nil, fmt.Errorf("failed to build print document: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	start := time.Now()
	inst, err := b.engine.Launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to launch rendering engine: %w", err)
	}
	defer func() {
		if cerr := inst.Close(); cerr != nil {
			log.Printf("[PDF] Failed to close rendering engine: %v", cerr)
		}
	}()

	if err := inst.SetContent(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to load print document: %w", err)
	}
	if err := inst.WaitFonts(ctx); err != nil {
		return nil, fmt.Errorf("failed waiting for fonts: %w", err)
	}
	pdf, err = inst.PrintPDF(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to rasterize document: %w", err)
	}
	if len(pdf) == 0 {
		return nil, ErrEmptyPDF
	}

	log.Printf("[PDF] Rendered %d bytes in %s", len(pdf), time.Since(start).Round(time.Millisecond))
	return pdf, nil
}
