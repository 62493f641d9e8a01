// Package layout renders documents in headless Chrome so the pagination
// engine can measure real block boxes.
package layout

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"case_strategy_editor/services/document"
	"case_strategy_editor/services/editor"
	"case_strategy_editor/services/pagination"
	"case_strategy_editor/templates/printdoc"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// DefaultSyncTimeout bounds one render-and-measure round trip.
const DefaultSyncTimeout = 10 * time.Second

// BrowserSurface is an editor.Surface backed by a Chrome tab. Every Sync
// re-renders the document with its overlay, waits for web fonts and reads
// the box of every top-level block in one round trip. NodeBox then answers
// from that snapshot.
type BrowserSurface struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration

	mu    sync.RWMutex
	boxes map[int]editor.Box
}

type measuredBox struct {
	Pos    int     `json:"pos"`
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// NewBrowserSurface opens the surface in the tab behind tabCtx. The tab is
// closed by Close.
func NewBrowserSurface(tabCtx context.Context, cancel context.CancelFunc, g pagination.Geometry, fontStylesheet string) (*BrowserSurface, error) {
	shell, err := printdoc.Render(tabCtx, printdoc.Surface(g, fontStylesheet))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to render surface shell: %w", err)
	}

	err = chromedp.Run(tabCtx,
		chromedp.EmulateViewport(int64(g.PageWidth), int64(g.PageHeight)),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, shell).Do(ctx)
		}),
		chromedp.WaitReady("#"+printdoc.SurfaceRootID, chromedp.ByQuery),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open layout surface: %w", err)
	}

	return &BrowserSurface{
		ctx:     tabCtx,
		cancel:  cancel,
		timeout: DefaultSyncTimeout,
		boxes:   map[int]editor.Box{},
	}, nil
}

// Sync renders doc with decorations and refreshes the box snapshot.
func (s *BrowserSurface) Sync(doc *document.Document, decorations *editor.DecorationSet) error {
	markup, err := json.Marshal(pagination.DecoratedHTML(doc, decorations))
	if err != nil {
		return err
	}
	script := fmt.Sprintf(`(async () => {
  const root = document.getElementById(%q);
  root.innerHTML = %s;
  await document.fonts.ready;
  return Array.from(root.querySelectorAll(':scope > [%s]')).map(el => ({
    pos: Number(el.getAttribute(%q)),
    top: el.offsetTop,
    height: el.offsetHeight,
  }));
})()`, printdoc.SurfaceRootID, markup, pagination.PosAttr, pagination.PosAttr)

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	var measured []measuredBox
	err = chromedp.Run(ctx, chromedp.Evaluate(script, &measured, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	}))
	if err != nil {
		return fmt.Errorf("failed to sync layout surface: %w", err)
	}

	boxes := make(map[int]editor.Box, len(measured))
	for _, m := range measured {
		boxes[m.Pos] = editor.Box{Top: m.Top, Height: m.Height}
	}
	s.mu.Lock()
	s.boxes = boxes
	s.mu.Unlock()
	return nil
}

// NodeBox returns the box measured for the block at pos during the last
// Sync.
func (s *BrowserSurface) NodeBox(pos int) (editor.Box, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.boxes[pos]
	return b, ok
}

// Close closes the tab.
func (s *BrowserSurface) Close() error {
	s.cancel()
	s.mu.RLock()
	n := len(s.boxes)
	s.mu.RUnlock()
	log.Printf("[LAYOUT] Surface closed (%d blocks measured last)", n)
	return nil
}
