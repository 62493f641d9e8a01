package printbridge

import (
	"context"
	"fmt"
	"time"

	"case_strategy_editor/services/browser"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// ChromedpEngine launches one Chrome process per export through chromedp.
type ChromedpEngine struct {
	opts EngineOptions
}

// NewChromedpEngine creates the default engine.
func NewChromedpEngine(opts EngineOptions) *ChromedpEngine {
	return &ChromedpEngine{opts: opts}
}

// Launch starts Chrome (or attaches to the configured remote one) and opens
// a tab sized to the editor page.
func (e *ChromedpEngine) Launch(ctx context.Context) (Instance, error) {
	allocCtx, allocCancel := browser.NewAllocator(context.Background(), e.opts.Browser)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	inst := &chromedpInstance{ctx: tabCtx, cancel: func() {
		tabCancel()
		allocCancel()
	}}

	launch := []chromedp.Action{chromedp.Navigate("about:blank")}
	if vp := e.opts.Viewport; vp.Width > 0 && vp.Height > 0 {
		launch = append([]chromedp.Action{chromedp.EmulateViewport(int64(vp.Width), int64(vp.Height))}, launch...)
	}
	// The first Run starts the browser under the context it is given, so it
	// must get the tab context itself. The caller's deadline tears the whole
	// instance down instead.
	stop := context.AfterFunc(ctx, inst.cancel)
	err := chromedp.Run(inst.ctx, launch...)
	stop()
	if ctxErr := ctx.Err(); ctxErr != nil {
		inst.Close()
		return nil, ctxErr
	}
	if err != nil {
		inst.Close()
		return nil, err
	}
	return inst, nil
}

type chromedpInstance struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// run executes actions on the instance tab while honoring the caller's
// deadline and cancellation. Only valid after Launch has started the
// browser: cancelling runCtx then ends the actions, not the tab.
func (i *chromedpInstance) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(i.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

func (i *chromedpInstance) SetContent(ctx context.Context, html string) error {
	return i.run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return pollReadyState(ctx)
		}),
	)
}

// pollReadyState waits for document.readyState to reach "complete", which
// covers stylesheets and the font stylesheet link.
func pollReadyState(ctx context.Context) error {
	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()
	for {
		var state string
		if err := chromedp.Evaluate(`document.readyState`, &state).Do(ctx); err != nil {
			return err
		}
		if state == "complete" {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (i *chromedpInstance) WaitFonts(ctx context.Context) error {
	var status string
	return i.run(ctx, chromedp.Evaluate(`document.fonts.ready.then(() => document.fonts.status)`, &status,
		func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}))
}

func (i *chromedpInstance) PrintPDF(ctx context.Context) ([]byte, error) {
	var pdfBuf []byte
	err := i.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		buf, _, err := page.PrintToPDF().
			WithPrintBackground(true).
			WithPreferCSSPageSize(true).
			WithDisplayHeaderFooter(false).
			Do(ctx)
		if err != nil {
			return err
		}
		pdfBuf = buf
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("print to pdf: %w", err)
	}
	return pdfBuf, nil
}

func (i *chromedpInstance) Close() error {
	i.cancel()
	return nil
}
