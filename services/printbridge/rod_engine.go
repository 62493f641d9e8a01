package printbridge

import (
	"context"
	"fmt"
	"io"

	"case_strategy_editor/services/browser"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// RodEngine launches one Chrome process per export through go-rod.
type RodEngine struct {
	opts EngineOptions
}

// NewRodEngine creates the rod engine.
func NewRodEngine(opts EngineOptions) *RodEngine {
	return &RodEngine{opts: opts}
}

// Launch starts Chrome and opens a blank page sized to the editor page.
func (e *RodEngine) Launch(ctx context.Context) (Instance, error) {
	b, release, err := browser.ConnectRod(context.Background(), e.opts.Browser)
	if err != nil {
		return nil, err
	}

	p, err := b.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		release()
		return nil, fmt.Errorf("open page: %w", err)
	}
	if vp := e.opts.Viewport; vp.Width > 0 && vp.Height > 0 {
		err = p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             vp.Width,
			Height:            vp.Height,
			DeviceScaleFactor: 1,
		})
		if err != nil {
			release()
			return nil, fmt.Errorf("set viewport: %w", err)
		}
	}
	return &rodInstance{page: p, release: release}, nil
}

type rodInstance struct {
	page    *rod.Page
	release func()
}

func (i *rodInstance) SetContent(ctx context.Context, html string) error {
	p := i.page.Context(ctx)
	if err := p.SetDocumentContent(html); err != nil {
		return err
	}
	return p.WaitLoad()
}

func (i *rodInstance) WaitFonts(ctx context.Context) error {
	_, err := i.page.Context(ctx).Eval(`() => document.fonts.ready.then(() => document.fonts.status)`)
	return err
}

func (i *rodInstance) PrintPDF(ctx context.Context) ([]byte, error) {
	stream, err := i.page.Context(ctx).PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("print to pdf: %w", err)
	}
	defer stream.Close()
	return io.ReadAll(stream)
}

func (i *rodInstance) Close() error {
	err := i.page.Close()
	i.release()
	return err
}
