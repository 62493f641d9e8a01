// Package browser starts the headless Chrome shared by the layout surface
// and the print bridge. chromedp drives the default path; rod is available
// as an alternative engine behind the same Options.
package browser

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"

	"github.com/chromedp/chromedp"
)

// Options configures how Chrome is started or reached.
type Options struct {
	// ExecPath overrides the Chrome binary (headless-shell in Docker).
	ExecPath string
	// RemoteURL is the DevTools WebSocket URL of an already running
	// Chrome. Empty launches a local process.
	RemoteURL string
	NoSandbox bool
	// WindowWidth and WindowHeight size the default viewport in CSS pixels.
	WindowWidth  int
	WindowHeight int
}

// chromeBinaries are looked up on PATH when CHROME_PATH is unset.
var chromeBinaries = []string{"headless-shell", "chromium", "chromium-browser", "google-chrome"}

// FindChrome returns CHROME_PATH when set, otherwise the first Chrome binary
// found on PATH. An empty result means none is installed.
func FindChrome() string {
	if path := os.Getenv("CHROME_PATH"); path != "" {
		return path
	}
	for _, name := range chromeBinaries {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// AllocatorOptions returns the chromedp exec allocator flags for o.
func (o Options) AllocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.Flag("font-render-hinting", "none"),
	)
	if o.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if o.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(o.ExecPath))
	}
	if o.WindowWidth > 0 && o.WindowHeight > 0 {
		opts = append(opts, chromedp.WindowSize(o.WindowWidth, o.WindowHeight))
	}
	return opts
}

// NewAllocator returns a chromedp allocator context: a remote allocator when
// RemoteURL is set, a local exec allocator otherwise.
func NewAllocator(ctx context.Context, o Options) (context.Context, context.CancelFunc) {
	if o.RemoteURL != "" {
		return chromedp.NewRemoteAllocator(ctx, o.RemoteURL)
	}
	return chromedp.NewExecAllocator(ctx, o.AllocatorOptions()...)
}

// Session is one running browser. Tabs opened with NewTab share its process.
type Session struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// Start launches (or connects to) Chrome and opens its first target so the
// process is up before any tab is requested. ctx bounds the start only; the
// session lives until Close.
func Start(ctx context.Context, o Options) (*Session, error) {
	allocCtx, allocCancel := NewAllocator(context.Background(), o)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	stop := context.AfterFunc(ctx, browserCancel)
	err := chromedp.Run(browserCtx)
	stop()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	log.Printf("[BROWSER] Chrome session started (remote=%t)", o.RemoteURL != "")
	return &Session{allocCancel: allocCancel, browserCtx: browserCtx, browserCancel: browserCancel}, nil
}

// NewTab opens a new target in the session's browser.
func (s *Session) NewTab() (context.Context, context.CancelFunc) {
	return chromedp.NewContext(s.browserCtx)
}

// Alive reports whether the browser context is still usable.
func (s *Session) Alive() bool {
	return s.browserCtx.Err() == nil
}

// Close shuts the browser down.
func (s *Session) Close() {
	s.browserCancel()
	s.allocCancel()
	log.Printf("[BROWSER] Chrome session closed")
}
