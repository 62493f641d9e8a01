package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// Launcher returns a rod launcher configured from o.
func (o Options) Launcher(ctx context.Context) *launcher.Launcher {
	l := launcher.New().Context(ctx).Headless(true).NoSandbox(o.NoSandbox).
		Set("disable-gpu").
		Set("font-render-hinting", "none")
	if o.ExecPath != "" {
		l = l.Bin(o.ExecPath)
	}
	return l
}

// ConnectRod connects rod to Chrome. A local process is launched unless
// RemoteURL is set. The returned release func closes the browser and kills
// any process it launched.
func ConnectRod(ctx context.Context, o Options) (*rod.Browser, func(), error) {
	controlURL := o.RemoteURL
	var l *launcher.Launcher
	if controlURL == "" {
		l = o.Launcher(ctx)
		u, err := l.Launch()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		controlURL = u
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	release := func() {
		_ = b.Close()
		if l != nil {
			l.Kill()
			l.Cleanup()
		}
	}
	return b, release, nil
}
