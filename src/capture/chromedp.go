package capture

import (
	"context"
	"fmt"
	"time"

	"market-assistant/src/helpers"
	"market-assistant/src/logger"
	"market-assistant/src/models"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
)

const (
	viewportWidth  = 1280
	viewportHeight = 800
	jpegQuality    = 90
)

// ScreenCapturer screenshots the dashboard page in a Chromium instance,
// either a remote one reachable over CDP or a local headless one.
type ScreenCapturer struct {
	Config models.MCaptureConfig
	Logger *logger.Logger

	run func(ctx context.Context, actions ...chromedp.Action) error
}

// -----------------------------------------------------------------------------

// New returns nil when capture is disabled.
func New(cfg models.MCaptureConfig, l *logger.Logger) *ScreenCapturer {
	if !cfg.Enabled {
		return nil
	}
	if l == nil {
		l = logger.NewLogger(nil, "ScreenCapturer")
	}
	return &ScreenCapturer{Config: cfg, Logger: l, run: chromedp.Run}
}

// -----------------------------------------------------------------------------

// Capture returns a full-page screenshot. Every failure is reported as a
// permission denial so callers can fall back to data-only analysis.
func (c *ScreenCapturer) Capture(ctx context.Context) ([]byte, error) {
	timeout := time.Duration(c.Config.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	allocCtx, allocCancel := c.allocator(ctx)
	defer allocCancel()

	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	defer tabCancel()

	var buf []byte
	err := c.run(tabCtx,
		emulation.SetDeviceMetricsOverride(viewportWidth, viewportHeight, 1, false),
		chromedp.Navigate(c.Config.PageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.FullScreenshot(&buf, jpegQuality),
	)
	if err != nil {
		return nil, helpers.NewError(helpers.KindPermissionDenied, fmt.Sprintf("screen capture of %s failed", c.Config.PageURL), err)
	}

	c.Logger.Debug("Captured %s (%d bytes)", c.Config.PageURL, len(buf))
	return buf, nil
}

func (c *ScreenCapturer) allocator(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Config.RemoteURL != "" {
		return chromedp.NewRemoteAllocator(ctx, c.Config.RemoteURL)
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(viewportWidth, viewportHeight),
	)
	return chromedp.NewExecAllocator(ctx, opts...)
}
