// Package capturehtml rasterizes HTML fragments with headless Chrome.
package capturehtml

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"

	"github.com/user/sceneshow/pkg/geom"
	"github.com/user/sceneshow/pkg/ports"
)

// Options configures the capturer.
type Options struct {
	ChromePath string
	// Timeout bounds one capture. Zero means 30 seconds.
	Timeout time.Duration
}

// Capturer renders HTML in tabs of one lazily started browser.
type Capturer struct {
	opts   Options
	logger ports.Logger

	mu          sync.Mutex
	allocCancel context.CancelFunc
	browserCtx  context.Context
	cancel      context.CancelFunc
}

// New creates a new HTML capturer. The browser starts on the first capture.
func New(opts Options, logger ports.Logger) *Capturer {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Capturer{opts: opts, logger: logger.WithComponent("capturehtml")}
}

var _ ports.HTMLCapturer = (*Capturer)(nil)

// browser starts Chrome once and returns the browser context.
func (c *Capturer) browser() (context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.browserCtx != nil {
		return c.browserCtx, nil
	}

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", "new"),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("mute-audio", true),
	}
	if path := ResolveChromePath(c.opts.ChromePath); path != "" {
		opts = append(opts, chromedp.ExecPath(path))
		c.logger.Debug("Using browser %s", path)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	c.allocCancel = allocCancel
	c.browserCtx = browserCtx
	c.cancel = cancel
	return browserCtx, nil
}

// CaptureHTML renders html in a width x height viewport with a transparent
// page background and returns exactly that area.
func (c *Capturer) CaptureHTML(ctx context.Context, html string, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid viewport %dx%d", width, height)
	}

	browserCtx, err := c.browser()
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "sceneshow-*.html")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(html); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("write temp file: %w", err)
	}

	tabCtx, tabCancel := chromedp.NewContext(browserCtx)
	defer tabCancel()
	tabCtx, timeoutCancel := context.WithTimeout(tabCtx, c.opts.Timeout)
	defer timeoutCancel()

	// Abort the tab when the caller gives up.
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	var buf []byte
	if err := chromedp.Run(tabCtx,
		emulation.SetDeviceMetricsOverride(int64(width), int64(height), 1, false),
		emulation.SetDefaultBackgroundColorOverride().WithColor(&cdp.RGBA{R: 0, G: 0, B: 0, A: 0}),
		chromedp.Navigate("file://"+tmp.Name()),
		chromedp.CaptureScreenshot(&buf),
	); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}

	shot, err := png.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	geom.Over(out, shot, 0, 0)
	c.logger.Debug("Captured %dx%d html element", width, height)
	return out, nil
}

// Close shuts the browser down.
func (c *Capturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.allocCancel()
		c.browserCtx, c.cancel, c.allocCancel = nil, nil, nil
	}
	return nil
}
