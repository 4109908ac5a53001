package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"regexp"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/user/sceneshow/pkg/ports"
	"github.com/user/sceneshow/pkg/rendererr"
)

// DefaultDPI is the resolution used to rasterize document pages.
const DefaultDPI = 144

var pageFragment = regexp.MustCompile(`#page=(\d+)$`)

// Loader fetches and decodes image sources through the cache.
type Loader struct {
	fetcher  ports.AssetFetcher
	renderer ports.Renderer
	docs     ports.DocumentRasterizer
	logger   ports.Logger
	dpi      float64

	images   *Cache[image.Image]
	failures *Cache[error]
}

// NewLoader creates a loader. docs may be nil, in which case document
// sources are unavailable.
func NewLoader(fetcher ports.AssetFetcher, renderer ports.Renderer, docs ports.DocumentRasterizer, logger ports.Logger) *Loader {
	return &Loader{
		fetcher:  fetcher,
		renderer: renderer,
		docs:     docs,
		logger:   logger.WithComponent("assets"),
		dpi:      DefaultDPI,
		images:   NewCache[image.Image](),
		failures: NewCache[error](),
	}
}

// SetDPI changes the document rasterization resolution.
func (l *Loader) SetDPI(dpi float64) {
	if dpi > 0 {
		l.dpi = dpi
	}
}

// Load returns the decoded image for src. A failure recorded by an earlier
// Load or Prefetch is returned without fetching again. Every error wraps
// rendererr.ErrSourceUnavailable.
func (l *Loader) Load(ctx context.Context, src string) (image.Image, error) {
	if src == "" {
		return nil, fmt.Errorf("%w: empty source", rendererr.ErrSourceUnavailable)
	}
	if img, ok := l.images.Get(src); ok {
		return img, nil
	}
	if err, ok := l.failures.Get(src); ok {
		return nil, err
	}

	img, err := l.load(ctx, src)
	if err != nil {
		if ctx.Err() != nil {
			return nil, rendererr.Cancelled(ctx)
		}
		l.failures.Put(src, err)
		return nil, err
	}
	l.images.Put(src, img)
	return img, nil
}

func (l *Loader) load(ctx context.Context, src string) (image.Image, error) {
	ref, page := splitPage(src)

	data, err := l.fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", rendererr.ErrSourceUnavailable, shorten(src), err)
	}

	if bytes.HasPrefix(data, []byte("%PDF")) {
		if l.docs == nil {
			return nil, fmt.Errorf("%w: %s: no document rasterizer configured", rendererr.ErrSourceUnavailable, shorten(src))
		}
		img, err := l.docs.Rasterize(ctx, data, page, l.dpi)
		if err != nil {
			return nil, fmt.Errorf("%w: %s page %d: %v", rendererr.ErrSourceUnavailable, shorten(src), page+1, err)
		}
		return img, nil
	}

	img, err := l.renderer.DecodeImage(data, ports.FormatAuto)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", rendererr.ErrSourceUnavailable, shorten(src), err)
	}
	return img, nil
}

// Prefetch loads every distinct source with at most limit fetches in flight.
// Individual failures are recorded for Load to report; only cancellation is
// returned.
func (l *Loader) Prefetch(ctx context.Context, srcs []string, limit int) error {
	if limit <= 0 {
		limit = 4
	}

	seen := make(map[string]bool, len(srcs))
	var g errgroup.Group
	g.SetLimit(limit)

	for _, src := range srcs {
		if src == "" || seen[src] {
			continue
		}
		seen[src] = true
		src := src
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if _, err := l.Load(ctx, src); err != nil {
				l.logger.Debug("Prefetch failed for %s: %v", shorten(src), err)
			}
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		return rendererr.Cancelled(ctx)
	}
	l.logger.Debug("Prefetched %d sources, %d failed", len(seen), l.failures.Len())
	return nil
}

// Cached returns the number of decoded images held.
func (l *Loader) Cached() int {
	return l.images.Len()
}

// splitPage strips a trailing #page=N fragment and returns the zero-based page.
func splitPage(src string) (string, int) {
	m := pageFragment.FindStringSubmatchIndex(src)
	if m == nil {
		return src, 0
	}
	n, err := strconv.Atoi(src[m[2]:m[3]])
	if err != nil || n < 1 {
		n = 1
	}
	return src[:m[0]], n - 1
}

// shorten keeps data URIs out of log lines.
func shorten(src string) string {
	if len(src) > 64 {
		return src[:61] + "..."
	}
	return src
}
