package ports

import (
	"context"
	"image"

	"golang.org/x/image/font/opentype"
)

// AssetFetcher resolves an asset reference to bytes. Supported references are
// data URIs, http(s) URLs, file URLs, plain paths and qr: payloads. Failures
// wrap rendererr.ErrSourceUnavailable.
type AssetFetcher interface {
	Fetch(ctx context.Context, src string) ([]byte, error)
}

// FontProvider resolves a font family and weight. The boolean is true when the
// request missed and a default font was returned instead.
type FontProvider interface {
	Resolve(family, weight string) (*opentype.Font, bool)
}

// DocumentRasterizer renders pages of a paged document (PDF).
type DocumentRasterizer interface {
	// PageCount returns the number of pages in the document.
	PageCount(data []byte) (int, error)

	// Rasterize renders one zero-based page at the given DPI.
	Rasterize(ctx context.Context, data []byte, page int, dpi float64) (image.Image, error)
}

// InsightGenerator produces a short text from structured data. It returns
// false when no text could be produced; callers never see its errors.
type InsightGenerator interface {
	Summarize(ctx context.Context, data any) (string, bool)
}
