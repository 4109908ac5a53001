// Package fitzpdf rasterizes PDF pages with MuPDF.
package fitzpdf

import (
	"context"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"

	"github.com/user/sceneshow/pkg/ports"
)

// Rasterizer implements ports.DocumentRasterizer. A MuPDF document is not
// safe for concurrent use, so every call opens its own.
type Rasterizer struct{}

// New creates a new Rasterizer.
func New() *Rasterizer {
	return &Rasterizer{}
}

var _ ports.DocumentRasterizer = (*Rasterizer)(nil)

// PageCount returns the number of pages in the document.
func (r *Rasterizer) PageCount(data []byte) (int, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()
	return doc.NumPage(), nil
}

// Rasterize renders one zero-based page at dpi.
func (r *Rasterizer) Rasterize(ctx context.Context, data []byte, page int, dpi float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if dpi <= 0 {
		return nil, fmt.Errorf("invalid dpi %g", dpi)
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	if n := doc.NumPage(); page < 0 || page >= n {
		return nil, fmt.Errorf("page %d out of range (document has %d)", page+1, n)
	}

	img, err := doc.ImageDPI(page, dpi)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", page+1, err)
	}
	return img, nil
}
