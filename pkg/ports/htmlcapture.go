package ports

import (
	"context"
	"image"
)

// HTMLCapturer rasterizes HTML markup.
type HTMLCapturer interface {
	// CaptureHTML renders HTML at a width x height viewport on a transparent
	// background and returns exactly that area.
	CaptureHTML(ctx context.Context, html string, width, height int) (image.Image, error)
}
