package pipeline

import (
	"image"

	"github.com/user/sceneshow/pkg/adrecord"
	"github.com/user/sceneshow/pkg/ports"
	"github.com/user/sceneshow/pkg/rendererr"
	"github.com/user/sceneshow/pkg/scene"
)

// =============================================================================
// Common Types
// =============================================================================

// Dimension represents width and height.
type Dimension struct {
	Width  int
	Height int
}

// Layer is a rendered element raster and the canvas position of its top-left
// corner. Rotated layers are already re-anchored.
type Layer struct {
	Image *image.RGBA
	X     int
	Y     int
}

// =============================================================================
// Layout Stage Types
// =============================================================================

// LayoutInput contains the parsed document and the canvas defaults.
type LayoutInput struct {
	Document          *scene.Document
	DefaultWidth      int    // Used when the root size is "auto" (default: 1080)
	DefaultHeight     int    // Used when the root size is "auto" (default: 1920)
	DefaultBackground string // Used when no page or root background is set
}

// DefaultLayoutInput returns LayoutInput with default values.
func DefaultLayoutInput() LayoutInput {
	return LayoutInput{
		DefaultWidth:      1080,
		DefaultHeight:     1920,
		DefaultBackground: "#ffffff",
	}
}

// LayoutResult contains one resolved layout per page.
type LayoutResult struct {
	Pages []PageLayout
}

// PageLayout is a page ready to composite: size resolved and elements visible
// and in paint order.
type PageLayout struct {
	Index             int                 `json:"index"`
	ID                string              `json:"id"`
	Width             int                 `json:"width"`
	Height            int                 `json:"height"`
	Background        scene.Background    `json:"background"`
	DefaultBackground string              `json:"defaultBackground"`
	Elements          []scene.Element     `json:"elements"`
	Warnings          []rendererr.Warning `json:"warnings,omitempty"`
}

// =============================================================================
// Element Stage Types
// =============================================================================

// ElementInput is one element to rasterize.
type ElementInput struct {
	Page    int
	Element scene.Element
}

// ElementResult is the element layer, or a nil Layer when the element was
// skipped. Warnings explain skips, fallbacks and overflow.
type ElementResult struct {
	Layer    *Layer
	Warnings []rendererr.Warning
}

// Skipped reports whether no layer was produced.
func (r ElementResult) Skipped() bool { return r.Layer == nil }

// =============================================================================
// Composite Stage Types
// =============================================================================

// CompositeInput contains one page to composite.
type CompositeInput struct {
	Page PageLayout
}

// CompositeResult is the composited canvas and the warnings gathered from
// the background and every element.
type CompositeResult struct {
	Image    *image.RGBA
	Warnings []rendererr.Warning
}

// =============================================================================
// Frames Stage Types
// =============================================================================

// FrameSource produces the page state of any frame without side effects.
type FrameSource interface {
	FrameCount() int
	FrameRate() float64
	Size() (width, height int)
	FrameAt(index int) PageLayout
}

// FrameRange selects frames [Start, End). End <= 0 means through the last frame.
type FrameRange struct {
	Start int
	End   int
}

// Resolve clamps the range to count frames.
func (r FrameRange) Resolve(count int) (int, int) {
	start, end := r.Start, r.End
	if start < 0 {
		start = 0
	}
	if end <= 0 || end > count {
		end = count
	}
	if start > end {
		start = end
	}
	return start, end
}

// Frame is one composited animation frame.
type Frame struct {
	Index       int
	TimestampMs int
	Image       *image.RGBA
}

// FramesInput describes an animation render.
type FramesInput struct {
	Source FrameSource
	Range  FrameRange
	// Emit, when set, receives frames strictly in index order as they become
	// ready and the result holds no frames. An Emit error stops the render.
	Emit func(Frame) error
}

// FramesResult contains rendered frames (when not streamed) and warnings.
type FramesResult struct {
	Frames   []Frame
	Count    int
	Warnings []rendererr.Warning
}

// =============================================================================
// Ad Card Stage Types
// =============================================================================

// AdCardInput contains an ad record and the target canvas.
type AdCardInput struct {
	Record adrecord.Record
	Width  int
	Height int
	FPS    float64
}

// AdCardResult is a static document, or an animation for timeline templates.
type AdCardResult struct {
	Document  *scene.Document
	Animation FrameSource
	Tagline   string
	Warnings  []rendererr.Warning
}

// =============================================================================
// Encode Stage Types
// =============================================================================

// EncodeInput contains parameters for video encoding.
type EncodeInput struct {
	Frames  []Frame
	Width   int
	Height  int
	OutroMs int     // Duration to hold the last frame
	FPS     float64 // Frames per second
	Options ports.EncoderOptions
}

// DefaultEncodeInput returns EncodeInput with default values.
func DefaultEncodeInput() EncodeInput {
	return EncodeInput{
		OutroMs: 0,
		FPS:     30.0,
		Options: ports.EncoderOptions{Quality: 23, Bitrate: 4000},
	}
}

// EncodeResult contains the encoded video.
type EncodeResult struct {
	VideoData  []byte
	FrameCount int
	DurationMs int
	FileSize   int64
}
