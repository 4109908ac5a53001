package ports

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
)

// Renderer abstracts image processing operations.
type Renderer interface {
	// CreateCanvas creates a new drawing canvas with the specified dimensions and background color.
	CreateCanvas(width, height int, bg color.Color) Canvas

	// DecodeImage decodes image data. FormatAuto sniffs the format.
	DecodeImage(data []byte, format ImageFormat) (image.Image, error)

	// EncodeImage encodes an image to the specified format.
	EncodeImage(img image.Image, format ImageFormat, quality int) ([]byte, error)

	// ResizeImage resizes an image to the specified dimensions.
	ResizeImage(img image.Image, width, height int) image.Image
}

// Canvas provides drawing operations for one element layer or page.
// Coordinates are in pixels with a top-left origin.
type Canvas interface {
	// DrawImage draws an image at the specified position.
	DrawImage(img image.Image, x, y int)

	// DrawRect draws a filled rectangle.
	DrawRect(x, y, w, h float64, c color.Color)

	// DrawRoundedRect draws a filled rounded rectangle.
	DrawRoundedRect(x, y, w, h, radius float64, c color.Color)

	// DrawEllipse fills the ellipse inscribed in the box.
	DrawEllipse(x, y, w, h float64, c color.Color)

	// StrokeRect draws a rectangle outline. radius > 0 rounds the corners.
	StrokeRect(x, y, w, h, radius float64, c color.Color, width float64)

	// StrokeEllipse outlines the ellipse inscribed in the box.
	StrokeEllipse(x, y, w, h float64, c color.Color, width float64)

	// DrawLine draws a line between two points.
	DrawLine(x1, y1, x2, y2 float64, c color.Color, width float64)

	// DrawText draws one line of text with its baseline at y. x is the left
	// edge, centre or right edge depending on style.Align. A positive
	// StrokeWidth draws the outline pass before the fill pass.
	DrawText(text string, x, y float64, style TextStyle)

	// ToImage returns the canvas pixels.
	ToImage() *image.RGBA
}

// TextStyle defines text rendering properties.
type TextStyle struct {
	Face        font.Face
	Color       color.Color
	Align       TextAlign
	StrokeWidth float64
	StrokeColor color.Color
}

// TextAlign specifies text alignment.
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// ParseTextAlign maps "left", "center" and "right"; anything else is left.
func ParseTextAlign(s string) TextAlign {
	switch s {
	case "center", "centre", "middle":
		return AlignCenter
	case "right", "end":
		return AlignRight
	default:
		return AlignLeft
	}
}

// ImageFormat specifies image encoding format.
type ImageFormat int

const (
	FormatJPEG ImageFormat = iota
	FormatPNG
	FormatAuto
)
