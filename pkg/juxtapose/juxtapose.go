// Package juxtapose places rendered images side by side.
package juxtapose

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Options configures the juxtapose operation.
type Options struct {
	// Gap is the horizontal gap between images in pixels.
	Gap int
	// Padding surrounds the whole sheet.
	Padding int
	// Background fills the gaps and the space above and below shorter images.
	Background color.Color
}

// DefaultOptions returns default options.
func DefaultOptions() Options {
	return Options{
		Gap:        24,
		Padding:    24,
		Background: color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff},
	}
}

// Combine places images left to right, each vertically centred.
func Combine(images []image.Image, opts Options) (*image.RGBA, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("juxtapose: no images")
	}
	if opts.Gap < 0 || opts.Padding < 0 {
		return nil, fmt.Errorf("juxtapose: negative gap or padding")
	}
	bg := opts.Background
	if bg == nil {
		bg = color.Black
	}

	// Calculate output dimensions
	width, height := 2*opts.Padding+opts.Gap*(len(images)-1), 0
	for i, img := range images {
		if img == nil {
			return nil, fmt.Errorf("juxtapose: image %d is nil", i)
		}
		b := img.Bounds()
		width += b.Dx()
		if b.Dy() > height {
			height = b.Dy()
		}
	}
	height += 2 * opts.Padding

	output := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(output, output.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	x := opts.Padding
	for _, img := range images {
		b := img.Bounds()
		y := (height - b.Dy()) / 2
		rect := image.Rect(x, y, x+b.Dx(), y+b.Dy())
		draw.Draw(output, rect, img, b.Min, draw.Over)
		x += b.Dx() + opts.Gap
	}

	return output, nil
}
