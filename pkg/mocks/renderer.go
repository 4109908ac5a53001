package mocks

import (
	"image"
	"image/color"
	"sync"

	"github.com/user/sceneshow/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
type Renderer struct {
	CreateCanvasFunc func(width, height int, bg color.Color) ports.Canvas
	DecodeImageFunc  func(data []byte, format ports.ImageFormat) (image.Image, error)
	EncodeImageFunc  func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)
	ResizeImageFunc  func(img image.Image, width, height int) image.Image

	mu       sync.Mutex
	Canvases []*Canvas
}

func (m *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	if m.CreateCanvasFunc != nil {
		return m.CreateCanvasFunc(width, height, bg)
	}
	c := &Canvas{Width: width, Height: height, Background: bg}
	m.mu.Lock()
	m.Canvases = append(m.Canvases, c)
	m.mu.Unlock()
	return c
}

func (m *Renderer) DecodeImage(data []byte, format ports.ImageFormat) (image.Image, error) {
	if m.DecodeImageFunc != nil {
		return m.DecodeImageFunc(data, format)
	}
	return image.NewRGBA(image.Rect(0, 0, 100, 100)), nil
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	return []byte{}, nil
}

func (m *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	if m.ResizeImageFunc != nil {
		return m.ResizeImageFunc(img, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

var _ ports.Renderer = (*Renderer)(nil)

// Canvas is a mock implementation of ports.Canvas that records draw calls.
type Canvas struct {
	Width      int
	Height     int
	Background color.Color

	Ops   []string
	Texts []TextCall
}

// TextCall records a call to DrawText.
type TextCall struct {
	Text  string
	X, Y  float64
	Style ports.TextStyle
}

func (m *Canvas) DrawImage(img image.Image, x, y int) { m.Ops = append(m.Ops, "image") }

func (m *Canvas) DrawRect(x, y, w, h float64, c color.Color) { m.Ops = append(m.Ops, "rect") }

func (m *Canvas) DrawRoundedRect(x, y, w, h, radius float64, c color.Color) {
	m.Ops = append(m.Ops, "rounded-rect")
}

func (m *Canvas) DrawEllipse(x, y, w, h float64, c color.Color) { m.Ops = append(m.Ops, "ellipse") }

func (m *Canvas) StrokeRect(x, y, w, h, radius float64, c color.Color, width float64) {
	m.Ops = append(m.Ops, "stroke-rect")
}

func (m *Canvas) StrokeEllipse(x, y, w, h float64, c color.Color, width float64) {
	m.Ops = append(m.Ops, "stroke-ellipse")
}

func (m *Canvas) DrawLine(x1, y1, x2, y2 float64, c color.Color, width float64) {
	m.Ops = append(m.Ops, "line")
}

func (m *Canvas) DrawText(text string, x, y float64, style ports.TextStyle) {
	m.Ops = append(m.Ops, "text")
	m.Texts = append(m.Texts, TextCall{Text: text, X: x, Y: y, Style: style})
}

func (m *Canvas) ToImage() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
}

var _ ports.Canvas = (*Canvas)(nil)
