package mocks

import (
	"context"
	"image"
	"sync"

	"github.com/user/sceneshow/pkg/ports"
)

// HTMLCapturer is a mock implementation of ports.HTMLCapturer.
type HTMLCapturer struct {
	mu sync.Mutex

	CaptureHTMLFunc func(ctx context.Context, html string, width, height int) (image.Image, error)

	// Track calls for assertions
	CaptureHTMLCalls []CaptureHTMLCall
}

// CaptureHTMLCall records a call to CaptureHTML.
type CaptureHTMLCall struct {
	HTML   string
	Width  int
	Height int
}

// NewHTMLCapturer creates a new mock HTMLCapturer that returns transparent
// images of the requested size.
func NewHTMLCapturer() *HTMLCapturer {
	return &HTMLCapturer{}
}

// CaptureHTML implements ports.HTMLCapturer.
func (m *HTMLCapturer) CaptureHTML(ctx context.Context, html string, width, height int) (image.Image, error) {
	m.mu.Lock()
	m.CaptureHTMLCalls = append(m.CaptureHTMLCalls, CaptureHTMLCall{html, width, height})
	m.mu.Unlock()
	if m.CaptureHTMLFunc != nil {
		return m.CaptureHTMLFunc(ctx, html, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height)), nil
}

// Calls returns a copy of the recorded calls.
func (m *HTMLCapturer) Calls() []CaptureHTMLCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CaptureHTMLCall(nil), m.CaptureHTMLCalls...)
}

var _ ports.HTMLCapturer = (*HTMLCapturer)(nil)
