package mocks

import (
	"image"
	"sync"

	"github.com/user/sceneshow/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	SceneJSON  []byte
	LayoutJSON []byte
	ReportJSON []byte
	Layers     map[string]image.Image
	Pages      map[int]image.Image
	Frames     map[int]image.Image
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled: enabled,
		Layers:  make(map[string]image.Image),
		Pages:   make(map[int]image.Image),
		Frames:  make(map[int]image.Image),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveSceneJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SceneJSON = data
	return nil
}

func (m *DebugSink) SaveLayoutJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LayoutJSON = data
	return nil
}

func (m *DebugSink) SaveLayer(page int, element string, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Layers[element] = img
	return nil
}

func (m *DebugSink) SavePage(index int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Pages[index] = img
	return nil
}

func (m *DebugSink) SaveFrame(index int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Frames[index] = img
	return nil
}

func (m *DebugSink) SaveReportJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReportJSON = data
	return nil
}

// FrameCount returns the number of saved frames.
func (m *DebugSink) FrameCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Frames)
}

var _ ports.DebugSink = (*DebugSink)(nil)
