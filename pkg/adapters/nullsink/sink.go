// Package nullsink provides a debug sink that discards everything.
package nullsink

import (
	"image"

	"github.com/user/sceneshow/pkg/ports"
)

// Sink is a no-op implementation of ports.DebugSink.
type Sink struct{}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

var _ ports.DebugSink = (*Sink)(nil)

// Enabled returns false; stages skip debug serialization entirely.
func (s *Sink) Enabled() bool { return false }
func (s *Sink) SaveSceneJSON(data []byte) error { return nil }
func (s *Sink) SaveLayoutJSON(data []byte) error { return nil }
func (s *Sink) SaveLayer(page int, element string, img image.Image) error { return nil }
func (s *Sink) SavePage(index int, img image.Image) error { return nil }
func (s *Sink) SaveFrame(index int, img image.Image) error { return nil }
func (s *Sink) SaveReportJSON(data []byte) error { return nil }
