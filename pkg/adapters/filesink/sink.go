// Package filesink writes intermediate render results to a debug directory.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"
	"regexp"

	"github.com/user/sceneshow/pkg/ports"
)

// Sink saves debug output to files under baseDir:
//
//	scene.json, layout.json, report.json
//	layers/page-NN/<element>.png
//	pages/page-NN.png
//	frames/frame-NNNN.png
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

var _ ports.DebugSink = (*Sink)(nil)

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveSceneJSON saves the parsed scene.
func (s *Sink) SaveSceneJSON(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "scene.json"), data)
}

// SaveLayoutJSON saves the resolved layouts.
func (s *Sink) SaveLayoutJSON(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "layout.json"), data)
}

// SaveReportJSON saves the warning report.
func (s *Sink) SaveReportJSON(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "report.json"), data)
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SaveLayer saves one element layer. Element ids are sanitized for use as
// file names.
func (s *Sink) SaveLayer(page int, element string, img image.Image) error {
	name := unsafeName.ReplaceAllString(element, "_")
	if name == "" {
		name = "element"
	}
	dir := filepath.Join(s.baseDir, "layers", fmt.Sprintf("page-%02d", page))
	return s.savePNG(dir, name+".png", img)
}

// SavePage saves a composited page.
func (s *Sink) SavePage(index int, img image.Image) error {
	return s.savePNG(filepath.Join(s.baseDir, "pages"), fmt.Sprintf("page-%02d.png", index), img)
}

// SaveFrame saves an animation frame.
func (s *Sink) SaveFrame(index int, img image.Image) error {
	return s.savePNG(filepath.Join(s.baseDir, "frames"), fmt.Sprintf("frame-%04d.png", index), img)
}

func (s *Sink) savePNG(dir, name string, img image.Image) error {
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	data, err := s.renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return s.fs.WriteFile(filepath.Join(dir, name), data)
}
