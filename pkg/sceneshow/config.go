// Package sceneshow provides a high-level API for configuring renders.
package sceneshow

import (
	"fmt"
	"strings"

	"github.com/user/sceneshow/pkg/config"
	"github.com/user/sceneshow/pkg/orchestrator"
)

// CanvasPreset names a common social canvas.
type CanvasPreset string

const (
	PresetStory     CanvasPreset = "story"
	PresetSquare    CanvasPreset = "square"
	PresetPost      CanvasPreset = "post"
	PresetLandscape CanvasPreset = "landscape"
)

// CanvasPresets lists every canvas preset.
func CanvasPresets() []CanvasPreset {
	return []CanvasPreset{PresetStory, PresetSquare, PresetPost, PresetLandscape}
}

// Size returns the canvas size of the preset.
func (p CanvasPreset) Size() (width, height int, ok bool) {
	switch p {
	case PresetStory:
		return 1080, 1920, true
	case PresetSquare:
		return 1080, 1080, true
	case PresetPost:
		return 1080, 1350, true
	case PresetLandscape:
		return 1920, 1080, true
	}
	return 0, 0, false
}

// ParseCanvasPreset normalizes a preset name.
func ParseCanvasPreset(s string) (CanvasPreset, error) {
	p := CanvasPreset(strings.ToLower(strings.TrimSpace(s)))
	if _, _, ok := p.Size(); !ok {
		return "", fmt.Errorf("unknown canvas preset %q", s)
	}
	return p, nil
}

// QualityPreset represents an output quality preset name.
type QualityPreset string

const (
	QualityLow    QualityPreset = "low"
	QualityMedium QualityPreset = "medium"
	QualityHigh   QualityPreset = "high"
)

// QualitySettings contains quality parameters for video and still output.
type QualitySettings struct {
	VideoCRF    int // H.264 CRF (0-51, lower is better)
	Bitrate     int // kbps ceiling, 0 for none
	JPEGQuality int // still JPEG quality (1-100)
}

// GetQualitySettings returns quality settings for the given preset.
func GetQualitySettings(preset QualityPreset) QualitySettings {
	switch preset {
	case QualityLow:
		return QualitySettings{
			VideoCRF:    32,
			Bitrate:     1500,
			JPEGQuality: 75,
		}
	case QualityHigh:
		return QualitySettings{
			VideoCRF:    18,
			Bitrate:     8000,
			JPEGQuality: 95,
		}
	default: // medium
		return QualitySettings{
			VideoCRF:    23,
			Bitrate:     4000,
			JPEGQuality: 90,
		}
	}
}

// ParseQualityPreset normalizes a quality preset name.
func ParseQualityPreset(s string) (QualityPreset, error) {
	q := QualityPreset(strings.ToLower(strings.TrimSpace(s)))
	switch q {
	case QualityLow, QualityMedium, QualityHigh:
		return q, nil
	}
	return "", fmt.Errorf("unknown quality preset %q", s)
}

// ConfigBuilder provides a fluent interface for building config.Config.
type ConfigBuilder struct {
	config config.Config
}

// NewConfigBuilder creates a new ConfigBuilder with story canvas defaults.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{config: config.Defaults()}
}

// FromConfig starts from an existing configuration, typically a loaded file.
func FromConfig(cfg config.Config) *ConfigBuilder {
	return &ConfigBuilder{config: cfg}
}

// Build returns the final Config, applying constraints.
func (b *ConfigBuilder) Build() config.Config {
	cfg := b.config

	if cfg.Encoder.FPS <= 0 {
		cfg.Encoder.FPS = 30
	}
	if cfg.Workers < 0 {
		cfg.Workers = 0
	}
	if cfg.Encoder.Quality > 51 {
		cfg.Encoder.Quality = 51
	}

	return cfg
}

// WithCanvasPreset sets the canvas size from a preset. Unknown presets are
// ignored.
func (b *ConfigBuilder) WithCanvasPreset(preset CanvasPreset) *ConfigBuilder {
	if w, h, ok := preset.Size(); ok {
		b.config.Canvas.Width = w
		b.config.Canvas.Height = h
	}
	return b
}

// WithCanvas sets the default canvas size.
func (b *ConfigBuilder) WithCanvas(width, height int) *ConfigBuilder {
	b.config.Canvas.Width = width
	b.config.Canvas.Height = height
	return b
}

// WithBackground sets the default canvas background colour.
func (b *ConfigBuilder) WithBackground(color string) *ConfigBuilder {
	b.config.Canvas.Background = color
	return b
}

// WithQualityPreset applies a quality preset (low, medium, high).
func (b *ConfigBuilder) WithQualityPreset(preset QualityPreset) *ConfigBuilder {
	settings := GetQualitySettings(preset)
	b.config.Encoder.Quality = settings.VideoCRF
	b.config.Encoder.Bitrate = settings.Bitrate
	b.config.Output.JPEGQuality = settings.JPEGQuality
	return b
}

// WithCodec selects the video codec (auto, h264, mjpeg).
func (b *ConfigBuilder) WithCodec(codec string) *ConfigBuilder {
	b.config.Encoder.Codec = codec
	return b
}

// WithFPS sets the animation frame rate.
func (b *ConfigBuilder) WithFPS(fps float64) *ConfigBuilder {
	b.config.Encoder.FPS = fps
	return b
}

// WithOutroMs sets the duration to hold the final frame in milliseconds.
func (b *ConfigBuilder) WithOutroMs(ms int) *ConfigBuilder {
	b.config.Encoder.OutroMs = ms
	return b
}

// WithWorkers sets the frame render parallelism. 0 sizes it from the machine.
func (b *ConfigBuilder) WithWorkers(n int) *ConfigBuilder {
	b.config.Workers = n
	return b
}

// WithFontDirs appends font search directories.
func (b *ConfigBuilder) WithFontDirs(dirs ...string) *ConfigBuilder {
	b.config.Fonts.Dirs = append(b.config.Fonts.Dirs, dirs...)
	return b
}

// WithFFmpegPath sets the ffmpeg binary.
func (b *ConfigBuilder) WithFFmpegPath(path string) *ConfigBuilder {
	b.config.Encoder.FFmpegPath = path
	return b
}

// WithChromePath sets the Chrome binary and enables html elements.
func (b *ConfigBuilder) WithChromePath(path string) *ConfigBuilder {
	b.config.HTML.ChromePath = path
	b.config.HTML.Enabled = true
	return b
}

// WithSlides sets the deck slide and cross-fade durations in seconds.
func (b *ConfigBuilder) WithSlides(perSlide, transition float64) *ConfigBuilder {
	b.config.Deck.SlideSeconds = perSlide
	b.config.Deck.TransitionSeconds = transition
	return b
}

// WithDebug enables debug output into dir.
func (b *ConfigBuilder) WithDebug(dir string) *ConfigBuilder {
	b.config.Debug = true
	if dir != "" {
		b.config.DebugDir = dir
	}
	return b
}

// ToOrchestratorConfig builds the configuration and converts it for a render
// writing to outputPath.
func (b *ConfigBuilder) ToOrchestratorConfig(outputPath string) orchestrator.Config {
	cfg := b.Build()
	cfg.Output.Path = outputPath
	return cfg.ToOrchestratorConfig()
}
