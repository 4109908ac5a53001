// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/sceneshow/pkg/geom"
	"github.com/user/sceneshow/pkg/orchestrator"
	"github.com/user/sceneshow/pkg/ports"
)

// Config represents the full configuration file.
type Config struct {
	Canvas  CanvasConfig  `yaml:"canvas"`
	Fonts   FontsConfig   `yaml:"fonts"`
	Assets  AssetsConfig  `yaml:"assets"`
	Encoder EncoderConfig `yaml:"encoder"`
	HTML    HTMLConfig    `yaml:"html"`
	Insight InsightConfig `yaml:"insight"`
	Ad      AdConfig      `yaml:"ad"`
	Deck    DeckConfig    `yaml:"deck"`
	Output  OutputConfig  `yaml:"output"`

	// Workers is the frame render parallelism; 0 sizes it from the machine.
	Workers int `yaml:"workers"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// CanvasConfig is the canvas used when a document leaves its size "auto".
type CanvasConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Background string `yaml:"background"`
}

// FontsConfig locates font files.
type FontsConfig struct {
	Dirs     []string          `yaml:"dirs"`
	Families map[string]string `yaml:"families"`
}

// AssetsConfig controls image and document loading.
type AssetsConfig struct {
	BaseDir   string  `yaml:"base_dir"`
	TimeoutMs int     `yaml:"timeout_ms"`
	MaxBytes  int64   `yaml:"max_bytes"`
	UserAgent string  `yaml:"user_agent"`
	Prefetch  int     `yaml:"prefetch"`
	DPI       float64 `yaml:"dpi"`
	QRSize    int     `yaml:"qr_size"`
}

// EncoderConfig selects and tunes the video encoder.
type EncoderConfig struct {
	Codec         string  `yaml:"codec"`
	FFmpegPath    string  `yaml:"ffmpeg_path"`
	AllowFallback bool    `yaml:"allow_fallback"`
	Quality       int     `yaml:"quality"`
	Bitrate       int     `yaml:"bitrate"`
	FPS           float64 `yaml:"fps"`
	OutroMs       int     `yaml:"outro_ms"`
}

// HTMLConfig configures headless Chrome for html elements.
type HTMLConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ChromePath string `yaml:"chrome_path"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}

// InsightConfig configures the external tagline generator.
type InsightConfig struct {
	Command   string   `yaml:"command"`
	Args      []string `yaml:"args"`
	TimeoutMs int      `yaml:"timeout_ms"`
	MaxLength int      `yaml:"max_length"`
}

// AdConfig tunes ad card rendering.
type AdConfig struct {
	RichBadge       bool    `yaml:"rich_badge"`
	DurationSeconds float64 `yaml:"duration_seconds"`
}

// DeckConfig shapes PDF slideshows.
type DeckConfig struct {
	Width             int     `yaml:"width"`
	Height            int     `yaml:"height"`
	SlideSeconds      float64 `yaml:"slide_seconds"`
	TransitionSeconds float64 `yaml:"transition_seconds"`
}

// OutputConfig controls written files.
type OutputConfig struct {
	Path        string `yaml:"path"`
	JPEGQuality int    `yaml:"jpeg_quality"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Canvas: CanvasConfig{
			Width:      1080,
			Height:     1920,
			Background: "#ffffff",
		},
		Assets: AssetsConfig{
			TimeoutMs: 30000,
			MaxBytes:  50 << 20,
			Prefetch:  8,
			DPI:       150,
			QRSize:    512,
		},
		Encoder: EncoderConfig{
			Codec:         "auto",
			AllowFallback: true,
			Quality:       23,
			Bitrate:       4000,
			FPS:           30.0,
		},
		HTML: HTMLConfig{
			TimeoutMs: 15000,
		},
		Insight: InsightConfig{
			TimeoutMs: 20000,
			MaxLength: 120,
		},
		Ad: AdConfig{
			DurationSeconds: 4,
		},
		Deck: DeckConfig{
			Width:             1920,
			Height:            1080,
			SlideSeconds:      3,
			TransitionSeconds: 0.5,
		},
		Output: OutputConfig{
			JPEGQuality: 90,
		},

		DebugDir: "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file. Keys absent from the
// file keep their defaults.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Defaults(), err
	}
	return Parse(data)
}

// Parse reads YAML configuration over the defaults and validates it.
func Parse(data []byte) (Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values no render could use.
func (c Config) Validate() error {
	switch {
	case c.Canvas.Width <= 0 || c.Canvas.Height <= 0:
		return fmt.Errorf("config: canvas %dx%d must be positive", c.Canvas.Width, c.Canvas.Height)
	case c.Encoder.FPS <= 0:
		return fmt.Errorf("config: fps %g must be positive", c.Encoder.FPS)
	case c.Encoder.Quality < 0 || c.Encoder.Quality > 51:
		return fmt.Errorf("config: quality %d must be within 0-51", c.Encoder.Quality)
	case c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100:
		return fmt.Errorf("config: jpeg quality %d must be within 1-100", c.Output.JPEGQuality)
	case c.Workers < 0:
		return fmt.Errorf("config: workers %d must not be negative", c.Workers)
	case c.Deck.SlideSeconds <= 0:
		return fmt.Errorf("config: slide duration %g must be positive", c.Deck.SlideSeconds)
	}
	if c.Canvas.Background != "" {
		if _, ok := geom.ParseColorStrict(c.Canvas.Background); !ok {
			return fmt.Errorf("config: invalid canvas background %q", c.Canvas.Background)
		}
	}
	return nil
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	return orchestrator.Config{
		OutputPath:  c.Output.Path,
		JPEGQuality: c.Output.JPEGQuality,

		DefaultWidth:      c.Canvas.Width,
		DefaultHeight:     c.Canvas.Height,
		DefaultBackground: c.Canvas.Background,

		PrefetchLimit: c.Assets.Prefetch,

		FPS:     c.Encoder.FPS,
		OutroMs: c.Encoder.OutroMs,
		Encoder: ports.EncoderOptions{
			Quality: c.Encoder.Quality,
			Bitrate: c.Encoder.Bitrate,
		},

		DeckWidth:         c.Deck.Width,
		DeckHeight:        c.Deck.Height,
		SlideSeconds:      c.Deck.SlideSeconds,
		TransitionSeconds: c.Deck.TransitionSeconds,
	}
}
