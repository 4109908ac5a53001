package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/sceneshow/pkg/adapters/assetfetch"
	"github.com/user/sceneshow/pkg/adapters/capturehtml"
	"github.com/user/sceneshow/pkg/adapters/filesink"
	"github.com/user/sceneshow/pkg/adapters/fitzpdf"
	"github.com/user/sceneshow/pkg/adapters/fontprovider"
	"github.com/user/sceneshow/pkg/adapters/ggrenderer"
	"github.com/user/sceneshow/pkg/adapters/insightcmd"
	"github.com/user/sceneshow/pkg/adapters/logger"
	"github.com/user/sceneshow/pkg/adapters/mjpegencoder"
	"github.com/user/sceneshow/pkg/adapters/nullsink"
	"github.com/user/sceneshow/pkg/adapters/osfilesystem"
	"github.com/user/sceneshow/pkg/adapters/smartencoder"
	"github.com/user/sceneshow/pkg/adapters/sysprobe"
	"github.com/user/sceneshow/pkg/assets"
	"github.com/user/sceneshow/pkg/config"
	"github.com/user/sceneshow/pkg/orchestrator"
	"github.com/user/sceneshow/pkg/ports"
	"github.com/user/sceneshow/pkg/sceneshow"
	"github.com/user/sceneshow/pkg/stages/adcard"
	"github.com/user/sceneshow/pkg/stages/composite"
	"github.com/user/sceneshow/pkg/stages/element"
	"github.com/user/sceneshow/pkg/stages/encode"
	"github.com/user/sceneshow/pkg/stages/frames"
	"github.com/user/sceneshow/pkg/stages/layout"
)

// env is everything one command needs, wired from the configuration.
type env struct {
	cfg      config.Config
	preset   string
	quality  string
	log      ports.Logger
	fs       ports.FileSystem
	renderer ports.Renderer
	orch     *orchestrator.Orchestrator
	codec    smartencoder.Info
	workers  int

	closers []func() error
}

// envOptions says what the command will produce.
type envOptions struct {
	// baseDir resolves relative asset paths when the config names none.
	baseDir string
	// video requests a real encoder.
	video bool
	// frameWidth and frameHeight size the worker pool; zero uses the canvas.
	frameWidth, frameHeight int
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			e.log.Debug("Close failed: %v", err)
		}
	}
}

// loadConfig reads the config file when given and applies global flags over
// it.
func loadConfig(c *cli.Context) (config.Config, string, string, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, "", "", fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	builder := sceneshow.FromConfig(cfg)

	preset := ""
	if c.IsSet("preset") {
		p, err := sceneshow.ParseCanvasPreset(c.String("preset"))
		if err != nil {
			return cfg, "", "", err
		}
		builder.WithCanvasPreset(p)
		preset = string(p)
	}
	quality := ""
	if c.IsSet("quality") {
		q, err := sceneshow.ParseQualityPreset(c.String("quality"))
		if err != nil {
			return cfg, "", "", err
		}
		builder.WithQualityPreset(q)
		quality = string(q)
	}
	if c.IsSet("workers") {
		builder.WithWorkers(c.Int("workers"))
	}
	if dirs := c.StringSlice("fonts-dir"); len(dirs) > 0 {
		builder.WithFontDirs(dirs...)
	}
	if c.IsSet("ffmpeg-path") {
		builder.WithFFmpegPath(c.String("ffmpeg-path"))
	}
	if c.IsSet("chrome-path") {
		builder.WithChromePath(c.String("chrome-path"))
	}
	if c.Bool("debug") {
		builder.WithDebug(c.String("debug-dir"))
	}
	if c.IsSet("codec") {
		builder.WithCodec(c.String("codec"))
	}
	if c.IsSet("fps") {
		builder.WithFPS(c.Float64("fps"))
	}
	if c.IsSet("outro-ms") {
		builder.WithOutroMs(c.Int("outro-ms"))
	}

	built := builder.Build()
	if err := built.Validate(); err != nil {
		return built, "", "", err
	}
	return built, preset, quality, nil
}

func newLogger(c *cli.Context) ports.Logger {
	if c.Bool("quiet") {
		return logger.NewNoop()
	}
	return logger.NewConsole(ports.ParseLogLevel(c.String("log-level")))
}

// newEnv wires adapters, stages and the orchestrator.
func newEnv(c *cli.Context, opts envOptions) (*env, error) {
	cfg, preset, quality, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	log := newLogger(c)

	e := &env{cfg: cfg, preset: preset, quality: quality, log: log}
	e.fs = osfilesystem.New()
	e.renderer = ggrenderer.New()

	// Assets
	baseDir := cfg.Assets.BaseDir
	if baseDir == "" {
		baseDir = opts.baseDir
	}
	fetcher := assetfetch.New(e.fs, assetfetch.Options{
		BaseDir:   baseDir,
		MaxBytes:  cfg.Assets.MaxBytes,
		Timeout:   time.Duration(cfg.Assets.TimeoutMs) * time.Millisecond,
		UserAgent: cfg.Assets.UserAgent,
		QRSize:    cfg.Assets.QRSize,
	}, log)
	docs := fitzpdf.New()
	loader := assets.NewLoader(fetcher, e.renderer, docs, log)
	loader.SetDPI(cfg.Assets.DPI)

	fonts := fontprovider.New(e.fs, cfg.Fonts.Families, cfg.Fonts.Dirs, log)

	var html ports.HTMLCapturer
	if cfg.HTML.Enabled {
		capturer := capturehtml.New(capturehtml.Options{
			ChromePath: cfg.HTML.ChromePath,
			Timeout:    time.Duration(cfg.HTML.TimeoutMs) * time.Millisecond,
		}, log)
		e.closers = append(e.closers, capturer.Close)
		html = capturer
	}

	var insight ports.InsightGenerator
	if gen := insightcmd.New(insightcmd.Options{
		Command:   cfg.Insight.Command,
		Args:      cfg.Insight.Args,
		Timeout:   time.Duration(cfg.Insight.TimeoutMs) * time.Millisecond,
		MaxLength: cfg.Insight.MaxLength,
	}, log); gen != nil {
		insight = gen
	}

	var sink ports.DebugSink
	if cfg.Debug {
		if err := e.fs.MkdirAll(cfg.DebugDir); err != nil {
			return nil, fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.DebugDir, e.fs, e.renderer)
	} else {
		sink = nullsink.New()
	}

	// Encoder
	var encoder ports.VideoEncoder
	if opts.video {
		codec, err := smartencoder.ParseCodec(cfg.Encoder.Codec)
		if err != nil {
			return nil, err
		}
		encoder, e.codec, err = smartencoder.New(codec, smartencoder.Options{
			FFmpegPath:    cfg.Encoder.FFmpegPath,
			AllowFallback: cfg.Encoder.AllowFallback,
			Logger:        log,
		})
		if err != nil {
			return nil, err
		}
		log.Debug("Video encoder: %s (%s)", e.codec.Codec, e.codec.Backend)
	} else {
		encoder = mjpegencoder.New()
	}

	// Workers
	e.workers = cfg.Workers
	if e.workers == 0 {
		w, h := opts.frameWidth, opts.frameHeight
		if w <= 0 || h <= 0 {
			w, h = cfg.Canvas.Width, cfg.Canvas.Height
		}
		e.workers = sysprobe.Probe().Workers(sysprobe.FrameBytes(w, h), 0)
	}

	// Stages
	elements := element.NewStage(loader, fonts, e.renderer, html, sink, log)
	compositeStage := composite.NewStage(e.renderer, loader, elements, log)
	stages := orchestrator.Stages{
		Layout:    layout.NewStage(sink, log),
		Composite: compositeStage,
		Frames:    frames.NewStage(compositeStage, sink, log, e.workers),
		AdCard: adcard.NewStage(insight, sink, log, adcard.Options{
			RichBadge: cfg.Ad.RichBadge && html != nil,
			Duration:  cfg.Ad.DurationSeconds,
		}),
		Encode: encode.NewStage(encoder, log),
	}

	e.orch = orchestrator.New(stages, loader, docs, e.renderer, e.fs, sink, log)
	return e, nil
}

// orchestratorConfig converts the configuration for a render into output.
func (e *env) orchestratorConfig(output string) orchestrator.Config {
	oc := e.cfg.ToOrchestratorConfig()
	oc.OutputPath = output
	return oc
}

// codecLabel names the encoder for summaries.
func (e *env) codecLabel() string {
	if e.codec.Codec == "" {
		return ""
	}
	label := fmt.Sprintf("%s (%s)", e.codec.Codec, e.codec.Backend)
	if e.codec.FallbackUsed {
		label += " " + l10n.T("fallback")
	}
	return label
}

func inputDir(path string) string {
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return filepath.Dir(path)
	}
	return dir
}
