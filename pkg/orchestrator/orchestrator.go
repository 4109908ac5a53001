// Package orchestrator coordinates all pipeline stages.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ideamans/go-l10n"
	"github.com/user/sceneshow/pkg/adrecord"
	"github.com/user/sceneshow/pkg/pipeline"
	"github.com/user/sceneshow/pkg/ports"
	"github.com/user/sceneshow/pkg/rendererr"
	"github.com/user/sceneshow/pkg/scene"
	"github.com/user/sceneshow/pkg/stages/encode"
	"github.com/user/sceneshow/pkg/timeline"
)

// Config contains all configuration for the orchestrator.
type Config struct {
	// Output
	OutputPath  string
	JPEGQuality int // used when OutputPath ends in .jpg or .jpeg

	// Canvas defaults for "auto" sizes and ad cards
	DefaultWidth      int
	DefaultHeight     int
	DefaultBackground string

	// Assets
	PrefetchLimit int

	// Animation and encoding
	FPS     float64
	OutroMs int
	Encoder ports.EncoderOptions

	// Decks
	DeckWidth         int
	DeckHeight        int
	SlideSeconds      float64
	TransitionSeconds float64
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		JPEGQuality: 90,

		DefaultWidth:      1080,
		DefaultHeight:     1920,
		DefaultBackground: "#ffffff",

		PrefetchLimit: 8,

		FPS:     timeline.DefaultFPS,
		OutroMs: 0,
		Encoder: ports.EncoderOptions{Quality: 23, Bitrate: 4000},

		DeckWidth:         1920,
		DeckHeight:        1080,
		SlideSeconds:      3,
		TransitionSeconds: 0.5,
	}
}

// Prefetcher warms the asset cache before rendering starts.
type Prefetcher interface {
	Prefetch(ctx context.Context, srcs []string, limit int) error
}

// Stages groups the pipeline stages the orchestrator drives.
type Stages struct {
	Layout    pipeline.Stage[pipeline.LayoutInput, pipeline.LayoutResult]
	Composite pipeline.Stage[pipeline.CompositeInput, pipeline.CompositeResult]
	Frames    pipeline.Stage[pipeline.FramesInput, pipeline.FramesResult]
	AdCard    pipeline.Stage[pipeline.AdCardInput, pipeline.AdCardResult]
	Encode    *encode.Stage
}

// Orchestrator coordinates the execution of all pipeline stages.
type Orchestrator struct {
	stages     Stages
	prefetcher Prefetcher
	docs       ports.DocumentRasterizer
	renderer   ports.Renderer
	fs         ports.FileSystem
	sink       ports.DebugSink
	logger     ports.Logger
}

// New creates a new Orchestrator. prefetcher and docs may be nil; without
// docs RenderDeck is unavailable.
func New(
	stages Stages,
	prefetcher Prefetcher,
	docs ports.DocumentRasterizer,
	renderer ports.Renderer,
	fs ports.FileSystem,
	sink ports.DebugSink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		stages:     stages,
		prefetcher: prefetcher,
		docs:       docs,
		renderer:   renderer,
		fs:         fs,
		sink:       sink,
		logger:     logger,
	}
}

// PageOutput describes one written image.
type PageOutput struct {
	Path   string
	Width  int
	Height int
	Bytes  int64
}

// RenderResult contains the results of a still render.
type RenderResult struct {
	Pages  []PageOutput
	Report *rendererr.Report
}

// AnimateResult contains the results of an animation render.
type AnimateResult struct {
	Path       string
	Width      int
	Height     int
	FPS        float64
	FrameCount int
	DurationMs int
	FileSize   int64
	Report     *rendererr.Report
}

// AdResult contains the results of an ad render. Exactly one of Still and
// Video is set.
type AdResult struct {
	Template adrecord.Template
	Tagline  string
	Still    *RenderResult
	Video    *AnimateResult
}

// Report returns the warnings of whichever render ran.
func (r AdResult) Report() *rendererr.Report {
	switch {
	case r.Still != nil:
		return r.Still.Report
	case r.Video != nil:
		return r.Video.Report
	}
	return rendererr.NewReport()
}

// Render lays out and composites every page of doc and writes one image per
// page. A single page is written to OutputPath; several pages get a two-digit
// suffix before the extension.
func (o *Orchestrator) Render(ctx context.Context, doc *scene.Document, config Config) (RenderResult, error) {
	return o.render(ctx, doc, config, rendererr.NewReport())
}

func (o *Orchestrator) render(ctx context.Context, doc *scene.Document, config Config, report *rendererr.Report) (RenderResult, error) {
	o.logger.Info(l10n.T("Starting render"))
	if doc == nil {
		return RenderResult{}, fmt.Errorf("%w: no document", rendererr.ErrInvalidDocument)
	}

	if o.sink.Enabled() {
		if data, err := doc.MarshalIndent(); err == nil {
			o.sink.SaveSceneJSON(data)
		}
	}

	if err := o.prefetch(ctx, doc.Sources(), config); err != nil {
		return RenderResult{}, err
	}

	// 1. Layout
	layout, err := o.stages.Layout.Execute(ctx, o.buildLayoutInput(doc, config))
	if err != nil {
		o.logger.Error(l10n.F("Failed to calculate layout: %s", err))
		return RenderResult{}, fmt.Errorf("layout stage: %w", err)
	}
	o.logger.Info(l10n.F("Layout calculated: %d pages", len(layout.Pages)))

	// 2. Composite and write each page
	format := FormatFor(config.OutputPath)
	result := RenderResult{Report: report}
	for i, page := range layout.Pages {
		if ctx.Err() != nil {
			return RenderResult{}, rendererr.Cancelled(ctx)
		}
		report.Add(page.Warnings...)

		o.logger.Info(l10n.F("Compositing page %d of %d", i+1, len(layout.Pages)))
		composite, err := o.stages.Composite.Execute(ctx, pipeline.CompositeInput{Page: page})
		if err != nil {
			o.logger.Error(l10n.F("Failed to composite page %d: %s", i+1, err))
			return RenderResult{}, fmt.Errorf("composite stage: %w", err)
		}
		report.Add(composite.Warnings...)
		if o.sink.Enabled() {
			o.sink.SavePage(i, composite.Image)
		}

		data, err := o.renderer.EncodeImage(composite.Image, format, config.JPEGQuality)
		if err != nil {
			return RenderResult{}, rendererr.Wrap("output", i, "", fmt.Errorf("%w: %w", rendererr.ErrEncodingFailure, err))
		}
		path := PagePath(config.OutputPath, i, len(layout.Pages))
		if err := o.fs.WriteFile(path, data); err != nil {
			o.logger.Error(l10n.F("Failed to write output: %s", err))
			return RenderResult{}, fmt.Errorf("write output: %w", err)
		}
		result.Pages = append(result.Pages, PageOutput{
			Path:   path,
			Width:  page.Width,
			Height: page.Height,
			Bytes:  int64(len(data)),
		})
	}

	o.saveReport(report)
	o.logger.Info(l10n.F("Render completed: %d pages, %d warnings", len(result.Pages), report.Len()))
	return result, nil
}

// Animate renders every frame of src and streams it into the video encoder.
// Any failure aborts the encoder and nothing is written.
func (o *Orchestrator) Animate(ctx context.Context, src pipeline.FrameSource, config Config) (AnimateResult, error) {
	return o.animate(ctx, src, config, rendererr.NewReport())
}

func (o *Orchestrator) animate(ctx context.Context, src pipeline.FrameSource, config Config, report *rendererr.Report) (AnimateResult, error) {
	o.logger.Info(l10n.T("Starting animation"))
	if src == nil {
		return AnimateResult{}, fmt.Errorf("%w: no animation", rendererr.ErrInvalidDocument)
	}
	if v, ok := src.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return AnimateResult{}, err
		}
	}
	if l, ok := src.(interface{ Sources() []string }); ok {
		if err := o.prefetch(ctx, l.Sources(), config); err != nil {
			return AnimateResult{}, err
		}
	}

	width, height := src.Size()
	fps := src.FrameRate()
	count := src.FrameCount()

	// 1. Open the encoder
	o.logger.Info(l10n.F("Encoding video with CRF %d", config.Encoder.Quality))
	session := o.stages.Encode.NewSession()
	if err := session.Begin(width, height, fps, config.Encoder); err != nil {
		o.logger.Error(l10n.F("Failed to encode video: %s", err))
		return AnimateResult{}, err
	}

	// 2. Render frames straight into it
	o.logger.Info(l10n.F("Rendering %d frames", count))
	frames, err := o.stages.Frames.Execute(ctx, pipeline.FramesInput{
		Source: src,
		Emit:   session.Write,
	})
	if err != nil {
		session.Abort()
		o.logger.Error(l10n.F("Failed to render frames: %s", err))
		return AnimateResult{}, fmt.Errorf("frames stage: %w", err)
	}
	report.Add(frames.Warnings...)

	// 3. Finalize
	encoded, err := session.Finish(config.OutroMs)
	if err != nil {
		o.logger.Error(l10n.F("Failed to encode video: %s", err))
		return AnimateResult{}, fmt.Errorf("encode stage: %w", err)
	}
	o.logger.Info(l10n.F("Video encoded: %d bytes", len(encoded.VideoData)))

	// 4. Write output file
	if err := o.fs.WriteFile(config.OutputPath, encoded.VideoData); err != nil {
		o.logger.Error(l10n.F("Failed to write output: %s", err))
		return AnimateResult{}, fmt.Errorf("write output: %w", err)
	}

	o.saveReport(report)
	o.logger.Info(l10n.T("Animation completed successfully"))

	return AnimateResult{
		Path:       config.OutputPath,
		Width:      width,
		Height:     height,
		FPS:        fps,
		FrameCount: encoded.FrameCount,
		DurationMs: encoded.DurationMs,
		FileSize:   encoded.FileSize,
		Report:     report,
	}, nil
}

// RenderAd composes an ad record on the default canvas and renders it as a
// still image, or as a video for animated templates.
func (o *Orchestrator) RenderAd(ctx context.Context, record adrecord.Record, config Config) (AdResult, error) {
	o.logger.Info(l10n.F("Composing %s ad", record.Template))
	card, err := o.stages.AdCard.Execute(ctx, pipeline.AdCardInput{
		Record: record,
		Width:  config.DefaultWidth,
		Height: config.DefaultHeight,
		FPS:    config.FPS,
	})
	if err != nil {
		o.logger.Error(l10n.F("Failed to compose ad: %s", err))
		return AdResult{}, fmt.Errorf("adcard stage: %w", err)
	}

	report := rendererr.NewReport()
	report.Add(card.Warnings...)
	result := AdResult{Template: record.Template, Tagline: card.Tagline}

	if card.Animation != nil {
		video, err := o.animate(ctx, card.Animation, config, report)
		if err != nil {
			return AdResult{}, err
		}
		result.Video = &video
		return result, nil
	}

	still, err := o.render(ctx, card.Document, config, report)
	if err != nil {
		return AdResult{}, err
	}
	result.Still = &still
	return result, nil
}

// RenderDeck turns every page of the PDF at path into a slide and renders
// the slideshow as a video.
func (o *Orchestrator) RenderDeck(ctx context.Context, path string, config Config) (AnimateResult, error) {
	o.logger.Info(l10n.F("Reading deck %s", path))
	if o.docs == nil {
		return AnimateResult{}, fmt.Errorf("%w: no document rasterizer configured", rendererr.ErrSourceUnavailable)
	}

	data, err := o.fs.ReadFile(path)
	if err != nil {
		return AnimateResult{}, fmt.Errorf("%w: read deck: %v", rendererr.ErrSourceUnavailable, err)
	}
	n, err := o.docs.PageCount(data)
	if err != nil {
		return AnimateResult{}, fmt.Errorf("%w: %v", rendererr.ErrInvalidDocument, err)
	}
	if n == 0 {
		return AnimateResult{}, fmt.Errorf("%w: deck has no pages", rendererr.ErrInvalidDocument)
	}
	o.logger.Info(l10n.F("Deck has %d pages", n))

	sources := make([]string, n)
	for i := range sources {
		sources[i] = fmt.Sprintf("%s#page=%d", path, i+1)
	}

	show, err := timeline.Slideshow(sources, timeline.SlideshowOptions{
		Width:      config.DeckWidth,
		Height:     config.DeckHeight,
		FPS:        config.FPS,
		PerSlide:   config.SlideSeconds,
		Transition: config.TransitionSeconds,
		Background: config.DefaultBackground,
	})
	if err != nil {
		return AnimateResult{}, fmt.Errorf("%w: %v", rendererr.ErrInvalidDocument, err)
	}
	return o.Animate(ctx, show, config)
}

func (o *Orchestrator) buildLayoutInput(doc *scene.Document, config Config) pipeline.LayoutInput {
	input := pipeline.DefaultLayoutInput()
	input.Document = doc
	if config.DefaultWidth > 0 {
		input.DefaultWidth = config.DefaultWidth
	}
	if config.DefaultHeight > 0 {
		input.DefaultHeight = config.DefaultHeight
	}
	if config.DefaultBackground != "" {
		input.DefaultBackground = config.DefaultBackground
	}
	return input
}

func (o *Orchestrator) prefetch(ctx context.Context, srcs []string, config Config) error {
	if o.prefetcher == nil || len(srcs) == 0 {
		return nil
	}
	o.logger.Info(l10n.F("Loading %d assets", len(srcs)))
	if err := o.prefetcher.Prefetch(ctx, srcs, config.PrefetchLimit); err != nil {
		return err
	}
	return nil
}

func (o *Orchestrator) saveReport(report *rendererr.Report) {
	if !o.sink.Enabled() {
		return
	}
	if data, err := json.MarshalIndent(report, "", "  "); err == nil {
		o.sink.SaveReportJSON(data)
	}
}

// FormatFor picks the still image format from the output extension.
func FormatFor(path string) ports.ImageFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return ports.FormatJPEG
	}
	return ports.FormatPNG
}

// PagePath returns the output path of page i out of n.
func PagePath(path string, i, n int) string {
	if n <= 1 {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%02d%s", strings.TrimSuffix(path, ext), i+1, ext)
}
