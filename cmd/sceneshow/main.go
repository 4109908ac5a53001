// Package main provides the CLI entry point for sceneshow.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/sceneshow/pkg/adrecord"
	"github.com/user/sceneshow/pkg/juxtapose"
	"github.com/user/sceneshow/pkg/orchestrator"
	"github.com/user/sceneshow/pkg/rendererr"
	"github.com/user/sceneshow/pkg/scene"
	"github.com/user/sceneshow/pkg/summarizer"
	"github.com/user/sceneshow/pkg/timeline"
)

var version = "dev"

func main() {
	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, l10n.T("Interrupted, shutting down..."))
		cancel()
	}()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, rendererr.ErrCancelled):
		return 130
	case errors.Is(err, rendererr.ErrInvalidDocument), errors.Is(err, rendererr.ErrInvalidGeometry):
		return 2
	}
	return 1
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "sceneshow",
		Usage:   l10n.T("Render scenes, animations and product ads to images and video"),
		Version: version,
		Description: l10n.T("sceneshow lays out JSON or YAML scenes of images, text and shapes and renders them to PNG, JPEG or MP4."),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			renderCommand(),
			animateCommand(),
			adCommand(),
			deckCommand(),
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file"), Category: l10n.T("Configuration")},
		&cli.StringFlag{Name: "preset", Aliases: []string{"p"}, Usage: l10n.T("Canvas preset (story, square, post, landscape)"), Category: l10n.T("Configuration")},
		&cli.StringFlag{Name: "quality", Aliases: []string{"q"}, Usage: l10n.T("Quality preset (low, medium, high)"), Category: l10n.T("Configuration")},
		&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: l10n.T("Frame render workers (0 = from CPUs and memory)"), Category: l10n.T("Configuration")},
		&cli.StringSliceFlag{Name: "fonts-dir", Usage: l10n.T("Directory searched for font files (repeatable)"), Category: l10n.T("Configuration")},
		&cli.StringFlag{Name: "ffmpeg-path", Usage: l10n.T("Path to ffmpeg executable"), EnvVars: []string{"FFMPEG_PATH"}, Category: l10n.T("External tools")},
		&cli.StringFlag{Name: "chrome-path", Usage: l10n.T("Path to Chrome executable (enables html elements)"), Category: l10n.T("External tools")},
		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info", Usage: l10n.T("Log level (debug, info, warn, error)"), Category: l10n.T("Logging")},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output"), Category: l10n.T("Logging")},
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Enable debug output"), Category: l10n.T("Debug")},
		&cli.StringFlag{Name: "debug-dir", Value: "./debug", Usage: l10n.T("Directory for debug output"), Category: l10n.T("Debug")},
	}
}

func outputFlag(usage string) cli.Flag {
	return &cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: l10n.T(usage), Category: l10n.T("Output")}
}

func reportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "report", Usage: l10n.T("Write warnings to a JSON file"), Category: l10n.T("Output")},
		&cli.StringFlag{Name: "summary", Usage: l10n.T("Output execution summary to file (Markdown format)"), Category: l10n.T("Output")},
	}
}

func videoFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "codec", Usage: l10n.T("Video codec (auto, h264, mjpeg)"), Category: l10n.T("Video")},
		&cli.Float64Flag{Name: "fps", Usage: l10n.T("Frames per second"), Category: l10n.T("Video")},
		&cli.IntFlag{Name: "outro-ms", Usage: l10n.T("Duration to hold final frame in milliseconds"), Category: l10n.T("Video")},
	}
}

func requireInput(c *cli.Context, what string) (string, error) {
	if c.NArg() != 1 {
		return "", cli.Exit(l10n.F("One %s argument is required", what), 2)
	}
	return c.Args().First(), nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// --- render ---

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     l10n.T("Render a scene to PNG or JPEG"),
		ArgsUsage: "<scene.json|scene.yaml>",
		Flags: append([]cli.Flag{
			outputFlag("Output image path (.png or .jpg; pages get -01, -02 ...)"),
			&cli.StringFlag{Name: "sheet", Usage: l10n.T("Also write all pages side by side to this image"), Category: l10n.T("Output")},
		}, reportFlags()...),
		Action: runRender,
	}
}

func runRender(c *cli.Context) error {
	input, err := requireInput(c, "scene")
	if err != nil {
		return err
	}
	e, err := newEnv(c, envOptions{baseDir: inputDir(input)})
	if err != nil {
		return err
	}
	defer e.Close()

	data, err := e.fs.ReadFile(input)
	if err != nil {
		return fmt.Errorf("%w: %v", rendererr.ErrSourceUnavailable, err)
	}
	parse := scene.Parse
	if isYAML(input) {
		parse = scene.ParseYAML
	}
	doc, err := parse(data)
	if err != nil {
		return err
	}

	output := c.String("output")
	e.log.Info(l10n.F("Rendering %s...", input))
	result, err := e.orch.Render(c.Context, doc, e.orchestratorConfig(output))
	if err != nil {
		return err
	}

	paths := make([]string, len(result.Pages))
	var size int64
	for i, p := range result.Pages {
		paths[i] = p.Path
		size += p.Bytes
	}
	e.log.Info(l10n.F("Output saved to %s", strings.Join(paths, ", ")))

	if sheet := c.String("sheet"); sheet != "" {
		if err := juxtapose.Files(e.renderer, e.fs, paths, sheet, orchestrator.FormatFor(sheet), juxtapose.DefaultOptions()); err != nil {
			return fmt.Errorf("contact sheet: %w", err)
		}
		e.log.Info(l10n.F("Contact sheet saved to %s", sheet))
	}

	out := summarizer.OutputInfo{Paths: paths, Pages: len(result.Pages), FileSize: size}
	if len(result.Pages) > 0 {
		out.CanvasWidth, out.CanvasHeight = result.Pages[0].Width, result.Pages[0].Height
	}
	return e.finish(c, input, "scene", "", out, result.Report)
}

// --- animate ---

func animateCommand() *cli.Command {
	return &cli.Command{
		Name:      "animate",
		Usage:     l10n.T("Render a timeline to MP4"),
		ArgsUsage: "<timeline.yaml|timeline.json>",
		Flags: append(append([]cli.Flag{
			outputFlag("Output MP4 file path"),
		}, videoFlags()...), reportFlags()...),
		Action: runAnimate,
	}
}

func runAnimate(c *cli.Context) error {
	input, err := requireInput(c, "timeline")
	if err != nil {
		return err
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("%w: %v", rendererr.ErrSourceUnavailable, err)
	}
	parse := timeline.ParseJSON
	if isYAML(input) {
		parse = timeline.ParseYAML
	}
	tl, err := parse(data)
	if err != nil {
		return err
	}
	if c.IsSet("fps") {
		tl.FPS = c.Float64("fps")
	}

	e, err := newEnv(c, envOptions{baseDir: inputDir(input), video: true, frameWidth: tl.Width, frameHeight: tl.Height})
	if err != nil {
		return err
	}
	defer e.Close()
	if tl.DefaultBackground == "" {
		tl.DefaultBackground = e.cfg.Canvas.Background
	}

	output := c.String("output")
	e.log.Info(l10n.F("Animating %s...", input))
	result, err := e.orch.Animate(c.Context, tl, e.orchestratorConfig(output))
	if err != nil {
		return err
	}
	e.log.Info(l10n.F("Output saved to %s", output))

	return e.finish(c, input, "timeline", "", videoOutput(result, e), result.Report)
}

// --- ad ---

func adCommand() *cli.Command {
	return &cli.Command{
		Name:      "ad",
		Usage:     l10n.T("Render a product ad from a record"),
		ArgsUsage: "<record.json|record.yaml>",
		Flags: append(append([]cli.Flag{
			outputFlag("Output path (.png/.jpg, or .mp4 for animated templates)"),
			&cli.StringFlag{Name: "template", Aliases: []string{"t"}, Usage: l10n.T("Template (minimal, bold, luxury, tiktok)"), Category: l10n.T("Ad")},
		}, videoFlags()...), reportFlags()...),
		Action: runAd,
	}
}

func runAd(c *cli.Context) error {
	input, err := requireInput(c, "record")
	if err != nil {
		return err
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("%w: %v", rendererr.ErrSourceUnavailable, err)
	}
	parse := adrecord.Parse
	if isYAML(input) {
		parse = adrecord.ParseYAML
	}
	record, err := parse(data)
	if err != nil {
		return err
	}
	if c.IsSet("template") {
		t, err := adrecord.ParseTemplate(c.String("template"))
		if err != nil {
			return fmt.Errorf("%w: %v", rendererr.ErrInvalidDocument, err)
		}
		record.Template = t
	}

	e, err := newEnv(c, envOptions{baseDir: inputDir(input), video: record.Template.Animated()})
	if err != nil {
		return err
	}
	defer e.Close()

	output := c.String("output")
	e.log.Info(l10n.F("Rendering %s ad for %s...", record.Template, record.Name))
	result, err := e.orch.RenderAd(c.Context, record, e.orchestratorConfig(output))
	if err != nil {
		return err
	}
	if result.Tagline != "" && result.Tagline != record.Tagline {
		e.log.Info(l10n.F("Tagline: %s", result.Tagline))
	}

	var out summarizer.OutputInfo
	if result.Video != nil {
		out = videoOutput(*result.Video, e)
	} else {
		p := result.Still.Pages[0]
		out = summarizer.OutputInfo{Paths: []string{p.Path}, Pages: 1, CanvasWidth: p.Width, CanvasHeight: p.Height, FileSize: p.Bytes}
	}
	e.log.Info(l10n.F("Output saved to %s", strings.Join(out.Paths, ", ")))
	return e.finish(c, input, "ad", string(record.Template), out, result.Report())
}

// --- deck ---

func deckCommand() *cli.Command {
	return &cli.Command{
		Name:      "deck",
		Usage:     l10n.T("Turn a PDF into a slideshow video"),
		ArgsUsage: "<slides.pdf>",
		Flags: append(append([]cli.Flag{
			outputFlag("Output MP4 file path"),
			&cli.Float64Flag{Name: "slide-seconds", Usage: l10n.T("Seconds each slide is shown"), Category: l10n.T("Deck")},
			&cli.Float64Flag{Name: "transition", Usage: l10n.T("Cross-fade seconds between slides (0 = cut)"), Category: l10n.T("Deck")},
		}, videoFlags()...), reportFlags()...),
		Action: runDeck,
	}
}

func runDeck(c *cli.Context) error {
	input, err := requireInput(c, "PDF")
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	cfg, _, _, err := loadConfig(c)
	if err != nil {
		return err
	}
	e, err := newEnv(c, envOptions{video: true, frameWidth: cfg.Deck.Width, frameHeight: cfg.Deck.Height})
	if err != nil {
		return err
	}
	defer e.Close()

	oc := e.orchestratorConfig(c.String("output"))
	if c.IsSet("slide-seconds") {
		oc.SlideSeconds = c.Float64("slide-seconds")
	}
	if c.IsSet("transition") {
		oc.TransitionSeconds = c.Float64("transition")
	}

	e.log.Info(l10n.F("Rendering deck %s...", input))
	result, err := e.orch.RenderDeck(c.Context, abs, oc)
	if err != nil {
		return err
	}
	e.log.Info(l10n.F("Output saved to %s", oc.OutputPath))

	return e.finish(c, input, "deck", "", videoOutput(result, e), result.Report)
}

// --- shared output ---

func videoOutput(r orchestrator.AnimateResult, e *env) summarizer.OutputInfo {
	return summarizer.OutputInfo{
		Paths:        []string{r.Path},
		CanvasWidth:  r.Width,
		CanvasHeight: r.Height,
		FrameCount:   r.FrameCount,
		DurationMs:   r.DurationMs,
		CRF:          e.cfg.Encoder.Quality,
		OutroMs:      e.cfg.Encoder.OutroMs,
		FileSize:     r.FileSize,
	}
}

// finish logs the warning tally and writes the optional report and summary.
func (e *env) finish(c *cli.Context, input, kind, template string, out summarizer.OutputInfo, report *rendererr.Report) error {
	if report == nil {
		report = rendererr.NewReport()
	}
	if warnings := report.All(); len(warnings) > 0 {
		e.log.Warn(l10n.F("%d warnings", len(warnings)))
		for _, w := range warnings {
			e.log.Debug("[%s] page %d %s: %s", w.Kind, w.Page, w.Element, w.Message)
		}
	}

	if path := c.String("report"); path != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		if err := e.fs.WriteFile(path, data); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	if path := c.String("summary"); path != "" {
		summary := summarizer.NewBuilder().
			WithSource(input, kind).
			WithSettings(summarizer.Settings{
				Preset:   e.preset,
				Quality:  e.quality,
				Codec:    e.codecLabel(),
				Template: template,
				Workers:  e.workers,
				FPS:      e.cfg.Encoder.FPS,
			}).
			WithOutput(out).
			WithReport(report).
			Build()

		writer := summarizer.NewWriter(summarizer.NewMarkdownFormatter(
			summarizer.WithTranslator(l10n.T),
			summarizer.WithVersion(version),
		), e.fs)
		if err := writer.Write(path, summary); err != nil {
			e.log.Error(l10n.F("Failed to write summary: %s", err))
			return err
		}
		e.log.Info(l10n.F("Summary saved to %s", path))
	}
	return nil
}
