// Command adpreview renders one product record in every static ad template
// and writes the results side by side for visual comparison.
//
// Usage:
//
//	adpreview record.json [outdir]
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/user/sceneshow/pkg/adapters/assetfetch"
	"github.com/user/sceneshow/pkg/adapters/fitzpdf"
	"github.com/user/sceneshow/pkg/adapters/fontprovider"
	"github.com/user/sceneshow/pkg/adapters/ggrenderer"
	"github.com/user/sceneshow/pkg/adapters/logger"
	"github.com/user/sceneshow/pkg/adapters/mjpegencoder"
	"github.com/user/sceneshow/pkg/adapters/nullsink"
	"github.com/user/sceneshow/pkg/adapters/osfilesystem"
	"github.com/user/sceneshow/pkg/adrecord"
	"github.com/user/sceneshow/pkg/assets"
	"github.com/user/sceneshow/pkg/config"
	"github.com/user/sceneshow/pkg/juxtapose"
	"github.com/user/sceneshow/pkg/orchestrator"
	"github.com/user/sceneshow/pkg/ports"
	"github.com/user/sceneshow/pkg/stages/adcard"
	"github.com/user/sceneshow/pkg/stages/composite"
	"github.com/user/sceneshow/pkg/stages/element"
	"github.com/user/sceneshow/pkg/stages/encode"
	"github.com/user/sceneshow/pkg/stages/frames"
	"github.com/user/sceneshow/pkg/stages/layout"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: adpreview record.json [outdir]")
		os.Exit(2)
	}
	input := os.Args[1]
	outDir := "tmp"
	if len(os.Args) > 2 {
		outDir = os.Args[2]
	}

	if err := run(context.Background(), input, outDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, input, outDir string) error {
	fs := osfilesystem.New()
	data, err := fs.ReadFile(input)
	if err != nil {
		return err
	}
	record, err := adrecord.Parse(data)
	if err != nil {
		return err
	}
	if err := fs.MkdirAll(outDir); err != nil {
		return err
	}

	log := logger.NewConsole(ports.LevelWarn)
	renderer := ggrenderer.New()
	sink := nullsink.New()
	cfg := config.Defaults()

	dir, _ := filepath.Abs(filepath.Dir(input))
	fetcher := assetfetch.New(fs, assetfetch.Options{BaseDir: dir, QRSize: cfg.Assets.QRSize}, log)
	docs := fitzpdf.New()
	loader := assets.NewLoader(fetcher, renderer, docs, log)
	fonts := fontprovider.New(fs, cfg.Fonts.Families, cfg.Fonts.Dirs, log)

	elements := element.NewStage(loader, fonts, renderer, nil, sink, log)
	compositor := composite.NewStage(renderer, loader, elements, log)
	orch := orchestrator.New(orchestrator.Stages{
		Layout:    layout.NewStage(sink, log),
		Composite: compositor,
		Frames:    frames.NewStage(compositor, sink, log, 1),
		AdCard:    adcard.NewStage(nil, sink, log, adcard.Options{Duration: cfg.Ad.DurationSeconds}),
		Encode:    encode.NewStage(mjpegencoder.New(), log),
	}, loader, docs, renderer, fs, sink, log)

	var paths []string
	for _, t := range adrecord.StaticTemplates() {
		record.Template = t
		oc := cfg.ToOrchestratorConfig()
		oc.OutputPath = filepath.Join(outDir, fmt.Sprintf("ad_%s.png", t))

		result, err := orch.RenderAd(ctx, record, oc)
		if err != nil {
			fmt.Printf("Error rendering %s: %v\n", t, err)
			continue
		}
		page := result.Still.Pages[0]
		paths = append(paths, page.Path)
		fmt.Printf("Generated %s (%dx%d, %d warnings)\n", page.Path, page.Width, page.Height, result.Report().Len())
	}
	if len(paths) == 0 {
		return fmt.Errorf("no template rendered")
	}

	sheet := filepath.Join(outDir, "ad_compare.png")
	if err := juxtapose.Files(renderer, fs, paths, sheet, ports.FormatPNG, juxtapose.DefaultOptions()); err != nil {
		return err
	}
	fmt.Printf("Generated %s\n", sheet)
	return nil
}
