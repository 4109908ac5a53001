// Package composite implements the page composition stage.
package composite

import (
	"context"
	"errors"
	"image"
	"image/color"

	"github.com/user/sceneshow/pkg/geom"
	"github.com/user/sceneshow/pkg/pipeline"
	"github.com/user/sceneshow/pkg/ports"
	"github.com/user/sceneshow/pkg/rendererr"
)

const stageName = "composite"

// ImageLoader returns decoded images for background sources.
type ImageLoader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// ElementRenderer renders one element into a positioned layer.
type ElementRenderer = pipeline.Stage[pipeline.ElementInput, pipeline.ElementResult]

// Stage composes the layers of a page onto its background.
type Stage struct {
	renderer ports.Renderer
	loader   ImageLoader
	elements ElementRenderer
	logger   ports.Logger
}

// NewStage creates a new composite stage.
func NewStage(renderer ports.Renderer, loader ImageLoader, elements ElementRenderer, logger ports.Logger) *Stage {
	return &Stage{
		renderer: renderer,
		loader:   loader,
		elements: elements,
		logger:   logger.WithComponent("composite"),
	}
}

// Execute composites one page. Element failures become warnings; the only
// errors are cancellation and a page without a usable size.
func (s *Stage) Execute(ctx context.Context, input pipeline.CompositeInput) (pipeline.CompositeResult, error) {
	page := input.Page
	if page.Width <= 0 || page.Height <= 0 {
		return pipeline.CompositeResult{}, rendererr.Wrap(stageName, page.Index, "", rendererr.ErrInvalidGeometry)
	}
	if ctx.Err() != nil {
		return pipeline.CompositeResult{}, rendererr.Cancelled(ctx)
	}

	var warnings []rendererr.Warning
	canvas, bgWarnings := s.background(ctx, page)
	warnings = append(warnings, bgWarnings...)

	drawn := 0
	for _, e := range page.Elements {
		if ctx.Err() != nil {
			return pipeline.CompositeResult{}, rendererr.Cancelled(ctx)
		}

		res, err := s.elements.Execute(ctx, pipeline.ElementInput{Page: page.Index, Element: e})
		warnings = append(warnings, res.Warnings...)
		if err != nil {
			if errors.Is(err, rendererr.ErrCancelled) || ctx.Err() != nil {
				return pipeline.CompositeResult{}, rendererr.Cancelled(ctx)
			}
			s.logger.Debug("Element %s failed: %v", e.ID, err)
			warnings = append(warnings, rendererr.Warning{
				Kind:    rendererr.KindOf(err),
				Page:    page.Index,
				Element: e.ID,
				Stage:   stageName,
				Message: err.Error(),
			})
			continue
		}
		if res.Skipped() {
			continue
		}

		geom.Over(canvas, res.Layer.Image, res.Layer.X, res.Layer.Y)
		drawn++
	}

	s.logger.Debug("Page %d composited: %d/%d elements drawn, %d warnings", page.Index, drawn, len(page.Elements), len(warnings))
	return pipeline.CompositeResult{Image: canvas, Warnings: warnings}, nil
}

// background builds the page canvas. An image background is stretched to
// the canvas over the background colour; when it cannot be loaded the colour
// alone is used and a warning is returned.
func (s *Stage) background(ctx context.Context, page pipeline.PageLayout) (*image.RGBA, []rendererr.Warning) {
	canvas := s.renderer.CreateCanvas(page.Width, page.Height, BackgroundColor(page))
	if !page.Background.IsImage() {
		return canvas.ToImage(), nil
	}

	img, err := s.loader.Load(ctx, page.Background.Src)
	if err != nil {
		s.logger.Debug("Background %s unavailable: %v", page.Background.Src, err)
		return canvas.ToImage(), []rendererr.Warning{{
			Kind:    rendererr.KindSourceUnavailable,
			Page:    page.Index,
			Element: "background",
			Stage:   stageName,
			Message: err.Error(),
		}}
	}

	canvas.DrawImage(geom.ResizeFit(img, page.Width, page.Height, false), 0, 0)
	return canvas.ToImage(), nil
}

// BackgroundColor returns the page colour, then the configured default,
// then white.
func BackgroundColor(page pipeline.PageLayout) color.Color {
	for _, spec := range []string{page.Background.Color, page.DefaultBackground} {
		if spec == "" {
			continue
		}
		if c, ok := geom.ParseColorStrict(spec); ok {
			return c
		}
	}
	return color.White
}
