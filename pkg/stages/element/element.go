// Package element implements the element rendering stage: one scene element
// in, one transparent layer (or a skip with warnings) out.
package element

import (
	"context"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/user/sceneshow/pkg/geom"
	"github.com/user/sceneshow/pkg/pipeline"
	"github.com/user/sceneshow/pkg/ports"
	"github.com/user/sceneshow/pkg/rendererr"
	"github.com/user/sceneshow/pkg/scene"
	"github.com/user/sceneshow/pkg/textmetrics"
)

const stageName = "element"

// ImageLoader returns decoded images for sources.
type ImageLoader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// Stage renders single elements.
type Stage struct {
	loader   ImageLoader
	fonts    ports.FontProvider
	renderer ports.Renderer
	html     ports.HTMLCapturer
	sink     ports.DebugSink
	logger   ports.Logger
}

// NewStage creates a new element stage. html may be nil, in which case html
// elements are skipped.
func NewStage(
	loader ImageLoader,
	fonts ports.FontProvider,
	renderer ports.Renderer,
	html ports.HTMLCapturer,
	sink ports.DebugSink,
	logger ports.Logger,
) *Stage {
	return &Stage{
		loader:   loader,
		fonts:    fonts,
		renderer: renderer,
		html:     html,
		sink:     sink,
		logger:   logger.WithComponent("element"),
	}
}

// renderCtx carries per-call state so the stage itself stays shareable
// between workers.
type renderCtx struct {
	page     int
	element  scene.Element
	warnings []rendererr.Warning
}

func (rc *renderCtx) warn(kind rendererr.Kind, format string, args ...interface{}) {
	rc.warnings = append(rc.warnings, rendererr.Warning{
		Kind:    kind,
		Page:    rc.page,
		Element: rc.element.ID,
		Stage:   stageName,
		Message: fmt.Sprintf(format, args...),
	})
}

// Execute renders one element. Element-level failures never return an error:
// they produce a skipped result with a warning. Only cancellation is an error.
func (s *Stage) Execute(ctx context.Context, input pipeline.ElementInput) (pipeline.ElementResult, error) {
	if ctx.Err() != nil {
		return pipeline.ElementResult{}, rendererr.Cancelled(ctx)
	}

	e := input.Element
	rc := &renderCtx{page: input.Page, element: e}

	w, h := int(math.Round(e.Width)), int(math.Round(e.Height))
	if w <= 0 || h <= 0 || math.IsNaN(e.Width) || math.IsNaN(e.Height) {
		rc.warn(rendererr.KindInvalidGeometry, "size %gx%g is not positive", e.Width, e.Height)
		s.logger.Debug("Skipping %s: invalid size %gx%g", e.ID, e.Width, e.Height)
		return pipeline.ElementResult{Warnings: rc.warnings}, nil
	}
	if e.Opacity <= 0 {
		return pipeline.ElementResult{}, nil
	}

	var layer *image.RGBA
	switch e.Kind {
	case scene.KindImage:
		layer = s.renderImage(ctx, rc, w, h)
	case scene.KindText:
		layer = s.renderText(rc, w, h)
	case scene.KindFigure:
		layer = s.renderShape(rc, w, h)
	case scene.KindHTML:
		layer = s.renderHTML(ctx, rc, w, h)
	default:
		rc.warn(rendererr.KindUnsupported, "element type %q is not supported", e.RawType)
	}
	if layer == nil {
		if ctx.Err() != nil {
			return pipeline.ElementResult{}, rendererr.Cancelled(ctx)
		}
		s.logger.Debug("Skipped element %s", e.ID)
		return pipeline.ElementResult{Warnings: rc.warnings}, nil
	}

	// Opacity before rotation so rotated edges are not multiplied twice.
	geom.ApplyOpacity(layer, e.Opacity)
	rotated := geom.Rotate(layer, e.Rotation)

	x, y := int(math.Round(e.X)), int(math.Round(e.Y))
	if rotated != layer {
		x, y = geom.Reanchor(x, y, w, h, rotated.Bounds().Dx(), rotated.Bounds().Dy())
	}

	if s.sink.Enabled() {
		s.sink.SaveLayer(input.Page, e.ID, rotated)
	}

	return pipeline.ElementResult{
		Layer:    &pipeline.Layer{Image: rotated, X: x, Y: y},
		Warnings: rc.warnings,
	}, nil
}

func (s *Stage) renderImage(ctx context.Context, rc *renderCtx, w, h int) *image.RGBA {
	spec := rc.element.Image
	if spec == nil {
		rc.warn(rendererr.KindUnsupported, "image element without image fields")
		return nil
	}

	src, err := s.loader.Load(ctx, spec.Src)
	if err != nil {
		rc.warn(rendererr.KindSourceUnavailable, "%v", err)
		return nil
	}

	cropped, err := geom.CropNormalized(src, spec.Crop)
	if err != nil {
		rc.warn(rendererr.KindInvalidGeometry, "%v", err)
		return nil
	}

	layer := geom.ResizeFit(cropped, w, h, spec.Mode == scene.ResizeFit)
	layer = geom.Flip(layer, spec.FlipX, spec.FlipY)

	if spec.BorderSize > 0 {
		geom.DrawBorder(layer, int(math.Round(spec.BorderSize)), geom.ParseColor(spec.BorderColor))
	}
	return layer
}

func (s *Stage) renderText(rc *renderCtx, w, h int) *image.RGBA {
	spec := rc.element.Text
	if spec == nil {
		rc.warn(rendererr.KindUnsupported, "text element without text fields")
		return nil
	}

	weight := spec.FontWeight
	if spec.FontStyle == "italic" || spec.FontStyle == "oblique" {
		weight += " italic"
	}
	f, fallback := s.fonts.Resolve(spec.FontFamily, weight)
	if fallback {
		rc.warn(rendererr.KindFallback, "font %q (%s) unavailable, using the default font", spec.FontFamily, strings.TrimSpace(weight))
	}

	res, err := textmetrics.Fit(spec.Text, textmetrics.OpenType{Font: f}, spec.FontSize, float64(w), float64(h), textmetrics.Options{
		MinScale:   spec.MinScale,
		MaxScale:   1,
		MaxLines:   spec.MaxLines,
		LineHeight: spec.LineHeight,
		AutoScale:  spec.AutoScale,
	})
	if err != nil {
		rc.warn(rendererr.KindSourceUnavailable, "font face: %v", err)
		return nil
	}
	if res.Overflowed {
		rc.warn(rendererr.KindOverflow, "text does not fit %dx%d at scale %.2f (%d lines)", w, h, res.Scale, res.Metrics.LineCount)
	}

	canvas := s.renderer.CreateCanvas(w, h, nil)
	style := ports.TextStyle{
		Face:  res.Font.Face,
		Color: geom.ParseColor(spec.Fill),
		Align: ports.ParseTextAlign(spec.Align),
	}
	if spec.StrokeWidth > 0 && spec.Stroke != "" {
		style.StrokeWidth = spec.StrokeWidth
		style.StrokeColor = geom.ParseColor(spec.Stroke)
	}

	lineH := res.Font.LineAdvance()
	blockH := res.Metrics.TotalHeight
	top := 0.0
	switch spec.VerticalAlign {
	case "middle", "center":
		top = (float64(h) - blockH) / 2
	case "bottom":
		top = float64(h) - blockH
	}

	fm := res.Font.Face.Metrics()
	ascent := float64(fm.Ascent) / 64
	descent := float64(fm.Descent) / 64
	baseline := top + (lineH-(ascent+descent))/2 + ascent

	x := 0.0
	switch style.Align {
	case ports.AlignCenter:
		x = float64(w) / 2
	case ports.AlignRight:
		x = float64(w)
	}

	for _, line := range res.Metrics.Lines {
		if line.Text != "" {
			canvas.DrawText(line.Text, x, baseline, style)
		}
		baseline += lineH
	}
	return canvas.ToImage()
}

func (s *Stage) renderShape(rc *renderCtx, w, h int) *image.RGBA {
	spec := rc.element.Shape
	if spec == nil || spec.SubType == scene.ShapeUnknown {
		rc.warn(rendererr.KindUnsupported, "figure subtype is not supported")
		return nil
	}

	canvas := s.renderer.CreateCanvas(w, h, nil)
	fw, fh := float64(w), float64(h)

	if spec.Fill != "" {
		fill := geom.ParseColor(spec.Fill)
		switch {
		case spec.SubType == scene.ShapeEllipse:
			canvas.DrawEllipse(0, 0, fw, fh, fill)
		case spec.CornerRadius > 0:
			canvas.DrawRoundedRect(0, 0, fw, fh, spec.CornerRadius, fill)
		default:
			canvas.DrawRect(0, 0, fw, fh, fill)
		}
	}

	if spec.StrokeWidth > 0 && spec.Stroke != "" {
		stroke := geom.ParseColor(spec.Stroke)
		if spec.SubType == scene.ShapeEllipse {
			canvas.StrokeEllipse(0, 0, fw, fh, stroke, spec.StrokeWidth)
		} else {
			canvas.StrokeRect(0, 0, fw, fh, spec.CornerRadius, stroke, spec.StrokeWidth)
		}
	}
	return canvas.ToImage()
}

func (s *Stage) renderHTML(ctx context.Context, rc *renderCtx, w, h int) *image.RGBA {
	if s.html == nil {
		rc.warn(rendererr.KindSourceUnavailable, "no HTML capturer configured")
		return nil
	}
	if rc.element.HTML == nil || strings.TrimSpace(rc.element.HTML.Markup) == "" {
		rc.warn(rendererr.KindSourceUnavailable, "html element has no markup")
		return nil
	}

	img, err := s.html.CaptureHTML(ctx, rc.element.HTML.Markup, w, h)
	if err != nil {
		rc.warn(rendererr.KindSourceUnavailable, "capture html: %v", err)
		return nil
	}
	// Always a fresh w x h copy; opacity is applied in place afterwards.
	return geom.ResizeFit(img, w, h, false)
}
