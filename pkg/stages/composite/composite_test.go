package composite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/user/sceneshow/pkg/adapters/ggrenderer"
	"github.com/user/sceneshow/pkg/adapters/logger"
	"github.com/user/sceneshow/pkg/assets"
	"github.com/user/sceneshow/pkg/geom"
	"github.com/user/sceneshow/pkg/mocks"
	"github.com/user/sceneshow/pkg/pipeline"
	"github.com/user/sceneshow/pkg/rendererr"
	"github.com/user/sceneshow/pkg/scene"
	"github.com/user/sceneshow/pkg/stages/element"
)

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 255 / w), uint8(y * 255 / h), 128, 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newStage(t *testing.T, assetsMap map[string][]byte) *Stage {
	t.Helper()
	renderer := ggrenderer.New()
	loader := assets.NewLoader(mocks.NewAssetFetcher(assetsMap), renderer, nil, logger.NewNoop())
	elements := element.NewStage(loader, mocks.NewFontProvider(), renderer, nil, mocks.NewDebugSink(false), logger.NewNoop())
	return NewStage(renderer, loader, elements, logger.NewNoop())
}

func rect(id string, index int, x, y, w, h float64, fill string, opacity float64) scene.Element {
	return scene.Element{
		ID: id, Kind: scene.KindFigure, Index: index,
		X: x, Y: y, Width: w, Height: h, Opacity: opacity, Visible: true,
		Shape: &scene.ShapeSpec{SubType: scene.ShapeRect, Fill: fill},
	}
}

func near(a, b color.RGBA, tol int) bool {
	d := func(x, y uint8) bool {
		v := int(x) - int(y)
		return v <= tol && v >= -tol
	}
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func TestExecute_StretchedImageOnStoryCanvas(t *testing.T) {
	src := gradient(40, 30)
	s := newStage(t, map[string][]byte{"photo.png": encodePNG(t, src)})

	page := pipeline.PageLayout{
		Width: 1080, Height: 1920,
		Background: scene.Background{Color: "#1a1a1a"},
		Elements: []scene.Element{{
			ID: "photo", Kind: scene.KindImage, X: 140, Y: 360, Width: 800, Height: 600,
			Opacity: 1, Visible: true,
			Image: &scene.ImageSpec{Src: "photo.png", Crop: geom.FullCrop, Mode: scene.ResizeStretch},
		}},
	}

	res, err := s.Execute(context.Background(), pipeline.CompositeInput{Page: page})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}

	expected := image.NewRGBA(image.Rect(0, 0, 1080, 1920))
	bg := color.RGBA{0x1a, 0x1a, 0x1a, 255}
	for i := 0; i < len(expected.Pix); i += 4 {
		expected.Pix[i], expected.Pix[i+1], expected.Pix[i+2], expected.Pix[i+3] = bg.R, bg.G, bg.B, bg.A
	}
	geom.Over(expected, geom.ResizeFit(src, 800, 600, false), 140, 360)

	got := res.Image
	if got.Bounds() != expected.Bounds() {
		t.Fatalf("expected %v, got %v", expected.Bounds(), got.Bounds())
	}
	match := 0
	total := 1080 * 1920
	for y := 0; y < 1920; y++ {
		for x := 0; x < 1080; x++ {
			if near(got.RGBAAt(x, y), expected.RGBAAt(x, y), 2) {
				match++
			}
		}
	}
	if ratio := float64(match) / float64(total); ratio < 0.99 {
		t.Errorf("pixel match %.4f, want >= 0.99", ratio)
	}
}

func TestExecute_Idempotent(t *testing.T) {
	s := newStage(t, map[string][]byte{"photo.png": encodePNG(t, gradient(16, 16))})
	page := pipeline.PageLayout{
		Width: 200, Height: 120,
		Background: scene.Background{Color: "#336699"},
		Elements: []scene.Element{
			rect("r", 0, 10, 10, 50, 40, "#ff8800", 0.7),
			{
				ID: "p", Kind: scene.KindImage, Index: 1, X: 80, Y: 20, Width: 64, Height: 64,
				Opacity: 1, Visible: true, Rotation: 30,
				Image: &scene.ImageSpec{Src: "photo.png", Crop: geom.Crop{X: 0.25, Y: 0.25, W: 0.5, H: 0.5}, Mode: scene.ResizeFit},
			},
		},
	}

	a, err := s.Execute(context.Background(), pipeline.CompositeInput{Page: page})
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Execute(context.Background(), pipeline.CompositeInput{Page: page})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Image.Pix, b.Image.Pix) {
		t.Error("rendering the same page twice produced different pixels")
	}
}

func TestExecute_OpacityExtremes(t *testing.T) {
	s := newStage(t, nil)
	white := color.RGBA{255, 255, 255, 255}

	opaque := pipeline.PageLayout{Width: 40, Height: 40, Background: scene.Background{Color: "#ffffff"},
		Elements: []scene.Element{rect("r", 0, 0, 0, 40, 40, "#ff0000", 1)}}
	res, _ := s.Execute(context.Background(), pipeline.CompositeInput{Page: opaque})
	if got := res.Image.RGBAAt(20, 20); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("opacity 1 should replace the background, got %v", got)
	}

	invisible := pipeline.PageLayout{Width: 40, Height: 40, Background: scene.Background{Color: "#ffffff"},
		Elements: []scene.Element{rect("r", 0, 0, 0, 40, 40, "#ff0000", 0)}}
	res, _ = s.Execute(context.Background(), pipeline.CompositeInput{Page: invisible})
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if res.Image.RGBAAt(x, y) != white {
				t.Fatalf("opacity 0 must leave the background untouched at (%d,%d)", x, y)
			}
		}
	}
}

func TestExecute_ZOrderAndClipping(t *testing.T) {
	s := newStage(t, nil)
	page := pipeline.PageLayout{
		Width: 50, Height: 50, DefaultBackground: "#000000",
		Elements: []scene.Element{
			rect("below", 0, -20, -20, 50, 50, "#ff0000", 1),
			rect("above", 1, 10, 10, 60, 60, "#0000ff", 1),
		},
	}

	res, err := s.Execute(context.Background(), pipeline.CompositeInput{Page: page})
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Image.RGBAAt(5, 5); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("expected clipped red layer at (5,5), got %v", got)
	}
	if got := res.Image.RGBAAt(20, 20); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("later element should paint over earlier, got %v", got)
	}
	if got := res.Image.RGBAAt(45, 2); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("expected default background, got %v", got)
	}
}

func TestExecute_BestEffort(t *testing.T) {
	calls := 0
	elements := pipeline.StageFunc[pipeline.ElementInput, pipeline.ElementResult](
		func(ctx context.Context, in pipeline.ElementInput) (pipeline.ElementResult, error) {
			calls++
			switch in.Element.ID {
			case "broken":
				return pipeline.ElementResult{}, fmt.Errorf("decode: %w", rendererr.ErrSourceUnavailable)
			case "skipped":
				return pipeline.ElementResult{Warnings: []rendererr.Warning{{Kind: rendererr.KindUnsupported, Element: "skipped"}}}, nil
			}
			layer := image.NewRGBA(image.Rect(0, 0, 2, 2))
			layer.SetRGBA(0, 0, color.RGBA{0, 255, 0, 255})
			return pipeline.ElementResult{Layer: &pipeline.Layer{Image: layer}}, nil
		})

	s := NewStage(ggrenderer.New(), nil, elements, logger.NewNoop())
	page := pipeline.PageLayout{Index: 3, Width: 4, Height: 4, Elements: []scene.Element{
		{ID: "broken"}, {ID: "skipped"}, {ID: "ok"},
	}}

	res, err := s.Execute(context.Background(), pipeline.CompositeInput{Page: page})
	if err != nil {
		t.Fatalf("element failures must not fail the page: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected every element to be attempted, got %d calls", calls)
	}
	if len(res.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", res.Warnings)
	}
	if w := res.Warnings[0]; w.Kind != rendererr.KindSourceUnavailable || w.Page != 3 || w.Element != "broken" {
		t.Errorf("unexpected warning %+v", w)
	}
	if res.Image.RGBAAt(0, 0) != (color.RGBA{0, 255, 0, 255}) {
		t.Error("expected the successful element to be drawn")
	}
}

func TestExecute_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	elements := pipeline.StageFunc[pipeline.ElementInput, pipeline.ElementResult](
		func(ctx context.Context, in pipeline.ElementInput) (pipeline.ElementResult, error) {
			calls++
			cancel()
			return pipeline.ElementResult{}, nil
		})

	s := NewStage(ggrenderer.New(), nil, elements, logger.NewNoop())
	page := pipeline.PageLayout{Width: 4, Height: 4, Elements: []scene.Element{{ID: "a"}, {ID: "b"}, {ID: "c"}}}

	res, err := s.Execute(ctx, pipeline.CompositeInput{Page: page})
	if !errors.Is(err, context.Canceled) || !errors.Is(err, rendererr.ErrCancelled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if res.Image != nil {
		t.Error("a cancelled page must not return a partial canvas")
	}
	if calls != 1 {
		t.Errorf("expected rendering to stop after the first element, got %d calls", calls)
	}
}

func TestExecute_BackgroundImage(t *testing.T) {
	red := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < len(red.Pix); i += 4 {
		red.Pix[i], red.Pix[i+3] = 255, 255
	}
	s := newStage(t, map[string][]byte{"bg.png": encodePNG(t, red)})

	page := pipeline.PageLayout{Width: 30, Height: 20, Background: scene.Background{Color: "#0000ff", Src: "bg.png"}}
	res, err := s.Execute(context.Background(), pipeline.CompositeInput{Page: page})
	if err != nil {
		t.Fatal(err)
	}
	if c := res.Image.RGBAAt(15, 10); c.R < 250 || c.B > 5 {
		t.Errorf("expected stretched red background, got %v", c)
	}

	page.Background.Src = "missing.png"
	res, err = s.Execute(context.Background(), pipeline.CompositeInput{Page: page})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Kind != rendererr.KindSourceUnavailable {
		t.Fatalf("expected one source-unavailable warning, got %v", res.Warnings)
	}
	if c := res.Image.RGBAAt(15, 10); c != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("expected colour fallback, got %v", c)
	}
}

func TestBackgroundColor(t *testing.T) {
	tests := []struct {
		name string
		page pipeline.PageLayout
		want color.Color
	}{
		{"page colour", pipeline.PageLayout{Background: scene.Background{Color: "#102030"}, DefaultBackground: "#ffffff"}, color.NRGBA{0x10, 0x20, 0x30, 255}},
		{"default", pipeline.PageLayout{DefaultBackground: "#000"}, color.NRGBA{0, 0, 0, 255}},
		{"white", pipeline.PageLayout{Background: scene.Background{Color: "not-a-colour"}}, color.White},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BackgroundColor(tt.page); got != tt.want {
				t.Errorf("BackgroundColor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExecute_InvalidPageSize(t *testing.T) {
	s := NewStage(ggrenderer.New(), nil, nil, logger.NewNoop())
	_, err := s.Execute(context.Background(), pipeline.CompositeInput{Page: pipeline.PageLayout{Width: 0, Height: 10}})
	if !errors.Is(err, rendererr.ErrInvalidGeometry) {
		t.Errorf("expected ErrInvalidGeometry, got %v", err)
	}
}
