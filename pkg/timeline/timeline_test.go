package timeline

import (
	"errors"
	"math"
	"testing"

	"github.com/user/sceneshow/pkg/rendererr"
	"github.com/user/sceneshow/pkg/scene"
)

func box(id string) scene.Element {
	return scene.Element{
		ID: id, Kind: scene.KindFigure, X: 100, Y: 200, Width: 80, Height: 40,
		Opacity: 1, Visible: true,
		Shape: &scene.ShapeSpec{SubType: scene.ShapeRect, Fill: "#ff0000"},
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestFrameAt_AppearBoundary(t *testing.T) {
	tl := &Timeline{
		FPS: 30, Duration: 1, Width: 320, Height: 240,
		Tracks: []Track{{Element: box("logo"), Appear: 0.5}},
	}

	if tl.FrameCount() != 30 {
		t.Fatalf("FrameCount() = %d, want 30", tl.FrameCount())
	}

	f14 := tl.FrameAt(14)
	if len(f14.Elements) != 0 {
		t.Errorf("frame 14 (t=%.4f) must not contain the element, got %d elements", tl.TimeOf(14), len(f14.Elements))
	}

	f15 := tl.FrameAt(15)
	if len(f15.Elements) != 1 {
		t.Fatalf("frame 15 (t=0.5) must contain the element, got %d", len(f15.Elements))
	}
	want := tl.PageAt(0.5).Elements[0]
	got := f15.Elements[0]
	if got.X != want.X || got.Y != want.Y || got.Width != want.Width || got.Height != want.Height || got.Opacity != want.Opacity {
		t.Errorf("frame 15 differs from the t=0.5 state: got %+v, want %+v", got, want)
	}
	if got.X != 100 || got.Y != 200 || got.Opacity != 1 {
		t.Errorf("expected the resting transform at appear time, got %+v", got)
	}
	if f15.Index != 15 || f15.Width != 320 {
		t.Errorf("unexpected frame page %+v", f15)
	}
}

func TestFrameAt_Pure(t *testing.T) {
	tr := Track{
		Element:   box("a"),
		Appear:    0,
		Enter:     &Transition{Duration: 1, Easing: "easeOutElastic", FromOpacity: 0, FromScale: 0.2},
		Oscillate: &Oscillate{AmplitudeY: 10, Period: 2},
	}
	tl := &Timeline{FPS: 10, Duration: 2, Width: 100, Height: 100, Tracks: []Track{tr}}

	a := tl.FrameAt(7)
	tl.FrameAt(3)
	tl.FrameAt(19)
	b := tl.FrameAt(7)
	if a.Elements[0].X != b.Elements[0].X || a.Elements[0].Y != b.Elements[0].Y || a.Elements[0].Opacity != b.Elements[0].Opacity {
		t.Error("a frame must not depend on which frames were evaluated before it")
	}
	if tl.Tracks[0].Element.Width != 80 {
		t.Error("evaluating frames must not modify the track element")
	}
}

func TestStateAt_EnterTransition(t *testing.T) {
	tr := Track{
		Element: box("a"),
		Appear:  1,
		Enter:   &Transition{Duration: 0.5, Easing: "easeOut", FromOpacity: 0, FromScale: 1, FromOffsetY: 100},
	}

	start := tr.StateAt(1)
	if !start.Visible || start.Opacity != 0 || start.OffsetY != 100 {
		t.Errorf("at appear time expected the from-state, got %+v", start)
	}

	mid := tr.StateAt(1.25)
	// easeOut(0.5) = 1 - 0.125 = 0.875
	if !approx(mid.Opacity, 0.875) || !approx(mid.OffsetY, 12.5) {
		t.Errorf("unexpected mid state %+v", mid)
	}

	end := tr.StateAt(3)
	if end.Opacity != 1 || end.Scale != 1 || end.OffsetY != 0 {
		t.Errorf("after the transition expected resting state, got %+v", end)
	}
}

func TestStateAt_AfterPolicy(t *testing.T) {
	hold := Track{Element: box("a"), Appear: 0, Disappear: 1, After: AfterHold}
	hide := Track{Element: box("b"), Appear: 0, Disappear: 1, After: AfterHide}

	if !hold.StateAt(1.5).Visible {
		t.Error("hold policy should keep the element after disappear")
	}
	if hide.StateAt(1.5).Visible {
		t.Error("hide policy should remove the element after disappear")
	}
	if !hide.StateAt(0.99).Visible {
		t.Error("element should be visible before disappear")
	}
}

func TestStateAt_ExitTransition(t *testing.T) {
	tr := Track{
		Element: box("a"), Appear: 0, Disappear: 2, After: AfterHold,
		Exit: &Transition{Duration: 1, Easing: "linear", FromOpacity: 0, FromScale: 1},
	}
	if s := tr.StateAt(0.5); s.Opacity != 1 {
		t.Errorf("exit must not start early, got %+v", s)
	}
	if s := tr.StateAt(1.5); !approx(s.Opacity, 0.5) {
		t.Errorf("expected half-faded, got %+v", s)
	}
	if s := tr.StateAt(3); s.Opacity != 0 {
		t.Errorf("hold after a fade-out keeps opacity 0, got %+v", s)
	}

	tl := &Timeline{FPS: 1, Duration: 4, Width: 10, Height: 10, Tracks: []Track{tr}}
	if n := len(tl.PageAt(3).Elements); n != 0 {
		t.Errorf("a fully transparent element is not drawn, got %d elements", n)
	}
}

func TestStateAt_Oscillate(t *testing.T) {
	tr := Track{Element: box("a"), Oscillate: &Oscillate{AmplitudeX: 5, Period: 4}}
	if s := tr.StateAt(1); !approx(s.OffsetX, 5) {
		t.Errorf("quarter period should peak at the amplitude, got %v", s.OffsetX)
	}
	if s := tr.StateAt(2); !approx(s.OffsetX, 0) {
		t.Errorf("half period should cross zero, got %v", s.OffsetX)
	}
}

func TestPageAt_ScaleAroundCentre(t *testing.T) {
	text := box("t")
	text.Kind = scene.KindText
	text.Shape = nil
	text.Text = &scene.TextSpec{Text: "Hi", FontSize: 40}

	tr := Track{Element: text, Enter: &Transition{Duration: 1, Easing: "linear", FromOpacity: 1, FromScale: 0.5}}
	tl := &Timeline{FPS: 1, Duration: 1, Width: 400, Height: 400, Tracks: []Track{tr}}

	e := tl.PageAt(0).Elements[0]
	if e.Width != 40 || e.Height != 20 || e.X != 120 || e.Y != 210 {
		t.Errorf("expected a half-size box around the same centre, got %+v", e)
	}
	if e.Text.FontSize != 20 {
		t.Errorf("expected font size 20, got %v", e.Text.FontSize)
	}
	if tl.Tracks[0].Element.Text.FontSize != 40 {
		t.Error("scaling must copy the text fields")
	}

	tr.Enter.FromScale = 0
	if n := len(tl.PageAt(0).Elements); n != 0 {
		t.Errorf("zero-size elements are not drawn, got %d", n)
	}
}

func TestPageAt_ZIndexOrder(t *testing.T) {
	top := box("top")
	z := 10
	top.ZIndex = &z
	tl := &Timeline{FPS: 1, Duration: 1, Width: 10, Height: 10, Tracks: []Track{
		{Element: top}, {Element: box("a")}, {Element: box("b")},
	}}

	els := tl.PageAt(0).Elements
	if els[0].ID != "a" || els[1].ID != "b" || els[2].ID != "top" {
		t.Errorf("unexpected order %s %s %s", els[0].ID, els[1].ID, els[2].ID)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		tl   Timeline
	}{
		{"zero fps", Timeline{Duration: 1, Width: 1, Height: 1}},
		{"zero duration", Timeline{FPS: 30, Width: 1, Height: 1}},
		{"zero size", Timeline{FPS: 30, Duration: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.tl.Validate(); !errors.Is(err, rendererr.ErrInvalidDocument) {
				t.Errorf("expected ErrInvalidDocument, got %v", err)
			}
		})
	}
}

func TestSlideshow(t *testing.T) {
	tl, err := Slideshow([]string{"a.png", "b.png", "c.png"}, SlideshowOptions{
		Width: 640, Height: 360, FPS: 10, PerSlide: 2, Transition: 0.5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if tl.Duration != 6 || tl.FrameCount() != 60 {
		t.Fatalf("unexpected duration %v / frames %d", tl.Duration, tl.FrameCount())
	}

	if els := tl.PageAt(1).Elements; len(els) != 1 || els[0].Image.Src != "a.png" {
		t.Errorf("expected only the first slide at t=1, got %d", len(els))
	}

	cross := tl.PageAt(1.75).Elements
	if len(cross) != 2 || cross[1].Image.Src != "b.png" {
		t.Fatalf("expected a cross-fade into b.png, got %d elements", len(cross))
	}
	if cross[1].Opacity <= 0 || cross[1].Opacity >= 1 {
		t.Errorf("incoming slide should be partially transparent, got %v", cross[1].Opacity)
	}

	if els := tl.PageAt(5.9).Elements; len(els) != 1 || els[0].Image.Src != "c.png" {
		t.Error("expected the last slide to hold until the end")
	}

	if _, err := Slideshow(nil, SlideshowOptions{PerSlide: 1}); err == nil {
		t.Error("expected an error for an empty deck")
	}
}

func TestSources(t *testing.T) {
	tl, err := Slideshow([]string{"a.png", "b.png"}, SlideshowOptions{Width: 64, Height: 36, FPS: 10, PerSlide: 1})
	if err != nil {
		t.Fatal(err)
	}
	tl.Background = scene.Background{Src: "bg.png"}
	tl.Tracks = append(tl.Tracks, Track{Element: box("shape")})

	got := tl.Sources()
	want := []string{"bg.png", "a.png", "b.png"}
	if len(got) != len(want) {
		t.Fatalf("Sources() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sources()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
