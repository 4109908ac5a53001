package adcard

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/user/sceneshow/pkg/adapters/logger"
	"github.com/user/sceneshow/pkg/adrecord"
	"github.com/user/sceneshow/pkg/mocks"
	"github.com/user/sceneshow/pkg/pipeline"
	"github.com/user/sceneshow/pkg/rendererr"
	"github.com/user/sceneshow/pkg/scene"
	"github.com/user/sceneshow/pkg/timeline"
)

func sofa(tmpl adrecord.Template) adrecord.Record {
	return adrecord.Record{
		Image:    "sofa.jpg",
		Name:     "Premium Sofa",
		Price:    "1299",
		Currency: "USD",
		Template: tmpl,
		Badge:    "sale",
	}
}

func TestStage_Execute_Static(t *testing.T) {
	sink := mocks.NewDebugSink(true)
	stage := NewStage(nil, sink, logger.NewNoop(), Options{})

	result, err := stage.Execute(context.Background(), pipeline.AdCardInput{
		Record: sofa(adrecord.TemplateLuxury), Width: 1080, Height: 1080,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Document == nil || result.Animation != nil {
		t.Fatal("static template must produce a document")
	}
	w, h := result.Document.Size(0, 0, 0)
	if w != 1080 || h != 1080 {
		t.Errorf("document size %dx%d", w, h)
	}
	if sink.SceneJSON == nil {
		t.Error("expected the scene to be saved to the debug sink")
	}
}

func TestStage_Execute_DefaultCanvas(t *testing.T) {
	stage := NewStage(nil, mocks.NewDebugSink(false), logger.NewNoop(), Options{})
	result, err := stage.Execute(context.Background(), pipeline.AdCardInput{Record: sofa(adrecord.TemplateMinimal)})
	if err != nil {
		t.Fatal(err)
	}
	if w, h := result.Document.Size(0, 0, 0); w != 1080 || h != 1920 {
		t.Errorf("default canvas %dx%d, want 1080x1920", w, h)
	}
}

func TestStage_Execute_Insight(t *testing.T) {
	tests := []struct {
		name    string
		insight *mocks.InsightGenerator
		tagline string
		want    string
		calls   int
	}{
		{"fills empty tagline", &mocks.InsightGenerator{Text: " Sink into comfort \n", OK: true}, "", "Sink into comfort", 1},
		{"keeps given tagline", &mocks.InsightGenerator{Text: "ignored", OK: true}, "Made to last", "Made to last", 0},
		{"no insight", &mocks.InsightGenerator{OK: false}, "", "", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage := NewStage(tt.insight, mocks.NewDebugSink(false), logger.NewNoop(), Options{})
			r := sofa(adrecord.TemplateMinimal)
			r.Tagline = tt.tagline

			result, err := stage.Execute(context.Background(), pipeline.AdCardInput{Record: r, Width: 1080, Height: 1920})
			if err != nil {
				t.Fatal(err)
			}
			if result.Tagline != tt.want {
				t.Errorf("tagline = %q, want %q", result.Tagline, tt.want)
			}
			if tt.insight.Calls != tt.calls {
				t.Errorf("insight called %d times, want %d", tt.insight.Calls, tt.calls)
			}
			hasTagline := false
			for _, e := range result.Document.Pages[0].Children {
				if e.ID == "tagline" {
					hasTagline = true
				}
			}
			if hasTagline != (tt.want != "") {
				t.Errorf("tagline element present = %v", hasTagline)
			}
		})
	}
}

func TestStage_Execute_Animated(t *testing.T) {
	stage := NewStage(nil, mocks.NewDebugSink(false), logger.NewNoop(), Options{Duration: 3})
	result, err := stage.Execute(context.Background(), pipeline.AdCardInput{
		Record: sofa(adrecord.TemplateTikTok), Width: 540, Height: 960, FPS: 25,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Animation == nil || result.Document != nil {
		t.Fatal("tiktok template must produce an animation")
	}
	if result.Animation.FrameCount() != 75 {
		t.Errorf("frame count = %d, want 75", result.Animation.FrameCount())
	}

	first := result.Animation.FrameAt(0)
	for _, e := range first.Elements {
		if e.ID == "name" || e.ID == "price" {
			t.Errorf("%s must not be visible in the first frame", e.ID)
		}
	}

	last := result.Animation.FrameAt(74)
	ids := map[string]bool{}
	for _, e := range last.Elements {
		ids[e.ID] = true
	}
	for _, id := range []string{"image", "name", "price", "badge"} {
		if !ids[id] {
			t.Errorf("%s missing from the last frame", id)
		}
	}
}

func TestAnimate_Entrances(t *testing.T) {
	c, err := adrecord.Compose(sofa(adrecord.TemplateTikTok), 1080, 1920)
	if err != nil {
		t.Fatal(err)
	}
	tl, err := Animate(c, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if tl.FPS != timeline.DefaultFPS || tl.Duration != DefaultDuration {
		t.Errorf("defaults not applied: %g fps, %g s", tl.FPS, tl.Duration)
	}

	tracks := map[string]timeline.Track{}
	for _, tr := range tl.Tracks {
		tracks[tr.Element.ID] = tr
	}
	if tr := tracks["image"]; tr.Enter == nil || tr.Enter.Easing != "easeOutElastic" || tr.Enter.FromScale != 0 {
		t.Errorf("image must pop in: %+v", tr.Enter)
	}
	if tr := tracks["name"]; tr.Enter == nil || tr.Enter.Easing != "easeInOutCubic" || tr.Enter.FromOffsetY <= 0 {
		t.Errorf("name must slide up: %+v", tr.Enter)
	}
	if tr := tracks["price"]; tr.Enter == nil || tr.Enter.Easing != "easeOut" || tr.Enter.FromOpacity != 0 {
		t.Errorf("price must fade in: %+v", tr.Enter)
	}
	if tracks["badge"].Oscillate == nil || tracks["badge-bg"].Oscillate == nil {
		t.Error("badge must drift")
	}
	if tracks["band"].Enter != nil {
		t.Error("decorations are static")
	}

	// The name slides up, so mid-transition it sits below its resting place.
	rest := tracks["name"].Element.Y
	mid := tl.PageAt(0.7)
	for _, e := range mid.Elements {
		if e.ID == "name" && e.Y <= rest {
			t.Errorf("name at y=%v mid-slide, rest is %v", e.Y, rest)
		}
	}
}

func TestStage_Execute_RichBadge(t *testing.T) {
	stage := NewStage(nil, mocks.NewDebugSink(false), logger.NewNoop(), Options{RichBadge: true})
	result, err := stage.Execute(context.Background(), pipeline.AdCardInput{
		Record: sofa(adrecord.TemplateBold), Width: 1080, Height: 1920,
	})
	if err != nil {
		t.Fatal(err)
	}

	var badge *scene.Element
	for i, e := range result.Document.Pages[0].Children {
		if e.ID == "badge-bg" {
			t.Error("rich badge must replace the shape background")
		}
		if e.ID == "badge" {
			badge = &result.Document.Pages[0].Children[i]
		}
	}
	if badge == nil || badge.Kind != scene.KindHTML {
		t.Fatal("expected an html badge")
	}
	if !strings.Contains(badge.HTML.Markup, ">SALE<") || !strings.Contains(badge.HTML.Markup, "50%") {
		t.Errorf("unexpected badge markup: %s", badge.HTML.Markup)
	}
}

func TestRenderBadgeHTML_Escapes(t *testing.T) {
	html, err := RenderBadgeHTML(BadgeVars{Width: 100, Height: 40, Label: "<b>50% off</b>", Fill: "#000000", Color: "#ffffff", FontSize: 20})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(html, "<b>") {
		t.Error("label must be escaped")
	}
}

func TestStage_Execute_Errors(t *testing.T) {
	stage := NewStage(nil, mocks.NewDebugSink(false), logger.NewNoop(), Options{})

	_, err := stage.Execute(context.Background(), pipeline.AdCardInput{Record: adrecord.Record{Name: "x"}})
	var se *rendererr.StageError
	if !errors.Is(err, rendererr.ErrInvalidDocument) || !errors.As(err, &se) || se.Stage != "adcard" {
		t.Errorf("expected an adcard invalid document error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := stage.Execute(ctx, pipeline.AdCardInput{Record: sofa(adrecord.TemplateMinimal)}); !errors.Is(err, rendererr.ErrCancelled) {
		t.Errorf("expected cancellation, got %v", err)
	}
}
