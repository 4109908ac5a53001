package frames

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/user/sceneshow/pkg/adapters/ggrenderer"
	"github.com/user/sceneshow/pkg/adapters/logger"
	"github.com/user/sceneshow/pkg/assets"
	"github.com/user/sceneshow/pkg/mocks"
	"github.com/user/sceneshow/pkg/pipeline"
	"github.com/user/sceneshow/pkg/rendererr"
	"github.com/user/sceneshow/pkg/scene"
	"github.com/user/sceneshow/pkg/stages/composite"
	"github.com/user/sceneshow/pkg/stages/element"
	"github.com/user/sceneshow/pkg/timeline"
)

// countingSource is a FrameSource whose pages carry only their index.
type countingSource struct {
	n   int
	fps float64
}

func (c countingSource) FrameCount() int { return c.n }
func (c countingSource) FrameRate() float64 { return c.fps }
func (c countingSource) Size() (int, int) { return 4, 4 }
func (c countingSource) FrameAt(i int) pipeline.PageLayout { return pipeline.PageLayout{Index: i, Width: 4, Height: 4} }

// jitterCompositor finishes frames out of order.
func jitterCompositor(started, warnings *int32) Compositor {
	return pipeline.StageFunc[pipeline.CompositeInput, pipeline.CompositeResult](
		func(ctx context.Context, in pipeline.CompositeInput) (pipeline.CompositeResult, error) {
			if started != nil {
				atomic.AddInt32(started, 1)
			}
			time.Sleep(time.Duration((7*in.Page.Index)%5) * time.Millisecond)
			img := image.NewRGBA(image.Rect(0, 0, 1, 1))
			img.Pix[0] = uint8(in.Page.Index)
			var ws []rendererr.Warning
			if warnings != nil {
				atomic.AddInt32(warnings, 1)
				ws = []rendererr.Warning{{Kind: rendererr.KindOverflow, Page: in.Page.Index, Element: "caption", Message: "does not fit"}}
			}
			return pipeline.CompositeResult{Image: img, Warnings: ws}, nil
		})
}

func TestExecute_CollectsInOrder(t *testing.T) {
	var warned int32
	s := NewStage(jitterCompositor(nil, &warned), mocks.NewDebugSink(false), logger.NewNoop(), 4)

	res, err := s.Execute(context.Background(), pipeline.FramesInput{Source: countingSource{n: 40, fps: 30}})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Count != 40 || len(res.Frames) != 40 {
		t.Fatalf("expected 40 frames, got %d/%d", res.Count, len(res.Frames))
	}
	for i, f := range res.Frames {
		if f.Index != i || int(f.Image.Pix[0]) != i {
			t.Fatalf("frame %d out of order (index %d)", i, f.Index)
		}
		if f.TimestampMs != Timestamp(i, 30) {
			t.Errorf("frame %d: timestamp %d, want %d", i, f.TimestampMs, Timestamp(i, 30))
		}
	}
	if len(res.Warnings) != 1 {
		t.Errorf("repeated warnings should be reported once, got %d", len(res.Warnings))
	}
	if warned != 40 {
		t.Errorf("expected every frame composited, got %d", warned)
	}
}

func TestExecute_StreamsWithBoundedWindow(t *testing.T) {
	var started int32
	workers := 3
	s := NewStage(jitterCompositor(&started, nil), mocks.NewDebugSink(false), logger.NewNoop(), workers)

	var mu sync.Mutex
	var order []int
	emitted := int32(0)
	maxAhead := int32(0)

	res, err := s.Execute(context.Background(), pipeline.FramesInput{
		Source: countingSource{n: 50, fps: 25},
		Emit: func(f pipeline.Frame) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, f.Index)
			e := atomic.AddInt32(&emitted, 1)
			if ahead := atomic.LoadInt32(&started) - e; ahead > maxAhead {
				maxAhead = ahead
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(res.Frames) != 0 || res.Count != 50 {
		t.Errorf("streamed frames must not be collected: %d/%d", len(res.Frames), res.Count)
	}
	for i, idx := range order {
		if idx != i {
			t.Fatalf("emit order broken at %d: got %d", i, idx)
		}
	}
	if maxAhead > int32(2*workers) {
		t.Errorf("rendered %d frames ahead of delivery, window is %d", maxAhead, 2*workers)
	}
}

func TestExecute_Range(t *testing.T) {
	s := NewStage(jitterCompositor(nil, nil), mocks.NewDebugSink(false), logger.NewNoop(), 2)
	res, err := s.Execute(context.Background(), pipeline.FramesInput{
		Source: countingSource{n: 30, fps: 30},
		Range:  pipeline.FrameRange{Start: 10, End: 15},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Frames) != 5 || res.Frames[0].Index != 10 || res.Frames[4].Index != 14 {
		t.Fatalf("unexpected frames for range 10-15: %d", len(res.Frames))
	}
	if res.Frames[0].TimestampMs != 333 {
		t.Errorf("frame 10 at 30fps should be at 333ms, got %d", res.Frames[0].TimestampMs)
	}
}

func TestExecute_CompositorError(t *testing.T) {
	boom := errors.New("boom")
	comp := pipeline.StageFunc[pipeline.CompositeInput, pipeline.CompositeResult](
		func(ctx context.Context, in pipeline.CompositeInput) (pipeline.CompositeResult, error) {
			if in.Page.Index == 7 {
				return pipeline.CompositeResult{}, boom
			}
			return pipeline.CompositeResult{Image: image.NewRGBA(image.Rect(0, 0, 1, 1))}, nil
		})
	s := NewStage(comp, mocks.NewDebugSink(false), logger.NewNoop(), 3)

	_, err := s.Execute(context.Background(), pipeline.FramesInput{Source: countingSource{n: 100, fps: 30}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected compositor error, got %v", err)
	}
	var se *rendererr.StageError
	if !errors.As(err, &se) || se.Stage != "frames" || se.Page != 7 {
		t.Errorf("expected a frames StageError for frame 7, got %v", err)
	}
}

func TestExecute_EmitError(t *testing.T) {
	s := NewStage(jitterCompositor(nil, nil), mocks.NewDebugSink(false), logger.NewNoop(), 2)
	stop := errors.New("encoder full")
	count := 0
	_, err := s.Execute(context.Background(), pipeline.FramesInput{
		Source: countingSource{n: 60, fps: 30},
		Emit: func(f pipeline.Frame) error {
			count++
			if f.Index == 4 {
				return stop
			}
			return nil
		},
	})
	if !errors.Is(err, stop) {
		t.Fatalf("expected emit error, got %v", err)
	}
	if count != 5 {
		t.Errorf("no frames may be emitted after a failed emit, got %d calls", count)
	}
}

func TestExecute_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewStage(jitterCompositor(nil, nil), mocks.NewDebugSink(false), logger.NewNoop(), 2)

	_, err := s.Execute(ctx, pipeline.FramesInput{
		Source: countingSource{n: 1000, fps: 30},
		Emit: func(f pipeline.Frame) error {
			if f.Index == 3 {
				cancel()
			}
			return nil
		},
	})
	if !errors.Is(err, rendererr.ErrCancelled) || !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancellation error, got %v", err)
	}
}

func TestExecute_DebugSink(t *testing.T) {
	sink := mocks.NewDebugSink(true)
	s := NewStage(jitterCompositor(nil, nil), sink, logger.NewNoop(), 2)
	if _, err := s.Execute(context.Background(), pipeline.FramesInput{Source: countingSource{n: 6, fps: 30}}); err != nil {
		t.Fatal(err)
	}
	if sink.FrameCount() != 6 {
		t.Errorf("expected 6 frames in the sink, got %d", sink.FrameCount())
	}
}

func TestExecute_TimelineAppearance(t *testing.T) {
	renderer := ggrenderer.New()
	loader := assets.NewLoader(mocks.NewAssetFetcher(nil), renderer, nil, logger.NewNoop())
	elements := element.NewStage(loader, mocks.NewFontProvider(), renderer, nil, mocks.NewDebugSink(false), logger.NewNoop())
	comp := composite.NewStage(renderer, loader, elements, logger.NewNoop())

	tl := &timeline.Timeline{
		FPS: 30, Duration: 1, Width: 64, Height: 64,
		Background: scene.Background{Color: "#000000"},
		Tracks: []timeline.Track{{
			Appear: 0.5,
			Element: scene.Element{
				ID: "dot", Kind: scene.KindFigure, X: 16, Y: 16, Width: 32, Height: 32,
				Opacity: 1, Visible: true,
				Shape: &scene.ShapeSpec{SubType: scene.ShapeRect, Fill: "#ffffff"},
			},
		}},
	}

	s := NewStage(comp, mocks.NewDebugSink(false), logger.NewNoop(), 4)
	res, err := s.Execute(context.Background(), pipeline.FramesInput{Source: tl, Range: pipeline.FrameRange{Start: 14, End: 16}})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	f14, f15 := res.Frames[0], res.Frames[1]
	if f14.Index != 14 || f15.Index != 15 {
		t.Fatalf("unexpected frame indexes %d, %d", f14.Index, f15.Index)
	}
	black := color.RGBA{0, 0, 0, 255}
	for i := 0; i < len(f14.Image.Pix); i += 4 {
		if f14.Image.Pix[i] != 0 || f14.Image.Pix[i+1] != 0 || f14.Image.Pix[i+2] != 0 {
			t.Fatal("frame 14 must not contain any part of the element")
		}
	}
	if f15.Image.RGBAAt(32, 32) != (color.RGBA{255, 255, 255, 255}) || f15.Image.RGBAAt(2, 2) != black {
		t.Error("frame 15 must show the element at its resting state")
	}
	if f15.TimestampMs != 500 {
		t.Errorf("frame 15 timestamp = %d, want 500", f15.TimestampMs)
	}
}
