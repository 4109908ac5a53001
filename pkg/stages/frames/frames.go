// Package frames implements the animation frame rendering stage.
package frames

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/user/sceneshow/pkg/pipeline"
	"github.com/user/sceneshow/pkg/ports"
	"github.com/user/sceneshow/pkg/rendererr"
)

const stageName = "frames"

// Compositor renders one page.
type Compositor = pipeline.Stage[pipeline.CompositeInput, pipeline.CompositeResult]

// Stage renders frames of a FrameSource in parallel and delivers them in
// index order.
type Stage struct {
	compositor Compositor
	sink       ports.DebugSink
	logger     ports.Logger
	numWorkers int
}

// NewStage creates a new frames stage.
func NewStage(compositor Compositor, sink ports.DebugSink, logger ports.Logger, numWorkers int) *Stage {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Stage{
		compositor: compositor,
		sink:       sink,
		logger:     logger.WithComponent("frames"),
		numWorkers: numWorkers,
	}
}

// Timestamp returns the presentation time of frame i in milliseconds.
func Timestamp(i int, fps float64) int {
	return int(math.Round(float64(i) * 1000 / fps))
}

// indexedFrame holds a frame with its index for reordering.
type indexedFrame struct {
	index    int
	frame    pipeline.Frame
	warnings []rendererr.Warning
}

// Execute renders the selected frames. With input.Emit set, frames are
// handed over strictly in index order as soon as they are ready and at most
// 2*numWorkers frames are held in memory; otherwise they are collected into
// the result.
func (s *Stage) Execute(ctx context.Context, input pipeline.FramesInput) (pipeline.FramesResult, error) {
	src := input.Source
	if src == nil || src.FrameRate() <= 0 {
		return pipeline.FramesResult{}, rendererr.Wrap(stageName, -1, "", fmt.Errorf("%w: no frame source", rendererr.ErrInvalidDocument))
	}
	start, end := input.Range.Resolve(src.FrameCount())
	total := end - start
	if total == 0 {
		return pipeline.FramesResult{}, nil
	}

	workers := s.numWorkers
	if workers > total {
		workers = total
	}
	window := workers * 2
	s.logger.Debug("Rendering frames %d-%d with %d workers", start, end-1, workers)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	results := make(chan indexedFrame, window)
	errChan := make(chan error, workers+1)
	slots := make(chan struct{}, window)

	// Feed indices in order, never more than window ahead of delivery.
	go func() {
		defer close(jobs)
		for i := start; i < end; i++ {
			select {
			case slots <- struct{}{}:
			case <-runCtx.Done():
				return
			}
			select {
			case jobs <- i:
			case <-runCtx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go s.worker(runCtx, cancel, &wg, src, jobs, results, errChan)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	fps := src.FrameRate()
	pending := make(map[int]indexedFrame, window)
	next := start
	var collected []pipeline.Frame
	if input.Emit == nil {
		collected = make([]pipeline.Frame, 0, total)
	}
	dedupe := newWarningSet()
	var emitErr error

	for r := range results {
		if emitErr != nil {
			continue
		}
		r.frame.TimestampMs = Timestamp(r.index, fps)
		pending[r.index] = r

		for ctx.Err() == nil {
			f, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			dedupe.add(f.warnings)

			if s.sink.Enabled() {
				s.sink.SaveFrame(f.index, f.frame.Image)
			}

			if input.Emit != nil {
				if err := input.Emit(f.frame); err != nil {
					emitErr = err
					cancel()
					break
				}
			} else {
				collected = append(collected, f.frame)
			}
			next++
			<-slots
		}
	}

	if ctx.Err() != nil {
		return pipeline.FramesResult{}, rendererr.Cancelled(ctx)
	}
	if emitErr != nil {
		return pipeline.FramesResult{}, emitErr
	}
	select {
	case err := <-errChan:
		return pipeline.FramesResult{}, err
	default:
	}
	if next != end {
		return pipeline.FramesResult{}, rendererr.Wrap(stageName, next, "", fmt.Errorf("frame %d was not rendered", next))
	}

	s.logger.Debug("Rendered %d frames", total)
	return pipeline.FramesResult{
		Frames:   collected,
		Count:    total,
		Warnings: dedupe.list,
	}, nil
}

// worker renders frames from the jobs channel. The first failure cancels
// the run so the feeder and the other workers stop.
func (s *Stage) worker(
	ctx context.Context,
	cancel context.CancelFunc,
	wg *sync.WaitGroup,
	src pipeline.FrameSource,
	jobs <-chan int,
	results chan<- indexedFrame,
	errChan chan<- error,
) {
	defer wg.Done()

	for idx := range jobs {
		if ctx.Err() != nil {
			return
		}

		res, err := s.compositor.Execute(ctx, pipeline.CompositeInput{Page: src.FrameAt(idx)})
		if err != nil {
			select {
			case errChan <- rendererr.Wrap(stageName, idx, "", err):
			default:
			}
			cancel()
			return
		}

		select {
		case results <- indexedFrame{
			index:    idx,
			frame:    pipeline.Frame{Index: idx, Image: res.Image},
			warnings: res.Warnings,
		}:
		case <-ctx.Done():
			return
		}
	}
}

// warningSet keeps the first occurrence of each warning across frames; an
// overflowing caption reports once, not once per frame.
type warningSet struct {
	seen map[string]bool
	list []rendererr.Warning
}

func newWarningSet() *warningSet {
	return &warningSet{seen: make(map[string]bool)}
}

func (w *warningSet) add(ws []rendererr.Warning) {
	for _, warning := range ws {
		key := string(warning.Kind) + "\x00" + warning.Element + "\x00" + warning.Message
		if w.seen[key] {
			continue
		}
		w.seen[key] = true
		w.list = append(w.list, warning)
	}
}
