package timeline

import (
	"fmt"

	"github.com/user/sceneshow/pkg/geom"
	"github.com/user/sceneshow/pkg/scene"
)

// SlideshowOptions describes a deck animation.
type SlideshowOptions struct {
	Width      int
	Height     int
	FPS        float64
	PerSlide   float64 // seconds each slide is fully shown
	Transition float64 // cross-fade seconds, 0 for hard cuts
	Background string
}

// Slideshow builds a timeline that shows each image source in turn, fitted
// to the canvas, cross-fading into the next with easeInOutCubic.
func Slideshow(sources []string, opts SlideshowOptions) (*Timeline, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("slideshow: no slides")
	}
	if opts.PerSlide <= 0 {
		return nil, fmt.Errorf("slideshow: slide duration %g must be positive", opts.PerSlide)
	}
	if opts.Transition < 0 || opts.Transition >= opts.PerSlide {
		opts.Transition = 0
	}
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}

	tl := &Timeline{
		FPS:        opts.FPS,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: scene.Background{Color: opts.Background},
		Duration:   float64(len(sources)) * opts.PerSlide,
	}

	for i, src := range sources {
		start := float64(i) * opts.PerSlide
		tr := Track{
			Element: scene.Element{
				ID:      fmt.Sprintf("slide-%d", i+1),
				Kind:    scene.KindImage,
				Index:   i,
				Width:   float64(opts.Width),
				Height:  float64(opts.Height),
				Opacity: 1,
				Visible: true,
				Image:   &scene.ImageSpec{Src: src, Crop: geom.FullCrop, Mode: scene.ResizeFit},
			},
			Appear: start,
			After:  AfterHold,
		}
		if i > 0 && opts.Transition > 0 {
			// The incoming slide fades in over the outgoing one.
			tr.Appear = start - opts.Transition
			tr.Enter = &Transition{Duration: opts.Transition, Easing: "easeInOutCubic", FromOpacity: 0, FromScale: 1}
		}
		if i < len(sources)-1 {
			tr.Disappear = float64(i+1) * opts.PerSlide
			tr.After = AfterHide
		}
		tl.Tracks = append(tl.Tracks, tr)
	}

	if err := tl.Validate(); err != nil {
		return nil, err
	}
	return tl, nil
}
