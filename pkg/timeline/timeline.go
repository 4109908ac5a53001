// Package timeline evaluates animated scenes. Every frame is a pure function
// of its timestamp and the timeline description, so frames can be rendered
// in any order and in parallel.
package timeline

import (
	"fmt"
	"math"

	"github.com/user/sceneshow/pkg/easing"
	"github.com/user/sceneshow/pkg/pipeline"
	"github.com/user/sceneshow/pkg/rendererr"
	"github.com/user/sceneshow/pkg/scene"
	"github.com/user/sceneshow/pkg/stages/layout"
)

// timeEpsilon absorbs float error in i/fps so a frame that lands exactly on
// an appear time counts as visible.
const timeEpsilon = 1e-9

// After decides what an element does once its disappear time has passed.
type After string

const (
	// AfterHold keeps the element in its final state.
	AfterHold After = "hold"
	// AfterHide removes the element.
	AfterHide After = "hide"
)

// Transition animates between the element's resting state and an
// off-stage state. For an enter transition the From fields are the starting
// point; for an exit transition they are the end point.
//
// FromOpacity and FromScale are factors: 0 is fully transparent or zero size,
// 1 leaves the element unchanged.
type Transition struct {
	Duration    float64 `json:"duration" yaml:"duration"`
	Easing      string  `json:"easing" yaml:"easing"`
	FromOpacity float64 `json:"fromOpacity" yaml:"fromOpacity"`
	FromScale   float64 `json:"fromScale" yaml:"fromScale"`
	FromOffsetX float64 `json:"fromOffsetX" yaml:"fromOffsetX"`
	FromOffsetY float64 `json:"fromOffsetY" yaml:"fromOffsetY"`
}

// Oscillate adds a sine drift to the element position.
type Oscillate struct {
	AmplitudeX float64 `json:"amplitudeX" yaml:"amplitudeX"`
	AmplitudeY float64 `json:"amplitudeY" yaml:"amplitudeY"`
	Period     float64 `json:"period" yaml:"period"` // seconds per cycle
	Phase      float64 `json:"phase" yaml:"phase"`   // radians
}

// Track schedules one element.
type Track struct {
	Element scene.Element
	Appear  float64
	// Disappear <= Appear means the element stays until the end of the clip.
	Disappear float64
	After     After
	Enter     *Transition
	Exit      *Transition
	Oscillate *Oscillate
}

// State is the transform of a track at one instant.
type State struct {
	Visible bool
	Opacity float64
	Scale   float64
	OffsetX float64
	OffsetY float64
}

var hidden = State{}

// HasDisappear reports whether the track has a disappear time.
func (tr Track) HasDisappear() bool {
	return tr.Disappear > tr.Appear
}

// StateAt evaluates the track at t seconds.
func (tr Track) StateAt(t float64) State {
	if t < tr.Appear-timeEpsilon {
		return hidden
	}

	if tr.HasDisappear() && t >= tr.Disappear-timeEpsilon && tr.After == AfterHide {
		return hidden
	}

	st := State{Visible: true, Opacity: 1, Scale: 1}

	if tr.Enter != nil && tr.Enter.Duration > 0 {
		p := progress(t-tr.Appear, tr.Enter)
		st.Opacity = easing.Lerp(tr.Enter.FromOpacity, 1, p)
		st.Scale = easing.Lerp(tr.Enter.FromScale, 1, p)
		st.OffsetX = easing.Lerp(tr.Enter.FromOffsetX, 0, p)
		st.OffsetY = easing.Lerp(tr.Enter.FromOffsetY, 0, p)
	}

	if tr.Exit != nil && tr.Exit.Duration > 0 && tr.HasDisappear() {
		start := tr.Disappear - tr.Exit.Duration
		if t >= start-timeEpsilon {
			p := progress(t-start, tr.Exit)
			st.Opacity *= easing.Lerp(1, tr.Exit.FromOpacity, p)
			st.Scale *= easing.Lerp(1, tr.Exit.FromScale, p)
			st.OffsetX += easing.Lerp(0, tr.Exit.FromOffsetX, p)
			st.OffsetY += easing.Lerp(0, tr.Exit.FromOffsetY, p)
		}
	}

	if o := tr.Oscillate; o != nil && o.Period > 0 {
		phase := 2*math.Pi*(t-tr.Appear)/o.Period + o.Phase
		st.OffsetX += o.AmplitudeX * math.Sin(phase)
		st.OffsetY += o.AmplitudeY * math.Sin(phase)
	}

	if st.Opacity < 0 {
		st.Opacity = 0
	}
	return st
}

// progress returns the eased progress of a transition elapsed seconds in.
func progress(elapsed float64, tr *Transition) float64 {
	p := elapsed / tr.Duration
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return easing.MustByName(tr.Easing)(p)
}

// Timeline is a fixed-rate, fixed-duration animation of one canvas.
type Timeline struct {
	FPS               float64
	Duration          float64 // seconds
	Width             int
	Height            int
	Background        scene.Background
	DefaultBackground string
	Tracks            []Track
}

// Validate checks the timeline can be rendered.
func (tl *Timeline) Validate() error {
	switch {
	case tl.FPS <= 0 || math.IsNaN(tl.FPS):
		return fmt.Errorf("%w: fps %g must be positive", rendererr.ErrInvalidDocument, tl.FPS)
	case tl.Duration <= 0 || math.IsNaN(tl.Duration):
		return fmt.Errorf("%w: duration %g must be positive", rendererr.ErrInvalidDocument, tl.Duration)
	case tl.Width <= 0 || tl.Height <= 0:
		return fmt.Errorf("%w: canvas %dx%d must be positive", rendererr.ErrInvalidDocument, tl.Width, tl.Height)
	}
	return nil
}

// FrameCount returns round(fps * duration).
func (tl *Timeline) FrameCount() int {
	return int(math.Round(tl.FPS * tl.Duration))
}

// FrameRate returns the frames per second.
func (tl *Timeline) FrameRate() float64 {
	return tl.FPS
}

// Size returns the canvas size.
func (tl *Timeline) Size() (int, int) {
	return tl.Width, tl.Height
}

// Sources lists the image references of the background and every track.
func (tl *Timeline) Sources() []string {
	var srcs []string
	if tl.Background.Src != "" {
		srcs = append(srcs, tl.Background.Src)
	}
	for _, tr := range tl.Tracks {
		if tr.Element.Image != nil && tr.Element.Image.Src != "" {
			srcs = append(srcs, tr.Element.Image.Src)
		}
	}
	return srcs
}

// TimeOf returns the timestamp in seconds of frame i.
func (tl *Timeline) TimeOf(i int) float64 {
	return float64(i) / tl.FPS
}

// FrameAt returns the page of frame i, evaluated at t = i/fps.
func (tl *Timeline) FrameAt(i int) pipeline.PageLayout {
	page := tl.PageAt(tl.TimeOf(i))
	page.Index = i
	return page
}

// PageAt returns the page at t seconds. Tracks that are absent at t are not
// included; the rest are transformed copies of their elements in paint order.
func (tl *Timeline) PageAt(t float64) pipeline.PageLayout {
	elements := make([]scene.Element, 0, len(tl.Tracks))
	for i, tr := range tl.Tracks {
		st := tr.StateAt(t)
		if !st.Visible {
			continue
		}
		e, ok := apply(tr.Element, st)
		if !ok {
			continue
		}
		e.Index = i
		elements = append(elements, e)
	}

	return pipeline.PageLayout{
		Width:             tl.Width,
		Height:            tl.Height,
		Background:        tl.Background,
		DefaultBackground: tl.DefaultBackground,
		Elements:          layout.Order(elements),
	}
}

// apply returns a transformed copy of e. Scale is around the element centre
// and also scales text. ok is false when the result would not be drawn.
func apply(e scene.Element, st State) (scene.Element, bool) {
	if !e.Visible {
		return e, false
	}
	opacity := e.Opacity * st.Opacity
	if opacity <= 0 {
		return e, false
	}
	e.Opacity = math.Min(opacity, 1)

	if st.Scale != 1 {
		w, h := e.Width*st.Scale, e.Height*st.Scale
		if w < 1 || h < 1 {
			return e, false
		}
		e.X += (e.Width - w) / 2
		e.Y += (e.Height - h) / 2
		e.Width, e.Height = w, h

		if e.Text != nil {
			text := *e.Text
			text.FontSize *= st.Scale
			text.StrokeWidth *= st.Scale
			e.Text = &text
		}
		if e.Shape != nil {
			shape := *e.Shape
			shape.StrokeWidth *= st.Scale
			shape.CornerRadius *= st.Scale
			e.Shape = &shape
		}
		if e.Image != nil && e.Image.BorderSize > 0 {
			img := *e.Image
			img.BorderSize *= st.Scale
			e.Image = &img
		}
	}

	e.X += st.OffsetX
	e.Y += st.OffsetY
	return e, true
}

var _ pipeline.FrameSource = (*Timeline)(nil)
