package timeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/user/sceneshow/pkg/rendererr"
	"github.com/user/sceneshow/pkg/scene"
)

// Defaults applied to descriptors.
const (
	DefaultFPS    = 30.0
	DefaultWidth  = 1080
	DefaultHeight = 1920
)

// descriptor is the file format of a timeline. Track elements use the scene
// child format.
type descriptor struct {
	FPS        float64           `json:"fps" yaml:"fps"`
	Duration   float64           `json:"duration" yaml:"duration"`
	Width      int               `json:"width" yaml:"width"`
	Height     int               `json:"height" yaml:"height"`
	Background any               `json:"background" yaml:"background"`
	Tracks     []trackDescriptor `json:"tracks" yaml:"tracks"`
}

type trackDescriptor struct {
	Appear    float64        `json:"appear" yaml:"appear"`
	Disappear float64        `json:"disappear" yaml:"disappear"`
	After     string         `json:"after" yaml:"after"`
	Enter     *Transition    `json:"enter" yaml:"enter"`
	Exit      *Transition    `json:"exit" yaml:"exit"`
	Oscillate *Oscillate     `json:"oscillate" yaml:"oscillate"`
	Element   map[string]any `json:"element" yaml:"element"`
}

// ParseYAML reads a YAML timeline descriptor.
func ParseYAML(data []byte) (*Timeline, error) {
	var d descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", rendererr.ErrInvalidDocument, err)
	}
	if err := withTransitionDefaults(data, &d, yaml.Unmarshal); err != nil {
		return nil, err
	}
	return d.build()
}

// ParseJSON reads a JSON timeline descriptor.
func ParseJSON(data []byte) (*Timeline, error) {
	var d descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", rendererr.ErrInvalidDocument, err)
	}
	if err := withTransitionDefaults(data, &d, json.Unmarshal); err != nil {
		return nil, err
	}
	return d.build()
}

// withTransitionDefaults sets fromOpacity and fromScale to 1 when a
// descriptor omits them, so a transition only changes what it names.
func withTransitionDefaults(data []byte, d *descriptor, unmarshal func([]byte, any) error) error {
	var raw struct {
		Tracks []struct {
			Enter map[string]any `json:"enter" yaml:"enter"`
			Exit  map[string]any `json:"exit" yaml:"exit"`
		} `json:"tracks" yaml:"tracks"`
	}
	if err := unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", rendererr.ErrInvalidDocument, err)
	}
	for i := range d.Tracks {
		if i >= len(raw.Tracks) {
			break
		}
		fillDefaults(d.Tracks[i].Enter, raw.Tracks[i].Enter)
		fillDefaults(d.Tracks[i].Exit, raw.Tracks[i].Exit)
	}
	return nil
}

func fillDefaults(tr *Transition, raw map[string]any) {
	if tr == nil {
		return
	}
	if _, ok := raw["fromOpacity"]; !ok {
		tr.FromOpacity = 1
	}
	if _, ok := raw["fromScale"]; !ok {
		tr.FromScale = 1
	}
}

func (d descriptor) build() (*Timeline, error) {
	tl := &Timeline{
		FPS:        d.FPS,
		Duration:   d.Duration,
		Width:      d.Width,
		Height:     d.Height,
		Background: scene.ParseBackground(d.Background),
	}
	if tl.FPS == 0 {
		tl.FPS = DefaultFPS
	}
	if tl.Width == 0 {
		tl.Width = DefaultWidth
	}
	if tl.Height == 0 {
		tl.Height = DefaultHeight
	}

	for i, td := range d.Tracks {
		if td.Element == nil {
			return nil, fmt.Errorf("%w: track %d has no element", rendererr.ErrInvalidDocument, i)
		}
		after := After(strings.ToLower(strings.TrimSpace(td.After)))
		switch after {
		case "":
			if td.Disappear > td.Appear {
				return nil, fmt.Errorf("%w: track %d: disappear needs an explicit after policy (hold or hide)", rendererr.ErrInvalidDocument, i)
			}
			after = AfterHold
		case AfterHold, AfterHide:
		default:
			return nil, fmt.Errorf("%w: track %d: after must be hold or hide, got %q", rendererr.ErrInvalidDocument, i, td.After)
		}

		tl.Tracks = append(tl.Tracks, Track{
			Element:   scene.ParseElement(td.Element, i),
			Appear:    td.Appear,
			Disappear: td.Disappear,
			After:     after,
			Enter:     td.Enter,
			Exit:      td.Exit,
			Oscillate: td.Oscillate,
		})
	}

	if tl.Duration == 0 {
		tl.Duration = tl.naturalDuration()
	}
	if err := tl.Validate(); err != nil {
		return nil, err
	}
	return tl, nil
}

// naturalDuration is the latest appear, disappear or enter end, used when a
// descriptor has no duration.
func (tl *Timeline) naturalDuration() float64 {
	end := 0.0
	for _, tr := range tl.Tracks {
		t := tr.Appear
		if tr.Enter != nil {
			t += tr.Enter.Duration
		}
		if tr.HasDisappear() && tr.Disappear > t {
			t = tr.Disappear
		}
		if t > end {
			end = t
		}
	}
	return end
}
