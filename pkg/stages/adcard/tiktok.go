package adcard

import (
	"math"

	"github.com/user/sceneshow/pkg/adrecord"
	"github.com/user/sceneshow/pkg/scene"
	"github.com/user/sceneshow/pkg/timeline"
)

// DefaultDuration is the length of an animated ad in seconds.
const DefaultDuration = 4.0

// entrance describes how each field of an animated ad comes on stage.
type entrance struct {
	appear     float64
	transition timeline.Transition
	oscillate  *timeline.Oscillate
}

// Animate turns a composition into a timeline. The product image pops in,
// the name slides up, the price fades in and the badge keeps drifting.
func Animate(c *adrecord.Composition, fps, duration float64) (*timeline.Timeline, error) {
	if fps <= 0 {
		fps = timeline.DefaultFPS
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	s := math.Min(float64(c.Width), float64(c.Height)) / 1080

	entrances := map[string]entrance{
		adrecord.FieldImage: {
			appear:     0,
			transition: timeline.Transition{Duration: 0.9, Easing: "easeOutElastic", FromOpacity: 1, FromScale: 0},
		},
		adrecord.FieldName: {
			appear:     0.4,
			transition: timeline.Transition{Duration: 0.6, Easing: "easeInOutCubic", FromOpacity: 0, FromScale: 1, FromOffsetY: 140 * s},
		},
		adrecord.FieldPrice: {
			appear:     0.9,
			transition: timeline.Transition{Duration: 0.5, Easing: "easeOut", FromOpacity: 0, FromScale: 1},
		},
		adrecord.FieldTagline: {
			appear:     1.2,
			transition: timeline.Transition{Duration: 0.5, Easing: "easeOut", FromOpacity: 0, FromScale: 1, FromOffsetY: 40 * s},
		},
		adrecord.FieldBadge: {
			appear:     1.4,
			transition: timeline.Transition{Duration: 0.4, Easing: "easeOutBack", FromOpacity: 0, FromScale: 0.5},
			oscillate:  &timeline.Oscillate{AmplitudeY: 12 * s, Period: 1.6},
		},
		adrecord.FieldQR: {
			appear:     1.6,
			transition: timeline.Transition{Duration: 0.4, Easing: "linear", FromOpacity: 0, FromScale: 1},
		},
	}

	tl := &timeline.Timeline{
		FPS:        fps,
		Duration:   duration,
		Width:      c.Width,
		Height:     c.Height,
		Background: c.Background,
	}
	for _, e := range c.Elements() {
		tl.Tracks = append(tl.Tracks, track(e, fieldOf(c, e), entrances))
	}
	return tl, tl.Validate()
}

func track(e scene.Element, field string, entrances map[string]entrance) timeline.Track {
	tr := timeline.Track{Element: e, After: timeline.AfterHold}
	en, ok := entrances[field]
	if !ok {
		return tr
	}
	tr.Appear = en.appear
	transition := en.transition
	tr.Enter = &transition
	tr.Oscillate = en.oscillate
	return tr
}

// fieldOf returns the field of the slot holding e, matched by element id.
func fieldOf(c *adrecord.Composition, e scene.Element) string {
	for _, slot := range c.Slots {
		for _, se := range slot.Elements {
			if se.ID == e.ID {
				return slot.Field
			}
		}
	}
	return ""
}
