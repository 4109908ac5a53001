// Package easing provides easing curves mapping normalized progress [0,1] to
// eased progress. Inputs outside [0,1] are clamped. EaseOutElastic and
// EaseOutBack overshoot 1 before settling.
package easing

import (
	"math"
	"strings"
)

// Func maps normalized progress to eased progress.
type Func func(t float64) float64

// Linear returns t.
func Linear(t float64) float64 {
	return clamp01(t)
}

// EaseOut decelerates: 1-(1-t)^3.
func EaseOut(t float64) float64 {
	t = clamp01(t)
	u := 1 - t
	return 1 - u*u*u
}

// EaseInCubic accelerates from zero velocity.
func EaseInCubic(t float64) float64 {
	t = clamp01(t)
	return t * t * t
}

// EaseInOutCubic accelerates until halfway, then decelerates.
func EaseInOutCubic(t float64) float64 {
	t = clamp01(t)
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}

// EaseOutElastic overshoots and oscillates before settling at 1.
func EaseOutElastic(t float64) float64 {
	t = clamp01(t)
	if t == 0 {
		return 0
	}
	if t == 1 {
		return 1
	}
	const c4 = 2 * math.Pi / 3
	return math.Pow(2, -10*t)*math.Sin((t*10-0.75)*c4) + 1
}

// EaseOutBack overshoots slightly past 1 then returns.
func EaseOutBack(t float64) float64 {
	t = clamp01(t)
	const c1 = 1.70158
	const c3 = c1 + 1
	u := t - 1
	return 1 + c3*u*u*u + c1*u*u
}

var byName = map[string]Func{
	"linear":         Linear,
	"easeout":        EaseOut,
	"easeincubic":    EaseInCubic,
	"easeinoutcubic": EaseInOutCubic,
	"easeoutelastic": EaseOutElastic,
	"easeoutback":    EaseOutBack,
}

// ByName looks up a curve by name. Matching ignores case, dashes and
// underscores, so "ease-out-elastic" and "easeOutElastic" are the same curve.
func ByName(name string) (Func, bool) {
	key := strings.ToLower(name)
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	fn, ok := byName[key]
	return fn, ok
}

// MustByName returns the named curve or Linear when the name is unknown or empty.
func MustByName(name string) Func {
	if fn, ok := ByName(name); ok {
		return fn
	}
	return Linear
}

// Names returns the canonical curve names.
func Names() []string {
	return []string{"linear", "easeOut", "easeInCubic", "easeInOutCubic", "easeOutElastic", "easeOutBack"}
}

// Lerp interpolates between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp01(t float64) float64 {
	if t < 0 || math.IsNaN(t) {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
