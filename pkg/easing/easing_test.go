package easing

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestEndpoints(t *testing.T) {
	for _, name := range Names() {
		fn, ok := ByName(name)
		if !ok {
			t.Fatalf("curve %q not registered", name)
		}
		if got := fn(0); math.Abs(got) > eps {
			t.Errorf("%s(0) = %g, want 0", name, got)
		}
		if got := fn(1); math.Abs(got-1) > eps {
			t.Errorf("%s(1) = %g, want 1", name, got)
		}
	}
}

func TestEaseOut(t *testing.T) {
	if got := EaseOut(0.5); math.Abs(got-0.875) > eps {
		t.Errorf("EaseOut(0.5) = %g, want 0.875", got)
	}
}

func TestEaseInOutCubic_Symmetric(t *testing.T) {
	if got := EaseInOutCubic(0.5); math.Abs(got-0.5) > eps {
		t.Errorf("EaseInOutCubic(0.5) = %g, want 0.5", got)
	}
	for _, x := range []float64{0.1, 0.25, 0.4} {
		a := EaseInOutCubic(x)
		b := EaseInOutCubic(1 - x)
		if math.Abs(a+b-1) > eps {
			t.Errorf("not symmetric at %g: %g + %g", x, a, b)
		}
	}
}

func TestEaseOutElastic_Overshoots(t *testing.T) {
	overshoot := false
	for i := 1; i < 100; i++ {
		if EaseOutElastic(float64(i)/100) > 1 {
			overshoot = true
			break
		}
	}
	if !overshoot {
		t.Error("expected elastic curve to overshoot 1")
	}
}

func TestClamp(t *testing.T) {
	if EaseOut(-1) != 0 || EaseOut(2) != 1 {
		t.Error("inputs outside [0,1] should clamp")
	}
	if Linear(math.NaN()) != 0 {
		t.Error("NaN should clamp to 0")
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"easeOutElastic", "ease-out-elastic", "EASE_OUT_ELASTIC"} {
		if _, ok := ByName(name); !ok {
			t.Errorf("expected %q to resolve", name)
		}
	}
	if _, ok := ByName("bounce"); ok {
		t.Error("unknown curve should not resolve")
	}
	if MustByName("")(0.3) != 0.3 {
		t.Error("empty name should fall back to linear")
	}
}

func TestLerp(t *testing.T) {
	if Lerp(10, 20, 0.25) != 12.5 {
		t.Error("unexpected lerp result")
	}
}
