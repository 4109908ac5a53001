package textmetrics

import (
	"strings"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

func regular(t *testing.T) OpenType {
	t.Helper()
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		t.Fatalf("parse goregular: %v", err)
	}
	return OpenType{Font: f}
}

func fontAt(t *testing.T, src OpenType, size float64) Font {
	t.Helper()
	face, err := src.Face(size)
	if err != nil {
		t.Fatalf("face: %v", err)
	}
	return Font{Face: face, Size: size}
}

func TestWrap_LinesFitWidth(t *testing.T) {
	f := fontAt(t, regular(t), 24)
	text := "The quick brown fox jumps over the lazy dog while the cat watches from a sunny windowsill"

	for _, w := range []float64{80, 150, 240, 400, 1000} {
		m := Measure(text, f, w)
		for _, line := range m.Lines {
			if line.Width > w && strings.Contains(line.Text, " ") {
				t.Errorf("width %g: line %q is %g wide", w, line.Text, line.Width)
			}
		}
		if got := strings.Join(Wrap(text, f.Face, w), " "); got != text {
			t.Errorf("width %g: wrapping lost words: %q", w, got)
		}
	}
}

func TestWrap_LongWordStandsAlone(t *testing.T) {
	f := fontAt(t, regular(t), 24)
	lines := Wrap("a Supercalifragilisticexpialidocious b", f.Face, 40)
	if len(lines) != 3 || lines[1] != "Supercalifragilisticexpialidocious" {
		t.Errorf("unexpected lines %q", lines)
	}
}

func TestWrap_KeepsExplicitNewlines(t *testing.T) {
	f := fontAt(t, regular(t), 16)
	lines := Wrap("first\n\nthird", f.Face, 0)
	if len(lines) != 3 || lines[1] != "" {
		t.Errorf("unexpected lines %q", lines)
	}
}

func TestMeasure_Totals(t *testing.T) {
	f := fontAt(t, regular(t), 20)
	m := Measure("one\ntwo longer line", f, 0)
	if m.LineCount != 2 {
		t.Fatalf("expected 2 lines, got %d", m.LineCount)
	}
	if m.TotalHeight != 2*20*DefaultLineHeight {
		t.Errorf("unexpected total height %g", m.TotalHeight)
	}
	if m.TotalWidth != m.Lines[1].Width {
		t.Errorf("total width should be the widest line")
	}
}

func TestAutoScale(t *testing.T) {
	m := Metrics{TotalWidth: 200, TotalHeight: 50, LineCount: 1}

	tests := []struct {
		name     string
		w, h     float64
		want     float64
		overflow bool
	}{
		{"fits", 400, 100, 1, false},
		{"width bound", 100, 100, 0.5, true},
		{"height bound", 400, 40, 0.8, true},
		{"floored", 10, 10, 0.3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AutoScale(m, tt.w, tt.h, 0.3, 1)
			if got.Value != tt.want || got.Overflowed != tt.overflow {
				t.Errorf("got %+v, want %g overflow=%v", got, tt.want, tt.overflow)
			}
		})
	}

	if got := AutoScale(Metrics{}, 10, 10, 0.3, 1); got.Value != 1 || got.Overflowed {
		t.Errorf("degenerate input: got %+v", got)
	}
}

func TestAutoScale_MonotonicInBox(t *testing.T) {
	m := Metrics{TotalWidth: 320, TotalHeight: 96, LineCount: 2}
	prev := 0.0
	for w := 10.0; w <= 800; w += 15 {
		s := AutoScale(m, w, w/3, 0.25, 1).Value
		if s < prev {
			t.Fatalf("scale decreased from %g to %g at box width %g", prev, s, w)
		}
		prev = s
	}
}

func TestFit_MonotonicInBox(t *testing.T) {
	src := regular(t)
	text := "Premium Sofa Set — Limited Offer"
	opts := Options{MinScale: 0.5, MaxLines: 2, AutoScale: true}

	prev := 0.0
	for w := 100.0; w <= 700; w += 50 {
		res, err := Fit(text, src, 40, w, 60, opts)
		if err != nil {
			t.Fatal(err)
		}
		if res.Scale < prev {
			t.Fatalf("scale decreased from %g to %g at width %g", prev, res.Scale, w)
		}
		prev = res.Scale
	}
}

func TestFit_PremiumSofaSet(t *testing.T) {
	src := regular(t)
	text := "Premium Sofa Set — Limited Offer"
	opts := Options{MinScale: 0.5, MaxLines: 2, AutoScale: true}

	res, err := Fit(text, src, 40, 300, 60, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Scale < 0.5 || res.Scale > 1 {
		t.Fatalf("scale %g outside [0.5, 1]", res.Scale)
	}
	if res.Overflowed {
		if res.Scale != 0.5 {
			t.Errorf("overflow must settle on the floor, got %g", res.Scale)
		}
	} else {
		if res.Metrics.LineCount > 2 {
			t.Errorf("expected at most 2 lines, got %d", res.Metrics.LineCount)
		}
		if res.Metrics.TotalHeight > 60+fitTolerance || res.Metrics.TotalWidth > 300+fitTolerance {
			t.Errorf("block %gx%g exceeds 300x60", res.Metrics.TotalWidth, res.Metrics.TotalHeight)
		}
	}
	// Two lines of 1.2 line height in 60px cannot exceed 0.625.
	if res.Scale > 0.625 {
		t.Errorf("scale %g too large for the box height", res.Scale)
	}
}

func TestFit_OverflowAtFloor(t *testing.T) {
	res, err := Fit("Premium Sofa Set — Limited Offer", regular(t), 40, 60, 10,
		Options{MinScale: 0.5, MaxLines: 2, AutoScale: true})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Overflowed || res.Scale != 0.5 {
		t.Errorf("expected overflow at 0.5, got %+v", res.Scale)
	}
	if res.Font.Size != 20 {
		t.Errorf("expected 20px face at the floor, got %g", res.Font.Size)
	}
}

func TestFit_DisabledStillReportsOverflow(t *testing.T) {
	res, err := Fit("a rather long headline", regular(t), 40, 50, 20, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Scale != 1 || !res.Overflowed {
		t.Errorf("expected scale 1 with overflow, got %g overflow=%v", res.Scale, res.Overflowed)
	}
}
