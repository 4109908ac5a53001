package textmetrics

import (
	"fmt"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// FaceSource builds faces of one font at arbitrary sizes.
type FaceSource interface {
	Face(size float64) (font.Face, error)
}

// OpenType is a FaceSource backed by a parsed OpenType/TrueType font.
type OpenType struct {
	Font *opentype.Font
}

// Face returns a new face at size pixels. Faces are not safe for concurrent use,
// so each render builds its own.
func (o OpenType) Face(size float64) (font.Face, error) {
	face, err := opentype.NewFace(o.Font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("new face at %.1fpx: %w", size, err)
	}
	return face, nil
}

// Options controls Fit.
type Options struct {
	MinScale   float64 // floor, default 0.5
	MaxScale   float64 // ceiling, default 1.0
	MaxLines   int     // 0 means unlimited
	LineHeight float64 // multiplier, default DefaultLineHeight
	Step       float64 // scale decrement, default 0.05
	AutoScale  bool    // when false only MaxScale is tried
}

func (o Options) withDefaults() Options {
	if o.MaxScale <= 0 {
		o.MaxScale = 1
	}
	if o.MinScale <= 0 {
		o.MinScale = 0.5
	}
	if o.MinScale > o.MaxScale {
		o.MinScale = o.MaxScale
	}
	if o.LineHeight <= 0 {
		o.LineHeight = DefaultLineHeight
	}
	if o.Step <= 0 {
		o.Step = 0.05
	}
	return o
}

// FitResult is the chosen scale and the block measured at that scale.
type FitResult struct {
	Scale      float64
	Font       Font
	Metrics    Metrics
	Overflowed bool // content does not fit even at the chosen (minimum) scale
}

// Fit finds the largest scale in [MinScale, MaxScale] at which text, wrapped
// to boxW, fits boxW x boxH and the line limit. Every candidate is measured at
// the scaled font size. When nothing fits the result is at MinScale with
// Overflowed set; the caller still draws it.
func Fit(text string, src FaceSource, size, boxW, boxH float64, opts Options) (FitResult, error) {
	opts = opts.withDefaults()

	scales := []float64{opts.MaxScale}
	if opts.AutoScale {
		scales = candidateScales(opts)
	}

	var last FitResult
	for _, s := range scales {
		face, err := src.Face(size * s)
		if err != nil {
			return FitResult{}, err
		}
		f := Font{Face: face, Size: size * s, LineHeight: opts.LineHeight}
		m := Measure(text, f, boxW)
		last = FitResult{Scale: s, Font: f, Metrics: m}
		if fits(m, boxW, boxH, opts.MaxLines) {
			return last, nil
		}
	}

	last.Overflowed = true
	return last, nil
}

func candidateScales(opts Options) []float64 {
	var out []float64
	for s := opts.MaxScale; s > opts.MinScale+1e-9; s -= opts.Step {
		out = append(out, math.Round(s*1000)/1000)
	}
	return append(out, opts.MinScale)
}

const fitTolerance = 0.5

func fits(m Metrics, boxW, boxH float64, maxLines int) bool {
	if maxLines > 0 && m.LineCount > maxLines {
		return false
	}
	return m.TotalWidth <= boxW+fitTolerance && m.TotalHeight <= boxH+fitTolerance
}
