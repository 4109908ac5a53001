// Package textmetrics measures, wraps and fits text for a given font face.
package textmetrics

import (
	"strings"

	"golang.org/x/image/font"
)

// DefaultLineHeight is the line height multiplier used when none is given.
const DefaultLineHeight = 1.2

// Font is a face at a known size. Size is in pixels (faces are built at 72 DPI).
type Font struct {
	Face       font.Face
	Size       float64
	LineHeight float64
}

// LineAdvance returns the distance between consecutive baselines.
func (f Font) LineAdvance() float64 {
	lh := f.LineHeight
	if lh <= 0 {
		lh = DefaultLineHeight
	}
	return f.Size * lh
}

// Line is one wrapped line and its measured size.
type Line struct {
	Text   string
	Width  float64
	Height float64
}

// Metrics is the measurement of a wrapped text block.
type Metrics struct {
	Lines       []Line
	TotalWidth  float64
	TotalHeight float64
	LineCount   int
}

// Width returns the advance width of s in pixels.
func Width(face font.Face, s string) float64 {
	return float64(font.MeasureString(face, s)) / 64
}

// Measure splits text on explicit newlines, wraps each segment greedily to
// maxWidth and measures every line. maxWidth <= 0 disables wrapping.
func Measure(text string, f Font, maxWidth float64) Metrics {
	var m Metrics
	advance := f.LineAdvance()

	for _, line := range Wrap(text, f.Face, maxWidth) {
		w := Width(f.Face, line)
		m.Lines = append(m.Lines, Line{Text: line, Width: w, Height: advance})
		if w > m.TotalWidth {
			m.TotalWidth = w
		}
		m.TotalHeight += advance
	}
	m.LineCount = len(m.Lines)
	return m
}

// Wrap returns the lines of text. A word wider than maxWidth is placed alone
// on its own line and never split or dropped. Blank lines are kept.
func Wrap(text string, face font.Face, maxWidth float64) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var lines []string

	for _, segment := range strings.Split(text, "\n") {
		words := strings.Fields(segment)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		if maxWidth <= 0 {
			lines = append(lines, strings.Join(words, " "))
			continue
		}

		current := words[0]
		for _, word := range words[1:] {
			candidate := current + " " + word
			if Width(face, candidate) > maxWidth {
				lines = append(lines, current)
				current = word
			} else {
				current = candidate
			}
		}
		lines = append(lines, current)
	}
	return lines
}

// Scale is the result of AutoScale.
type Scale struct {
	Value float64
	// Overflowed is true when the block had to shrink below 1x to fit.
	Overflowed bool
}

// AutoScale computes the factor that makes the measured block fit boxW x boxH,
// clamped to [minScale, maxScale]. A degenerate measurement (zero width or
// height) returns 1 and no overflow.
func AutoScale(m Metrics, boxW, boxH, minScale, maxScale float64) Scale {
	if m.TotalWidth <= 0 || m.TotalHeight <= 0 {
		return Scale{Value: 1}
	}
	if maxScale <= 0 {
		maxScale = 1
	}
	if minScale <= 0 || minScale > maxScale {
		minScale = maxScale
	}

	s := boxW / m.TotalWidth
	if hs := boxH / m.TotalHeight; hs < s {
		s = hs
	}
	if s < minScale {
		s = minScale
	}
	if s > maxScale {
		s = maxScale
	}
	return Scale{Value: s, Overflowed: s < 1}
}
