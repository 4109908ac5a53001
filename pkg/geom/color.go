// Package geom provides color parsing and raster geometry primitives used by
// the element renderer: normalized crop, aspect-aware resize, flip, rotation,
// opacity and borders.
package geom

import (
	"image/color"
	"strconv"
	"strings"
)

var opaqueBlack = color.NRGBA{A: 255}

var namedColors = map[string]color.NRGBA{
	"black":       {A: 255},
	"white":       {R: 255, G: 255, B: 255, A: 255},
	"red":         {R: 255, A: 255},
	"green":       {G: 128, A: 255},
	"blue":        {B: 255, A: 255},
	"gray":        {R: 128, G: 128, B: 128, A: 255},
	"grey":        {R: 128, G: 128, B: 128, A: 255},
	"yellow":      {R: 255, G: 255, A: 255},
	"orange":      {R: 255, G: 165, A: 255},
	"transparent": {},
}

// ParseColor parses #RGB, #RRGGBB, #RRGGBBAA, rgb(r,g,b), rgba(r,g,b,a) and a
// few CSS names. Unrecognized input yields opaque black; callers that need to
// tell the difference should use ParseColorStrict.
func ParseColor(spec string) color.NRGBA {
	c, ok := ParseColorStrict(spec)
	if !ok {
		return opaqueBlack
	}
	return c
}

// ParseColorStrict is ParseColor that reports whether the input was understood.
func ParseColorStrict(spec string) (color.NRGBA, bool) {
	s := strings.ToLower(strings.TrimSpace(spec))
	if s == "" {
		return opaqueBlack, false
	}

	if c, ok := namedColors[s]; ok {
		return c, true
	}

	if strings.HasPrefix(s, "#") {
		return parseHex(s[1:])
	}

	if strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")") {
		return parseFunctional(s[5:len(s)-1], 4)
	}
	if strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")") {
		return parseFunctional(s[4:len(s)-1], 3)
	}

	return opaqueBlack, false
}

func parseHex(hex string) (color.NRGBA, bool) {
	for i := 0; i < len(hex); i++ {
		if hexValue(hex[i]) < 0 {
			return opaqueBlack, false
		}
	}

	switch len(hex) {
	case 3:
		return color.NRGBA{
			R: uint8(hexValue(hex[0]) * 17),
			G: uint8(hexValue(hex[1]) * 17),
			B: uint8(hexValue(hex[2]) * 17),
			A: 255,
		}, true
	case 6:
		return color.NRGBA{R: hexByte(hex[0:2]), G: hexByte(hex[2:4]), B: hexByte(hex[4:6]), A: 255}, true
	case 8:
		return color.NRGBA{R: hexByte(hex[0:2]), G: hexByte(hex[2:4]), B: hexByte(hex[4:6]), A: hexByte(hex[6:8])}, true
	default:
		return opaqueBlack, false
	}
}

func hexByte(s string) uint8 {
	return uint8(hexValue(s[0])<<4 | hexValue(s[1]))
}

func hexValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return -1
	}
}

// parseFunctional parses the comma separated body of rgb()/rgba().
// Alpha is 0-1, or a percentage when suffixed with %.
func parseFunctional(body string, want int) (color.NRGBA, bool) {
	parts := strings.Split(body, ",")
	if len(parts) != want {
		return opaqueBlack, false
	}

	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, ok := parseChannel(parts[i])
		if !ok {
			return opaqueBlack, false
		}
		ch[i] = v
	}

	alpha := uint8(255)
	if want == 4 {
		raw := strings.TrimSpace(parts[3])
		var a float64
		var err error
		if strings.HasSuffix(raw, "%") {
			a, err = strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
			a /= 100
		} else {
			a, err = strconv.ParseFloat(raw, 64)
		}
		if err != nil {
			return opaqueBlack, false
		}
		alpha = uint8(clamp(a, 0, 1)*255 + 0.5)
	}

	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: alpha}, true
}

func parseChannel(raw string) (uint8, bool) {
	raw = strings.TrimSpace(raw)
	if strings.HasSuffix(raw, "%") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
		if err != nil {
			return 0, false
		}
		return uint8(clamp(v, 0, 100)*2.55 + 0.5), true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return uint8(clamp(v, 0, 255) + 0.5), true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
