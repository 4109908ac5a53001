// Package scene defines the scene document: pages of positioned image, text,
// shape and HTML elements. Documents are parsed once and read-only afterwards.
package scene

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/user/sceneshow/pkg/geom"
)

// Dimension is a pixel size or "auto".
type Dimension struct {
	Value int
	Auto  bool
}

// Px returns a fixed pixel dimension.
func Px(v int) Dimension { return Dimension{Value: v} }

// AutoDimension returns the "auto" dimension.
func AutoDimension() Dimension { return Dimension{Auto: true} }

// Resolve returns the pixel value, or fallback when the dimension is auto.
func (d Dimension) Resolve(fallback int) int {
	if d.Auto || d.Value <= 0 {
		return fallback
	}
	return d.Value
}

// MarshalJSON writes "auto" or the pixel count.
func (d Dimension) MarshalJSON() ([]byte, error) {
	if d.Auto {
		return []byte(`"auto"`), nil
	}
	return []byte(strconv.Itoa(d.Value)), nil
}

// ParseDimension accepts a number, a numeric string or "auto". A missing
// value is auto.
func ParseDimension(v any) (Dimension, error) {
	switch x := v.(type) {
	case nil:
		return AutoDimension(), nil
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(x), "px"))
		if strings.EqualFold(s, "auto") || s == "" {
			return AutoDimension(), nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Dimension{}, fmt.Errorf("dimension %q: not a number or auto", x)
		}
		return positive(f)
	default:
		f, ok := toFloat(v)
		if !ok {
			return Dimension{}, fmt.Errorf("dimension of type %T is not supported", v)
		}
		return positive(f)
	}
}

func positive(f float64) (Dimension, error) {
	if f <= 0 {
		return Dimension{}, fmt.Errorf("dimension %g must be positive", f)
	}
	return Px(int(f + 0.5)), nil
}

// Background is either a colour or an image reference. When both are set the
// image wins and the colour is the fallback.
type Background struct {
	Color string `json:"color,omitempty"`
	Src   string `json:"src,omitempty"`
}

// IsImage reports whether the background references an image.
func (b Background) IsImage() bool { return b.Src != "" }

// ParseBackground reads a colour string, an image reference or a
// {color, src} object.
func ParseBackground(v any) Background {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		if _, ok := geom.ParseColorStrict(s); ok {
			return Background{Color: s}
		}
		return Background{Src: s}
	case map[string]any:
		b := Background{Color: str(x, "color", "")}
		b.Src = str(x, "src", str(x, "image", ""))
		return b
	}
	return Background{}
}

// Document is the root of a scene.
type Document struct {
	Width      Dimension  `json:"width"`
	Height     Dimension  `json:"height"`
	Background Background `json:"background"`
	Pages      []Page     `json:"pages"`
}

// Page is one canvas. Zero or auto dimensions inherit from the document.
type Page struct {
	ID         string     `json:"id,omitempty"`
	Width      Dimension  `json:"width"`
	Height     Dimension  `json:"height"`
	Background Background `json:"background"`
	Children   []Element  `json:"children"`
}

// Size resolves the page size against the document size, and the document
// size against the default canvas.
func (d *Document) Size(page int, defW, defH int) (int, int) {
	w := d.Width.Resolve(defW)
	h := d.Height.Resolve(defH)
	if page >= 0 && page < len(d.Pages) {
		w = d.Pages[page].Width.Resolve(w)
		h = d.Pages[page].Height.Resolve(h)
	}
	return w, h
}

// BackgroundOf returns the page background, falling back to the document's.
func (d *Document) BackgroundOf(page int) Background {
	if page >= 0 && page < len(d.Pages) {
		bg := d.Pages[page].Background
		if bg.Color != "" || bg.Src != "" {
			return bg
		}
	}
	return d.Background
}

// MarshalIndent renders the document as indented JSON for debug output.
func (d *Document) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Sources lists the image references of every background and image element
// in document order. Duplicates are kept.
func (d *Document) Sources() []string {
	var srcs []string
	if d.Background.Src != "" {
		srcs = append(srcs, d.Background.Src)
	}
	for _, p := range d.Pages {
		if p.Background.Src != "" {
			srcs = append(srcs, p.Background.Src)
		}
		for _, e := range p.Children {
			if e.Image != nil && e.Image.Src != "" {
				srcs = append(srcs, e.Image.Src)
			}
		}
	}
	return srcs
}
