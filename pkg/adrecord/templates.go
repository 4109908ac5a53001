package adrecord

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/user/sceneshow/pkg/geom"
	"github.com/user/sceneshow/pkg/rendererr"
	"github.com/user/sceneshow/pkg/scene"
)

// Field names that overrides may move.
const (
	FieldImage   = "image"
	FieldName    = "name"
	FieldPrice   = "price"
	FieldTagline = "tagline"
	FieldBadge   = "badge"
	FieldQR      = "qr"
)

// Fields returns the overridable field names.
func Fields() []string {
	return []string{FieldImage, FieldName, FieldPrice, FieldTagline, FieldBadge, FieldQR}
}

// Slot is a named group of elements that move together. Decorative slots
// have an empty Field and cannot be overridden.
type Slot struct {
	Field    string
	Elements []scene.Element
}

// Composition is a record laid out by a template.
type Composition struct {
	Template   Template
	Width      int
	Height     int
	Background scene.Background
	Slots      []Slot
	Warnings   []rendererr.Warning
}

// Slot returns the slot of a field.
func (c *Composition) Slot(field string) (*Slot, bool) {
	for i := range c.Slots {
		if c.Slots[i].Field == field && field != "" {
			return &c.Slots[i], true
		}
	}
	return nil, false
}

// Elements returns every element in paint order with document indexes set.
func (c *Composition) Elements() []scene.Element {
	var out []scene.Element
	for _, s := range c.Slots {
		for _, e := range s.Elements {
			e.Index = len(out)
			out = append(out, e)
		}
	}
	return out
}

// Document returns the composition as a one-page scene.
func (c *Composition) Document() *scene.Document {
	return &scene.Document{
		Width:      scene.Px(c.Width),
		Height:     scene.Px(c.Height),
		Background: c.Background,
		Pages: []scene.Page{{
			ID:       string(c.Template),
			Children: c.Elements(),
		}},
	}
}

// Compose lays out a record with its template on a width x height canvas.
// Sizes are proportional to the shorter canvas side, with 1080 as the
// reference.
func Compose(r Record, width, height int) (*Composition, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: canvas %dx%d", rendererr.ErrInvalidGeometry, width, height)
	}
	t, err := ParseTemplate(string(r.Template))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rendererr.ErrInvalidDocument, err)
	}

	l := layout{
		w: float64(width),
		h: float64(height),
		s: math.Min(float64(width), float64(height)) / 1080,
		r: r,
	}
	c := &Composition{Template: t, Width: width, Height: height}

	switch t {
	case TemplateBold:
		l.bold(c)
	case TemplateLuxury:
		l.luxury(c)
	case TemplateTikTok:
		l.tiktok(c)
	default:
		l.minimal(c)
	}
	if r.URL != "" {
		size := 200 * l.s
		c.Slots = append(c.Slots, Slot{Field: FieldQR, Elements: []scene.Element{
			imageEl("qr", "qr:"+r.URL, l.w-0.06*l.w-size, l.h-0.04*l.h-size, size, size),
		}})
	}

	c.applyOverrides(r.Overrides)
	return c, nil
}

func (c *Composition) applyOverrides(overrides map[string]Position) {
	fields := make([]string, 0, len(overrides))
	for f := range overrides {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	for _, field := range fields {
		pos := overrides[field]
		slot, ok := c.Slot(strings.ToLower(field))
		if !ok || len(slot.Elements) == 0 {
			c.Warnings = append(c.Warnings, rendererr.Warning{
				Kind:    rendererr.KindUnsupported,
				Page:    0,
				Element: field,
				Stage:   "adrecord",
				Message: fmt.Sprintf("override for field %q ignored: not part of the %s template", field, c.Template),
			})
			continue
		}
		dx := pos.X - slot.Elements[0].X
		dy := pos.Y - slot.Elements[0].Y
		for i := range slot.Elements {
			e := &slot.Elements[i]
			e.X += dx
			e.Y += dy
			if pos.Width > 0 {
				e.Width = pos.Width
			}
			if pos.Height > 0 {
				e.Height = pos.Height
			}
		}
	}
}

// layout holds the canvas and scale while a template is built.
type layout struct {
	w, h, s float64
	r       Record
}

func (l layout) price() string {
	return FormatPrice(l.r.Price, l.r.Currency)
}

func (l layout) minimal(c *Composition) {
	c.Background = scene.Background{Color: "#ffffff"}
	mx := 0.08 * l.w
	cw := l.w - 2*mx

	img := imageEl("image", l.r.Image, mx, 0.06*l.h, cw, 0.52*l.h)
	img.Image.Mode = scene.ResizeFit
	c.Slots = append(c.Slots, Slot{Field: FieldImage, Elements: []scene.Element{img}})

	y := 0.61 * l.h
	name := textEl("name", l.r.Name, mx, y, cw, 160*l.s, 64*l.s)
	name.Text.FontWeight = "bold"
	name.Text.Fill = "#1a1a1a"
	name.Text.MaxLines = 2
	name.Text.AutoScale = true
	c.Slots = append(c.Slots, Slot{Field: FieldName, Elements: []scene.Element{name}})
	y += 180 * l.s

	if l.r.Price != "" {
		price := textEl("price", l.price(), mx, y, cw, 100*l.s, 72*l.s)
		price.Text.FontWeight = "bold"
		price.Text.Fill = "#e63946"
		c.Slots = append(c.Slots, Slot{Field: FieldPrice, Elements: []scene.Element{price}})
		y += 120 * l.s
	}

	if l.r.Tagline != "" {
		tag := textEl("tagline", l.r.Tagline, mx, y, cw, 120*l.s, 40*l.s)
		tag.Text.Fill = "#555555"
		tag.Text.MaxLines = 2
		tag.Text.AutoScale = true
		c.Slots = append(c.Slots, Slot{Field: FieldTagline, Elements: []scene.Element{tag}})
	}

	if l.r.Badge != "" {
		c.Slots = append(c.Slots, l.badge(mx+24*l.s, 0.06*l.h+24*l.s, "#1a1a1a", "#ffffff", false))
	}
}

func (l layout) bold(c *Composition) {
	c.Background = scene.Background{Color: "#1a1a1a"}
	panelY := 0.58 * l.h

	img := imageEl("image", l.r.Image, 0, 0, l.w, panelY)
	img.Image.Mode = scene.ResizeFit
	c.Slots = append(c.Slots,
		Slot{Field: FieldImage, Elements: []scene.Element{img}},
		Slot{Elements: []scene.Element{rectEl("panel", 0, panelY, l.w, l.h-panelY, "#ffd60a")}},
	)

	mx := 0.07 * l.w
	cw := l.w - 2*mx
	y := panelY + 50*l.s

	name := textEl("name", strings.ToUpper(l.r.Name), mx, y, cw, 200*l.s, 88*l.s)
	name.Text.FontWeight = "bold"
	name.Text.Fill = "#111111"
	name.Text.Align = "left"
	name.Text.MaxLines = 2
	name.Text.AutoScale = true
	c.Slots = append(c.Slots, Slot{Field: FieldName, Elements: []scene.Element{name}})
	y += 230 * l.s

	if l.r.Price != "" {
		pw, ph := 420*l.s, 120*l.s
		bg := rectEl("price-bg", mx, y, pw, ph, "#111111")
		bg.Shape.CornerRadius = 24 * l.s
		price := textEl("price", l.price(), mx, y, pw, ph, 68*l.s)
		price.Text.FontWeight = "bold"
		price.Text.Fill = "#ffd60a"
		price.Text.MaxLines = 1
		price.Text.AutoScale = true
		c.Slots = append(c.Slots, Slot{Field: FieldPrice, Elements: []scene.Element{bg, price}})
		y += ph + 40*l.s
	}

	if l.r.Tagline != "" {
		tag := textEl("tagline", l.r.Tagline, mx, y, cw, 110*l.s, 42*l.s)
		tag.Text.Fill = "#1a1a1a"
		tag.Text.Align = "left"
		tag.Text.MaxLines = 2
		tag.Text.AutoScale = true
		c.Slots = append(c.Slots, Slot{Field: FieldTagline, Elements: []scene.Element{tag}})
	}

	if l.r.Badge != "" {
		c.Slots = append(c.Slots, l.badge(l.w-mx-240*l.s, 40*l.s, "#e63946", "#ffffff", true))
	}
}

func (l layout) luxury(c *Composition) {
	const gold = "#c9a227"
	c.Background = scene.Background{Color: "#0b0b0b"}

	inset := 0.04 * l.w
	frame := rectEl("frame", inset, inset, l.w-2*inset, l.h-2*inset, "")
	frame.Shape.Stroke = gold
	frame.Shape.StrokeWidth = 3 * l.s
	c.Slots = append(c.Slots, Slot{Elements: []scene.Element{frame}})

	mx := 0.12 * l.w
	cw := l.w - 2*mx
	img := imageEl("image", l.r.Image, mx, 0.1*l.h, cw, 0.5*l.h)
	img.Image.Mode = scene.ResizeFit
	img.Image.BorderSize = math.Max(1, math.Round(2*l.s))
	img.Image.BorderColor = gold
	c.Slots = append(c.Slots, Slot{Field: FieldImage, Elements: []scene.Element{img}})

	y := 0.64 * l.h
	name := textEl("name", l.r.Name, mx, y, cw, 150*l.s, 60*l.s)
	name.Text.FontWeight = "medium"
	name.Text.FontStyle = "italic"
	name.Text.Fill = "#f5f0e6"
	name.Text.MaxLines = 2
	name.Text.AutoScale = true
	c.Slots = append(c.Slots, Slot{Field: FieldName, Elements: []scene.Element{name}})
	y += 170 * l.s

	rw := 0.3 * l.w
	c.Slots = append(c.Slots, Slot{Elements: []scene.Element{rectEl("rule", (l.w-rw)/2, y, rw, math.Max(1, 2*l.s), gold)}})
	y += 30 * l.s

	if l.r.Price != "" {
		price := textEl("price", l.price(), mx, y, cw, 90*l.s, 52*l.s)
		price.Text.FontWeight = "medium"
		price.Text.Fill = gold
		c.Slots = append(c.Slots, Slot{Field: FieldPrice, Elements: []scene.Element{price}})
		y += 110 * l.s
	}

	if l.r.Tagline != "" {
		tag := textEl("tagline", l.r.Tagline, mx, y, cw, 100*l.s, 34*l.s)
		tag.Text.FontStyle = "italic"
		tag.Text.Fill = "#bfb8a8"
		tag.Text.MaxLines = 2
		tag.Text.AutoScale = true
		c.Slots = append(c.Slots, Slot{Field: FieldTagline, Elements: []scene.Element{tag}})
	}

	if l.r.Badge != "" {
		badge := textEl("badge", strings.ToUpper(l.r.Badge), mx, 0.05*l.h, cw, 60*l.s, 30*l.s)
		badge.Text.Fill = gold
		badge.Text.FontWeight = "medium"
		c.Slots = append(c.Slots, Slot{Field: FieldBadge, Elements: []scene.Element{badge}})
	}
}

// tiktok is the story layout used for the animated template: full-height
// product, caption block over a dark gradient band.
func (l layout) tiktok(c *Composition) {
	c.Background = scene.Background{Color: "#000000"}

	img := imageEl("image", l.r.Image, 0.05*l.w, 0.12*l.h, 0.9*l.w, 0.5*l.h)
	img.Image.Mode = scene.ResizeFit
	c.Slots = append(c.Slots, Slot{Field: FieldImage, Elements: []scene.Element{img}})

	band := rectEl("band", 0, 0.64*l.h, l.w, 0.36*l.h, "#161616")
	c.Slots = append(c.Slots, Slot{Elements: []scene.Element{band}})

	mx := 0.07 * l.w
	cw := l.w - 2*mx
	y := 0.67 * l.h

	name := textEl("name", l.r.Name, mx, y, cw, 200*l.s, 84*l.s)
	name.Text.FontWeight = "bold"
	name.Text.Fill = "#ffffff"
	name.Text.MaxLines = 2
	name.Text.AutoScale = true
	name.Text.Stroke = "#000000"
	name.Text.StrokeWidth = 3 * l.s
	c.Slots = append(c.Slots, Slot{Field: FieldName, Elements: []scene.Element{name}})
	y += 220 * l.s

	if l.r.Price != "" {
		price := textEl("price", l.price(), mx, y, cw, 120*l.s, 80*l.s)
		price.Text.FontWeight = "bold"
		price.Text.Fill = "#25f4ee"
		c.Slots = append(c.Slots, Slot{Field: FieldPrice, Elements: []scene.Element{price}})
		y += 140 * l.s
	}

	if l.r.Tagline != "" {
		tag := textEl("tagline", l.r.Tagline, mx, y, cw, 110*l.s, 42*l.s)
		tag.Text.Fill = "#dddddd"
		tag.Text.MaxLines = 2
		tag.Text.AutoScale = true
		c.Slots = append(c.Slots, Slot{Field: FieldTagline, Elements: []scene.Element{tag}})
	}

	if l.r.Badge != "" {
		c.Slots = append(c.Slots, l.badge(l.w-mx-240*l.s, 0.05*l.h, "#fe2c55", "#ffffff", true))
	}
}

// badge is a filled pill or circle with centred text.
func (l layout) badge(x, y float64, fill, textColor string, round bool) Slot {
	w, h := 260*l.s, 80*l.s
	bg := rectEl("badge-bg", x, y, w, h, fill)
	bg.Shape.CornerRadius = h / 2
	if round {
		w, h = 240*l.s, 240*l.s
		bg = scene.Element{
			ID: "badge-bg", Kind: scene.KindFigure, X: x, Y: y, Width: w, Height: h,
			Opacity: 1, Visible: true,
			Shape: &scene.ShapeSpec{SubType: scene.ShapeEllipse, Fill: fill},
		}
	}
	label := textEl("badge", strings.ToUpper(l.r.Badge), x, y, w, h, 36*l.s)
	label.Text.FontWeight = "bold"
	label.Text.Fill = textColor
	label.Text.MaxLines = 2
	label.Text.AutoScale = true
	return Slot{Field: FieldBadge, Elements: []scene.Element{bg, label}}
}

func imageEl(id, src string, x, y, w, h float64) scene.Element {
	return scene.Element{
		ID: id, Kind: scene.KindImage, X: x, Y: y, Width: w, Height: h,
		Opacity: 1, Visible: true,
		Image: &scene.ImageSpec{Src: src, Crop: geom.FullCrop, Mode: scene.ResizeStretch},
	}
}

func textEl(id, text string, x, y, w, h, size float64) scene.Element {
	return scene.Element{
		ID: id, Kind: scene.KindText, X: x, Y: y, Width: w, Height: h,
		Opacity: 1, Visible: true,
		Text: &scene.TextSpec{
			Text:          text,
			FontSize:      size,
			Fill:          "#000000",
			Align:         "center",
			VerticalAlign: "middle",
			LineHeight:    scene.DefaultLineHeight,
			MinScale:      scene.DefaultMinScale,
		},
	}
}

func rectEl(id string, x, y, w, h float64, fill string) scene.Element {
	return scene.Element{
		ID: id, Kind: scene.KindFigure, X: x, Y: y, Width: w, Height: h,
		Opacity: 1, Visible: true,
		Shape: &scene.ShapeSpec{SubType: scene.ShapeRect, Fill: fill},
	}
}
