package scene

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/user/sceneshow/pkg/geom"
)

// Kind tags the element variant.
type Kind string

const (
	KindImage   Kind = "image"
	KindText    Kind = "text"
	KindFigure  Kind = "figure"
	KindHTML    Kind = "html"
	KindUnknown Kind = "unknown"
)

// ResizeMode selects how an image fills its box.
type ResizeMode string

const (
	ResizeStretch ResizeMode = "stretch"
	ResizeFit     ResizeMode = "fit"
)

// ShapeKind is the geometry of a figure element.
type ShapeKind string

const (
	ShapeRect    ShapeKind = "rect"
	ShapeEllipse ShapeKind = "ellipse"
	ShapeUnknown ShapeKind = "unknown"
)

// Element is one visual unit. Exactly one of Image, Text, Shape or HTML is set
// according to Kind; unknown kinds carry none.
type Element struct {
	ID       string  `json:"id"`
	Kind     Kind    `json:"type"`
	RawType  string  `json:"rawType,omitempty"`
	Index    int     `json:"index"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
	Opacity  float64 `json:"opacity"`
	Visible  bool    `json:"visible"`
	ZIndex   *int    `json:"zIndex,omitempty"`

	Image *ImageSpec `json:"image,omitempty"`
	Text  *TextSpec  `json:"text,omitempty"`
	Shape *ShapeSpec `json:"shape,omitempty"`
	HTML  *HTMLSpec  `json:"html,omitempty"`
}

// ImageSpec holds image element fields.
type ImageSpec struct {
	Src         string     `json:"src"`
	Crop        geom.Crop  `json:"crop"`
	Mode        ResizeMode `json:"mode"`
	FlipX       bool       `json:"flipX,omitempty"`
	FlipY       bool       `json:"flipY,omitempty"`
	BorderSize  float64    `json:"borderSize,omitempty"`
	BorderColor string     `json:"borderColor,omitempty"`
}

// TextSpec holds text element fields.
type TextSpec struct {
	Text          string  `json:"text"`
	FontSize      float64 `json:"fontSize"`
	FontFamily    string  `json:"fontFamily,omitempty"`
	FontWeight    string  `json:"fontWeight,omitempty"`
	FontStyle     string  `json:"fontStyle,omitempty"`
	Fill          string  `json:"fill"`
	Align         string  `json:"align"`
	VerticalAlign string  `json:"verticalAlign"`
	LineHeight    float64 `json:"lineHeight"`
	StrokeWidth   float64 `json:"strokeWidth,omitempty"`
	Stroke        string  `json:"stroke,omitempty"`
	MaxLines      int     `json:"maxLines,omitempty"`
	AutoScale     bool    `json:"autoScale,omitempty"`
	MinScale      float64 `json:"minScale,omitempty"`
}

// ShapeSpec holds figure element fields.
type ShapeSpec struct {
	SubType      ShapeKind `json:"subType"`
	Fill         string    `json:"fill,omitempty"`
	Stroke       string    `json:"stroke,omitempty"`
	StrokeWidth  float64   `json:"strokeWidth,omitempty"`
	CornerRadius float64   `json:"cornerRadius,omitempty"`
}

// HTMLSpec holds the markup of an html element.
type HTMLSpec struct {
	Markup string `json:"markup"`
}

// Text defaults.
const (
	DefaultFontSize   = 24.0
	DefaultLineHeight = 1.2
	DefaultMinScale   = 0.5
)

// ParseElement validates a free-form child map into an Element. index is the
// document position and also names the element when it has no id.
func ParseElement(m map[string]any, index int) Element {
	e := Element{
		ID:       str(m, "id", fmt.Sprintf("element-%d", index)),
		Index:    index,
		X:        num(m, "x", 0),
		Y:        num(m, "y", 0),
		Width:    num(m, "width", 0),
		Height:   num(m, "height", 0),
		Rotation: num(m, "rotation", 0),
		Opacity:  num(m, "opacity", 1),
		Visible:  boolean(m, "visible", true),
	}
	if z, ok := m["zIndex"]; ok {
		if f, ok := toFloat(z); ok {
			zi := int(f)
			e.ZIndex = &zi
		}
	}

	rawType := strings.ToLower(strings.TrimSpace(str(m, "type", "")))
	switch rawType {
	case "image", "img", "photo":
		e.Kind = KindImage
		e.Image = parseImage(m)
	case "text", "textbox":
		e.Kind = KindText
		e.Text = parseText(m)
	case "figure", "shape", "rect", "rectangle", "ellipse", "circle":
		e.Kind = KindFigure
		e.Shape = parseShape(m, rawType)
	case "html":
		e.Kind = KindHTML
		e.HTML = &HTMLSpec{Markup: str(m, "html", str(m, "content", ""))}
	default:
		e.Kind = KindUnknown
		e.RawType = rawType
	}
	return e
}

func parseImage(m map[string]any) *ImageSpec {
	spec := &ImageSpec{
		Src: str(m, "src", ""),
		Crop: geom.Crop{
			X: num(m, "cropX", 0),
			Y: num(m, "cropY", 0),
			W: num(m, "cropWidth", 1),
			H: num(m, "cropHeight", 1),
		},
		FlipX:       boolean(m, "flipX", false),
		FlipY:       boolean(m, "flipY", false),
		BorderSize:  num(m, "borderSize", 0),
		BorderColor: str(m, "borderColor", "#000000"),
		Mode:        ResizeStretch,
	}
	if boolean(m, "keepRatio", false) && !boolean(m, "stretchEnabled", false) {
		spec.Mode = ResizeFit
	}
	return spec
}

func parseText(m map[string]any) *TextSpec {
	spec := &TextSpec{
		Text:          str(m, "text", ""),
		FontSize:      num(m, "fontSize", DefaultFontSize),
		FontFamily:    str(m, "fontFamily", ""),
		FontWeight:    strings.ToLower(str(m, "fontWeight", "normal")),
		FontStyle:     strings.ToLower(str(m, "fontStyle", "normal")),
		Fill:          str(m, "fill", "#000000"),
		Align:         strings.ToLower(str(m, "align", "left")),
		VerticalAlign: strings.ToLower(str(m, "verticalAlign", "top")),
		LineHeight:    num(m, "lineHeight", DefaultLineHeight),
		StrokeWidth:   num(m, "strokeWidth", 0),
		Stroke:        str(m, "stroke", ""),
		MaxLines:      int(num(m, "maxLines", 0)),
		MinScale:      num(m, "minScale", DefaultMinScale),
	}
	if spec.FontSize <= 0 {
		spec.FontSize = DefaultFontSize
	}
	if spec.LineHeight <= 0 {
		spec.LineHeight = DefaultLineHeight
	}
	spec.AutoScale = boolean(m, "autoScale", spec.MaxLines > 0)
	return spec
}

func parseShape(m map[string]any, rawType string) *ShapeSpec {
	sub := strings.ToLower(str(m, "subType", rawType))
	spec := &ShapeSpec{
		Fill:         str(m, "fill", ""),
		Stroke:       str(m, "stroke", ""),
		StrokeWidth:  num(m, "strokeWidth", 0),
		CornerRadius: num(m, "cornerRadius", 0),
	}
	switch sub {
	case "rect", "rectangle", "square", "figure", "shape":
		spec.SubType = ShapeRect
	case "ellipse", "circle", "oval":
		spec.SubType = ShapeEllipse
	default:
		spec.SubType = ShapeUnknown
	}
	return spec
}

func str(m map[string]any, key, def string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case nil:
		return def
	default:
		if f, ok := toFloat(v); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return def
	}
}

func num(m map[string]any, key string, def float64) float64 {
	v, ok := m[key]
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		if f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "px"), 64); err == nil {
			return f
		}
		return def
	}
	if f, ok := toFloat(v); ok {
		return f
	}
	return def
}

func boolean(m map[string]any, key string, def bool) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case int32:
		return float64(x), true
	}
	return 0, false
}
