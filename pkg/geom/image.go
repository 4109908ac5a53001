package geom

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/user/sceneshow/pkg/rendererr"
)

// Crop is a crop rectangle normalized to the source size.
type Crop struct {
	X, Y, W, H float64
}

// FullCrop is the no-op crop covering the whole source.
var FullCrop = Crop{X: 0, Y: 0, W: 1, H: 1}

const cropEpsilon = 1e-9

// IsFull reports whether c covers the whole source.
func (c Crop) IsFull() bool {
	return c.X == 0 && c.Y == 0 && c.W == 1 && c.H == 1
}

// Validate checks that the crop stays within [0,1]x[0,1].
func (c Crop) Validate() error {
	for _, v := range []float64{c.X, c.Y, c.W, c.H} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: crop (%g,%g,%g,%g) outside unit square", rendererr.ErrInvalidGeometry, c.X, c.Y, c.W, c.H)
		}
	}
	if c.X+c.W > 1+cropEpsilon || c.Y+c.H > 1+cropEpsilon {
		return fmt.Errorf("%w: crop (%g,%g,%g,%g) exceeds source", rendererr.ErrInvalidGeometry, c.X, c.Y, c.W, c.H)
	}
	return nil
}

// CropNormalized returns the sub-image selected by c. The full crop returns
// img itself.
func CropNormalized(img image.Image, c Crop) (image.Image, error) {
	if c.IsFull() {
		return img, nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	x0 := b.Min.X + int(math.Round(c.X*w))
	y0 := b.Min.Y + int(math.Round(c.Y*h))
	x1 := b.Min.X + int(math.Round((c.X+c.W)*w))
	y1 := b.Min.Y + int(math.Round((c.Y+c.H)*h))

	r := image.Rect(x0, y0, x1, y1).Intersect(b)
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return nil, fmt.Errorf("%w: crop resolves to %dx%d pixels", rendererr.ErrInvalidGeometry, r.Dx(), r.Dy())
	}

	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), img, r.Min, draw.Src)
	return out, nil
}

// ResizeFit resizes img to exactly w x h. With keepRatio the image is scaled to
// fit inside the box and centred on a transparent canvas; otherwise each axis
// is stretched independently.
func ResizeFit(img image.Image, w, h int, keepRatio bool) *image.RGBA {
	if w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	sb := img.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	if sw <= 0 || sh <= 0 {
		return dst
	}

	target := dst.Bounds()
	if keepRatio {
		scale := math.Min(float64(w)/float64(sw), float64(h)/float64(sh))
		dw := maxInt(1, int(math.Round(float64(sw)*scale)))
		dh := maxInt(1, int(math.Round(float64(sh)*scale)))
		ox := (w - dw) / 2
		oy := (h - dh) / 2
		target = image.Rect(ox, oy, ox+dw, oy+dh)
	}

	if target.Dx() == sw && target.Dy() == sh {
		draw.Draw(dst, target, img, sb.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, target, img, sb, draw.Src, nil)
	return dst
}

// ToRGBA returns img as an *image.RGBA anchored at the origin, copying only
// when needed.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Flip mirrors img horizontally and/or vertically into a new image.
func Flip(img image.Image, horizontal, vertical bool) *image.RGBA {
	src := ToRGBA(img)
	if !horizontal && !vertical {
		return src
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewRGBA(b)
	for y := 0; y < h; y++ {
		sy := y
		if vertical {
			sy = h - 1 - y
		}
		for x := 0; x < w; x++ {
			sx := x
			if horizontal {
				sx = w - 1 - x
			}
			si := src.PixOffset(sx, sy)
			di := out.PixOffset(x, y)
			copy(out.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
	return out
}

// ApplyOpacity multiplies every channel of the premultiplied image by opacity
// in place. Opacity >= 1 leaves the image untouched.
func ApplyOpacity(img *image.RGBA, opacity float64) {
	if opacity >= 1 {
		return
	}
	if opacity <= 0 || math.IsNaN(opacity) {
		for i := range img.Pix {
			img.Pix[i] = 0
		}
		return
	}
	for i, v := range img.Pix {
		img.Pix[i] = uint8(float64(v)*opacity + 0.5)
	}
}

// normalizeDegrees maps degrees into [0, 360).
func normalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// RotatedBounds returns the size of the bounding box of a w x h rectangle
// rotated by degrees.
func RotatedBounds(w, h int, degrees float64) (int, int) {
	d := normalizeDegrees(degrees)
	if d == 0 {
		return w, h
	}
	rad := d * math.Pi / 180
	c, s := math.Abs(math.Cos(rad)), math.Abs(math.Sin(rad))
	rw := int(math.Ceil(float64(w)*c + float64(h)*s - 1e-9))
	rh := int(math.Ceil(float64(w)*s + float64(h)*c - 1e-9))
	return rw, rh
}

// Reanchor returns the paste position of a rotated layer of size rw x rh so
// that the centre of the original w x h box at (x, y) stays fixed.
func Reanchor(x, y, w, h, rw, rh int) (int, int) {
	cx := float64(x) + float64(w)/2
	cy := float64(y) + float64(h)/2
	return int(math.Round(cx - float64(rw)/2)), int(math.Round(cy - float64(rh)/2))
}

// Rotate rotates img clockwise around its centre. The canvas grows to the
// bounding box of the rotated rectangle and the exposed area is transparent.
// A rotation of 0 (mod 360) returns img unchanged.
func Rotate(img *image.RGBA, degrees float64) *image.RGBA {
	d := normalizeDegrees(degrees)
	if d == 0 {
		return img
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	rw, rh := RotatedBounds(w, h, d)
	dst := image.NewRGBA(image.Rect(0, 0, rw, rh))

	rad := d * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	scx, scy := float64(b.Min.X)+float64(w)/2, float64(b.Min.Y)+float64(h)/2
	dcx, dcy := float64(rw)/2, float64(rh)/2

	// Source to destination: translate to origin, rotate clockwise (y down), translate to dst centre.
	m := f64.Aff3{
		cos, -sin, dcx - (cos*scx - sin*scy),
		sin, cos, dcy - (sin*scx + cos*scy),
	}
	draw.BiLinear.Transform(dst, m, img, b, draw.Over, nil)
	return dst
}

// DrawBorder paints a border of the given width along the inside edge of img.
func DrawBorder(img *image.RGBA, width int, c color.Color) {
	if width <= 0 {
		return
	}
	b := img.Bounds()
	if width*2 >= b.Dx() || width*2 >= b.Dy() {
		draw.Draw(img, b, image.NewUniform(c), image.Point{}, draw.Over)
		return
	}
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+width),
		image.Rect(b.Min.X, b.Max.Y-width, b.Max.X, b.Max.Y),
		image.Rect(b.Min.X, b.Min.Y+width, b.Min.X+width, b.Max.Y-width),
		image.Rect(b.Max.X-width, b.Min.Y+width, b.Max.X, b.Max.Y-width),
	}
	for _, r := range edges {
		draw.Draw(img, r, src, image.Point{}, draw.Over)
	}
}

// Over alpha-composites src onto dst with its top-left corner at (x, y).
// Pixels outside dst are clipped.
func Over(dst *image.RGBA, src image.Image, x, y int) {
	sb := src.Bounds()
	r := image.Rect(x, y, x+sb.Dx(), y+sb.Dy())
	draw.Draw(dst, r, src, sb.Min, draw.Over)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
