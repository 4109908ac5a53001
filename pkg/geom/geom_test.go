package geom

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/user/sceneshow/pkg/rendererr"
)

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 90, A: 255})
		}
	}
	return img
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#fff", color.NRGBA{255, 255, 255, 255}},
		{"#1a1a1a", color.NRGBA{0x1a, 0x1a, 0x1a, 255}},
		{"#FF000080", color.NRGBA{255, 0, 0, 0x80}},
		{"rgb(10, 20, 30)", color.NRGBA{10, 20, 30, 255}},
		{"rgba(10,20,30,0.5)", color.NRGBA{10, 20, 30, 128}},
		{"rgba(10,20,30,50%)", color.NRGBA{10, 20, 30, 128}},
		{"RGB(100%, 0%, 0%)", color.NRGBA{255, 0, 0, 255}},
		{"white", color.NRGBA{255, 255, 255, 255}},
		{"transparent", color.NRGBA{}},
		// Unrecognized input falls back to opaque black.
		{"", color.NRGBA{0, 0, 0, 255}},
		{"#12", color.NRGBA{0, 0, 0, 255}},
		{"#gggggg", color.NRGBA{0, 0, 0, 255}},
		{"hsl(0,0%,0%)", color.NRGBA{0, 0, 0, 255}},
		{"rgb(1,2)", color.NRGBA{0, 0, 0, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseColor(tt.in); got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseColorStrict(t *testing.T) {
	if _, ok := ParseColorStrict("#abc"); !ok {
		t.Error("expected #abc to parse")
	}
	if _, ok := ParseColorStrict("nonsense"); ok {
		t.Error("expected nonsense to be rejected")
	}
}

func TestCropThenResize_ExactSize(t *testing.T) {
	src := gradient(97, 61)
	crops := []Crop{
		FullCrop,
		{X: 0, Y: 0, W: 0.5, H: 0.5},
		{X: 0.25, Y: 0.1, W: 0.75, H: 0.9},
		{X: 0.9, Y: 0.9, W: 0.1, H: 0.1},
		{X: 0.333, Y: 0.5, W: 0.01, H: 0.5},
	}
	sizes := [][2]int{{1, 1}, {50, 20}, {300, 300}, {1080, 1920}}

	for _, c := range crops {
		cropped, err := CropNormalized(src, c)
		if err != nil {
			t.Fatalf("crop %+v failed: %v", c, err)
		}
		for _, s := range sizes {
			for _, keep := range []bool{true, false} {
				out := ResizeFit(cropped, s[0], s[1], keep)
				if out.Bounds().Dx() != s[0] || out.Bounds().Dy() != s[1] {
					t.Errorf("crop %+v resize %v keep=%v: got %v", c, s, keep, out.Bounds())
				}
			}
		}
	}
}

func TestCropNormalized_FullIsNoop(t *testing.T) {
	src := gradient(10, 10)
	out, err := CropNormalized(src, FullCrop)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != image.Image(src) {
		t.Error("full crop should return the source without copying")
	}
}

func TestCropNormalized_Invalid(t *testing.T) {
	src := gradient(10, 10)
	bad := []Crop{
		{X: -0.1, Y: 0, W: 0.5, H: 0.5},
		{X: 0.6, Y: 0, W: 0.5, H: 0.5},
		{X: 0, Y: 0, W: 0, H: 1},
		{X: 0, Y: 0, W: 0.01, H: 1}, // rounds to zero pixels on a 10px image
	}
	for _, c := range bad {
		if _, err := CropNormalized(src, c); !errors.Is(err, rendererr.ErrInvalidGeometry) {
			t.Errorf("crop %+v: expected ErrInvalidGeometry, got %v", c, err)
		}
	}
}

func TestCropNormalized_SelectsPixels(t *testing.T) {
	src := gradient(100, 100)
	out, err := CropNormalized(src, Crop{X: 0.5, Y: 0.25, W: 0.5, H: 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Bounds() != image.Rect(0, 0, 50, 50) {
		t.Fatalf("unexpected bounds %v", out.Bounds())
	}
	if out.At(0, 0) != src.At(50, 25) {
		t.Errorf("expected crop origin to match source (50,25)")
	}
}

func TestResizeFit_Letterbox(t *testing.T) {
	src := gradient(200, 100)
	out := ResizeFit(src, 100, 100, true)

	// 2:1 source in a square box: content 100x50 centred, bands transparent.
	if _, _, _, a := out.At(50, 5).RGBA(); a != 0 {
		t.Error("expected transparent letterbox band at top")
	}
	if _, _, _, a := out.At(50, 50).RGBA(); a == 0 {
		t.Error("expected opaque content in the centre")
	}
	if _, _, _, a := out.At(50, 95).RGBA(); a != 0 {
		t.Error("expected transparent letterbox band at bottom")
	}
}

func TestResizeFit_SameSizeCopiesExactly(t *testing.T) {
	src := gradient(40, 30)
	out := ResizeFit(src, 40, 30, false)
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			if out.RGBAAt(x, y) != src.RGBAAt(x, y) {
				t.Fatalf("pixel (%d,%d) changed", x, y)
			}
		}
	}
}

func TestFlip(t *testing.T) {
	src := gradient(4, 3)
	h := Flip(src, true, false)
	if h.RGBAAt(0, 0) != src.RGBAAt(3, 0) {
		t.Error("horizontal flip did not mirror columns")
	}
	v := Flip(src, false, true)
	if v.RGBAAt(0, 0) != src.RGBAAt(0, 2) {
		t.Error("vertical flip did not mirror rows")
	}
	if Flip(src, false, false) != src {
		t.Error("no-op flip should return the source")
	}
}

func TestApplyOpacity(t *testing.T) {
	img := gradient(8, 8)
	orig := append([]uint8(nil), img.Pix...)

	ApplyOpacity(img, 1)
	for i := range orig {
		if img.Pix[i] != orig[i] {
			t.Fatal("opacity 1 must not alter the layer")
		}
	}

	ApplyOpacity(img, 0.5)
	if img.Pix[3] != 128 {
		t.Errorf("expected alpha 128 after half opacity, got %d", img.Pix[3])
	}

	ApplyOpacity(img, 0)
	for _, v := range img.Pix {
		if v != 0 {
			t.Fatal("opacity 0 must clear the layer")
		}
	}
}

func TestRotate_ZeroIsIdentity(t *testing.T) {
	src := gradient(30, 20)
	for _, deg := range []float64{0, 360, -720} {
		if Rotate(src, deg) != src {
			t.Errorf("rotation by %g should return the unrotated layer", deg)
		}
	}
}

func TestRotate_ExpandsBounds(t *testing.T) {
	src := gradient(40, 20)

	r90 := Rotate(src, 90)
	if r90.Bounds().Dx() != 20 || r90.Bounds().Dy() != 40 {
		t.Errorf("90 degrees: expected 20x40, got %v", r90.Bounds())
	}

	r45 := Rotate(src, 45)
	w, h := RotatedBounds(40, 20, 45)
	if r45.Bounds().Dx() != w || r45.Bounds().Dy() != h {
		t.Errorf("45 degrees: expected %dx%d, got %v", w, h, r45.Bounds())
	}
	// Corners of the expanded canvas are exposed area.
	if _, _, _, a := r45.At(0, 0).RGBA(); a != 0 {
		t.Error("expected transparent corner after rotation")
	}
}

func TestReanchor_KeepsCentre(t *testing.T) {
	x, y := Reanchor(100, 100, 40, 20, 20, 40)
	if x != 110 || y != 90 {
		t.Errorf("expected (110,90), got (%d,%d)", x, y)
	}
	x, y = Reanchor(5, 7, 10, 10, 10, 10)
	if x != 5 || y != 7 {
		t.Errorf("same size should keep position, got (%d,%d)", x, y)
	}
}

func TestOver_OpaqueAndTransparent(t *testing.T) {
	bg := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for i := range bg.Pix {
		bg.Pix[i] = 200
	}
	before := append([]uint8(nil), bg.Pix...)

	clear := image.NewRGBA(image.Rect(0, 0, 10, 10))
	Over(bg, clear, 5, 5)
	for i := range before {
		if bg.Pix[i] != before[i] {
			t.Fatal("transparent layer changed the background")
		}
	}

	layer := gradient(10, 10)
	Over(bg, layer, 5, 5)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if bg.RGBAAt(5+x, 5+y) != layer.RGBAAt(x, y) {
				t.Fatalf("opaque pixel (%d,%d) not reproduced", x, y)
			}
		}
	}

	// Clipped placement must not panic.
	Over(bg, layer, 15, -5)
}

func TestDrawBorder(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	DrawBorder(img, 2, color.RGBA{R: 255, A: 255})
	if img.RGBAAt(0, 0).R != 255 || img.RGBAAt(9, 9).R != 255 {
		t.Error("expected border on edges")
	}
	if img.RGBAAt(5, 5).A != 0 {
		t.Error("expected interior untouched")
	}
}
