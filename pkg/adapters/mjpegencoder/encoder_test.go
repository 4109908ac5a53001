package mjpegencoder

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/sceneshow/pkg/ports"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestEncoder_ProducesMP4(t *testing.T) {
	enc := New()
	if err := enc.Begin(64, 36, 25, ports.EncoderOptions{Quality: 20}); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	timestamps := []int{0, 40, 80, 120, 1120}
	for i, ts := range timestamps {
		if err := enc.EncodeFrame(solid(64, 36, color.RGBA{uint8(i * 40), 0, 0, 255}), ts); err != nil {
			t.Fatalf("EncodeFrame(%d) failed: %v", ts, err)
		}
	}
	data, err := enc.End()
	if err != nil {
		t.Fatalf("End failed: %v", err)
	}
	if string(data[4:8]) != "ftyp" {
		t.Fatalf("expected ftyp box, got %q", data[4:8])
	}

	f, err := mp4.DecodeFile(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode mp4: %v", err)
	}
	if f.Init == nil || len(f.Segments) == 0 {
		t.Fatal("expected an init segment and a fragment")
	}
	var samples []mp4.FullSample
	for _, seg := range f.Segments {
		for _, frag := range seg.Fragments {
			fs, err := frag.GetFullSamples(f.Init.Moov.Mvex.Trex)
			if err != nil {
				t.Fatal(err)
			}
			samples = append(samples, fs...)
		}
	}
	if len(samples) != len(timestamps) {
		t.Fatalf("expected %d samples, got %d", len(timestamps), len(samples))
	}
	if samples[3].Dur != 1000 {
		t.Errorf("hold sample duration = %d, want 1000", samples[3].Dur)
	}
	if samples[4].Dur != 40 {
		t.Errorf("last sample duration = %d, want one frame", samples[4].Dur)
	}
	if !bytes.HasPrefix(samples[0].Data, []byte{0xff, 0xd8}) {
		t.Error("samples must be JPEG images")
	}
}

func TestEncoder_Errors(t *testing.T) {
	enc := New()
	if err := enc.EncodeFrame(solid(2, 2, color.RGBA{}), 0); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
	if err := enc.Begin(0, 10, 30, ports.EncoderOptions{}); err == nil {
		t.Error("expected an error for an empty canvas")
	}

	if err := enc.Begin(8, 8, 30, ports.EncoderOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, err := enc.End(); !errors.Is(err, ErrNoFrames) {
		t.Errorf("expected ErrNoFrames, got %v", err)
	}

	if err := enc.Begin(8, 8, 30, ports.EncoderOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := enc.EncodeFrame(solid(8, 8, color.RGBA{A: 255}), 33); err != nil {
		t.Fatal(err)
	}
	if err := enc.EncodeFrame(solid(8, 8, color.RGBA{A: 255}), 33); err == nil {
		t.Error("a repeated timestamp must fail")
	}
	enc.Abort()
	if _, err := enc.End(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("End after Abort must fail, got %v", err)
	}
}

func TestJPEGQuality(t *testing.T) {
	for _, tt := range []struct{ crf, want int }{{0, 77}, {1, 95}, {23, 77}, {51, 49}, {90, 30}} {
		if got := JPEGQuality(tt.crf); got != tt.want {
			t.Errorf("JPEGQuality(%d) = %d, want %d", tt.crf, got, tt.want)
		}
	}
}
