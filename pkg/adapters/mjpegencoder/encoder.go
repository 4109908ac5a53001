// Package mjpegencoder encodes Motion-JPEG MP4 video in pure Go. Each frame
// is an independent JPEG sample in one fragmented MP4 track.
package mjpegencoder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"sync"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/sceneshow/pkg/ports"
)

// timescale is in milliseconds so frame timestamps map directly.
const timescale = 1000

var (
	// ErrNotInitialized is returned when encoder methods are called before Begin.
	ErrNotInitialized = errors.New("mjpegencoder: encoder not initialized")

	// ErrNoFrames is returned when End is called without frames.
	ErrNoFrames = errors.New("mjpegencoder: no frames to encode")
)

type sample struct {
	data        []byte
	timestampMs int
}

// Encoder implements ports.VideoEncoder.
type Encoder struct {
	mu      sync.Mutex
	active  bool
	width   int
	height  int
	fps     float64
	quality int
	samples []sample
}

// New creates a new MJPEG encoder.
func New() *Encoder {
	return &Encoder{}
}

var _ ports.VideoEncoder = (*Encoder)(nil)

// Begin initializes the encoder.
func (e *Encoder) Begin(width, height int, fps float64, opts ports.EncoderOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if width <= 0 || height <= 0 || width > 0xffff || height > 0xffff || fps <= 0 {
		return fmt.Errorf("mjpegencoder: invalid output %dx%d at %gfps", width, height, fps)
	}
	e.active = true
	e.width, e.height, e.fps = width, height, fps
	e.quality = JPEGQuality(opts.Quality)
	e.samples = nil
	return nil
}

// JPEGQuality maps a CRF-style quality (lower is better, 0 means default)
// to a JPEG quality.
func JPEGQuality(crf int) int {
	if crf <= 0 {
		crf = 23
	}
	q := 100 - crf
	switch {
	case q < 30:
		return 30
	case q > 95:
		return 95
	}
	return q
}

// EncodeFrame compresses one frame.
func (e *Encoder) EncodeFrame(img image.Image, timestampMs int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return ErrNotInitialized
	}
	if n := len(e.samples); n > 0 && timestampMs <= e.samples[n-1].timestampMs {
		return fmt.Errorf("mjpegencoder: frame at %dms does not follow %dms", timestampMs, e.samples[n-1].timestampMs)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: e.quality}); err != nil {
		return fmt.Errorf("mjpegencoder: encode jpeg: %w", err)
	}
	e.samples = append(e.samples, sample{data: buf.Bytes(), timestampMs: timestampMs})
	return nil
}

// End returns the MP4 data.
func (e *Encoder) End() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return nil, ErrNotInitialized
	}
	e.active = false
	if len(e.samples) == 0 {
		return nil, ErrNoFrames
	}
	data, err := e.buildMP4()
	e.samples = nil
	return data, err
}

// Abort discards buffered frames.
func (e *Encoder) Abort() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = false
	e.samples = nil
}

func (e *Encoder) frameDuration() uint32 {
	d := uint32(float64(timescale)/e.fps + 0.5)
	if d == 0 {
		d = 1
	}
	return d
}

func (e *Encoder) buildMP4() ([]byte, error) {
	const trackID = 1

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, "video", "und")
	trak := init.Moov.Trak

	entry := mp4.CreateVisualSampleEntryBox("jpeg", uint16(e.width), uint16(e.height), nil)
	trak.Mdia.Minf.Stbl.Stsd.AddChild(entry)
	trak.Tkhd.Width = mp4.Fixed32(e.width << 16)
	trak.Tkhd.Height = mp4.Fixed32(e.height << 16)

	frag, err := mp4.CreateFragment(1, trackID)
	if err != nil {
		return nil, fmt.Errorf("mjpegencoder: create fragment: %w", err)
	}

	for i, s := range e.samples {
		dur := e.frameDuration()
		if i < len(e.samples)-1 {
			dur = uint32(e.samples[i+1].timestampMs - s.timestampMs)
		}
		frag.AddFullSample(mp4.FullSample{
			Sample: mp4.Sample{
				Flags: mp4.SyncSampleFlags,
				Size:  uint32(len(s.data)),
				Dur:   dur,
			},
			DecodeTime: uint64(s.timestampMs),
			Data:       s.data,
		})
	}

	var buf bytes.Buffer
	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "mp41"})
	if err := ftyp.Encode(&buf); err != nil {
		return nil, fmt.Errorf("mjpegencoder: encode ftyp: %w", err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		return nil, fmt.Errorf("mjpegencoder: encode moov: %w", err)
	}
	if err := frag.Encode(&buf); err != nil {
		return nil, fmt.Errorf("mjpegencoder: encode fragment: %w", err)
	}
	return buf.Bytes(), nil
}
