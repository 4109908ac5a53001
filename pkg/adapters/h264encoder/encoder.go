// Package h264encoder encodes H.264 MP4 video by piping raw frames into an
// ffmpeg process.
package h264encoder

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"os/exec"
	"sync"

	"github.com/user/sceneshow/pkg/geom"
	"github.com/user/sceneshow/pkg/ports"
)

// Encoder implements ports.VideoEncoder with ffmpeg. ffmpeg reads a constant
// frame rate, so gaps between timestamps are filled by repeating the
// previous frame.
type Encoder struct {
	ffmpegPath string

	mu       sync.Mutex
	width    int
	height   int
	fps      float64
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	stderr   bytes.Buffer
	tempPath string
	written  int
	lastTs   int
	last     []byte
}

// New creates an encoder. ffmpegPath may be empty to search for ffmpeg.
func New(ffmpegPath string) *Encoder {
	return &Encoder{ffmpegPath: ffmpegPath}
}

var _ ports.VideoEncoder = (*Encoder)(nil)

// Begin starts ffmpeg.
func (e *Encoder) Begin(width, height int, fps float64, opts ports.EncoderOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	path, err := FindFFmpeg(e.ffmpegPath)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "sceneshow-*.mp4")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp.Close()

	cmd := exec.Command(path, buildArgs(width, height, fps, crfOf(opts.Quality), opts.Bitrate, tmp.Name())...)
	e.stderr.Reset()
	cmd.Stderr = &e.stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	e.width, e.height, e.fps = width, height, fps
	e.cmd, e.stdin, e.tempPath = cmd, stdin, tmp.Name()
	e.written, e.lastTs, e.last = 0, -1, nil
	return nil
}

// EncodeFrame writes img at timestampMs.
func (e *Encoder) EncodeFrame(img image.Image, timestampMs int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stdin == nil {
		return ErrNotInitialized
	}
	if timestampMs <= e.lastTs {
		return fmt.Errorf("%w: %dms after %dms", ErrNonMonotonic, timestampMs, e.lastTs)
	}

	slot := int(math.Round(float64(timestampMs) * e.fps / 1000))
	for e.last != nil && e.written < slot {
		if err := e.write(e.last); err != nil {
			return err
		}
	}

	rgba := image.NewRGBA(image.Rect(0, 0, e.width, e.height))
	geom.Over(rgba, img, 0, 0)
	if err := e.write(rgba.Pix); err != nil {
		return err
	}
	e.last = rgba.Pix
	e.lastTs = timestampMs
	return nil
}

func (e *Encoder) write(pix []byte) error {
	if _, err := e.stdin.Write(pix); err != nil {
		return fmt.Errorf("write frame: %w: %s", err, e.stderr.String())
	}
	e.written++
	return nil
}

// End waits for ffmpeg and returns the MP4 data.
func (e *Encoder) End() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stdin == nil {
		return nil, ErrNotInitialized
	}
	defer e.cleanup()

	e.stdin.Close()
	e.stdin = nil
	if err := e.cmd.Wait(); err != nil {
		return nil, fmt.Errorf("ffmpeg: %w: %s", err, e.stderr.String())
	}

	data, err := os.ReadFile(e.tempPath)
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}
	return data, nil
}

// Abort kills ffmpeg and removes the partial output.
func (e *Encoder) Abort() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stdin != nil {
		e.stdin.Close()
		e.stdin = nil
		if e.cmd.Process != nil {
			e.cmd.Process.Kill()
		}
		e.cmd.Wait()
	}
	e.cleanup()
}

func (e *Encoder) cleanup() {
	if e.tempPath != "" {
		os.Remove(e.tempPath)
		e.tempPath = ""
	}
	e.last = nil
}
