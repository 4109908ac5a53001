// Package smartencoder selects a video encoder for the requested codec and
// falls back to pure Go Motion-JPEG when ffmpeg is missing.
package smartencoder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/user/sceneshow/pkg/adapters/h264encoder"
	"github.com/user/sceneshow/pkg/adapters/mjpegencoder"
	"github.com/user/sceneshow/pkg/ports"
)

// Codec represents the requested codec.
type Codec string

const (
	// CodecAuto picks H.264 when ffmpeg is available, MJPEG otherwise.
	CodecAuto Codec = "auto"
	// CodecH264 represents H.264/AVC through ffmpeg.
	CodecH264 Codec = "h264"
	// CodecMJPEG represents Motion-JPEG in MP4.
	CodecMJPEG Codec = "mjpeg"
)

// ParseCodec normalizes a codec name. Empty means auto.
func ParseCodec(s string) (Codec, error) {
	switch c := Codec(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return CodecAuto, nil
	case CodecAuto, CodecH264, CodecMJPEG:
		return c, nil
	case "avc", "x264":
		return CodecH264, nil
	}
	return "", fmt.Errorf("unknown codec %q", s)
}

// Backend represents the encoding backend used.
type Backend string

const (
	// BackendFFmpeg is the external ffmpeg process.
	BackendFFmpeg Backend = "ffmpeg"
	// BackendNative is the in-process Go encoder.
	BackendNative Backend = "native"
)

// Info contains information about the selected encoder.
type Info struct {
	Codec          Codec
	Backend        Backend
	RequestedCodec Codec
	FallbackUsed   bool
}

// Options configures encoder selection.
type Options struct {
	// FFmpegPath is an optional custom path to the ffmpeg binary.
	FFmpegPath string
	// AllowFallback lets an explicit h264 request fall back to MJPEG. auto
	// always falls back.
	AllowFallback bool
	// Logger receives fallback warnings. May be nil.
	Logger ports.Logger
}

// ErrNoEncoderAvailable is returned when the requested codec cannot be used.
var ErrNoEncoderAvailable = errors.New("smartencoder: no encoder available")

// New creates a video encoder for the requested codec.
func New(requested Codec, opts Options) (ports.VideoEncoder, Info, error) {
	if requested == "" {
		requested = CodecAuto
	}
	info := Info{RequestedCodec: requested}

	switch requested {
	case CodecMJPEG:
		info.Codec, info.Backend = CodecMJPEG, BackendNative
		return mjpegencoder.New(), info, nil
	case CodecH264, CodecAuto:
	default:
		return nil, Info{}, fmt.Errorf("%w: unknown codec %q", ErrNoEncoderAvailable, requested)
	}

	if h264encoder.IsAvailable(opts.FFmpegPath) {
		info.Codec, info.Backend = CodecH264, BackendFFmpeg
		return h264encoder.New(opts.FFmpegPath), info, nil
	}

	if requested == CodecH264 && !opts.AllowFallback {
		return nil, Info{}, fmt.Errorf("%w: %w", ErrNoEncoderAvailable, h264encoder.ErrFFmpegNotFound)
	}

	if opts.Logger != nil {
		opts.Logger.Warn("ffmpeg not available, falling back to MJPEG")
	}
	info.Codec, info.Backend, info.FallbackUsed = CodecMJPEG, BackendNative, true
	return mjpegencoder.New(), info, nil
}

// IsH264Available reports whether ffmpeg H.264 encoding can be used.
func IsH264Available(ffmpegPath string) bool {
	return h264encoder.IsAvailable(ffmpegPath)
}
