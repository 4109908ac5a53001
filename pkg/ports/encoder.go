package ports

import (
	"image"
)

// VideoEncoder abstracts video encoding operations.
// Begin, EncodeFrame and End are called in that order from one goroutine.
type VideoEncoder interface {
	// Begin initializes the encoder with the specified dimensions and frame rate.
	Begin(width, height int, fps float64, opts EncoderOptions) error

	// EncodeFrame encodes a single frame at the specified timestamp.
	// Timestamps must increase strictly.
	EncodeFrame(img image.Image, timestampMs int) error

	// End finalizes encoding and returns the video data.
	End() ([]byte, error)

	// Abort discards a partially written encode. It is safe to call after End
	// or without Begin.
	Abort()
}

// EncoderOptions configures video encoding parameters.
type EncoderOptions struct {
	Bitrate int // Target bitrate in kbps
	Quality int // CRF value: 0-51 for H.264 (lower is higher quality)
}
