package h264encoder

import "errors"

var (
	// ErrNotInitialized is returned when encoder methods are called before Begin.
	ErrNotInitialized = errors.New("h264encoder: encoder not initialized")

	// ErrFFmpegNotFound is returned when no ffmpeg binary can be located.
	ErrFFmpegNotFound = errors.New("h264encoder: ffmpeg not found")

	// ErrNonMonotonic is returned when a frame does not follow the previous one.
	ErrNonMonotonic = errors.New("h264encoder: timestamps must increase")
)
