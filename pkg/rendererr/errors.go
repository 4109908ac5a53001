// Package rendererr defines the error taxonomy shared by all rendering stages.
package rendererr

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidGeometry is returned for malformed element dimensions or crop rectangles.
	ErrInvalidGeometry = errors.New("rendererr: invalid geometry")

	// ErrSourceUnavailable is returned when an asset cannot be fetched or decoded.
	ErrSourceUnavailable = errors.New("rendererr: source unavailable")

	// ErrEncodingFailure is returned when the video encoder fails. It is always fatal.
	ErrEncodingFailure = errors.New("rendererr: encoding failure")

	// ErrInvalidDocument is returned for structural document problems
	// (no pages, unreadable root dimensions).
	ErrInvalidDocument = errors.New("rendererr: invalid document")

	// ErrCancelled is returned when a render is cancelled between elements or frames.
	ErrCancelled = errors.New("rendererr: render cancelled")
)

// StageError identifies the stage, page and element where a fatal error happened.
type StageError struct {
	Stage   string
	Page    int // -1 when not page specific
	Element string
	Err     error
}

func (e *StageError) Error() string {
	switch {
	case e.Page >= 0 && e.Element != "":
		return fmt.Sprintf("%s: page %d: element %q: %v", e.Stage, e.Page, e.Element, e.Err)
	case e.Page >= 0:
		return fmt.Sprintf("%s: page %d: %v", e.Stage, e.Page, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Wrap builds a StageError. A nil err returns nil.
func Wrap(stage string, page int, element string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Page: page, Element: element, Err: err}
}

// Cancelled converts a context error into ErrCancelled while keeping the cause.
func Cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return nil
}
