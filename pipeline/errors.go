package pipeline

import (
	"context"
	"errors"
	"fmt"
)

type Kind int

const (
	// KindCancelled covers user cancellation and superseded requests.
	KindCancelled Kind = iota + 1
	// KindCapability is a failed picker, OCR, clipboard or speech call.
	KindCapability
	// KindInvalidGeometry means the display height could not be derived.
	KindInvalidGeometry
)

func (k Kind) String() string {
	switch k {
	case KindCancelled:
		return "cancelled"
	case KindCapability:
		return "capability"
	case KindInvalidGeometry:
		return "invalid_geometry"
	}
	return "unknown"
}

var (
	// ErrUnavailable is returned when an action's guard does not hold, e.g.
	// Copy with no text or Speak while already playing.
	ErrUnavailable = errors.New("action unavailable")
	ErrClosed      = errors.New("pipeline closed")
	// ErrInvalidGeometry reports missing or non-positive dimensions.
	ErrInvalidGeometry = errors.New("image dimensions unknown")
	// ErrNoSource is returned when no library or camera is wired.
	ErrNoSource = errors.New("image source not configured")

	errNoOCR = errors.New("no OCR engine configured")
)

type Error struct {
	Kind Kind
	Op   string // "library", "camera", "recognize", "copy", "speak"
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the kind of err, treating context cancellation as
// KindCancelled and anything else unrecognized as KindCapability.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindCancelled
	}
	if errors.Is(err, ErrInvalidGeometry) {
		return KindInvalidGeometry
	}
	return KindCapability
}
