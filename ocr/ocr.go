// Package ocr turns an image URI into recognized lines of text.
//
// The Tesseract engine is compiled in with the "ocr" build tag and needs the
// Tesseract library installed. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr libtesseract-dev
package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotEnabled is returned when OCR support was not compiled in.
var ErrNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, uri string) ([]string, error)
}

// Error reports a recognition failure for a specific image.
type Error struct {
	URI string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("recognize %s: %v", e.URI, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// SplitLines breaks engine output into trimmed, non-blank lines. Order is
// preserved; a result with no text yields an empty, non-nil slice.
func SplitLines(text string) []string {
	lines := []string{}
	for _, l := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

var errUnknownImage = errors.New("unreadable image")
