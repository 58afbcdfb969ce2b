//go:build !ocr

package ocr

import "context"

// Tesseract is a stub used when the "ocr" build tag is not set.
type Tesseract struct{}

// New returns ErrNotEnabled. Rebuild with -tags ocr to enable Tesseract.
func New(langs ...string) (*Tesseract, error) {
	return nil, ErrNotEnabled
}

func (t *Tesseract) Name() string { return "tesseract" }

func (t *Tesseract) Recognize(context.Context, string) ([]string, error) {
	return nil, ErrNotEnabled
}

// Close is safe on a nil stub.
func (t *Tesseract) Close() error { return nil }
