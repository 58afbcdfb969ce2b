//go:build ocr

package ocr

import (
	"context"
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"snaptext/picker"
)

// Tesseract wraps a gosseract client. The underlying TessBaseAPI is not safe
// for concurrent use, so calls are serialized.
type Tesseract struct {
	mu     sync.Mutex
	client *gosseract.Client
	langs  []string
}

// New creates a Tesseract recognizer. langs are Tesseract language codes,
// e.g. "eng" or "eng", "deu"; empty means Tesseract's default.
func New(langs ...string) (*Tesseract, error) {
	client := gosseract.NewClient()
	if len(langs) > 0 {
		if err := client.SetLanguage(langs...); err != nil {
			client.Close()
			return nil, fmt.Errorf("set language: %w", err)
		}
	}
	return &Tesseract{client: client, langs: langs}, nil
}

func (t *Tesseract) Name() string { return "tesseract" }

func (t *Tesseract) Recognize(ctx context.Context, uri string) ([]string, error) {
	path, err := picker.PathFromURI(uri)
	if err != nil {
		return nil, &Error{URI: uri, Err: err}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// A superseded request may have waited on the lock.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := t.client.SetImage(path); err != nil {
		return nil, &Error{URI: uri, Err: fmt.Errorf("set image: %w", err)}
	}
	text, err := t.client.Text()
	if err != nil {
		return nil, &Error{URI: uri, Err: err}
	}
	return SplitLines(text), nil
}

func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}
