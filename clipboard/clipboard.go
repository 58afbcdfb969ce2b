// Package clipboard writes recognized text to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"sync"

	cb "github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no clipboard utility is available (on
// Linux this means none of xclip, xsel or wl-copy is installed).
var ErrUnsupported = errors.New("clipboard unsupported on this system")

// System is the OS clipboard.
type System struct{}

func (System) SetText(text string) error {
	if cb.Unsupported {
		return ErrUnsupported
	}
	if err := cb.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard write: %w", err)
	}
	return nil
}

func (System) Read() (string, error) {
	if cb.Unsupported {
		return "", ErrUnsupported
	}
	return cb.ReadAll()
}

// Fake keeps the last written text in memory.
type Fake struct {
	mu     sync.Mutex
	text   string
	writes int
	err    error
}

func (f *Fake) SetText(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.text = text
	f.writes++
	return nil
}

func (f *Fake) Read() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text, nil
}

// FailWith makes SetText return err; nil clears it.
func (f *Fake) FailWith(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *Fake) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}
