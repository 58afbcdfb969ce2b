package ocr

import (
	"context"
	"sync"
)

// Fake answers from a per-URI table. Unknown URIs fail with an *Error.
// Held URIs block until released, which lets tests finish requests out of
// order. The context is ignored so that superseded calls still complete.
type Fake struct {
	mu      sync.Mutex
	results map[string][]string
	errs    map[string]error
	gates   map[string]chan struct{}
	calls   []string
}

func NewFake() *Fake {
	return &Fake{
		results: make(map[string][]string),
		errs:    make(map[string]error),
		gates:   make(map[string]chan struct{}),
	}
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) Set(uri string, lines ...string) {
	f.mu.Lock()
	f.results[uri] = append([]string{}, lines...)
	f.mu.Unlock()
}

// Fail makes uri return err; a nil err clears it.
func (f *Fake) Fail(uri string, err error) {
	f.mu.Lock()
	if err == nil {
		delete(f.errs, uri)
	} else {
		f.errs[uri] = err
	}
	f.mu.Unlock()
}

// Hold makes calls for uri block until the returned release func runs.
func (f *Fake) Hold(uri string) (release func()) {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[uri] = ch
	f.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.calls...)
}

func (f *Fake) Recognize(ctx context.Context, uri string) ([]string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, uri)
	gate := f.gates[uri]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[uri]; ok {
		return nil, &Error{URI: uri, Err: err}
	}
	lines, ok := f.results[uri]
	if !ok {
		return nil, &Error{URI: uri, Err: errUnknownImage}
	}
	return append([]string{}, lines...), nil
}
