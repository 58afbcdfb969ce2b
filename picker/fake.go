package picker

import (
	"context"
	"sync"
)

type fakeResponse struct {
	result Result
	err    error
}

// Fake serves queued results to both library and camera requests. An empty
// queue answers with a cancellation.
type Fake struct {
	mu    sync.Mutex
	queue []fakeResponse
	calls int
	last  Options
}

func NewFake() *Fake {
	return &Fake{}
}

func (f *Fake) Push(r Result, err error) {
	f.mu.Lock()
	f.queue = append(f.queue, fakeResponse{result: r, err: err})
	f.mu.Unlock()
}

// PushAsset queues a successful single-asset result.
func (f *Fake) PushAsset(a Asset) {
	f.Push(Result{Assets: []Asset{a}}, nil)
}

func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *Fake) LastOptions() Options {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func (f *Fake) next(ctx context.Context, opts Options) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = opts
	if len(f.queue) == 0 {
		return Cancelled, nil
	}
	r := f.queue[0]
	f.queue = f.queue[1:]
	return r.result, r.err
}

func (f *Fake) PickFromLibrary(ctx context.Context, opts Options) (Result, error) {
	return f.next(ctx, opts)
}

func (f *Fake) Capture(ctx context.Context, opts Options) (Result, error) {
	return f.next(ctx, opts)
}
