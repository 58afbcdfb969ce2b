package audio

import (
	"context"
	"sync"
)

type Played struct {
	Clip Clip
	Opts PlayOptions
}

// FakePlayer records clips instead of playing them. While held, Play blocks
// until Release or context cancellation.
type FakePlayer struct {
	mu     sync.Mutex
	played []Played
	hold   chan struct{}
	closed bool
}

func NewFakePlayer() *FakePlayer {
	return &FakePlayer{}
}

func (f *FakePlayer) Hold() {
	f.mu.Lock()
	if f.hold == nil {
		f.hold = make(chan struct{})
	}
	f.mu.Unlock()
}

func (f *FakePlayer) Release() {
	f.mu.Lock()
	if f.hold != nil {
		close(f.hold)
		f.hold = nil
	}
	f.mu.Unlock()
}

func (f *FakePlayer) Play(ctx context.Context, clip Clip, opts PlayOptions) error {
	f.mu.Lock()
	f.played = append(f.played, Played{Clip: clip, Opts: opts})
	hold := f.hold
	f.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return ctx.Err()
}

func (f *FakePlayer) Played() []Played {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Played{}, f.played...)
}

func (f *FakePlayer) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *FakePlayer) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
