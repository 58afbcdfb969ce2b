package speech

import (
	"context"
	"sync"
	"time"
)

type Spoken struct {
	Text    string
	Profile Profile
}

// Fake records utterances. By default finished fires only when Finish is
// called; AutoFinish makes it fire on its own after a delay.
type Fake struct {
	notify Notifier

	mu     sync.Mutex
	spoken []Spoken
	err    error
	auto   bool
	delay  time.Duration
}

func NewFake() *Fake {
	return &Fake{}
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) AutoFinish(delay time.Duration) {
	f.mu.Lock()
	f.auto, f.delay = true, delay
	f.mu.Unlock()
}

// FailWith makes subsequent Speak calls return err; nil clears it.
func (f *Fake) FailWith(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *Fake) Speak(ctx context.Context, text string, p Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	if f.err != nil {
		err := f.err
		f.mu.Unlock()
		return err
	}
	f.spoken = append(f.spoken, Spoken{Text: text, Profile: p})
	auto, delay := f.auto, f.delay
	f.mu.Unlock()

	if auto {
		go func() {
			time.Sleep(delay)
			f.notify.Emit()
		}()
	}
	return nil
}

func (f *Fake) OnFinished(fn func()) func() {
	return f.notify.Subscribe(fn)
}

// Finish delivers a finished notification now.
func (f *Fake) Finish() {
	f.notify.Emit()
}

func (f *Fake) Spoken() []Spoken {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Spoken{}, f.spoken...)
}

func (f *Fake) Subscribers() int {
	return f.notify.Subscribers()
}
