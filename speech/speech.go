// Package speech reads text aloud and reports when playback ends.
package speech

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"snaptext/audio"
	"snaptext/log"
)

var ErrNoEngine = errors.New("no speech engine available")

// Engines lists the names accepted by New.
var Engines = []string{"espeak", "say", "openai"}

// Profile is handed through to the engine untouched. Rate 1 is the engine's
// normal speed; Volume is 0..1 and Pan -1..1.
type Profile struct {
	Voice  string
	Rate   float64
	Volume float64
	Pan    float64
	Extra  map[string]string
}

func DefaultProfile() Profile {
	return Profile{Rate: 1, Volume: 1}
}

func (p Profile) playOptions() audio.PlayOptions {
	return audio.PlayOptions{Volume: p.Volume, Pan: p.Pan}
}

func (p Profile) rate() float64 {
	if p.Rate <= 0 {
		return 1
	}
	return p.Rate
}

// Speaker starts speaking text and returns once playback has begun. Each
// successful Speak is followed by exactly one finished notification.
type Speaker interface {
	Name() string
	Speak(ctx context.Context, text string, p Profile) error
	OnFinished(fn func()) (unsubscribe func())
}

// New builds the named engine on top of player.
func New(name, apiKey string, player audio.Player) (Speaker, error) {
	switch name {
	case "espeak", "say":
		c, err := NewCommand(name, player)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "openai":
		if apiKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrNoEngine)
		}
		return NewOpenAI(apiKey, player), nil
	}
	return nil, fmt.Errorf("%w: unknown engine %q", ErrNoEngine, name)
}

// Notifier fans a finished event out to subscribers.
type Notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]func()
}

// Subscribe registers fn. The returned func removes it and may be called
// more than once.
func (n *Notifier) Subscribe(fn func()) func() {
	n.mu.Lock()
	if n.subs == nil {
		n.subs = make(map[int]func())
	}
	id := n.next
	n.next++
	n.subs[id] = fn
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
		})
	}
}

func (n *Notifier) Emit() {
	n.mu.Lock()
	fns := make([]func(), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (n *Notifier) Subscribers() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

// player is shared by the engines that synthesize a clip and then play it.
type player struct {
	out    audio.Player
	notify Notifier
	wg     sync.WaitGroup
}

func (p *player) OnFinished(fn func()) func() {
	return p.notify.Subscribe(fn)
}

// start plays clip in the background and emits finished when it ends,
// whether it drained, failed or was cancelled.
func (p *player) start(ctx context.Context, engine string, clip audio.Clip, prof Profile) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.notify.Emit()
		if err := p.out.Play(ctx, clip, prof.playOptions()); err != nil && ctx.Err() == nil {
			log.Warnf("%s playback: %v", engine, err)
		}
	}()
}

// Wait blocks until background playback has finished.
func (p *player) Wait() {
	p.wg.Wait()
}
