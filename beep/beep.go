// Package beep plays short confirmation and error tones.
package beep

import (
	"context"
	"math"
	"sync"
	"sync/atomic"

	"snaptext/audio"
)

var disabled atomic.Bool

// Disable silences every Player, e.g. in headless test mode.
func Disable() { disabled.Store(true) }

const (
	sampleRate = 44100

	// Copy tick: high pitch, short
	copyFreq   = 1200
	copyVolume = 0.5
	copyDecay  = 60

	// Error beep: low pitch double-beep
	errorFreq   = 350
	errorVolume = 0.6
	errorDecay  = 30
)

type Player struct {
	out       audio.Player
	tick      audio.Clip
	errorBeep audio.Clip
	wg        sync.WaitGroup
}

func New(out audio.Player) *Player {
	return &Player{
		out:       out,
		tick:      audio.Clip{Samples: generateTick(sampleRate, copyFreq, 0.2, copyVolume, copyDecay), SampleRate: sampleRate, Channels: 2},
		errorBeep: audio.Clip{Samples: generateDoubleBeep(sampleRate, errorFreq, 0.08, 0.05, errorVolume, errorDecay), SampleRate: sampleRate, Channels: 2},
	}
}

func generateTick(sampleRate int, freq float64, duration float64, volume float64, decay float64) []int16 {
	n := int(float64(sampleRate) * duration)
	samples := make([]int16, n*2)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(sampleRate)
		envelope := math.Exp(-t * decay)
		s := int16(math.Sin(2*math.Pi*freq*t) * 32767 * volume * envelope)
		samples[i*2] = s
		samples[i*2+1] = s
	}
	return samples
}

func generateDoubleBeep(sampleRate int, freq float64, beepDur float64, gapDur float64, volume float64, decay float64) []int16 {
	beep := generateTick(sampleRate, freq, beepDur, volume, decay)
	gap := make([]int16, int(float64(sampleRate)*gapDur)*2)
	result := make([]int16, 0, len(beep)*2+len(gap))
	result = append(result, beep...)
	result = append(result, gap...)
	result = append(result, beep...)
	return result
}

func (p *Player) play(clip audio.Clip) {
	if p.out == nil || disabled.Load() {
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.out.Play(context.Background(), clip, audio.PlayOptions{Volume: 1})
	}()
}

// Copied plays the confirmation tick.
func (p *Player) Copied() {
	if p != nil {
		p.play(p.tick)
	}
}

// Failed plays the error double-beep.
func (p *Player) Failed() {
	if p != nil {
		p.play(p.errorBeep)
	}
}

// Wait blocks until queued tones have played.
func (p *Player) Wait() {
	if p != nil {
		p.wg.Wait()
	}
}
