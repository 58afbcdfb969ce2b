// Package audio plays decoded PCM clips on the default output device.
package audio

import (
	"context"
	"strings"
	"time"
)

// Clip is interleaved signed 16-bit PCM.
type Clip struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

func (c Clip) Frames() int {
	if c.Channels <= 0 {
		return 0
	}
	return len(c.Samples) / c.Channels
}

func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.Frames()) * time.Second / time.Duration(c.SampleRate)
}

// Stereo returns c as two interleaved channels. Mono is duplicated; anything
// wider keeps its first two channels.
func (c Clip) Stereo() Clip {
	if c.Channels == 2 {
		return c
	}
	n := c.Frames()
	out := make([]int16, n*2)
	for i := 0; i < n; i++ {
		l := c.Samples[i*c.Channels]
		r := l
		if c.Channels > 1 {
			r = c.Samples[i*c.Channels+1]
		}
		out[i*2] = l
		out[i*2+1] = r
	}
	return Clip{Samples: out, SampleRate: c.SampleRate, Channels: 2}
}

// PlayOptions carries the output gain. Volume is 0..1, Pan is -1 (left)
// to 1 (right).
type PlayOptions struct {
	Volume float64
	Pan    float64
}

// Gains splits volume and pan into per-channel linear gains.
func (o PlayOptions) Gains() (left, right float64) {
	v := clamp(o.Volume, 0, 1)
	p := clamp(o.Pan, -1, 1)
	left, right = v, v
	if p > 0 {
		left *= 1 - p
	} else if p < 0 {
		right *= 1 + p
	}
	return left, right
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Player blocks in Play until the clip has drained or ctx is done.
type Player interface {
	Play(ctx context.Context, clip Clip, opts PlayOptions) error
	Close()
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

var btKeywords = []string{
	"airpods", "beats", "bose", "wh-1000", "wf-1000",
	"sony wh-", "sony wf-",
	"jabra", "galaxy buds", "pixel buds", "powerbeats",
	"jbl ", "sennheiser momentum", "plantronics",
	"tozo", "anker soundcore", "skullcandy",
	"bluetooth", " bt ", " bt)", " bt]",
}

// IsBluetooth guesses from the device name whether output goes over
// Bluetooth, where playback start is noticeably delayed.
func IsBluetooth(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range btKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
