//go:build !linux

package audio

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
)

type malgoPlayer struct {
	mu  sync.Mutex
	ctx *malgo.AllocatedContext
}

func NewPlayer() (Player, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("malgo: %w", err)
	}
	return &malgoPlayer{ctx: ctx}, nil
}

// scale applies per-channel gain in software; malgo has no stream volume.
func scale(samples []int16, left, right float64) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		g := left
		if i%2 == 1 {
			g = right
		}
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(int16(float64(s)*g)))
	}
	return buf
}

func (m *malgoPlayer) Play(ctx context.Context, clip Clip, opts PlayOptions) error {
	if clip.SampleRate <= 0 || clip.Frames() == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx == nil {
		return fmt.Errorf("malgo: player closed")
	}

	left, right := opts.Gains()
	data := scale(clip.Stereo().Samples, left, right)

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.Playback.Format = malgo.FormatS16
	config.Playback.Channels = 2
	config.SampleRate = uint32(clip.SampleRate)

	var (
		pos  int
		once sync.Once
		done = make(chan struct{})
	)
	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, _ uint32) {
			n := copy(out, data[pos:])
			pos += n
			for i := n; i < len(out); i++ {
				out[i] = 0
			}
			if pos >= len(data) {
				once.Do(func() { close(done) })
			}
		},
	}

	dev, err := malgo.InitDevice(m.ctx.Context, config, callbacks)
	if err != nil {
		return fmt.Errorf("malgo device: %w", err)
	}
	defer dev.Uninit()
	if err := dev.Start(); err != nil {
		return fmt.Errorf("malgo start: %w", err)
	}
	select {
	case <-done:
	case <-ctx.Done():
	}
	dev.Stop()
	return ctx.Err()
}

func (m *malgoPlayer) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx != nil {
		m.ctx.Uninit()
		m.ctx.Free()
		m.ctx = nil
	}
}

// OutputDevices lists the playback devices miniaudio can see.
func OutputDevices() ([]DeviceInfo, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("malgo: %w", err)
	}
	defer func() {
		ctx.Uninit()
		ctx.Free()
	}()
	devices, err := ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("malgo devices: %w", err)
	}
	var result []DeviceInfo
	for _, d := range devices {
		result = append(result, DeviceInfo{
			ID:   hex.EncodeToString(d.ID[:]),
			Name: d.Name(),
		})
	}
	return result, nil
}
