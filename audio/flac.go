package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

const flacBlockSize = 4096

// DecodeFLAC reads a whole FLAC stream into a 16-bit clip. Wider samples
// are shifted down, narrower ones up.
func DecodeFLAC(r io.Reader) (Clip, error) {
	stream, err := flac.New(r)
	if err != nil {
		return Clip{}, fmt.Errorf("flac: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	shift := int(info.BitsPerSample) - 16
	clip := Clip{SampleRate: int(info.SampleRate), Channels: channels}
	if info.NSamples > 0 {
		clip.Samples = make([]int16, 0, int(info.NSamples)*channels)
	}

	for {
		f, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Clip{}, fmt.Errorf("flac frame: %w", err)
		}
		if len(f.Subframes) < channels {
			return Clip{}, fmt.Errorf("flac frame: %d subframes for %d channels", len(f.Subframes), channels)
		}
		for i := 0; i < int(f.BlockSize); i++ {
			for c := 0; c < channels; c++ {
				s := f.Subframes[c].Samples[i]
				if shift > 0 {
					s >>= shift
				} else if shift < 0 {
					s <<= -shift
				}
				clip.Samples = append(clip.Samples, int16(s))
			}
		}
	}
	return clip, nil
}

// EncodeFLAC writes clip as verbatim-coded 16-bit FLAC.
func EncodeFLAC(clip Clip) ([]byte, error) {
	var channels frame.Channels
	switch clip.Channels {
	case 1:
		channels = frame.ChannelsMono
	case 2:
		channels = frame.ChannelsLR
	default:
		return nil, fmt.Errorf("flac: %d channels not supported", clip.Channels)
	}

	var buf bytes.Buffer
	info := &meta.StreamInfo{
		BlockSizeMin:  flacBlockSize,
		BlockSizeMax:  flacBlockSize,
		SampleRate:    uint32(clip.SampleRate),
		NChannels:     uint8(clip.Channels),
		BitsPerSample: 16,
		NSamples:      uint64(clip.Frames()),
	}
	enc, err := flac.NewEncoder(&buf, info)
	if err != nil {
		return nil, fmt.Errorf("creating flac encoder: %w", err)
	}

	frames := clip.Frames()
	for start := 0; start < frames; start += flacBlockSize {
		n := min(flacBlockSize, frames-start)
		subframes := make([]*frame.Subframe, clip.Channels)
		for c := range subframes {
			samples := make([]int32, n)
			for i := range samples {
				samples[i] = int32(clip.Samples[(start+i)*clip.Channels+c])
			}
			subframes[c] = &frame.Subframe{
				SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
				Samples:   samples,
				NSamples:  n,
			}
		}
		f := &frame.Frame{
			Header: frame.Header{
				BlockSize:     uint16(n),
				SampleRate:    uint32(clip.SampleRate),
				Channels:      channels,
				BitsPerSample: 16,
			},
			Subframes: subframes,
		}
		if err := enc.WriteFrame(f); err != nil {
			return nil, fmt.Errorf("writing flac frame: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
