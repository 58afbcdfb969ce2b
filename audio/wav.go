package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

var ErrNotWAV = errors.New("not a RIFF/WAVE stream")

// ParseWAV decodes 16-bit PCM WAV data. Streaming writers such as
// espeak --stdout leave the RIFF and data sizes at a placeholder, so a
// chunk that claims more bytes than remain is clamped to the end of data.
func ParseWAV(data []byte) (Clip, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Clip{}, ErrNotWAV
	}

	var (
		clip    Clip
		haveFmt bool
		bits    int
	)
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		end := body + size
		if size < 0 || end > len(data) {
			end = len(data)
		}

		switch id {
		case "fmt ":
			if end-body < 16 {
				return Clip{}, fmt.Errorf("wav: short fmt chunk (%d bytes)", end-body)
			}
			format := binary.LittleEndian.Uint16(data[body:])
			if format != wavFormatPCM && format != wavFormatExtensible {
				return Clip{}, fmt.Errorf("wav: unsupported format tag %#x", format)
			}
			clip.Channels = int(binary.LittleEndian.Uint16(data[body+2:]))
			clip.SampleRate = int(binary.LittleEndian.Uint32(data[body+4:]))
			bits = int(binary.LittleEndian.Uint16(data[body+14:]))
			if bits != 16 {
				return Clip{}, fmt.Errorf("wav: %d-bit samples not supported", bits)
			}
			if clip.Channels < 1 {
				return Clip{}, fmt.Errorf("wav: invalid channel count %d", clip.Channels)
			}
			haveFmt = true
		case "data":
			if !haveFmt {
				return Clip{}, errors.New("wav: data chunk before fmt chunk")
			}
			pcm := data[body:end]
			clip.Samples = make([]int16, len(pcm)/2)
			for i := range clip.Samples {
				clip.Samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
			}
			// drop a trailing partial frame
			clip.Samples = clip.Samples[:len(clip.Samples)-len(clip.Samples)%clip.Channels]
			return clip, nil
		}

		// chunks are word aligned
		pos = end + (end-body)%2
	}
	if !haveFmt {
		return Clip{}, errors.New("wav: missing fmt chunk")
	}
	return Clip{}, errors.New("wav: missing data chunk")
}

// EncodeWAV writes clip as a canonical 44-byte-header PCM WAV.
func EncodeWAV(clip Clip) []byte {
	const headerSize = 44
	dataLen := len(clip.Samples) * 2
	buf := make([]byte, headerSize+dataLen)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:], uint32(36+dataLen))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:], 16)
	binary.LittleEndian.PutUint16(buf[20:], wavFormatPCM)
	binary.LittleEndian.PutUint16(buf[22:], uint16(clip.Channels))
	binary.LittleEndian.PutUint32(buf[24:], uint32(clip.SampleRate))
	binary.LittleEndian.PutUint32(buf[28:], uint32(clip.SampleRate*clip.Channels*2))
	binary.LittleEndian.PutUint16(buf[32:], uint16(clip.Channels*2))
	binary.LittleEndian.PutUint16(buf[34:], 16)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:], uint32(dataLen))
	for i, s := range clip.Samples {
		binary.LittleEndian.PutUint16(buf[headerSize+i*2:], uint16(s))
	}
	return buf
}
