package audio

import (
	"encoding/binary"
	"fmt"
	"math"
)

// bytesPerSample is fixed: the shared-memory ring buffer always carries
// 32-bit float samples. There is no 64-bit sample path: neither this
// package nor internal/message converts double-precision audio.
const bytesPerSample = 4

// PlanarSize returns the number of bytes a planar region with the given
// channel and frame counts occupies, the size internal/shm negotiates on
// activate/setBlockSize.
func PlanarSize(channels, frames int) int {
	return channels * frames * bytesPerSample
}

// View reads or writes planar float32 audio into a raw byte region (a
// window into the shared-memory ring buffer, or a heap-allocated slice in
// tests). Channel ch's samples occupy
// region[ch*frames*4 : ch*frames*4 + frames*4], little-endian.
type View struct {
	region   []byte
	channels int
	frames   int
}

// NewView wraps region for the given geometry. It returns an error if
// region is smaller than PlanarSize(channels, frames) requires.
func NewView(region []byte, channels, frames int) (*View, error) {
	need := PlanarSize(channels, frames)
	if len(region) < need {
		return nil, fmt.Errorf("audio: view region too small: need %d bytes, have %d", need, len(region))
	}
	return &View{region: region, channels: channels, frames: frames}, nil
}

// ReadInto decodes the view's raw bytes into dst, which must already be
// sized to the view's geometry.
func (v *View) ReadInto(dst Buffer) error {
	if dst.Channels() != v.channels || dst.Frames() != v.frames {
		return ErrChannelMismatch
	}
	stride := v.frames * bytesPerSample
	for ch := 0; ch < v.channels; ch++ {
		chBytes := v.region[ch*stride : ch*stride+stride]
		for i := 0; i < v.frames; i++ {
			bits := binary.LittleEndian.Uint32(chBytes[i*bytesPerSample:])
			dst[ch][i] = math.Float32frombits(bits)
		}
	}
	return nil
}

// WriteFrom encodes src into the view's raw bytes.
func (v *View) WriteFrom(src Buffer) error {
	if src.Channels() != v.channels || src.Frames() != v.frames {
		return ErrChannelMismatch
	}
	stride := v.frames * bytesPerSample
	for ch := 0; ch < v.channels; ch++ {
		chBytes := v.region[ch*stride : ch*stride+stride]
		for i := 0; i < v.frames; i++ {
			binary.LittleEndian.PutUint32(chBytes[i*bytesPerSample:], math.Float32bits(src[ch][i]))
		}
	}
	return nil
}

// Channels reports the view's negotiated channel count.
func (v *View) Channels() int { return v.channels }

// Frames reports the view's negotiated per-channel frame count.
func (v *View) Frames() int { return v.frames }
