package audio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestViewRoundTripsThroughRawBytes(t *testing.T) {
	region := make([]byte, PlanarSize(2, 8))
	v, err := NewView(region, 2, 8)
	require.NoError(t, err)

	src := NewBuffer(2, 8)
	for ch := range src {
		for i := range src[ch] {
			src[ch][i] = float32(ch+1) * float32(i) * 0.01
		}
	}

	require.NoError(t, v.WriteFrom(src))

	dst := NewBuffer(2, 8)
	require.NoError(t, v.ReadInto(dst))
	require.Equal(t, src, dst)
}

func TestNewViewRejectsUndersizedRegion(t *testing.T) {
	region := make([]byte, 4)
	_, err := NewView(region, 2, 8)
	require.Error(t, err)
}

func TestViewChannelsAreDisjointRegions(t *testing.T) {
	region := make([]byte, PlanarSize(2, 4))
	v, err := NewView(region, 2, 4)
	require.NoError(t, err)

	ch0 := NewBuffer(2, 4)
	ch0[0] = []float32{1, 1, 1, 1}
	require.NoError(t, v.WriteFrom(ch0))

	out := NewBuffer(2, 4)
	require.NoError(t, v.ReadInto(out))
	require.Equal(t, []float32{0, 0, 0, 0}, out[1], "writing channel 0 must not bleed into channel 1's region")
}
