package audio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyGainAndPeak(t *testing.T) {
	buf := NewBuffer(2, 4)
	buf[0] = []float32{0.1, 0.2, 0.3, 0.4}
	buf[1] = []float32{-0.5, 0.1, 0.1, 0.1}

	ApplyGain(buf, 2)
	require.InDelta(t, float32(1.0), Peak(buf), 1e-6)
}

func TestCopyRequiresMatchingShape(t *testing.T) {
	dst := NewBuffer(2, 4)
	src := NewBuffer(1, 4)
	require.ErrorIs(t, Copy(dst, src), ErrChannelMismatch)
}

func TestMixAccumulates(t *testing.T) {
	dst := NewBuffer(1, 2)
	dst[0] = []float32{1, 1}
	src := NewBuffer(1, 2)
	src[0] = []float32{1, -1}

	require.NoError(t, Mix(dst, src, 0.5))
	require.Equal(t, []float32{1.5, 0.5}, dst[0])
}

func TestIsSilent(t *testing.T) {
	buf := NewBuffer(2, 4)
	require.True(t, IsSilent(buf, 0))
	buf[1][2] = 0.01
	require.False(t, IsSilent(buf, 0.001))
	require.True(t, IsSilent(buf, 0.1))
}

func TestClearRangeRejectsOutOfBounds(t *testing.T) {
	buf := NewBuffer(1, 4)
	require.ErrorIs(t, buf.ClearRange(-1, 2), ErrInvalidBuffer)
	require.ErrorIs(t, buf.ClearRange(0, 5), ErrInvalidBuffer)
}
