package dnd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClampVersionBoundsToSupportedRange(t *testing.T) {
	require.Equal(t, uint32(ProtocolVersionMin), clampVersion(1))
	require.Equal(t, uint32(ProtocolVersionMax), clampVersion(9))
	require.Equal(t, uint32(4), clampVersion(4))
}

func TestPackCoordsPutsXInHighHalfAndYInLowHalf(t *testing.T) {
	packed := packCoords(120, 45)
	require.Equal(t, uint16(120), uint16(packed>>16))
	require.Equal(t, uint16(45), uint16(packed))
}

func TestU32BytesRoundTrip(t *testing.T) {
	in := []uint32{1, 0xdeadbeef, 42}
	out := bytesToU32(u32ToBytes(in))
	require.Equal(t, in, out)
}

func TestReleaseAboveZeroRefCountDoesNotTouchTrackerWindow(t *testing.T) {
	p := &Proxy{refCount: 1}
	p.Acquire()
	require.Equal(t, 2, p.refCount)

	err := p.Release()
	require.NoError(t, err)
	require.Equal(t, 1, p.refCount)
}

func TestOnFinishedIsNoOpWithoutAnInFlightDrop(t *testing.T) {
	p := &Proxy{}
	require.NotPanics(t, func() { p.OnFinished() })
}
