package shm

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func randomName(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("plugbridge-shm-test-%d", rand.Int63())
}

func TestCreateOpenRemapRoundTrip(t *testing.T) {
	name := randomName(t)
	geom := Geometry{SampleSize: SampleSize, MaxFrames: 64, Inputs: 2, Outputs: 2}

	native, err := Create(name, geom)
	require.NoError(t, err)
	defer native.Close(true)

	worker, err := Open(name, geom)
	require.NoError(t, err)
	defer worker.Close(false)

	in, err := native.Inputs()
	require.NoError(t, err)

	buf := make([][]float32, geom.Inputs)
	for ch := range buf {
		buf[ch] = make([]float32, geom.MaxFrames)
		for i := range buf[ch] {
			buf[ch][i] = float32(ch+1) * 0.5
		}
	}
	require.NoError(t, in.WriteFrom(buf))

	workerIn, err := worker.Inputs()
	require.NoError(t, err)
	out := make([][]float32, geom.Inputs)
	for ch := range out {
		out[ch] = make([]float32, geom.MaxFrames)
	}
	require.NoError(t, workerIn.ReadInto(out))
	require.Equal(t, buf, out, "writes on the native mapping must be visible through the worker mapping")
}

func TestRemapToLargerGeometryPreservesAccessibility(t *testing.T) {
	name := randomName(t)
	small := Geometry{SampleSize: SampleSize, MaxFrames: 32, Inputs: 1, Outputs: 1}
	large := Geometry{SampleSize: SampleSize, MaxFrames: 256, Inputs: 2, Outputs: 2}

	s, err := Create(name, small)
	require.NoError(t, err)
	defer s.Close(true)

	require.NoError(t, s.Remap(large))
	require.Equal(t, large, s.Geometry())

	in, err := s.Inputs()
	require.NoError(t, err)
	require.Equal(t, 2, in.Channels())
	require.Equal(t, 256, in.Frames())
}

func TestCloseUnmapsAndUnlinks(t *testing.T) {
	name := randomName(t)
	geom := Geometry{SampleSize: SampleSize, MaxFrames: 16, Inputs: 1, Outputs: 1}

	s, err := Create(name, geom)
	require.NoError(t, err)
	require.NoError(t, s.Close(true))

	_, err = Open(name, geom)
	require.Error(t, err, "opening after an unlinking close must fail")
}

func TestGeometrySizeMatchesChannelLayout(t *testing.T) {
	geom := Geometry{SampleSize: 4, MaxFrames: 128, Inputs: 2, Outputs: 4}
	require.Equal(t, int64(6*128*4), geom.Size())
}

func TestOutputsBeforeMapReturnsErrNotMapped(t *testing.T) {
	s := &Segment{}
	_, err := s.Outputs()
	require.ErrorIs(t, err, ErrNotMapped)
}
