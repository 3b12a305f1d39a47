package wirestate

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStreamWriteThenReadRoundTrips(t *testing.T) {
	s := NewStream()
	n, err := s.Write([]byte("plugin state payload"))
	require.NoError(t, err)
	require.Equal(t, 20, n)

	replay := NewStreamFromBytes(s.Bytes())
	out := make([]byte, 64)
	n, err = replay.Read(out)
	require.NoError(t, err)
	require.Equal(t, "plugin state payload", string(out[:n]))

	_, err = replay.Read(out)
	require.ErrorIs(t, err, io.EOF)
}

func TestStreamRejectsOversizedChunk(t *testing.T) {
	s := &Stream{buf: make([]byte, MaxChunkSize-1)}
	_, err := s.Write([]byte{1, 2})
	require.ErrorIs(t, err, ErrChunkTooLarge)
}

func TestReaderWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteUint32(42))
	require.NoError(t, w.WriteUint64(0xdeadbeefcafef00d))
	require.NoError(t, w.WriteFloat64(3.14159))
	require.NoError(t, w.WriteString("effGetChunk"))
	require.NoError(t, w.Error())

	r := NewReader(&buf)
	u32, err := r.ReadUint32()
	require.NoError(t, err)
	require.Equal(t, uint32(42), u32)

	u64, err := r.ReadUint64()
	require.NoError(t, err)
	require.Equal(t, uint64(0xdeadbeefcafef00d), u64)

	f64, err := r.ReadFloat64()
	require.NoError(t, err)
	require.InDelta(t, 3.14159, f64, 1e-9)

	str, err := r.ReadString()
	require.NoError(t, err)
	require.Equal(t, "effGetChunk", str)
}

func TestReaderStickyErrorShortCircuitsFurtherReads(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	_, err := r.ReadUint32()
	require.Error(t, err)

	_, err2 := r.ReadUint64()
	require.Equal(t, err, err2, "once an error is sticky, subsequent calls must return the same error without touching the underlying reader")
}
