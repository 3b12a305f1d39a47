package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// FrameWriter writes length-prefixed frames to an underlying connection.
// A frame is `<u64 length><bytes>`: the receiver reads the length, resizes
// its scratch buffer, and reads exactly that many bytes before decoding.
// FrameWriter itself does no locking; callers serialize writers per
// direction of each socket with their own mutex (see internal/transport).
type FrameWriter struct {
	w        io.Writer
	lenBytes [8]byte
}

func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

// WriteFrame writes payload prefixed with its length. payload is typically
// an Encoder's Bytes().
func (fw *FrameWriter) WriteFrame(payload []byte) error {
	binary.LittleEndian.PutUint64(fw.lenBytes[:], uint64(len(payload)))
	if _, err := fw.w.Write(fw.lenBytes[:]); err != nil {
		return fmt.Errorf("%w: writing length prefix: %v", ErrShortRead, err)
	}
	if len(payload) == 0 {
		return nil
	}
	if _, err := fw.w.Write(payload); err != nil {
		return fmt.Errorf("%w: writing payload: %v", ErrShortRead, err)
	}
	return nil
}

// FrameReader reads length-prefixed frames, reusing its scratch buffer
// across calls so the hot audio path does not allocate per message.
type FrameReader struct {
	r       io.Reader
	lenB    [8]byte
	scratch []byte
}

func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: r}
}

// ReadFrame blocks until a full frame has arrived and returns a slice into
// the reader's internal scratch buffer. The slice is only valid until the
// next call to ReadFrame on this reader; decode it (or copy what you need)
// before reading again.
func (fr *FrameReader) ReadFrame() ([]byte, error) {
	if _, err := io.ReadFull(fr.r, fr.lenB[:]); err != nil {
		return nil, fmt.Errorf("%w: reading length prefix: %v", ErrShortRead, err)
	}
	n := binary.LittleEndian.Uint64(fr.lenB[:])
	if n > uint64(MaxFrameSize) {
		return nil, ErrFrameTooLarge
	}
	if cap(fr.scratch) < int(n) {
		fr.scratch = make([]byte, n)
	} else {
		fr.scratch = fr.scratch[:n]
	}
	if n == 0 {
		return fr.scratch, nil
	}
	if _, err := io.ReadFull(fr.r, fr.scratch); err != nil {
		return nil, fmt.Errorf("%w: reading payload: %v", ErrShortRead, err)
	}
	return fr.scratch, nil
}
