// Package wirestate is the plugin state-chunk stream abstraction
// (spec.md §3's Stream data model): a growable byte buffer with a read
// cursor that buffers an entire clap_istream_t/clap_ostream_t,
// IBStream, or VST2 effGetChunk/effSetChunk payload on one side before
// shipping it across the wire as a single length-prefixed blob. Adapted
// from the teacher's pkg/state/stream.go InputStream/OutputStream, with
// the CLAP cgo stream adapters (ClapReader/ClapWriter) dropped: nothing
// on this side of the bridge touches a clap_istream_t/clap_ostream_t C
// struct directly, so the buffering the teacher did around that pointer
// is replaced by Stream below, grounded on yabridge's
// clap::stream::Stream (original_source/src/common/serialization/clap/stream.h),
// which also buffers the whole chunk into a vector<uint8_t> with a
// read-position cursor rather than streaming byte-by-byte.
package wirestate

import (
	"encoding/binary"
	"errors"
	"io"
)

// MaxChunkSize caps a single state chunk, mirroring yabridge's 50 MiB
// container limit on the same stream type.
const MaxChunkSize = 50 << 20

var (
	ErrChunkTooLarge = errors.New("wirestate: chunk exceeds maximum size")
	ErrReadFailed    = errors.New("wirestate: read failed")
)

// Stream is a growable byte buffer with a read cursor. The plugin (via
// the worker's capability shim) writes to it as an ostream, the data is
// then shipped as a single wire.Encoder.PutBytes payload, and on the
// receiving end it is replayed to the plugin as an istream from the same
// buffer.
type Stream struct {
	buf     []byte
	readPos int
}

// NewStream returns an empty Stream ready for writing.
func NewStream() *Stream {
	return &Stream{}
}

// NewStreamFromBytes returns a Stream pre-loaded for reading, e.g. after
// decoding a wire.Decoder.BytesCopy() payload.
func NewStreamFromBytes(b []byte) *Stream {
	return &Stream{buf: b}
}

// Write implements io.Writer, appending to the buffer. Matches the
// clap_ostream_t.write / IBStream::write contract the plugin drives
// during a state save.
func (s *Stream) Write(p []byte) (int, error) {
	if len(s.buf)+len(p) > MaxChunkSize {
		return 0, ErrChunkTooLarge
	}
	s.buf = append(s.buf, p...)
	return len(p), nil
}

// Read implements io.Reader, advancing the cursor. Matches the
// clap_istream_t.read / IBStream::read contract the plugin drives during
// a state load. Returns io.EOF once the cursor reaches the end, per
// io.Reader's contract (a short read is not itself an error).
func (s *Stream) Read(p []byte) (int, error) {
	if s.readPos >= len(s.buf) {
		return 0, io.EOF
	}
	n := copy(p, s.buf[s.readPos:])
	s.readPos += n
	return n, nil
}

// Bytes returns the full accumulated buffer, for handing off to
// wire.Encoder.PutBytes.
func (s *Stream) Bytes() []byte {
	return s.buf
}

// Len reports the buffer's current size.
func (s *Stream) Len() int {
	return len(s.buf)
}

// Reset clears the buffer and read cursor for reuse.
func (s *Stream) Reset() {
	s.buf = s.buf[:0]
	s.readPos = 0
}

// Reader is a sticky-error binary reader over an io.Reader, used when a
// state chunk's payload has a known internal schema (e.g. a
// VstPatchChunkInfo header before the opaque plugin data) rather than
// being fully opaque. Once Error returns non-nil every subsequent call is
// a no-op returning the same error, so callers can chain several reads
// and check the error once at the end.
type Reader struct {
	r   io.Reader
	err error
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

func (r *Reader) Error() error {
	return r.err
}

func (r *Reader) ReadUint32() (uint32, error) {
	if r.err != nil {
		return 0, r.err
	}
	var v uint32
	if r.err = binary.Read(r.r, binary.LittleEndian, &v); r.err != nil {
		return 0, r.err
	}
	return v, nil
}

func (r *Reader) ReadUint64() (uint64, error) {
	if r.err != nil {
		return 0, r.err
	}
	var v uint64
	if r.err = binary.Read(r.r, binary.LittleEndian, &v); r.err != nil {
		return 0, r.err
	}
	return v, nil
}

func (r *Reader) ReadFloat64() (float64, error) {
	if r.err != nil {
		return 0, r.err
	}
	var v float64
	if r.err = binary.Read(r.r, binary.LittleEndian, &v); r.err != nil {
		return 0, r.err
	}
	return v, nil
}

func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	data := make([]byte, n)
	if _, r.err = io.ReadFull(r.r, data); r.err != nil {
		return nil, r.err
	}
	return data, nil
}

func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	data, err := r.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Writer is the sticky-error counterpart to Reader.
type Writer struct {
	w   io.Writer
	err error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Error() error {
	return w.err
}

func (w *Writer) WriteUint32(v uint32) error {
	if w.err != nil {
		return w.err
	}
	w.err = binary.Write(w.w, binary.LittleEndian, v)
	return w.err
}

func (w *Writer) WriteUint64(v uint64) error {
	if w.err != nil {
		return w.err
	}
	w.err = binary.Write(w.w, binary.LittleEndian, v)
	return w.err
}

func (w *Writer) WriteFloat64(v float64) error {
	if w.err != nil {
		return w.err
	}
	w.err = binary.Write(w.w, binary.LittleEndian, v)
	return w.err
}

func (w *Writer) WriteBytes(data []byte) error {
	if w.err != nil {
		return w.err
	}
	_, w.err = w.w.Write(data)
	return w.err
}

func (w *Writer) WriteString(s string) error {
	if err := w.WriteUint32(uint32(len(s))); err != nil {
		return err
	}
	if len(s) == 0 {
		return nil
	}
	return w.WriteBytes([]byte(s))
}
