package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Encoder appends a schema-driven binary encoding to an internal byte
// slice. Fixed-width integers are little-endian; sequences are prefixed
// with a u32 count; optionals with a u8 present flag; tagged unions with a
// u8 variant index in declaration order. The zero value is not usable;
// construct with NewEncoder or reuse one via Reset.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an Encoder with cap bytes of initial capacity. Pass a
// size hint carried forward from a prior call on the same socket to avoid
// reallocating outside the audio path (see Reset).
func NewEncoder(cap int) *Encoder {
	return &Encoder{buf: make([]byte, 0, cap)}
}

// Reset clears the encoder for reuse, keeping its backing array. This is
// the scratch-buffer reuse path: callers on the audio socket keep one
// Encoder per thread and Reset it between calls instead of allocating.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// Bytes returns the encoded payload. The slice is only valid until the
// next Reset.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len reports the number of bytes encoded so far, used as the next call's
// capacity hint.
func (e *Encoder) Len() int {
	return len(e.buf)
}

func (e *Encoder) grow(n int) []byte {
	l := len(e.buf)
	if cap(e.buf)-l < n {
		grown := make([]byte, l, 2*cap(e.buf)+n)
		copy(grown, e.buf)
		e.buf = grown
	}
	e.buf = e.buf[:l+n]
	return e.buf[l : l+n]
}

func (e *Encoder) PutUint8(v uint8) {
	e.grow(1)[0] = v
}

func (e *Encoder) PutBool(v bool) {
	if v {
		e.PutUint8(1)
	} else {
		e.PutUint8(0)
	}
}

func (e *Encoder) PutUint16(v uint16) {
	binary.LittleEndian.PutUint16(e.grow(2), v)
}

func (e *Encoder) PutUint32(v uint32) {
	binary.LittleEndian.PutUint32(e.grow(4), v)
}

func (e *Encoder) PutInt32(v int32) {
	e.PutUint32(uint32(v))
}

// PutHandle64 writes a 64-bit handle. All cross-process handles (instance
// IDs, pointers that merely need to round-trip) are normalized to 64 bits
// regardless of the worker's native pointer width, so a 32-bit worker can
// interoperate with a 64-bit host.
func (e *Encoder) PutHandle64(v uint64) {
	binary.LittleEndian.PutUint64(e.grow(8), v)
}

func (e *Encoder) PutInt64(v int64) {
	e.PutHandle64(uint64(v))
}

func (e *Encoder) PutFloat32(v float32) {
	e.PutUint32(math.Float32bits(v))
}

func (e *Encoder) PutFloat64(v float64) {
	e.PutHandle64(math.Float64bits(v))
}

// PutBytes writes a u32-count-prefixed byte sequence.
func (e *Encoder) PutBytes(b []byte) {
	e.PutUint32(uint32(len(b)))
	copy(e.grow(len(b)), b)
}

// PutString writes a u32-count-prefixed UTF-8 string.
func (e *Encoder) PutString(s string) {
	e.PutUint32(uint32(len(s)))
	copy(e.grow(len(s)), s)
}

// PutOptionalPresent writes the u8 present/absent tag for an optional
// value; the caller encodes the payload itself when present is true.
func (e *Encoder) PutOptionalPresent(present bool) {
	e.PutBool(present)
}

// PutVariantTag writes the u8 discriminant for a tagged union, in
// declaration order of the variant list.
func (e *Encoder) PutVariantTag(tag uint8) {
	e.PutUint8(tag)
}

// Decoder reads a schema-driven binary encoding produced by Encoder. It
// never copies the source slice; callers that need to retain a decoded
// byte sequence past the Decoder's lifetime must copy it explicitly,
// matching the "request type must own a copy of every transitively
// referenced buffer" rule in spec.md's design notes.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder wraps buf for reading. buf is not copied.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Remaining reports how many bytes are left to decode.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.pos
}

func (d *Decoder) take(n int) ([]byte, error) {
	if d.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrDecode, n, d.Remaining())
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *Decoder) Uint8() (uint8, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) Bool() (bool, error) {
	v, err := d.Uint8()
	if err != nil {
		return false, err
	}
	if v > 1 {
		return false, fmt.Errorf("%w: invalid bool tag %d", ErrDecode, v)
	}
	return v == 1, nil
}

func (d *Decoder) Uint16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (d *Decoder) Uint32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *Decoder) Int32() (int32, error) {
	v, err := d.Uint32()
	return int32(v), err
}

func (d *Decoder) Handle64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (d *Decoder) Int64() (int64, error) {
	v, err := d.Handle64()
	return int64(v), err
}

func (d *Decoder) Float32() (float32, error) {
	v, err := d.Uint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (d *Decoder) Float64() (float64, error) {
	v, err := d.Handle64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// Bytes reads a u32-count-prefixed byte sequence. The returned slice
// aliases the decoder's backing array; copy it before it can be mutated
// by a subsequent Reset of the frame buffer it came from.
func (d *Decoder) Bytes() ([]byte, error) {
	n, err := d.Uint32()
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(MaxFrameSize) {
		return nil, ErrFrameTooLarge
	}
	return d.take(int(n))
}

// BytesCopy is Bytes but returns an owned copy, for payloads that must
// outlive the current frame (the standard case when building a request
// or response object to hand off to another goroutine).
func (d *Decoder) BytesCopy() ([]byte, error) {
	b, err := d.Bytes()
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (d *Decoder) String() (string, error) {
	b, err := d.BytesCopy()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// OptionalPresent reads the u8 present/absent tag for an optional value.
func (d *Decoder) OptionalPresent() (bool, error) {
	return d.Bool()
}

// VariantTag reads the u8 discriminant for a tagged union.
func (d *Decoder) VariantTag() (uint8, error) {
	return d.Uint8()
}
