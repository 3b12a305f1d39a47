// Package wire implements the length-prefixed binary framing and
// schema-driven tagged-union encoding used on every socket in the bridge.
package wire

import "errors"

// ErrShortRead means the peer closed the connection mid-frame. The caller
// must tear down the owning instance; there is nothing left to recover.
var ErrShortRead = errors.New("wire: short read, peer disconnected")

// ErrDecode means a frame was read in full but its contents did not match
// the expected schema. This is a fatal protocol error: log it and
// terminate the instance rather than try to resynchronize the stream.
var ErrDecode = errors.New("wire: decode failed")

// ErrFrameTooLarge guards against a corrupt or hostile length prefix
// causing an unbounded allocation.
var ErrFrameTooLarge = errors.New("wire: frame exceeds maximum size")

// MaxFrameSize bounds a single frame. Audio blocks are carried by shared
// memory, not by the wire, so no legitimate message approaches this.
const MaxFrameSize = 256 << 20
