// Package message is the message type system (spec.md §4.4): each
// plugin-API function is mirrored by a request type carrying the
// function's arguments as owned copies plus the target instance ID, and a
// response type. A single foreign-side Dispatcher decodes the next
// request, hands it to the handler registered for its opcode, and encodes
// the response.
//
// Grounded on yabridge's event.h/events.h (original_source/src/common):
// send_event/receive_event establish the request/response round trip this
// package's Dispatcher implements, and DefaultDataConverter is the direct
// model for the DataConverter interface below, which performs the same
// job VST2's opaque `void*` dispatch argument needs — inspecting the
// opcode to decide what the pointee means — expressed as data conversion
// functions instead of virtual methods, since there is no C pointer on
// this side of the bridge to inspect directly.
package message

import (
	"fmt"

	"github.com/plugbridge/plugbridge/pkg/abi/vst2"
	"github.com/plugbridge/plugbridge/pkg/wireevent"
)

// PayloadKind tags which field of Payload is meaningful, mirroring
// yabridge's EventPayload variant (std::monostate, std::string,
// WantsString, DynamicVstEvents, AEffect, VstIOProperties, VstSpeakerArrangement, ...)
// reduced to the variants this bridge's VST2 opcode table actually needs.
type PayloadKind uint8

const (
	PayloadNone PayloadKind = iota
	PayloadString
	PayloadWantsString
	PayloadEvents
	PayloadChunk
	PayloadRect
	PayloadTimeInfo
)

// Payload is the owned-copy union the data converter reads the opaque
// `data`/`value` argument into on the sending side, and writes back out on
// the receiving side. Exactly one field beyond Kind is meaningful.
type Payload struct {
	Kind PayloadKind

	String   string
	Events   wireevent.List
	Chunk    []byte
	Rect     vst2.Rect
	Time     vst2.TimeInfo
}

// DataConverter is the VST2 opaque-pointer abstraction from spec.md §4.4:
// Read packages the pointee behind `data` into a Payload on the sending
// (native) side, Write copies a response Payload back into the caller's
// buffer. ReadValue/WriteValue are the analogous pair for the few opcodes
// (effGetSpeakerArrangement/effSetSpeakerArrangement) that use the `value`
// argument as a pointer instead of an integer.
type DataConverter interface {
	Read(opcode vst2.Opcode, index int32, value int64, data []byte) (Payload, error)
	ReadValue(opcode vst2.Opcode, value int64) (Payload, bool, error)
	Write(opcode vst2.Opcode, data []byte, response Payload) ([]byte, error)
	WriteValue(opcode vst2.Opcode, value int64, response Payload) error
}

// DefaultConverter is yabridge's DefaultDataConverter ported directly: for
// opcodes with no special handling, `data` is read as a NUL-terminated
// string if the first byte is non-zero, or a "wants string" marker
// (PayloadWantsString) if it's an empty scratch buffer the plugin expects
// the response to fill in. It is the only DataConverter in this package;
// its Write rejects every payload kind other than none, string and
// wants-string.
type DefaultConverter struct{}

func (DefaultConverter) Read(opcode vst2.Opcode, index int32, value int64, data []byte) (Payload, error) {
	if len(data) == 0 {
		return Payload{Kind: PayloadNone}, nil
	}
	if data[0] != 0 {
		return Payload{Kind: PayloadString, String: cString(data)}, nil
	}
	return Payload{Kind: PayloadWantsString}, nil
}

func (DefaultConverter) ReadValue(opcode vst2.Opcode, value int64) (Payload, bool, error) {
	return Payload{}, false, nil
}

func (DefaultConverter) Write(opcode vst2.Opcode, data []byte, response Payload) ([]byte, error) {
	switch response.Kind {
	case PayloadNone, PayloadWantsString:
		return data, nil
	case PayloadString:
		return writeCString(data, response.String)
	default:
		return nil, fmt.Errorf("message: default converter cannot write payload kind %d for opcode %d", response.Kind, opcode)
	}
}

func (DefaultConverter) WriteValue(opcode vst2.Opcode, value int64, response Payload) error {
	return nil
}

// cString reads bytes up to the first NUL as a string, mirroring the
// plugin ABI's NUL-terminated scratch buffers.
func cString(data []byte) string {
	for i, b := range data {
		if b == 0 {
			return string(data[:i])
		}
	}
	return string(data)
}

// writeCString copies s into dst as a NUL-terminated string, matching
// DefaultDataConverter::write's std::copy + trailing NUL.
func writeCString(dst []byte, s string) ([]byte, error) {
	if len(s)+1 > len(dst) {
		return nil, fmt.Errorf("message: response string %q does not fit in %d-byte scratch buffer", s, len(dst))
	}
	n := copy(dst, s)
	dst[n] = 0
	return dst, nil
}
