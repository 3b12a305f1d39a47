package message

import (
	"fmt"
	"sync"

	"github.com/plugbridge/plugbridge/internal/wire"
	"github.com/plugbridge/plugbridge/pkg/abi/vst2"
	"github.com/plugbridge/plugbridge/pkg/wireevent"
)

// InstanceID identifies one live plugin instance within a worker process,
// needed because VST3 and CLAP multiplex multiple instances over a single
// socket set under group hosting (spec.md §4.2).
type InstanceID uint64

// DispatchRequest mirrors one VST2 dispatch() or audioMaster() call: the
// opcode plus its four raw arguments, with the opaque data/value arguments
// already converted to an owned Payload by a DataConverter on the sending
// side. Host-callback requests use the same shape traveling the opposite
// direction over the host-callback socket.
type DispatchRequest struct {
	Instance InstanceID
	Opcode   vst2.Opcode
	Index    int32
	Value    int64
	Option   float32
	Data     Payload
	// ValueData is set when Value is itself a pointer argument (e.g.
	// effSetSpeakerArrangement), converted via DataConverter.ReadValue.
	ValueData      Payload
	HasValueData   bool
	ScratchBufSize int32
}

// DispatchResponse is DispatchRequest's Response, matching yabridge's
// EventResult: the raw return value the plugin/host gave, plus whatever
// the data converter wrote back into the opaque arguments.
type DispatchResponse struct {
	ReturnValue  int64
	Data         Payload
	ValueData    Payload
	HasValueData bool
}

// Encode writes a DispatchRequest using internal/wire's schema-driven
// encoder. Field order is fixed by declaration order, matching every other
// wire-framed struct in this module.
func (r *DispatchRequest) Encode(e *wire.Encoder) {
	e.PutHandle64(uint64(r.Instance))
	e.PutInt32(int32(r.Opcode))
	e.PutInt32(r.Index)
	e.PutInt64(r.Value)
	e.PutFloat32(r.Option)
	encodePayload(e, r.Data)
	e.PutOptionalPresent(r.HasValueData)
	if r.HasValueData {
		encodePayload(e, r.ValueData)
	}
	e.PutInt32(r.ScratchBufSize)
}

func DecodeDispatchRequest(d *wire.Decoder) (*DispatchRequest, error) {
	inst, err := d.Handle64()
	if err != nil {
		return nil, err
	}
	opcode, err := d.Int32()
	if err != nil {
		return nil, err
	}
	index, err := d.Int32()
	if err != nil {
		return nil, err
	}
	value, err := d.Int64()
	if err != nil {
		return nil, err
	}
	option, err := d.Float32()
	if err != nil {
		return nil, err
	}
	data, err := decodePayload(d)
	if err != nil {
		return nil, err
	}
	hasValueData, err := d.OptionalPresent()
	if err != nil {
		return nil, err
	}
	var valueData Payload
	if hasValueData {
		if valueData, err = decodePayload(d); err != nil {
			return nil, err
		}
	}
	scratch, err := d.Int32()
	if err != nil {
		return nil, err
	}
	return &DispatchRequest{
		Instance:       InstanceID(inst),
		Opcode:         vst2.Opcode(opcode),
		Index:          index,
		Value:          value,
		Option:         option,
		Data:           data,
		ValueData:      valueData,
		HasValueData:   hasValueData,
		ScratchBufSize: scratch,
	}, nil
}

func (r *DispatchResponse) Encode(e *wire.Encoder) {
	e.PutInt64(r.ReturnValue)
	encodePayload(e, r.Data)
	e.PutOptionalPresent(r.HasValueData)
	if r.HasValueData {
		encodePayload(e, r.ValueData)
	}
}

func DecodeDispatchResponse(d *wire.Decoder) (*DispatchResponse, error) {
	ret, err := d.Int64()
	if err != nil {
		return nil, err
	}
	data, err := decodePayload(d)
	if err != nil {
		return nil, err
	}
	hasValueData, err := d.OptionalPresent()
	if err != nil {
		return nil, err
	}
	var valueData Payload
	if hasValueData {
		if valueData, err = decodePayload(d); err != nil {
			return nil, err
		}
	}
	return &DispatchResponse{ReturnValue: ret, Data: data, ValueData: valueData, HasValueData: hasValueData}, nil
}

func encodePayload(e *wire.Encoder, p Payload) {
	e.PutUint8(uint8(p.Kind))
	switch p.Kind {
	case PayloadString:
		e.PutString(p.String)
	case PayloadChunk:
		e.PutBytes(p.Chunk)
	case PayloadEvents:
		p.Events.Encode(e)
	case PayloadRect:
		e.PutInt32(int32(p.Rect.Top))
		e.PutInt32(int32(p.Rect.Left))
		e.PutInt32(int32(p.Rect.Bottom))
		e.PutInt32(int32(p.Rect.Right))
	case PayloadTimeInfo:
		encodeTimeInfo(e, p.Time)
	}
}

func decodePayload(d *wire.Decoder) (Payload, error) {
	kind, err := d.Uint8()
	if err != nil {
		return Payload{}, err
	}
	p := Payload{Kind: PayloadKind(kind)}
	switch p.Kind {
	case PayloadString:
		if p.String, err = d.String(); err != nil {
			return Payload{}, err
		}
	case PayloadChunk:
		if p.Chunk, err = d.BytesCopy(); err != nil {
			return Payload{}, err
		}
	case PayloadEvents:
		if p.Events, err = wireevent.DecodeList(d); err != nil {
			return Payload{}, err
		}
	case PayloadRect:
		top, err := d.Int32()
		if err != nil {
			return Payload{}, err
		}
		left, err := d.Int32()
		if err != nil {
			return Payload{}, err
		}
		bottom, err := d.Int32()
		if err != nil {
			return Payload{}, err
		}
		right, err := d.Int32()
		if err != nil {
			return Payload{}, err
		}
		p.Rect = vst2.Rect{Top: int16(top), Left: int16(left), Bottom: int16(bottom), Right: int16(right)}
	case PayloadTimeInfo:
		if p.Time, err = decodeTimeInfo(d); err != nil {
			return Payload{}, err
		}
	}
	return p, nil
}

func encodeTimeInfo(e *wire.Encoder, t vst2.TimeInfo) {
	e.PutFloat64(t.SamplePos)
	e.PutFloat64(t.SampleRate)
	e.PutFloat64(t.NanoSeconds)
	e.PutFloat64(t.PpqPos)
	e.PutFloat64(t.Tempo)
	e.PutFloat64(t.BarStartPos)
	e.PutFloat64(t.CycleStartPos)
	e.PutFloat64(t.CycleEndPos)
	e.PutInt32(t.TimeSigNumerator)
	e.PutInt32(t.TimeSigDenominator)
	e.PutInt32(t.Flags)
}

func decodeTimeInfo(d *wire.Decoder) (vst2.TimeInfo, error) {
	var t vst2.TimeInfo
	var err error
	if t.SamplePos, err = d.Float64(); err != nil {
		return t, err
	}
	if t.SampleRate, err = d.Float64(); err != nil {
		return t, err
	}
	if t.NanoSeconds, err = d.Float64(); err != nil {
		return t, err
	}
	if t.PpqPos, err = d.Float64(); err != nil {
		return t, err
	}
	if t.Tempo, err = d.Float64(); err != nil {
		return t, err
	}
	if t.BarStartPos, err = d.Float64(); err != nil {
		return t, err
	}
	if t.CycleStartPos, err = d.Float64(); err != nil {
		return t, err
	}
	if t.CycleEndPos, err = d.Float64(); err != nil {
		return t, err
	}
	if t.TimeSigNumerator, err = d.Int32(); err != nil {
		return t, err
	}
	if t.TimeSigDenominator, err = d.Int32(); err != nil {
		return t, err
	}
	if t.Flags, err = d.Int32(); err != nil {
		return t, err
	}
	return t, nil
}

// Handler answers one DispatchRequest for a live plugin instance.
type Handler func(req *DispatchRequest) (*DispatchResponse, error)

// Dispatcher is the single foreign-side dispatcher from spec.md §4.4: it
// decodes the next request, matches the opcode, calls into the handler,
// and encodes the response. It does not resolve the instance itself; the
// handler receives req.Instance. A Dispatcher is safe for concurrent use:
// cmd/worker shares one between the main-dispatch and event-dispatch
// sockets, while the parameters and audio sockets are served through
// ParameterHandler and ProcessHandler instead of a Dispatcher.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[vst2.Opcode]Handler
	fallback Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[vst2.Opcode]Handler)}
}

// Register installs the handler for a specific opcode, overwriting any
// existing registration.
func (d *Dispatcher) Register(opcode vst2.Opcode, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[opcode] = h
}

// SetFallback installs the handler used when no opcode-specific handler is
// registered (e.g. a generic "not implemented" responder).
func (d *Dispatcher) SetFallback(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fallback = h
}

// Dispatch decodes payload as a DispatchRequest, runs the matching
// handler, and returns the encoded DispatchResponse ready for
// transport.Conn.WriteFrame.
func (d *Dispatcher) Dispatch(payload []byte) ([]byte, error) {
	req, err := DecodeDispatchRequest(wire.NewDecoder(payload))
	if err != nil {
		return nil, fmt.Errorf("message: decode dispatch request: %w", err)
	}

	d.mu.RLock()
	h, ok := d.handlers[req.Opcode]
	fallback := d.fallback
	d.mu.RUnlock()
	if !ok {
		if fallback == nil {
			return nil, fmt.Errorf("message: no handler registered for opcode %v", req.Opcode)
		}
		h = fallback
	}

	resp, err := h(req)
	if err != nil {
		return nil, fmt.Errorf("message: handler for opcode %v: %w", req.Opcode, err)
	}

	e := wire.NewEncoder(64)
	resp.Encode(e)
	return e.Bytes(), nil
}
