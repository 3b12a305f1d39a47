// Package wireevent is the ABI-agnostic event-list model shared by the
// three plugin APIs the bridge proxies: an ordered sequence of fixed-shape
// records carrying a short MIDI event, a long sysex event, a note
// on/off/choke/end with optional per-note expression, or a parameter
// change point. Order and deltaframes (the sample offset within a block)
// must survive the wire crossing bit-exact; List.Encode/Decode are built
// directly on top of internal/wire so that holds by construction.
package wireevent

import (
	"fmt"

	"github.com/plugbridge/plugbridge/internal/wire"
)

// Type is the tagged-union discriminant for a single event, encoded as
// the wire variant tag in the declaration order below.
type Type uint8

const (
	TypeNoteOn Type = iota
	TypeNoteOff
	TypeNoteChoke
	TypeNoteEnd
	TypeNoteExpression
	TypeParamValue
	TypeParamMod
	TypeParamGestureBegin
	TypeParamGestureEnd
	TypeTransport
	TypeMIDI
	TypeMIDISysex
	TypeMIDI2
)

// Flags mirrors the per-event flag bits carried over the wire.
type Flags uint32

const (
	FlagIsLive     Flags = 1 << 0
	FlagDontRecord Flags = 1 << 1
)

// Header is the metadata every event variant carries. Time is the
// deltaframes value: the sample offset of this event within the block
// currently being processed. Preserving Time across the boundary,
// unmodified and in list order, is testable property #4.
type Header struct {
	Time  uint32
	Type  Type
	Flags Flags
}

func (h Header) encode(e *wire.Encoder) {
	e.PutUint32(h.Time)
	e.PutUint8(uint8(h.Type))
	e.PutUint32(uint32(h.Flags))
}

func decodeHeader(d *wire.Decoder) (Header, error) {
	var h Header
	var err error
	if h.Time, err = d.Uint32(); err != nil {
		return h, err
	}
	tag, err := d.Uint8()
	if err != nil {
		return h, err
	}
	h.Type = Type(tag)
	flags, err := d.Uint32()
	if err != nil {
		return h, err
	}
	h.Flags = Flags(flags)
	return h, nil
}

// Note expression kinds, matching the CLAP/VST3 note-expression surface;
// VST2 note events never populate ExpressionID.
type NoteExpression uint32

const (
	ExpressionVolume NoteExpression = iota
	ExpressionPan
	ExpressionTuning
	ExpressionVibrato
	ExpressionExpression
	ExpressionBrightness
	ExpressionPressure
)

// Note carries a note on/off/choke/end or a note-expression point. Port,
// Channel, and Key follow the CLAP/VST3 convention of -1 meaning "any".
// Nothing in this module converts VST2's flat MIDI channel/note events
// into Note; pkg/abi/vst2 only mirrors the VST2 structs.
type Note struct {
	Header       Header
	NoteID       int32
	Port         int16
	Channel      int16
	Key          int16
	Velocity     float64
	ExpressionID NoteExpression // only meaningful when Header.Type == TypeNoteExpression
}

func (n Note) encode(e *wire.Encoder) {
	n.Header.encode(e)
	e.PutInt32(n.NoteID)
	e.PutUint16(uint16(n.Port))
	e.PutUint16(uint16(n.Channel))
	e.PutUint16(uint16(n.Key))
	e.PutFloat64(n.Velocity)
	e.PutUint32(uint32(n.ExpressionID))
}

func decodeNote(h Header, d *wire.Decoder) (Note, error) {
	n := Note{Header: h}
	var err error
	if n.NoteID, err = d.Int32(); err != nil {
		return n, err
	}
	var u uint16
	if u, err = d.Uint16(); err != nil {
		return n, err
	}
	n.Port = int16(u)
	if u, err = d.Uint16(); err != nil {
		return n, err
	}
	n.Channel = int16(u)
	if u, err = d.Uint16(); err != nil {
		return n, err
	}
	n.Key = int16(u)
	if n.Velocity, err = d.Float64(); err != nil {
		return n, err
	}
	expr, err := d.Uint32()
	if err != nil {
		return n, err
	}
	n.ExpressionID = NoteExpression(expr)
	return n, nil
}

// ParamValue is a parameter-change point, forwarded for sample-accurate
// automation during process().
type ParamValue struct {
	Header  Header
	ParamID uint32
	NoteID  int32
	Port    int16
	Channel int16
	Key     int16
	Value   float64
}

func (p ParamValue) encode(e *wire.Encoder) {
	p.Header.encode(e)
	e.PutUint32(p.ParamID)
	e.PutInt32(p.NoteID)
	e.PutUint16(uint16(p.Port))
	e.PutUint16(uint16(p.Channel))
	e.PutUint16(uint16(p.Key))
	e.PutFloat64(p.Value)
}

func decodeParamValue(h Header, d *wire.Decoder) (ParamValue, error) {
	p := ParamValue{Header: h}
	var err error
	if p.ParamID, err = d.Uint32(); err != nil {
		return p, err
	}
	if p.NoteID, err = d.Int32(); err != nil {
		return p, err
	}
	var u uint16
	if u, err = d.Uint16(); err != nil {
		return p, err
	}
	p.Port = int16(u)
	if u, err = d.Uint16(); err != nil {
		return p, err
	}
	p.Channel = int16(u)
	if u, err = d.Uint16(); err != nil {
		return p, err
	}
	p.Key = int16(u)
	if p.Value, err = d.Float64(); err != nil {
		return p, err
	}
	return p, nil
}

// ParamGesture marks the start or end of a host-initiated parameter
// gesture (Header.Type distinguishes begin/end).
type ParamGesture struct {
	Header  Header
	ParamID uint32
}

func (g ParamGesture) encode(e *wire.Encoder) {
	g.Header.encode(e)
	e.PutUint32(g.ParamID)
}

func decodeParamGesture(h Header, d *wire.Decoder) (ParamGesture, error) {
	g := ParamGesture{Header: h}
	var err error
	g.ParamID, err = d.Uint32()
	return g, err
}

// MIDI is a short (1-0 data byte) MIDI 1.0 message, the VstMidiEvent /
// CLAP_EVENT_MIDI shape.
type MIDI struct {
	Header Header
	Port   uint16
	Data   [3]byte
}

func (m MIDI) encode(e *wire.Encoder) {
	m.Header.encode(e)
	e.PutUint16(m.Port)
	e.PutUint8(m.Data[0])
	e.PutUint8(m.Data[1])
	e.PutUint8(m.Data[2])
}

func decodeMIDI(h Header, d *wire.Decoder) (MIDI, error) {
	m := MIDI{Header: h}
	var err error
	if m.Port, err = d.Uint16(); err != nil {
		return m, err
	}
	for i := range m.Data {
		if m.Data[i], err = d.Uint8(); err != nil {
			return m, err
		}
	}
	return m, nil
}

// MIDISysex is a long-form MIDI system-exclusive message. Buffer is an
// owned copy; the C-ABI pointer it was read from on the sending side does
// not survive the boundary.
type MIDISysex struct {
	Header Header
	Port   uint16
	Buffer []byte
}

func (m MIDISysex) encode(e *wire.Encoder) {
	m.Header.encode(e)
	e.PutUint16(m.Port)
	e.PutBytes(m.Buffer)
}

func decodeMIDISysex(h Header, d *wire.Decoder) (MIDISysex, error) {
	m := MIDISysex{Header: h}
	var err error
	if m.Port, err = d.Uint16(); err != nil {
		return m, err
	}
	if m.Buffer, err = d.BytesCopy(); err != nil {
		return m, err
	}
	return m, nil
}

// MIDI2 is a MIDI 2.0 Universal MIDI Packet (four 32-bit words).
type MIDI2 struct {
	Header Header
	Port   uint16
	Data   [4]uint32
}

func (m MIDI2) encode(e *wire.Encoder) {
	m.Header.encode(e)
	e.PutUint16(m.Port)
	for _, w := range m.Data {
		e.PutUint32(w)
	}
}

func decodeMIDI2(h Header, d *wire.Decoder) (MIDI2, error) {
	m := MIDI2{Header: h}
	var err error
	if m.Port, err = d.Uint16(); err != nil {
		return m, err
	}
	for i := range m.Data {
		if m.Data[i], err = d.Uint32(); err != nil {
			return m, err
		}
	}
	return m, nil
}

// Transport describes the host transport state at the start of a block.
type Transport struct {
	Header             Header
	Flags              uint32
	SongPosBeats       float64
	SongPosSeconds     float64
	Tempo              float64
	TempoInc           float64
	LoopStartBeats     float64
	LoopEndBeats       float64
	LoopStartSeconds   float64
	LoopEndSeconds     float64
	BarStart           float64
	BarNumber          int32
	TimeSignatureNum   uint16
	TimeSignatureDenom uint16
}

const (
	TransportHasTempo         uint32 = 1 << 0
	TransportHasBeatsTime     uint32 = 1 << 1
	TransportHasSecondsTime   uint32 = 1 << 2
	TransportHasTimeSignature uint32 = 1 << 3
	TransportIsPlaying        uint32 = 1 << 4
	TransportIsRecording      uint32 = 1 << 5
	TransportIsLooping        uint32 = 1 << 6
	TransportIsWithinPreRoll  uint32 = 1 << 7
)

func (t Transport) encode(e *wire.Encoder) {
	t.Header.encode(e)
	e.PutUint32(t.Flags)
	e.PutFloat64(t.SongPosBeats)
	e.PutFloat64(t.SongPosSeconds)
	e.PutFloat64(t.Tempo)
	e.PutFloat64(t.TempoInc)
	e.PutFloat64(t.LoopStartBeats)
	e.PutFloat64(t.LoopEndBeats)
	e.PutFloat64(t.LoopStartSeconds)
	e.PutFloat64(t.LoopEndSeconds)
	e.PutFloat64(t.BarStart)
	e.PutInt32(t.BarNumber)
	e.PutUint16(t.TimeSignatureNum)
	e.PutUint16(t.TimeSignatureDenom)
}

func decodeTransport(h Header, d *wire.Decoder) (Transport, error) {
	t := Transport{Header: h}
	var err error
	if t.Flags, err = d.Uint32(); err != nil {
		return t, err
	}
	fields := []*float64{
		&t.SongPosBeats, &t.SongPosSeconds, &t.Tempo, &t.TempoInc,
		&t.LoopStartBeats, &t.LoopEndBeats, &t.LoopStartSeconds, &t.LoopEndSeconds,
		&t.BarStart,
	}
	for _, f := range fields {
		if *f, err = d.Float64(); err != nil {
			return t, err
		}
	}
	if t.BarNumber, err = d.Int32(); err != nil {
		return t, err
	}
	if t.TimeSignatureNum, err = d.Uint16(); err != nil {
		return t, err
	}
	if t.TimeSignatureDenom, err = d.Uint16(); err != nil {
		return t, err
	}
	return t, nil
}

// Event is the tagged union of every variant above. Exactly one of the
// typed fields is meaningful, selected by Header.Type.
type Event struct {
	Header       Header
	Note         Note
	ParamValue   ParamValue
	ParamGesture ParamGesture
	MIDI         MIDI
	MIDISysex    MIDISysex
	MIDI2        MIDI2
	Transport    Transport
}

func (ev Event) encode(e *wire.Encoder) {
	switch ev.Header.Type {
	case TypeNoteOn, TypeNoteOff, TypeNoteChoke, TypeNoteEnd, TypeNoteExpression:
		ev.Note.encode(e)
	case TypeParamValue, TypeParamMod:
		ev.ParamValue.encode(e)
	case TypeParamGestureBegin, TypeParamGestureEnd:
		ev.ParamGesture.encode(e)
	case TypeMIDI:
		ev.MIDI.encode(e)
	case TypeMIDISysex:
		ev.MIDISysex.encode(e)
	case TypeMIDI2:
		ev.MIDI2.encode(e)
	case TypeTransport:
		ev.Transport.encode(e)
	}
}

func decodeEvent(d *wire.Decoder) (Event, error) {
	h, err := decodeHeader(d)
	if err != nil {
		return Event{}, err
	}
	ev := Event{Header: h}
	switch h.Type {
	case TypeNoteOn, TypeNoteOff, TypeNoteChoke, TypeNoteEnd, TypeNoteExpression:
		ev.Note, err = decodeNote(h, d)
	case TypeParamValue, TypeParamMod:
		ev.ParamValue, err = decodeParamValue(h, d)
	case TypeParamGestureBegin, TypeParamGestureEnd:
		ev.ParamGesture, err = decodeParamGesture(h, d)
	case TypeMIDI:
		ev.MIDI, err = decodeMIDI(h, d)
	case TypeMIDISysex:
		ev.MIDISysex, err = decodeMIDISysex(h, d)
	case TypeMIDI2:
		ev.MIDI2, err = decodeMIDI2(h, d)
	case TypeTransport:
		ev.Transport, err = decodeTransport(h, d)
	default:
		return Event{}, fmt.Errorf("%w: unknown event type %d", wire.ErrDecode, h.Type)
	}
	return ev, err
}

// List is an ordered event list. List order and each event's deltaframes
// must be preserved bit-exact across the boundary (spec.md §3, §8
// property #4): Encode/Decode never reorder or coalesce events.
type List []Event

// Encode appends the u32-count-prefixed, order-preserving encoding of the
// list to e.
func (l List) Encode(e *wire.Encoder) {
	e.PutUint32(uint32(len(l)))
	for _, ev := range l {
		ev.encode(e)
	}
}

// DecodeList reads a List previously written by List.Encode.
func DecodeList(d *wire.Decoder) (List, error) {
	n, err := d.Uint32()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	list := make(List, 0, n)
	for i := uint32(0); i < n; i++ {
		ev, err := decodeEvent(d)
		if err != nil {
			return nil, fmt.Errorf("event %d/%d: %w", i, n, err)
		}
		list = append(list, ev)
	}
	return list, nil
}
