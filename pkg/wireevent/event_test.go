package wireevent

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/plugbridge/plugbridge/internal/wire"
)

func roundTrip(t require.TestingT, l List) List {
	e := wire.NewEncoder(128)
	l.Encode(e)
	out, err := DecodeList(wire.NewDecoder(e.Bytes()))
	require.NoError(t, err)
	return out
}

func TestListRoundTripPreservesOrderAndTime(t *testing.T) {
	in := List{
		{Header: Header{Time: 0, Type: TypeNoteOn}, Note: Note{NoteID: 1, Port: 0, Channel: 0, Key: 60, Velocity: 0.8}},
		{Header: Header{Time: 12, Type: TypeParamValue}, ParamValue: ParamValue{ParamID: 7, NoteID: -1, Port: -1, Channel: -1, Key: -1, Value: 0.5}},
		{Header: Header{Time: 12, Type: TypeMIDI}, MIDI: MIDI{Port: 0, Data: [3]byte{0x90, 60, 127}}},
		{Header: Header{Time: 480, Type: TypeNoteOff}, Note: Note{NoteID: 1, Port: 0, Channel: 0, Key: 60, Velocity: 0}},
	}

	out := roundTrip(t, in)
	require.Equal(t, in, out)
	for i, ev := range out {
		require.Equal(t, in[i].Header.Time, ev.Header.Time, "event %d must keep its deltaframes offset", i)
	}
}

func TestEmptyListRoundTrips(t *testing.T) {
	out := roundTrip(t, nil)
	require.Len(t, out, 0)
}

func TestSysexOwnsItsBuffer(t *testing.T) {
	src := []byte{0xF0, 0x7E, 0x00, 0xF7}
	in := List{{Header: Header{Time: 3, Type: TypeMIDISysex}, MIDISysex: MIDISysex{Port: 1, Buffer: src}}}

	out := roundTrip(t, in)
	require.Equal(t, src, out[0].MIDISysex.Buffer)

	src[0] = 0x00
	require.NotEqual(t, src[0], out[0].MIDISysex.Buffer[0], "decoded sysex buffer must not alias the source slice")
}

func TestListRoundTripProperty(t *testing.T) {
	typeGen := rapid.SampledFrom([]Type{
		TypeNoteOn, TypeNoteOff, TypeNoteChoke, TypeNoteEnd, TypeNoteExpression,
		TypeParamValue, TypeParamMod, TypeParamGestureBegin, TypeParamGestureEnd,
		TypeTransport, TypeMIDI, TypeMIDISysex, TypeMIDI2,
	})

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 12).Draw(t, "n")
		list := make(List, 0, n)
		for i := 0; i < n; i++ {
			typ := typeGen.Draw(t, "type")
			h := Header{
				Time:  rapid.Uint32().Draw(t, "time"),
				Type:  typ,
				Flags: Flags(rapid.Uint32().Draw(t, "flags")),
			}
			ev := Event{Header: h}
			switch typ {
			case TypeNoteOn, TypeNoteOff, TypeNoteChoke, TypeNoteEnd, TypeNoteExpression:
				ev.Note = Note{
					Header:       h,
					NoteID:       rapid.Int32().Draw(t, "noteID"),
					Port:         int16(rapid.Int32Range(-1, 256).Draw(t, "port")),
					Channel:      int16(rapid.Int32Range(-1, 16).Draw(t, "channel")),
					Key:          int16(rapid.Int32Range(-1, 127).Draw(t, "key")),
					Velocity:     rapid.Float64().Draw(t, "velocity"),
					ExpressionID: NoteExpression(rapid.Uint32Range(0, 6).Draw(t, "expr")),
				}
			case TypeParamValue, TypeParamMod:
				ev.ParamValue = ParamValue{
					Header:  h,
					ParamID: rapid.Uint32().Draw(t, "paramID"),
					NoteID:  rapid.Int32().Draw(t, "noteID"),
					Port:    int16(rapid.Int32Range(-1, 256).Draw(t, "port")),
					Channel: int16(rapid.Int32Range(-1, 16).Draw(t, "channel")),
					Key:     int16(rapid.Int32Range(-1, 127).Draw(t, "key")),
					Value:   rapid.Float64().Draw(t, "value"),
				}
			case TypeParamGestureBegin, TypeParamGestureEnd:
				ev.ParamGesture = ParamGesture{Header: h, ParamID: rapid.Uint32().Draw(t, "paramID")}
			case TypeMIDI:
				var data [3]byte
				for i := range data {
					data[i] = rapid.Byte().Draw(t, "b")
				}
				ev.MIDI = MIDI{Header: h, Port: rapid.Uint16().Draw(t, "port"), Data: data}
			case TypeMIDISysex:
				ev.MIDISysex = MIDISysex{
					Header: h,
					Port:   rapid.Uint16().Draw(t, "port"),
					Buffer: rapid.SliceOf(rapid.Byte()).Draw(t, "buffer"),
				}
			case TypeMIDI2:
				var data [4]uint32
				for i := range data {
					data[i] = rapid.Uint32().Draw(t, "w")
				}
				ev.MIDI2 = MIDI2{Header: h, Port: rapid.Uint16().Draw(t, "port"), Data: data}
			case TypeTransport:
				ev.Transport = Transport{
					Header:             h,
					Flags:              rapid.Uint32().Draw(t, "tflags"),
					SongPosBeats:       rapid.Float64().Draw(t, "songPosBeats"),
					SongPosSeconds:     rapid.Float64().Draw(t, "songPosSeconds"),
					Tempo:              rapid.Float64().Draw(t, "tempo"),
					TempoInc:           rapid.Float64().Draw(t, "tempoInc"),
					LoopStartBeats:     rapid.Float64().Draw(t, "loopStartBeats"),
					LoopEndBeats:       rapid.Float64().Draw(t, "loopEndBeats"),
					LoopStartSeconds:   rapid.Float64().Draw(t, "loopStartSeconds"),
					LoopEndSeconds:     rapid.Float64().Draw(t, "loopEndSeconds"),
					BarStart:           rapid.Float64().Draw(t, "barStart"),
					BarNumber:          rapid.Int32().Draw(t, "barNumber"),
					TimeSignatureNum:   rapid.Uint16().Draw(t, "tsNum"),
					TimeSignatureDenom: rapid.Uint16().Draw(t, "tsDenom"),
				}
			}
			list = append(list, ev)
		}

		out := roundTrip(t, list)
		require.Equal(t, []Event(list), []Event(out))
	})
}
