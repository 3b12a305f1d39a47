package message

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plugbridge/plugbridge/internal/wire"
	"github.com/plugbridge/plugbridge/pkg/abi/vst2"
	"github.com/plugbridge/plugbridge/pkg/wireevent"
)

func TestDispatchRequestRoundTrip(t *testing.T) {
	req := &DispatchRequest{
		Instance: 7,
		Opcode:   vst2.EffProcessEvents,
		Index:    1,
		Value:    2,
		Option:   0.5,
		Data: Payload{
			Kind: PayloadEvents,
			Events: wireevent.List{
				{
					Header: wireevent.Header{Time: 3, Type: wireevent.TypeNoteOn},
					Note:   wireevent.Note{NoteID: 1, Key: 60, Velocity: 0.8},
				},
			},
		},
	}

	e := wire.NewEncoder(64)
	req.Encode(e)

	got, err := DecodeDispatchRequest(wire.NewDecoder(e.Bytes()))
	require.NoError(t, err)
	require.Equal(t, req.Instance, got.Instance)
	require.Equal(t, req.Opcode, got.Opcode)
	require.Equal(t, req.Data.Kind, got.Data.Kind)
	require.Len(t, got.Data.Events, 1)
	require.Equal(t, uint32(3), got.Data.Events[0].Header.Time)
}

func TestDispatchResponseRoundTripWithChunkPayload(t *testing.T) {
	resp := &DispatchResponse{
		ReturnValue: 1,
		Data:        Payload{Kind: PayloadChunk, Chunk: []byte{1, 2, 3, 4}},
	}
	e := wire.NewEncoder(32)
	resp.Encode(e)

	got, err := DecodeDispatchResponse(wire.NewDecoder(e.Bytes()))
	require.NoError(t, err)
	require.Equal(t, int64(1), got.ReturnValue)
	require.Equal(t, []byte{1, 2, 3, 4}, got.Data.Chunk)
}

func TestDefaultConverterReadsStringOrWantsString(t *testing.T) {
	var c DefaultConverter

	p, err := c.Read(vst2.EffGetProductString, 0, 0, []byte("MyPlugin\x00\x00\x00"))
	require.NoError(t, err)
	require.Equal(t, PayloadString, p.Kind)
	require.Equal(t, "MyPlugin", p.String)

	p, err = c.Read(vst2.EffGetProductString, 0, 0, make([]byte, 64))
	require.NoError(t, err)
	require.Equal(t, PayloadWantsString, p.Kind)
}

func TestDefaultConverterWriteRejectsOversizedString(t *testing.T) {
	var c DefaultConverter
	dst := make([]byte, 4)
	_, err := c.Write(vst2.EffGetProductString, dst, Payload{Kind: PayloadString, String: "too long for four bytes"})
	require.Error(t, err)
}

func TestDispatcherRoutesToRegisteredHandler(t *testing.T) {
	d := NewDispatcher()
	called := false
	d.Register(vst2.EffOpen, func(req *DispatchRequest) (*DispatchResponse, error) {
		called = true
		require.Equal(t, InstanceID(42), req.Instance)
		return &DispatchResponse{ReturnValue: 1}, nil
	})

	req := &DispatchRequest{Instance: 42, Opcode: vst2.EffOpen}
	e := wire.NewEncoder(32)
	req.Encode(e)

	out, err := d.Dispatch(e.Bytes())
	require.NoError(t, err)
	require.True(t, called)

	resp, err := DecodeDispatchResponse(wire.NewDecoder(out))
	require.NoError(t, err)
	require.Equal(t, int64(1), resp.ReturnValue)
}

func TestDispatcherFallsBackWhenOpcodeUnregistered(t *testing.T) {
	d := NewDispatcher()
	d.SetFallback(func(req *DispatchRequest) (*DispatchResponse, error) {
		return &DispatchResponse{ReturnValue: 0}, nil
	})

	req := &DispatchRequest{Instance: 1, Opcode: vst2.EffClose}
	e := wire.NewEncoder(32)
	req.Encode(e)

	_, err := d.Dispatch(e.Bytes())
	require.NoError(t, err)
}

func TestDispatcherErrorsWithNoHandlerOrFallback(t *testing.T) {
	d := NewDispatcher()
	req := &DispatchRequest{Instance: 1, Opcode: vst2.EffClose}
	e := wire.NewEncoder(32)
	req.Encode(e)

	_, err := d.Dispatch(e.Bytes())
	require.Error(t, err)
}

func TestDispatcherPropagatesHandlerError(t *testing.T) {
	d := NewDispatcher()
	sentinel := errors.New("boom")
	d.Register(vst2.EffOpen, func(req *DispatchRequest) (*DispatchResponse, error) {
		return nil, sentinel
	})

	req := &DispatchRequest{Instance: 1, Opcode: vst2.EffOpen}
	e := wire.NewEncoder(32)
	req.Encode(e)

	_, err := d.Dispatch(e.Bytes())
	require.ErrorIs(t, err, sentinel)
}

func TestProbeResponseSupports(t *testing.T) {
	req := &ProbeRequest{Instance: 9, Candidates: []string{"clap.audio-ports", "clap.gui"}}
	e := wire.NewEncoder(32)
	req.Encode(e)

	got, err := DecodeProbeRequest(wire.NewDecoder(e.Bytes()))
	require.NoError(t, err)
	require.Equal(t, req.Candidates, got.Candidates)

	resp := &ProbeResponse{Supported: []string{"clap.gui"}}
	e2 := wire.NewEncoder(32)
	resp.Encode(e2)
	gotResp, err := DecodeProbeResponse(wire.NewDecoder(e2.Bytes()))
	require.NoError(t, err)
	require.True(t, gotResp.Supports("clap.gui"))
	require.False(t, gotResp.Supports("clap.audio-ports"))
}

func TestParamsRescanRequestRoundTrip(t *testing.T) {
	req := &ParamsRescanRequest{Instance: 3, Flags: ParamRescanValues | ParamRescanText}
	e := wire.NewEncoder(16)
	req.Encode(e)

	got, err := DecodeParamsRescanRequest(wire.NewDecoder(e.Bytes()))
	require.NoError(t, err)
	require.Equal(t, req.Flags, got.Flags)
}
