package message

import (
	"github.com/plugbridge/plugbridge/internal/wire"
	"github.com/plugbridge/plugbridge/pkg/wireevent"
)

// ProcessRequest is the audio socket's sole message family (spec.md §4.3):
// a small process() request carrying the frame count plus any
// host-originated events (transport, parameter changes, MIDI) for this
// block. The audio samples themselves cross through the shared-memory
// segment, not this frame. At low frequency (spec.md §4.9, roughly every
// 10 s) the request also carries a target realtime scheduling priority for
// the worker's audio thread to adopt.
type ProcessRequest struct {
	Instance   InstanceID
	FrameCount int32
	Events     wireevent.List

	HasRTPriority bool
	RTPolicy      int32
	RTPriority    int32
}

// ProcessResponse is process()'s reply: a status code plus any events the
// plugin generated for the host during the call. OutputEvents carries
// exactly what the ProcessHandler returned; events sent over the
// host-callback socket during the call are not merged into it.
type ProcessResponse struct {
	Status       int32
	OutputEvents wireevent.List
}

// ProcessHandler runs one process() call for a live instance.
type ProcessHandler func(req *ProcessRequest) (*ProcessResponse, error)

func (r *ProcessRequest) Encode(e *wire.Encoder) {
	e.PutHandle64(uint64(r.Instance))
	e.PutInt32(r.FrameCount)
	r.Events.Encode(e)
	e.PutOptionalPresent(r.HasRTPriority)
	if r.HasRTPriority {
		e.PutInt32(r.RTPolicy)
		e.PutInt32(r.RTPriority)
	}
}

func DecodeProcessRequest(d *wire.Decoder) (*ProcessRequest, error) {
	inst, err := d.Handle64()
	if err != nil {
		return nil, err
	}
	frames, err := d.Int32()
	if err != nil {
		return nil, err
	}
	events, err := wireevent.DecodeList(d)
	if err != nil {
		return nil, err
	}
	hasPriority, err := d.OptionalPresent()
	if err != nil {
		return nil, err
	}
	var policy, priority int32
	if hasPriority {
		if policy, err = d.Int32(); err != nil {
			return nil, err
		}
		if priority, err = d.Int32(); err != nil {
			return nil, err
		}
	}
	return &ProcessRequest{
		Instance:      InstanceID(inst),
		FrameCount:    frames,
		Events:        events,
		HasRTPriority: hasPriority,
		RTPolicy:      policy,
		RTPriority:    priority,
	}, nil
}

func (r *ProcessResponse) Encode(e *wire.Encoder) {
	e.PutInt32(r.Status)
	r.OutputEvents.Encode(e)
}

func DecodeProcessResponse(d *wire.Decoder) (*ProcessResponse, error) {
	status, err := d.Int32()
	if err != nil {
		return nil, err
	}
	events, err := wireevent.DecodeList(d)
	if err != nil {
		return nil, err
	}
	return &ProcessResponse{Status: status, OutputEvents: events}, nil
}
