package message

import "github.com/plugbridge/plugbridge/internal/wire"

// LifecycleOp tags which typed VST3/CLAP lifecycle message follows on the
// main-dispatch socket. Unlike VST2, these ABIs have no single opcode
// dispatcher: spec.md §4.4 says they "get one request/response pair per
// method," so main-dispatch carries a small fixed set of typed pairs
// instead of opcode-tagged DispatchRequests, each led by this byte.
type LifecycleOp uint8

const (
	LifecycleActivate LifecycleOp = iota
	LifecycleDeactivate
)

// ActivateRequest collapses CLAP's activate() and VST3's
// IAudioProcessor::setupProcessing + IComponent::setActive(true) into one
// request/response pair; the two ABIs' activation arguments are close
// enough in shape that modeling them as a single wire message loses
// nothing this bridge tracks.
type ActivateRequest struct {
	Instance   InstanceID
	SampleRate float64
	MinFrames  uint32
	MaxFrames  uint32
}

// ActivateResponse reports whether the real plugin accepted activation.
type ActivateResponse struct {
	Accepted bool
}

// DeactivateRequest is CLAP's deactivate() / VST3's setActive(false).
type DeactivateRequest struct {
	Instance InstanceID
}

func (r *ActivateRequest) Encode(e *wire.Encoder) {
	e.PutHandle64(uint64(r.Instance))
	e.PutFloat64(r.SampleRate)
	e.PutUint32(r.MinFrames)
	e.PutUint32(r.MaxFrames)
}

func DecodeActivateRequest(d *wire.Decoder) (*ActivateRequest, error) {
	inst, err := d.Handle64()
	if err != nil {
		return nil, err
	}
	rate, err := d.Float64()
	if err != nil {
		return nil, err
	}
	minFrames, err := d.Uint32()
	if err != nil {
		return nil, err
	}
	maxFrames, err := d.Uint32()
	if err != nil {
		return nil, err
	}
	return &ActivateRequest{Instance: InstanceID(inst), SampleRate: rate, MinFrames: minFrames, MaxFrames: maxFrames}, nil
}

func (r *ActivateResponse) Encode(e *wire.Encoder) {
	e.PutBool(r.Accepted)
}

func DecodeActivateResponse(d *wire.Decoder) (*ActivateResponse, error) {
	ok, err := d.Bool()
	if err != nil {
		return nil, err
	}
	return &ActivateResponse{Accepted: ok}, nil
}

func (r *DeactivateRequest) Encode(e *wire.Encoder) {
	e.PutHandle64(uint64(r.Instance))
}

func DecodeDeactivateRequest(d *wire.Decoder) (*DeactivateRequest, error) {
	inst, err := d.Handle64()
	if err != nil {
		return nil, err
	}
	return &DeactivateRequest{Instance: InstanceID(inst)}, nil
}
