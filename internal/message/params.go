package message

import "github.com/plugbridge/plugbridge/internal/wire"

// ParamOp distinguishes getParameter from setParameter on the parameters
// socket, which per spec.md §4.2's "parameters | host→plug |
// get/setParameter" row carries only these two calls and so has no opcode
// field of its own the way main-dispatch does.
type ParamOp uint8

const (
	ParamOpGet ParamOp = iota
	ParamOpSet
)

// ParameterRequest is one getParameter or setParameter call.
type ParameterRequest struct {
	Instance InstanceID
	Op       ParamOp
	Index    int32
	Value    float32 // meaningful only for ParamOpSet
}

// ParameterResponse carries the parameter's value: the result of
// getParameter, or setParameter's new value echoed back for confirmation.
type ParameterResponse struct {
	Value float32
}

// ParameterHandler answers one ParameterRequest for a live instance.
type ParameterHandler func(req *ParameterRequest) (*ParameterResponse, error)

func (r *ParameterRequest) Encode(e *wire.Encoder) {
	e.PutHandle64(uint64(r.Instance))
	e.PutUint8(uint8(r.Op))
	e.PutInt32(r.Index)
	e.PutFloat32(r.Value)
}

func DecodeParameterRequest(d *wire.Decoder) (*ParameterRequest, error) {
	inst, err := d.Handle64()
	if err != nil {
		return nil, err
	}
	op, err := d.Uint8()
	if err != nil {
		return nil, err
	}
	index, err := d.Int32()
	if err != nil {
		return nil, err
	}
	value, err := d.Float32()
	if err != nil {
		return nil, err
	}
	return &ParameterRequest{Instance: InstanceID(inst), Op: ParamOp(op), Index: index, Value: value}, nil
}

func (r *ParameterResponse) Encode(e *wire.Encoder) {
	e.PutFloat32(r.Value)
}

func DecodeParameterResponse(d *wire.Decoder) (*ParameterResponse, error) {
	v, err := d.Float32()
	if err != nil {
		return nil, err
	}
	return &ParameterResponse{Value: v}, nil
}
