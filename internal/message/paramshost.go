package message

import "github.com/plugbridge/plugbridge/internal/wire"

// Rescan flags, renamed from the teacher's pkg/host/params.go CLAP
// host-params extension constants (ParamRescanValues etc.) into this
// message type's own namespace now that they travel the wire instead of
// being passed straight into a cgo helper.
const (
	ParamRescanValues uint32 = 1 << 0
	ParamRescanText   uint32 = 1 << 1
	ParamRescanInfo   uint32 = 1 << 2
	ParamRescanAll    uint32 = 1 << 3
)

// Clear flags.
const (
	ParamClearAll         uint32 = 1 << 0
	ParamClearAutomations uint32 = 1 << 1
	ParamClearModulations uint32 = 1 << 2
)

// ParamsRequestFlushRequest is the CLAP clap_host_params_t.request_flush
// host callback, grounded on the teacher's ParamsHost.RequestFlush: the
// plugin asks the host to call its flush() method on the next opportunity
// because it has automation to report outside of a process() call.
type ParamsRequestFlushRequest struct {
	Instance InstanceID
}

// ParamsRescanRequest is clap_host_params_t.rescan: the plugin tells the
// host that parameter info (values, text, metadata) has changed.
type ParamsRescanRequest struct {
	Instance InstanceID
	Flags    uint32
}

// ParamsClearRequest is clap_host_params_t.clear: the plugin asks the host
// to clear automation/modulation for one parameter.
type ParamsClearRequest struct {
	Instance InstanceID
	ParamID  uint32
	Flags    uint32
}

// Ack is the shared empty response for host-callback requests that carry
// no return value beyond "received."
type Ack struct{}

func (r *ParamsRequestFlushRequest) Encode(e *wire.Encoder) {
	e.PutHandle64(uint64(r.Instance))
}

func DecodeParamsRequestFlushRequest(d *wire.Decoder) (*ParamsRequestFlushRequest, error) {
	inst, err := d.Handle64()
	if err != nil {
		return nil, err
	}
	return &ParamsRequestFlushRequest{Instance: InstanceID(inst)}, nil
}

func (r *ParamsRescanRequest) Encode(e *wire.Encoder) {
	e.PutHandle64(uint64(r.Instance))
	e.PutUint32(r.Flags)
}

func DecodeParamsRescanRequest(d *wire.Decoder) (*ParamsRescanRequest, error) {
	inst, err := d.Handle64()
	if err != nil {
		return nil, err
	}
	flags, err := d.Uint32()
	if err != nil {
		return nil, err
	}
	return &ParamsRescanRequest{Instance: InstanceID(inst), Flags: flags}, nil
}

func (r *ParamsClearRequest) Encode(e *wire.Encoder) {
	e.PutHandle64(uint64(r.Instance))
	e.PutUint32(r.ParamID)
	e.PutUint32(r.Flags)
}

func DecodeParamsClearRequest(d *wire.Decoder) (*ParamsClearRequest, error) {
	inst, err := d.Handle64()
	if err != nil {
		return nil, err
	}
	paramID, err := d.Uint32()
	if err != nil {
		return nil, err
	}
	flags, err := d.Uint32()
	if err != nil {
		return nil, err
	}
	return &ParamsClearRequest{Instance: InstanceID(inst), ParamID: paramID, Flags: flags}, nil
}

func (Ack) Encode(e *wire.Encoder) {}

func DecodeAck(d *wire.Decoder) (Ack, error) {
	return Ack{}, nil
}
