package message

import (
	"github.com/plugbridge/plugbridge/internal/wire"
)

// ProbeRequest asks the real object (CLAP plugin, or a VST3
// component/controller/view) which of a candidate set of extension or
// interface identifiers it supports. Reasoning about which interfaces a
// proxy object must implement is done once at object creation, per
// spec.md §4.4's closing paragraph, rather than probing on every call.
type ProbeRequest struct {
	Instance   InstanceID
	Candidates []string
}

// ProbeResponse is the subset of Candidates the real object actually
// supports; the requesting side instantiates a proxy advertising exactly
// this set.
type ProbeResponse struct {
	Supported []string
}

func (r *ProbeRequest) Encode(e *wire.Encoder) {
	e.PutHandle64(uint64(r.Instance))
	e.PutUint32(uint32(len(r.Candidates)))
	for _, c := range r.Candidates {
		e.PutString(c)
	}
}

func DecodeProbeRequest(d *wire.Decoder) (*ProbeRequest, error) {
	inst, err := d.Handle64()
	if err != nil {
		return nil, err
	}
	n, err := d.Uint32()
	if err != nil {
		return nil, err
	}
	candidates := make([]string, n)
	for i := range candidates {
		if candidates[i], err = d.String(); err != nil {
			return nil, err
		}
	}
	return &ProbeRequest{Instance: InstanceID(inst), Candidates: candidates}, nil
}

func (r *ProbeResponse) Encode(e *wire.Encoder) {
	e.PutUint32(uint32(len(r.Supported)))
	for _, s := range r.Supported {
		e.PutString(s)
	}
}

func DecodeProbeResponse(d *wire.Decoder) (*ProbeResponse, error) {
	n, err := d.Uint32()
	if err != nil {
		return nil, err
	}
	supported := make([]string, n)
	for i := range supported {
		if supported[i], err = d.String(); err != nil {
			return nil, err
		}
	}
	return &ProbeResponse{Supported: supported}, nil
}

// Supports reports whether id appears in the response's supported set,
// the check a proxy constructor makes once per candidate interface.
func (r *ProbeResponse) Supports(id string) bool {
	for _, s := range r.Supported {
		if s == id {
			return true
		}
	}
	return false
}
