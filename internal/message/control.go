package message

import "github.com/plugbridge/plugbridge/internal/wire"

// ControlHello is the once-per-instance message the worker writes
// unsolicited on the control socket immediately after the socket set is
// accepted, spec.md §4.2's "init handshake, config, AEffect" row: the
// populated AEffect-equivalent fields the native side needs before it can
// answer the host's own plugin-info queries.
type ControlHello struct {
	NumParams    int32
	NumPrograms  int32
	UniqueID     int32
	Version      int32
	Flags        int32
	InitialDelay int32
}

func (h *ControlHello) Encode(e *wire.Encoder) {
	e.PutInt32(h.NumParams)
	e.PutInt32(h.NumPrograms)
	e.PutInt32(h.UniqueID)
	e.PutInt32(h.Version)
	e.PutInt32(h.Flags)
	e.PutInt32(h.InitialDelay)
}

func DecodeControlHello(d *wire.Decoder) (*ControlHello, error) {
	var h ControlHello
	var err error
	if h.NumParams, err = d.Int32(); err != nil {
		return nil, err
	}
	if h.NumPrograms, err = d.Int32(); err != nil {
		return nil, err
	}
	if h.UniqueID, err = d.Int32(); err != nil {
		return nil, err
	}
	if h.Version, err = d.Int32(); err != nil {
		return nil, err
	}
	if h.Flags, err = d.Int32(); err != nil {
		return nil, err
	}
	if h.InitialDelay, err = d.Int32(); err != nil {
		return nil, err
	}
	return &h, nil
}
