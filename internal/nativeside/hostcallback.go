package nativeside

import (
	"context"
	"fmt"

	"github.com/plugbridge/plugbridge/internal/message"
	"github.com/plugbridge/plugbridge/internal/transport"
	"github.com/plugbridge/plugbridge/internal/wire"
	"github.com/plugbridge/plugbridge/pkg/abi/vst2"
)

// ServeHostCallbacks runs the host-callback socket's loop: unlike the
// other five sockets, this one is plug→host (spec.md §4.2), so the
// native side is the server here and the worker is the caller via
// workerside.Worker.SendHostCallback. sink answers whatever the fast
// path below doesn't.
func (in *Instance) ServeHostCallbacks(ctx context.Context, sink message.Handler) error {
	conn := in.sockets.Get(transport.HostCallback)
	if conn == nil {
		return fmt.Errorf("nativeside: socket %s not connected", transport.HostCallback)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		payload, err := conn.ReadFrame()
		if err != nil {
			return err
		}
		req, err := message.DecodeDispatchRequest(wire.NewDecoder(payload))
		if err != nil {
			in.log.Error().Err(err).Msg("decoding host callback request")
			continue
		}
		resp, err := answerHostCallback(req, sink)
		if err != nil {
			in.log.Error().Err(err).Msg("answering host callback")
			continue
		}
		e := wire.NewEncoder(32)
		resp.Encode(e)
		if err := conn.WriteFrame(e.Bytes()); err != nil {
			return err
		}
	}
}

// answerHostCallback intercepts audioMasterCanDo queries the bridge can
// answer itself from vst2.HostCanDoFastPath, without round-tripping into
// the real host API for capabilities every host either always or never
// has; everything else falls through to sink.
func answerHostCallback(req *message.DispatchRequest, sink message.Handler) (*message.DispatchResponse, error) {
	if vst2.HostOpcode(req.Opcode) == vst2.AudioMasterCanDo && req.Data.Kind == message.PayloadString {
		if can, ok := vst2.HostCanDoFastPath[vst2.CanDo(req.Data.String)]; ok {
			ret := int64(0)
			if can {
				ret = 1
			}
			return &message.DispatchResponse{ReturnValue: ret}, nil
		}
	}
	return sink(req)
}
