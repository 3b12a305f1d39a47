// Package nativeside is the native side's runtime (spec.md §2): the code
// loaded directly by the host, which on plugin creation spawns a worker
// process through internal/hostproc, dials the six-socket set the worker
// listens on, and forwards every plugin-API entry point across it as a
// DispatchRequest/DispatchResponse pair. Every Open spawns a new worker;
// an already-running group worker is never joined.
//
// Grounded on cmd/goclap/main.go's plugin-creation path, generalized from
// an in-process plugin construction call into a cross-process spawn-and-
// dial sequence; internal/hostproc and internal/transport supply the
// process and socket mechanics this package only sequences.
package nativeside

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/plugbridge/plugbridge/internal/hostproc"
	"github.com/plugbridge/plugbridge/internal/message"
	"github.com/plugbridge/plugbridge/internal/shm"
	"github.com/plugbridge/plugbridge/internal/transport"
	"github.com/plugbridge/plugbridge/internal/wire"
)

// Config selects how this instance's worker process is spawned and
// socket directory is named.
type Config struct {
	WorkerPath  string
	PluginPath  string
	PluginType  string
	SocketRoot  string // parent directory under which per-instance dirs are created
	Lifetime    hostproc.Lifetime
	GroupKey    hostproc.Key
	Trace       bool
}

// Instance is one native-side plugin instance: a spawned worker process
// plus the dialed socket set and any mapped shared-memory
// audio segment.
type Instance struct {
	cfg     Config
	log     zerolog.Logger
	dir     string
	proc    *hostproc.Process
	sockets *transport.Set
	seg     *shm.Segment
	enc     *wire.Encoder
}

// Open spawns the worker process and dials all six sockets, per spec.md
// §6's process-argument contract and §4.2's fixed connect order. The
// instance directory is created under cfg.SocketRoot and named from a
// fresh UUID so concurrent instances never collide.
func Open(ctx context.Context, cfg Config, log zerolog.Logger) (*Instance, error) {
	id := uuid.New()
	dir := filepath.Join(cfg.SocketRoot, "plugbridge-"+id.String())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("nativeside: creating instance socket dir: %w", err)
	}

	proc, err := hostproc.Spawn(ctx, hostproc.SpawnConfig{
		WorkerPath:  cfg.WorkerPath,
		PluginPath:  cfg.PluginPath,
		InstanceDir: dir,
		PluginType:  cfg.PluginType,
		Lifetime:    cfg.Lifetime,
		Key:         cfg.GroupKey,
		Trace:       cfg.Trace,
	})
	if err != nil {
		return nil, fmt.Errorf("nativeside: spawning worker: %w", err)
	}

	set, err := transport.Dial(dir)
	if err != nil {
		_ = proc.Kill()
		return nil, fmt.Errorf("nativeside: dialing worker sockets: %w", err)
	}

	return &Instance{cfg: cfg, log: log, dir: dir, proc: proc, sockets: set, enc: wire.NewEncoder(256)}, nil
}

// Dispatch sends req over socket role and decodes the reply, matching
// the blocking call/response shape of the plugin APIs' own dispatch()
// entry points (the host thread calling in blocks on the corresponding
// socket's ReadFrame until the worker replies).
func (in *Instance) Dispatch(role transport.Socket, req *message.DispatchRequest) (*message.DispatchResponse, error) {
	conn := in.sockets.Get(role)
	if conn == nil {
		return nil, fmt.Errorf("nativeside: socket %s not connected", role)
	}

	in.enc.Reset()
	req.Encode(in.enc)
	if err := conn.WriteFrame(in.enc.Bytes()); err != nil {
		return nil, fmt.Errorf("nativeside: writing dispatch request: %w", err)
	}

	payload, err := conn.ReadFrame()
	if err != nil {
		return nil, fmt.Errorf("nativeside: reading dispatch response: %w", err)
	}
	return message.DecodeDispatchResponse(wire.NewDecoder(payload))
}

// PluginType reports the ABI this instance was opened for ("vst2",
// "vst3", or "clap"), deciding which of Dispatch or the typed
// Activate/Deactivate/Process calls below applies.
func (in *Instance) PluginType() string { return in.cfg.PluginType }

// ReadHello reads the control socket's once-per-instance handshake the
// worker writes unsolicited immediately after the socket set is
// accepted (spec.md §4.2's "init handshake, config, AEffect" row).
func (in *Instance) ReadHello() (*message.ControlHello, error) {
	conn := in.sockets.Get(transport.Control)
	if conn == nil {
		return nil, fmt.Errorf("nativeside: socket %s not connected", transport.Control)
	}
	payload, err := conn.ReadFrame()
	if err != nil {
		return nil, fmt.Errorf("nativeside: reading control hello: %w", err)
	}
	return message.DecodeControlHello(wire.NewDecoder(payload))
}

// Probe asks the worker which of candidates the real VST3/CLAP object
// supports, the one-time interface probe spec.md §4.4 describes for
// these two ABIs. It is meaningless for VST2, which has no equivalent
// capability query.
func (in *Instance) Probe(candidates []string) (*message.ProbeResponse, error) {
	conn := in.sockets.Get(transport.Control)
	if conn == nil {
		return nil, fmt.Errorf("nativeside: socket %s not connected", transport.Control)
	}
	req := &message.ProbeRequest{Candidates: candidates}
	in.enc.Reset()
	req.Encode(in.enc)
	if err := conn.WriteFrame(in.enc.Bytes()); err != nil {
		return nil, fmt.Errorf("nativeside: writing probe request: %w", err)
	}
	payload, err := conn.ReadFrame()
	if err != nil {
		return nil, fmt.Errorf("nativeside: reading probe response: %w", err)
	}
	return message.DecodeProbeResponse(wire.NewDecoder(payload))
}

// ActivateTyped and DeactivateTyped send the VST3/CLAP lifecycle pair
// spec.md §4.4 calls for ("one request/response pair per method")
// instead of routing through Dispatch's VST2 opcode scheme. Both travel
// the main-dispatch socket prefixed with a message.LifecycleOp byte, per
// workerside.Worker.ServeTypedLifecycle.

func (in *Instance) ActivateTyped(req *message.ActivateRequest) (*message.ActivateResponse, error) {
	conn := in.sockets.Get(transport.MainDispatch)
	if conn == nil {
		return nil, fmt.Errorf("nativeside: socket %s not connected", transport.MainDispatch)
	}
	in.enc.Reset()
	in.enc.PutUint8(uint8(message.LifecycleActivate))
	req.Encode(in.enc)
	if err := conn.WriteFrame(in.enc.Bytes()); err != nil {
		return nil, fmt.Errorf("nativeside: writing activate request: %w", err)
	}
	payload, err := conn.ReadFrame()
	if err != nil {
		return nil, fmt.Errorf("nativeside: reading activate response: %w", err)
	}
	return message.DecodeActivateResponse(wire.NewDecoder(payload))
}

func (in *Instance) DeactivateTyped(req *message.DeactivateRequest) error {
	conn := in.sockets.Get(transport.MainDispatch)
	if conn == nil {
		return fmt.Errorf("nativeside: socket %s not connected", transport.MainDispatch)
	}
	in.enc.Reset()
	in.enc.PutUint8(uint8(message.LifecycleDeactivate))
	req.Encode(in.enc)
	if err := conn.WriteFrame(in.enc.Bytes()); err != nil {
		return fmt.Errorf("nativeside: writing deactivate request: %w", err)
	}
	payload, err := conn.ReadFrame()
	if err != nil {
		return fmt.Errorf("nativeside: reading deactivate response: %w", err)
	}
	_, err = message.DecodeAck(wire.NewDecoder(payload))
	return err
}

// Process sends one process() call over the audio socket and returns the
// worker's reply, spec.md §4.3's request/reply pair. The audio samples
// themselves cross through the shared-memory segment mapped by MapAudio,
// not this frame.
func (in *Instance) Process(req *message.ProcessRequest) (*message.ProcessResponse, error) {
	conn := in.sockets.Get(transport.Audio)
	if conn == nil {
		return nil, fmt.Errorf("nativeside: socket %s not connected", transport.Audio)
	}
	in.enc.Reset()
	req.Encode(in.enc)
	if err := conn.WriteFrame(in.enc.Bytes()); err != nil {
		return nil, fmt.Errorf("nativeside: writing process request: %w", err)
	}
	payload, err := conn.ReadFrame()
	if err != nil {
		return nil, fmt.Errorf("nativeside: reading process response: %w", err)
	}
	return message.DecodeProcessResponse(wire.NewDecoder(payload))
}

// GetParameter and SetParameter are the parameters socket's two calls
// (spec.md §4.2's "parameters | host→plug | get/setParameter" row).

func (in *Instance) GetParameter(index int32) (float32, error) {
	return in.parameterRoundTrip(&message.ParameterRequest{Op: message.ParamOpGet, Index: index})
}

func (in *Instance) SetParameter(index int32, value float32) (float32, error) {
	return in.parameterRoundTrip(&message.ParameterRequest{Op: message.ParamOpSet, Index: index, Value: value})
}

func (in *Instance) parameterRoundTrip(req *message.ParameterRequest) (float32, error) {
	conn := in.sockets.Get(transport.Parameters)
	if conn == nil {
		return 0, fmt.Errorf("nativeside: socket %s not connected", transport.Parameters)
	}
	in.enc.Reset()
	req.Encode(in.enc)
	if err := conn.WriteFrame(in.enc.Bytes()); err != nil {
		return 0, fmt.Errorf("nativeside: writing parameter request: %w", err)
	}
	payload, err := conn.ReadFrame()
	if err != nil {
		return 0, fmt.Errorf("nativeside: reading parameter response: %w", err)
	}
	resp, err := message.DecodeParameterResponse(wire.NewDecoder(payload))
	if err != nil {
		return 0, err
	}
	return resp.Value, nil
}

// MapAudio creates the shared-memory segment for the instance, to be
// called once the worker has reported (over the Audio socket's activate
// response) the geometry it negotiated, per spec.md §4.3.
func (in *Instance) MapAudio(shmName string, geom shm.Geometry) error {
	seg, err := shm.Create(shmName, geom)
	if err != nil {
		return fmt.Errorf("nativeside: creating shared audio segment: %w", err)
	}
	in.seg = seg
	return nil
}

// AudioSegment exposes the mapped segment for the audio-processing
// goroutine to read/write into, once MapAudio has succeeded.
func (in *Instance) AudioSegment() *shm.Segment { return in.seg }

// Close kills the worker process (if it hasn't already exited) and tears
// down the socket set and shared-memory mapping.
func (in *Instance) Close() error {
	err := in.sockets.CloseAll()
	if in.seg != nil {
		if cerr := in.seg.Close(true); cerr != nil && err == nil {
			err = cerr
		}
	}
	if kerr := in.proc.Kill(); kerr != nil && err == nil {
		err = kerr
	}
	return err
}
