// Package workerside is the foreign side's runtime: the process spawned
// per spec.md §6's worker argument contract
// (`<plugin-library-path> <instance-socket-dir> <parent-pid>
// [plugin-type]`), which listens on the six-socket set and runs the
// dispatch loops that turn incoming DispatchRequest frames into handler
// calls. It does not load the plugin library named in its arguments; the
// handlers are supplied by the embedding command.
//
// Grounded on cmd/goclap/main.go's top-level "load library, set up
// callbacks, serve requests" shape, generalized from clapgo's
// single-process CLAP host loop into this package's cross-process
// dispatch loop over internal/transport.
package workerside

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/plugbridge/plugbridge/internal/arbiter"
	"github.com/plugbridge/plugbridge/internal/hostproc"
	"github.com/plugbridge/plugbridge/internal/message"
	"github.com/plugbridge/plugbridge/internal/rtprio"
	"github.com/plugbridge/plugbridge/internal/shm"
	"github.com/plugbridge/plugbridge/internal/transport"
	"github.com/plugbridge/plugbridge/internal/wire"
)

// Args is the parsed form of spec.md §6's process-argument contract.
type Args struct {
	PluginLibraryPath string
	InstanceSocketDir string
	ParentPID         int
	PluginType        string // optional; empty when the host omitted it
}

// ParseArgs parses os.Args[1:] per spec.md §6. Exit code semantics (0 on
// clean shutdown, nonzero on initialization failure) are the caller's
// responsibility in cmd/worker/main.go, not this package's.
func ParseArgs(argv []string) (Args, error) {
	if len(argv) < 3 {
		return Args{}, fmt.Errorf("workerside: expected at least 3 arguments, got %d", len(argv))
	}
	var a Args
	a.PluginLibraryPath = argv[0]
	a.InstanceSocketDir = argv[1]
	if _, err := fmt.Sscanf(argv[2], "%d", &a.ParentPID); err != nil {
		return Args{}, fmt.Errorf("workerside: parsing parent pid %q: %w", argv[2], err)
	}
	if len(argv) > 3 {
		a.PluginType = argv[3]
	}
	return a, nil
}

// Worker is one running instance of the foreign side.
type Worker struct {
	args    Args
	log     zerolog.Logger
	sockets *transport.Set
	seg     *shm.Segment
	arb     *arbiter.Arbiter
	watch   *hostproc.Watchdog
}

// New accepts the six-socket set in the instance directory and watches
// the host's PID. It does not load the plugin library or start any
// dispatch loop; the caller starts those with Serve, ServeTypedLifecycle,
// ServeProcess and ServeParameters once any additional setup (e.g.
// installing plugin-specific dispatch handlers) is done.
func New(ctx context.Context, args Args, log zerolog.Logger) (*Worker, error) {
	set, err := transport.Listen(ctx, args.InstanceSocketDir)
	if err != nil {
		return nil, fmt.Errorf("workerside: listening on instance sockets: %w", err)
	}

	w := &Worker{
		args:    args,
		log:     log,
		sockets: set,
		arb:     arbiter.New(),
	}
	w.watch = hostproc.NewWatchdog(args.ParentPID, 0)
	w.watch.Start(w.onHostDead)
	return w, nil
}

func (w *Worker) onHostDead() {
	w.log.Warn().Int("parent_pid", w.args.ParentPID).Msg("native host process is gone; shutting down")
	w.sockets.CloseAll()
	if w.seg != nil {
		_ = w.seg.Close(true)
	}
	os.Exit(1)
}

// MapAudio creates or remaps the shared-memory segment named shmName to
// geom, per spec.md §4.3's renegotiation-on-activate rule.
func (w *Worker) MapAudio(shmName string, geom shm.Geometry) error {
	if w.seg != nil {
		return w.seg.Remap(geom)
	}
	seg, err := shm.Open(shmName, geom)
	if err != nil {
		return fmt.Errorf("workerside: mapping shared audio segment: %w", err)
	}
	w.seg = seg
	return nil
}

// SyncRealtimePriority applies a policy/priority pair carried by a process
// request per spec.md §4.9. Called from ServeProcess whenever a request
// has one; exposed separately so tests can exercise it directly.
func (w *Worker) SyncRealtimePriority(policy rtprio.Policy, priority int) bool {
	return rtprio.Sync(policy, priority)
}

// AudioSegment exposes the mapped shared-memory segment for the process
// handler installed on the audio socket to read inputs from and write
// outputs into; nil until MapAudio has succeeded.
func (w *Worker) AudioSegment() *shm.Segment { return w.seg }

// Arbiter exposes the per-instance concurrency/recursion state so the
// plugin-specific dispatch handlers installed by cmd/worker can enforce
// spec.md §4.5's rules.
func (w *Worker) Arbiter() *arbiter.Arbiter { return w.arb }

// Sockets exposes the accepted socket set for handler wiring.
func (w *Worker) Sockets() *transport.Set { return w.sockets }

// Serve runs the dispatch loop against one socket role until the
// connection closes or ctx is cancelled, decoding each frame as a
// DispatchRequest, invoking dispatcher, and writing back the encoded
// DispatchResponse. Each of the socket roles that carries dispatch
// traffic (MainDispatch, EventDispatch) gets its own goroutine running
// Serve, matching spec.md §4.2's "one message family per socket" rule.
func (w *Worker) Serve(ctx context.Context, role transport.Socket, dispatcher *message.Dispatcher) error {
	conn := w.sockets.Get(role)
	if conn == nil {
		return fmt.Errorf("workerside: socket %s not connected", role)
	}
	if role == transport.MainDispatch && w.arb != nil {
		w.arb.SetMainThread()
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
		resp, err := dispatcher.Dispatch(payload)
		if err != nil {
			w.log.Error().Err(err).Str("socket", role.String()).Msg("dispatch failed")
			continue
		}
		if err := conn.WriteFrame(resp); err != nil {
			return err
		}
	}
}

// ServeProcess runs the audio socket's process() loop (spec.md §4.3): it
// decodes a ProcessRequest, opens the arbiter's MIDI-out buffering window
// for the duration of the call, runs handler, then flushes whatever
// host-callback traffic was buffered during the call onto the
// host-callback socket before replying, so it reaches the host "before
// returning from process" per spec.md §4.5. A request carrying a target
// realtime priority (spec.md §4.9) is applied before the call runs.
func (w *Worker) ServeProcess(ctx context.Context, handler message.ProcessHandler) error {
	conn := w.sockets.Get(transport.Audio)
	if conn == nil {
		return fmt.Errorf("workerside: socket %s not connected", transport.Audio)
	}
	w.arb.MarkAudioThread()
	defer w.arb.UnmarkAudioThread()

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
		w.arb.AssertAudioThread("process")
		req, err := message.DecodeProcessRequest(wire.NewDecoder(payload))
		if err != nil {
			w.log.Error().Err(err).Msg("decoding process request")
			continue
		}
		if req.HasRTPriority {
			w.SyncRealtimePriority(rtprio.Policy(req.RTPolicy), int(req.RTPriority))
		}

		w.arb.BeginProcess()
		resp, err := handler(req)
		buffered := w.arb.EndProcess()
		if err != nil {
			w.log.Error().Err(err).Msg("process handler failed")
			resp = &message.ProcessResponse{} // Status 0 is clap_process_status's ProcessError
		}
		w.flushHostCallbacks(buffered)

		e := wire.NewEncoder(64)
		resp.Encode(e)
		if err := conn.WriteFrame(e.Bytes()); err != nil {
			return err
		}
	}
}

// flushHostCallbacks writes every MIDI-out payload the arbiter buffered
// during the just-finished process() call onto the host-callback socket.
// Each is a round trip in its own right (the native side's host-callback
// server always replies) so the flush completes before ServeProcess
// writes the process response, satisfying spec.md §4.5's "delivers them
// to the host before returning from process."
func (w *Worker) flushHostCallbacks(buffered [][]byte) {
	if len(buffered) == 0 {
		return
	}
	conn := w.sockets.Get(transport.HostCallback)
	if conn == nil {
		w.log.Error().Msg("host-callback socket not connected; dropping buffered MIDI-out events")
		return
	}
	for _, raw := range buffered {
		if err := conn.WriteFrame(raw); err != nil {
			w.log.Error().Err(err).Msg("flushing buffered host-callback event")
			return
		}
		if _, err := conn.ReadFrame(); err != nil {
			w.log.Error().Err(err).Msg("reading flushed host-callback response")
			return
		}
	}
}

// SendHostCallback forwards req to the native side on the host-callback
// socket, the plug→host direction in spec.md §4.2's table. A MIDI-out
// event that arrives while a process() call is open is instead buffered
// by the arbiter (spec.md §4.5) and flushed by ServeProcess once
// process() returns; callers don't need to know which happened, since a
// synthesized response is returned immediately in the buffered case.
func (w *Worker) SendHostCallback(req *message.DispatchRequest) (*message.DispatchResponse, error) {
	e := wire.NewEncoder(64)
	req.Encode(e)
	if w.arb.BufferMIDIOut(e.Bytes()) {
		return &message.DispatchResponse{ReturnValue: 1}, nil
	}
	conn := w.sockets.Get(transport.HostCallback)
	if conn == nil {
		return nil, fmt.Errorf("workerside: socket %s not connected", transport.HostCallback)
	}
	if err := conn.WriteFrame(e.Bytes()); err != nil {
		return nil, err
	}
	payload, err := conn.ReadFrame()
	if err != nil {
		return nil, err
	}
	return message.DecodeDispatchResponse(wire.NewDecoder(payload))
}

// ServeParameters runs the parameters socket's get/setParameter loop
// (spec.md §4.2's "parameters | host→plug | get/setParameter" row), kept
// separate from Serve's opcode dispatch since getParameter/setParameter
// are their own plugin-API entry points outside VST2's dispatcher.
func (w *Worker) ServeParameters(ctx context.Context, handler message.ParameterHandler) error {
	conn := w.sockets.Get(transport.Parameters)
	if conn == nil {
		return fmt.Errorf("workerside: socket %s not connected", transport.Parameters)
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
		req, err := message.DecodeParameterRequest(wire.NewDecoder(payload))
		if err != nil {
			w.log.Error().Err(err).Msg("decoding parameter request")
			continue
		}
		resp, err := handler(req)
		if err != nil {
			w.log.Error().Err(err).Msg("parameter handler failed")
			resp = &message.ParameterResponse{}
		}
		e := wire.NewEncoder(8)
		resp.Encode(e)
		if err := conn.WriteFrame(e.Bytes()); err != nil {
			return err
		}
	}
}

// SendHello writes the control socket's once-per-instance handshake
// (spec.md §4.2's "init handshake, config, AEffect" row). It is the first
// frame written on the control socket, ahead of any probe answer.
func (w *Worker) SendHello(hello *message.ControlHello) error {
	conn := w.sockets.Get(transport.Control)
	if conn == nil {
		return fmt.Errorf("workerside: socket %s not connected", transport.Control)
	}
	e := wire.NewEncoder(32)
	hello.Encode(e)
	return conn.WriteFrame(e.Bytes())
}

// AnswerProbe serves the one-time extension/interface probe spec.md §4.4
// describes for VST3 and CLAP: it reads the native side's candidate list
// on the control socket and echoes every candidate back as supported,
// standing in for the real foreign-ABI loader's own query of the loaded
// plugin's supported interfaces.
func (w *Worker) AnswerProbe() error {
	conn := w.sockets.Get(transport.Control)
	if conn == nil {
		return fmt.Errorf("workerside: socket %s not connected", transport.Control)
	}
	payload, err := conn.ReadFrame()
	if err != nil {
		return err
	}
	req, err := message.DecodeProbeRequest(wire.NewDecoder(payload))
	if err != nil {
		return err
	}
	resp := &message.ProbeResponse{Supported: req.Candidates}
	e := wire.NewEncoder(64)
	resp.Encode(e)
	return conn.WriteFrame(e.Bytes())
}

// LifecycleHandler answers the typed VST3/CLAP activation pair
// ServeTypedLifecycle serves.
type LifecycleHandler interface {
	Activate(req *message.ActivateRequest) (*message.ActivateResponse, error)
	Deactivate(req *message.DeactivateRequest) error
}

// ServeTypedLifecycle runs the main-dispatch socket for VST3/CLAP
// instances, where spec.md §4.4 gives each method "one request/response
// pair" instead of routing through a single opcode dispatcher: every
// frame is led by a message.LifecycleOp byte naming which typed request
// follows.
func (w *Worker) ServeTypedLifecycle(ctx context.Context, handler LifecycleHandler) error {
	conn := w.sockets.Get(transport.MainDispatch)
	if conn == nil {
		return fmt.Errorf("workerside: socket %s not connected", transport.MainDispatch)
	}
	w.arb.SetMainThread()
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
		if len(payload) == 0 {
			w.log.Error().Msg("empty lifecycle frame")
			continue
		}
		w.arb.AssertMainThread("typed lifecycle dispatch")
		op := message.LifecycleOp(payload[0])
		d := wire.NewDecoder(payload[1:])
		e := wire.NewEncoder(32)
		switch op {
		case message.LifecycleActivate:
			req, err := message.DecodeActivateRequest(d)
			if err != nil {
				w.log.Error().Err(err).Msg("decoding activate request")
				continue
			}
			resp, err := handler.Activate(req)
			if err != nil {
				w.log.Error().Err(err).Msg("activate handler failed")
				resp = &message.ActivateResponse{}
			}
			resp.Encode(e)
		case message.LifecycleDeactivate:
			req, err := message.DecodeDeactivateRequest(d)
			if err != nil {
				w.log.Error().Err(err).Msg("decoding deactivate request")
				continue
			}
			if err := handler.Deactivate(req); err != nil {
				w.log.Error().Err(err).Msg("deactivate handler failed")
			}
			(message.Ack{}).Encode(e)
		default:
			w.log.Error().Uint8("op", uint8(op)).Msg("unknown lifecycle op")
			continue
		}
		if err := conn.WriteFrame(e.Bytes()); err != nil {
			return err
		}
	}
}

// Close tears down sockets, the shared-memory mapping, and the watchdog.
func (w *Worker) Close() error {
	w.watch.Stop()
	err := w.sockets.CloseAll()
	if w.seg != nil {
		if cerr := w.seg.Close(false); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
