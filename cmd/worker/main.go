// The worker command is the foreign side's entry point (spec.md §6): the
// process the native side spawns per plugin instance (or instance group),
// which listens on the six-socket set and serves dispatch requests until
// the host process disappears. It does not load the plugin library named
// in its arguments: audio passes straight through, parameter requests are
// echoed, and activation is always accepted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/rs/zerolog"

	"github.com/plugbridge/plugbridge/internal/config"
	"github.com/plugbridge/plugbridge/internal/dnd"
	"github.com/plugbridge/plugbridge/internal/editor"
	"github.com/plugbridge/plugbridge/internal/message"
	"github.com/plugbridge/plugbridge/internal/telemetry"
	"github.com/plugbridge/plugbridge/internal/transport"
	"github.com/plugbridge/plugbridge/internal/workerside"
	"github.com/plugbridge/plugbridge/pkg/abi/clap"
	"github.com/plugbridge/plugbridge/pkg/abi/vst2"
	"github.com/plugbridge/plugbridge/pkg/audio"
)

func main() {
	os.Exit(run())
}

func run() int {
	env := config.Load()
	logOut := os.Stderr
	if env.LogFilePath != "" {
		f, err := os.OpenFile(env.LogFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "worker: opening log file %q: %v\n", env.LogFilePath, err)
			return 1
		}
		defer f.Close()
		logOut = f
	}
	logger := telemetry.New(telemetry.Config{Out: logOut, Verbosity: env.LogVerbosity, Component: "worker"})

	args, err := workerside.ParseArgs(os.Args[1:])
	if err != nil {
		logger.Error().Err(err).Msg("bad process arguments")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := workerside.New(ctx, args, *logger.Raw())
	if err != nil {
		logger.Error().Err(err).Msg("failed to establish socket set")
		return 1
	}
	defer w.Close()

	ed, err := newEditorHandlers(w, *logger.Raw())
	if err != nil {
		logger.Warn().Err(err).Msg("editor embedding unavailable; effEditOpen will fail")
	} else {
		defer ed.close()
	}

	errCh := make(chan error, 6)

	switch args.PluginType {
	case "vst3", "clap":
		go func() { errCh <- w.ServeTypedLifecycle(ctx, newLifecycleHandler(w)) }()
	default:
		dispatcher := buildVST2Dispatcher(w, ed)
		go func() { errCh <- w.Serve(ctx, transport.MainDispatch, dispatcher) }()
		go func() { errCh <- w.Serve(ctx, transport.EventDispatch, dispatcher) }()
	}

	if err := sendControlHandshake(w, args); err != nil {
		logger.Error().Err(err).Msg("control socket handshake failed")
		return 1
	}

	go func() { errCh <- w.ServeProcess(ctx, buildProcessHandler(w)) }()
	go func() { errCh <- w.ServeParameters(ctx, buildParameterHandler()) }()

	select {
	case <-ctx.Done():
		logger.Basic().Msg("shutting down on signal")
		return 0
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("dispatch loop terminated")
			return 1
		}
		return 0
	}
}

// sendControlHandshake writes the control socket's once-per-instance
// hello (spec.md §4.2) and, for the two probe-based ABIs, answers the one
// extension/interface probe the native side issues at construction
// (spec.md §4.4). There is no real foreign plugin binary loaded by this
// worker, so the advertised parameter/program counts are fixed stand-ins
// rather than values read out of a loaded plugin.
func sendControlHandshake(w *workerside.Worker, args workerside.Args) error {
	hello := &message.ControlHello{NumParams: 0, NumPrograms: 1, UniqueID: 0, Version: 1}
	if err := w.SendHello(hello); err != nil {
		return err
	}
	if args.PluginType == "vst3" || args.PluginType == "clap" {
		return w.AnswerProbe()
	}
	return nil
}

// buildProcessHandler returns the audio socket's process() handler. With
// no foreign plugin binary loaded, the worker passes audio straight
// through from input to output across the mapped shared-memory segment,
// the same degenerate behavior a pass-through effect uses to exercise a
// processing path without modeling real DSP.
func buildProcessHandler(w *workerside.Worker) message.ProcessHandler {
	return func(req *message.ProcessRequest) (*message.ProcessResponse, error) {
		if seg := w.AudioSegment(); seg != nil {
			in, err := seg.Inputs()
			if err == nil {
				out, err := seg.Outputs()
				if err == nil {
					inBuf := audio.NewBuffer(in.Channels(), in.Frames())
					if rerr := in.ReadInto(inBuf); rerr == nil {
						_ = out.WriteFrom(inBuf)
					}
				}
			}
		}
		return &message.ProcessResponse{Status: int32(clap.ProcessContinue)}, nil
	}
}

func buildParameterHandler() message.ParameterHandler {
	return func(req *message.ParameterRequest) (*message.ParameterResponse, error) {
		return &message.ParameterResponse{Value: req.Value}, nil
	}
}

// lifecycleHandler answers the VST3/CLAP typed activate/deactivate pair
// with a fixed accept, the same "no real plugin loaded" stand-in
// buildProcessHandler uses for the audio path.
type lifecycleHandler struct {
	w *workerside.Worker
}

func newLifecycleHandler(w *workerside.Worker) *lifecycleHandler {
	return &lifecycleHandler{w: w}
}

func (h *lifecycleHandler) Activate(req *message.ActivateRequest) (*message.ActivateResponse, error) {
	return &message.ActivateResponse{Accepted: true}, nil
}

func (h *lifecycleHandler) Deactivate(req *message.DeactivateRequest) error {
	return nil
}

// buildVST2Dispatcher wires the opcode handlers this worker actually
// implements onto a fresh Dispatcher, falling back to an inert
// zero-return for everything else.
func buildVST2Dispatcher(w *workerside.Worker, ed *editorHandlers) *message.Dispatcher {
	dispatcher := message.NewDispatcher()
	dispatcher.SetFallback(func(req *message.DispatchRequest) (*message.DispatchResponse, error) {
		return &message.DispatchResponse{ReturnValue: 0}, nil
	})
	if ed != nil {
		dispatcher.Register(vst2.EffEditOpen, ed.editOpen)
		dispatcher.Register(vst2.EffEditGetRect, ed.editGetRect)
		dispatcher.Register(vst2.EffEditClose, ed.editClose)
	}
	return dispatcher
}

// editorHandlers holds the worker's one editor embedder and drag-and-drop
// proxy, and the dedicated GUI-thread goroutine spec.md §4.5 requires all
// window operations to run on.
type editorHandlers struct {
	w        *workerside.Worker
	conn     *xgb.Conn
	embedder *editor.Embedder
	proxy    *dnd.Proxy
	stop     chan struct{}

	foreign xproto.Window // placeholder standing in for the plugin's own GUI window
	width   uint16
	height  uint16
}

// newEditorHandlers opens an X11 connection and constructs the embedder
// and drag-and-drop proxy the effEditOpen/effEditGetRect/effEditClose
// handlers below drive, and starts the GUI-thread goroutine that serves
// arb.GUI()'s queue. Returns an error (not a panic) when no X server is
// reachable, since a worker process run in a headless CI container has no
// display to embed into.
func newEditorHandlers(w *workerside.Worker, log zerolog.Logger) (*editorHandlers, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("worker: connecting to X server: %w", err)
	}
	embedder, err := editor.New(conn, log)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("worker: constructing embedder: %w", err)
	}
	proxy, err := dnd.New(conn, log)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("worker: constructing drag-and-drop proxy: %w", err)
	}
	eh := &editorHandlers{w: w, conn: conn, embedder: embedder, proxy: proxy, stop: make(chan struct{})}
	go w.Arbiter().GUI().Run(eh.stop)
	return eh, nil
}

func (eh *editorHandlers) close() {
	close(eh.stop)
	eh.embedder.Close()
	eh.conn.Close()
}

// editOpen implements effEditOpen: the host's parent window id travels in
// req.Value, per VST2's own `dispatcher(effEditOpen, 0, 0, (void*)parent,
// 0)` convention. There is no foreign plugin binary loaded by this
// worker, so createPlaceholderWindow stands in for the window a real
// plugin would have created; everything downstream (the sandwich,
// coordinate correction, focus handoff) runs unmodified against it.
func (eh *editorHandlers) editOpen(req *message.DispatchRequest) (*message.DispatchResponse, error) {
	eh.w.Arbiter().AssertMainThread("effEditOpen")
	parent := xproto.Window(uint32(req.Value))
	_, err := eh.w.Arbiter().GUI().Enqueue(func() (any, error) {
		foreign, width, height, err := eh.createPlaceholderWindow()
		if err != nil {
			return nil, err
		}
		if err := eh.embedder.Open(parent, foreign); err != nil {
			return nil, err
		}
		eh.foreign, eh.width, eh.height = foreign, width, height
		eh.proxy.Acquire()
		return nil, nil
	}).Wait()
	if err != nil {
		return &message.DispatchResponse{ReturnValue: 0}, nil
	}
	return &message.DispatchResponse{ReturnValue: 1}, nil
}

// editGetRect implements effEditGetRect, returning the size negotiated by
// the last editOpen (or a sensible default before one has happened).
func (eh *editorHandlers) editGetRect(req *message.DispatchRequest) (*message.DispatchResponse, error) {
	eh.w.Arbiter().AssertMainThread("effEditGetRect")
	width, height := eh.width, eh.height
	if width == 0 || height == 0 {
		width, height = 400, 300
	}
	rect := vst2.Rect{Top: 0, Left: 0, Bottom: int16(height), Right: int16(width)}
	return &message.DispatchResponse{
		ReturnValue: 1,
		Data:        message.Payload{Kind: message.PayloadRect, Rect: rect},
	}, nil
}

// editClose implements effEditClose: release the drag-and-drop proxy and
// defer-close the embedder per spec.md §4.6.
func (eh *editorHandlers) editClose(req *message.DispatchRequest) (*message.DispatchResponse, error) {
	eh.w.Arbiter().AssertMainThread("effEditClose")
	_, err := eh.w.Arbiter().GUI().Enqueue(func() (any, error) {
		if err := eh.proxy.Release(); err != nil {
			return nil, err
		}
		eh.embedder.Close()
		return nil, nil
	}).Wait()
	if err != nil {
		return &message.DispatchResponse{ReturnValue: 0}, nil
	}
	return &message.DispatchResponse{ReturnValue: 1}, nil
}

// createPlaceholderWindow creates a bare window standing in for the
// foreign plugin's own GUI window. This worker never loads a real Windows
// plugin binary, so there is no genuine foreign window to hand the
// embedder; this is the acknowledged limitation that keeps the rest of
// the editor-embedding path (sandwich construction, coordinate
// correction, focus handoff) exercised against a real X11 window instead
// of a mock.
func (eh *editorHandlers) createPlaceholderWindow() (xproto.Window, uint16, uint16, error) {
	const width, height = 400, 300
	wid, err := xproto.NewWindowId(eh.conn)
	if err != nil {
		return 0, 0, 0, err
	}
	screen := xproto.Setup(eh.conn).DefaultScreen(eh.conn)
	err = xproto.CreateWindowChecked(
		eh.conn,
		screen.RootDepth,
		wid,
		screen.Root,
		0, 0, width, height, 0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		0,
		nil,
	).Check()
	if err != nil {
		return 0, 0, 0, err
	}
	return wid, width, height, nil
}
