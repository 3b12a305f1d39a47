// The hostsim command is a manual smoke-test harness, not a production
// host: it spawns a worker for one manifest, drives activate/process
// over the socket set the way a real host would, and pipes live audio
// through gordonklaus/portaudio so a developer can listen to the bridged
// plugin directly from a terminal. It is deliberately not linked into
// cmd/nativeplugin or cmd/worker — spec.md's DOMAIN STACK names
// portaudio purely for this kind of manual verification tool, the way a
// teacher's own test rig would use an audio I/O library no production
// entry point needs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gordonklaus/portaudio"

	"github.com/plugbridge/plugbridge/internal/hostproc"
	"github.com/plugbridge/plugbridge/internal/message"
	"github.com/plugbridge/plugbridge/internal/nativeside"
	"github.com/plugbridge/plugbridge/internal/shm"
	"github.com/plugbridge/plugbridge/internal/telemetry"
	"github.com/plugbridge/plugbridge/internal/transport"
	"github.com/plugbridge/plugbridge/pkg/abi/vst2"
	"github.com/plugbridge/plugbridge/pkg/audio"
	"github.com/plugbridge/plugbridge/pkg/manifest"
)

var (
	manifestPath = flag.String("manifest", "", "Path to a manifest JSON file produced by genmanifest")
	workerPath   = flag.String("worker", "", "Path to the plugbridge worker binary")
	sampleRate   = flag.Float64("sample-rate", 48000, "Sample rate in Hz")
	framesPerBuf = flag.Uint("frames", 256, "Frames per audio buffer")
)

func main() {
	flag.Parse()
	logger := telemetry.New(telemetry.Config{Component: "hostsim"})

	if *manifestPath == "" || *workerPath == "" {
		fmt.Fprintln(os.Stderr, "hostsim: -manifest and -worker are required")
		os.Exit(1)
	}

	m, err := manifest.LoadFromFile(*manifestPath)
	if err != nil {
		logger.Error().Err(err).Msg("loading manifest")
		os.Exit(1)
	}
	if err := m.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid manifest")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inst, err := nativeside.Open(ctx, nativeside.Config{
		WorkerPath: *workerPath,
		PluginPath: m.Build.ForeignLibraryPath,
		PluginType: m.Build.ABI,
		SocketRoot: os.TempDir(),
		Lifetime:   hostproc.Individual,
	}, *logger.Raw())
	if err != nil {
		logger.Error().Err(err).Msg("opening worker instance")
		os.Exit(1)
	}
	defer inst.Close()

	resp, err := inst.Dispatch(transport.MainDispatch, &message.DispatchRequest{
		Opcode: vst2.EffOpen,
		Value:  int64(*framesPerBuf),
		Option: float32(*sampleRate),
	})
	if err != nil || resp.ReturnValue == 0 {
		logger.Error().Err(err).Msg("plugin refused to activate")
		os.Exit(1)
	}

	geom := shm.Geometry{SampleSize: shm.SampleSize, MaxFrames: uint32(*framesPerBuf), Inputs: 2, Outputs: 2}
	shmName := fmt.Sprintf("plugbridge-hostsim-%d", os.Getpid())
	if err := inst.MapAudio(shmName, geom); err != nil {
		logger.Error().Err(err).Msg("mapping shared audio segment")
		os.Exit(1)
	}

	if err := portaudio.Initialize(); err != nil {
		logger.Error().Err(err).Msg("initializing portaudio")
		os.Exit(1)
	}
	defer portaudio.Terminate()

	seg := inst.AudioSegment()
	inBuf := audio.NewBuffer(2, int(*framesPerBuf))
	outBuf := audio.NewBuffer(2, int(*framesPerBuf))
	stream, err := portaudio.OpenDefaultStream(2, 2, *sampleRate, int(*framesPerBuf), func(in, out [][]float32) {
		for ch := range in {
			copy(inBuf[ch], in[ch])
		}
		inputs, err := seg.Inputs()
		if err != nil {
			logger.Error().Err(err).Msg("input view not mapped")
			return
		}
		if err := inputs.WriteFrom(inBuf); err != nil {
			logger.Error().Err(err).Msg("writing audio segment input")
			return
		}
		if _, err := inst.Process(&message.ProcessRequest{FrameCount: int32(*framesPerBuf)}); err != nil {
			logger.Error().Err(err).Msg("process request failed")
			return
		}
		outputs, err := seg.Outputs()
		if err != nil {
			logger.Error().Err(err).Msg("output view not mapped")
			return
		}
		if err := outputs.ReadInto(outBuf); err != nil {
			logger.Error().Err(err).Msg("reading audio segment output")
			return
		}
		for ch := range out {
			copy(out[ch], outBuf[ch])
		}
	})
	if err != nil {
		logger.Error().Err(err).Msg("opening portaudio stream")
		os.Exit(1)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		logger.Error().Err(err).Msg("starting portaudio stream")
		os.Exit(1)
	}
	logger.Basic().Msg("hostsim running; press Ctrl-C to stop")

	<-ctx.Done()
	_ = stream.Stop()
}
