// The nativeplugin shared library is the bridge's native side (spec.md
// §2), loaded into the host. It exports GoCreatePlugin, GoDestroy,
// GoActivate, GoDeactivate and GoGetVersion through cgo; it defines no
// CLAP, VST2 or VST3 entry symbol itself. GoCreatePlugin spawns a worker
// process, and the other exports forward their call across the
// six-socket set instead of running any plugin logic themselves.
//
// Grounded on cmd/goclap/main.go's cgo export shape (GetPluginCount/
// GetPluginInfo/CreatePlugin plus a handle registry mapping opaque
// plugin pointers to Go-side state) and cmd/clapgo/main.go's minimal
// "forward into the bridge package" main(); adapted here so the Go-side
// state a handle maps to is a nativeside.Instance (a spawned worker plus
// its dialed sockets) instead of an in-process plugin object.
package main

/*
#include <stdint.h>
#include <stdbool.h>
#include <stdlib.h>
#include "../../include/clap/include/clap/clap.h"
*/
import "C"

import (
	"context"
	"fmt"
	"os"
	"sync"
	"unsafe"

	"github.com/plugbridge/plugbridge/internal/config"
	"github.com/plugbridge/plugbridge/internal/hostproc"
	"github.com/plugbridge/plugbridge/internal/message"
	"github.com/plugbridge/plugbridge/internal/nativeside"
	"github.com/plugbridge/plugbridge/internal/telemetry"
	"github.com/plugbridge/plugbridge/internal/transport"
	"github.com/plugbridge/plugbridge/pkg/abi/clap"
	"github.com/plugbridge/plugbridge/pkg/abi/vst2"
	"github.com/plugbridge/plugbridge/pkg/manifest"
)

// clapExtensionCandidates is probed once per instance for CLAP and VST3
// plugins (spec.md §4.4's "probing done once at object creation"), so the
// proxy this shared library presents to the host advertises exactly the
// extensions the real, worker-side object supports.
var clapExtensionCandidates = []string{
	clap.ExtAudioPorts,
	clap.ExtParams,
	clap.ExtState,
	clap.ExtGUI,
	clap.ExtNotePorts,
	clap.ExtLatency,
	clap.ExtTail,
}

const (
	VersionMajor = 1
	VersionMinor = 0
	VersionPatch = 0
)

var (
	logger *telemetry.Logger
	env    config.Env

	handlesMu sync.RWMutex
	handles   = map[uintptr]*pluginHandle{}
)

// pluginHandle is the Go-side state one opaque C handle maps to: the
// spawned worker instance plus, for the probe-based ABIs, which
// extensions its real object advertised at construction.
type pluginHandle struct {
	inst   *nativeside.Instance
	probed *message.ProbeResponse
}

func init() {
	env = config.Load()
	logger = telemetry.New(telemetry.Config{Verbosity: env.LogVerbosity, Component: "nativeplugin"})
}

// workerPath locates the worker binary. PLUGBRIDGE_WORKER_PATH overrides
// it; otherwise it is the running executable's path with "-worker"
// appended. When a host has loaded this shared library, that executable is
// the host program, not the shared library.
func workerPath() string {
	if p := os.Getenv("PLUGBRIDGE_WORKER_PATH"); p != "" {
		return p
	}
	exe, err := os.Executable()
	if err != nil {
		return "plugbridge-worker"
	}
	return exe + "-worker"
}

//export GoCreatePlugin
func GoCreatePlugin(pluginID *C.char, manifestPath *C.char) unsafe.Pointer {
	id := C.GoString(pluginID)
	path := C.GoString(manifestPath)

	m, err := manifest.LoadFromFile(path)
	if err != nil {
		logger.Error().Err(err).Str("plugin_id", id).Msg("loading plugin manifest")
		return nil
	}
	if err := m.Validate(); err != nil {
		logger.Error().Err(err).Str("plugin_id", id).Msg("invalid plugin manifest")
		return nil
	}

	inst, err := nativeside.Open(context.Background(), nativeside.Config{
		WorkerPath: workerPath(),
		PluginPath: m.Build.ForeignLibraryPath,
		PluginType: m.Build.ABI,
		SocketRoot: os.TempDir(),
		Lifetime:   hostproc.Individual,
		Trace:      env.EditorTrace,
	}, *logger.Raw())
	if err != nil {
		logger.Error().Err(err).Str("plugin_id", id).Msg("failed to open worker instance")
		return nil
	}

	h := &pluginHandle{inst: inst}
	if _, err := inst.ReadHello(); err != nil {
		logger.Error().Err(err).Str("plugin_id", id).Msg("reading control hello")
		_ = inst.Close()
		return nil
	}
	if m.Build.ABI == "vst3" || m.Build.ABI == "clap" {
		probed, err := inst.Probe(clapExtensionCandidates)
		if err != nil {
			logger.Error().Err(err).Str("plugin_id", id).Msg("probing supported extensions")
		} else {
			h.probed = probed
		}
		go func() {
			if err := inst.ServeHostCallbacks(context.Background(), defaultHostCallbackHandler); err != nil {
				logger.Error().Err(err).Str("plugin_id", id).Msg("host callback loop terminated")
			}
		}()
	}

	handle := C.malloc(1)
	handlesMu.Lock()
	handles[uintptr(handle)] = h
	handlesMu.Unlock()
	return handle
}

// defaultHostCallbackHandler answers the plug→host requests that aren't
// served by answerHostCallback's audioMasterCanDo fast path: this bridge
// has no real host API to forward into here, so every other request is
// acknowledged but otherwise ignored.
func defaultHostCallbackHandler(req *message.DispatchRequest) (*message.DispatchResponse, error) {
	return &message.DispatchResponse{ReturnValue: 0}, nil
}

func handleFor(plugin unsafe.Pointer) *pluginHandle {
	handlesMu.RLock()
	defer handlesMu.RUnlock()
	return handles[uintptr(plugin)]
}

//export GoDestroy
func GoDestroy(plugin unsafe.Pointer) {
	handlesMu.Lock()
	h := handles[uintptr(plugin)]
	delete(handles, uintptr(plugin))
	handlesMu.Unlock()

	if h != nil {
		if err := h.inst.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing worker instance")
		}
	}
	C.free(plugin)
}

//export GoActivate
func GoActivate(plugin unsafe.Pointer, sampleRate C.double, minFrames, maxFrames C.uint32_t) C.bool {
	h := handleFor(plugin)
	if h == nil {
		return C.bool(false)
	}
	switch h.inst.PluginType() {
	case "vst3", "clap":
		resp, err := h.inst.ActivateTyped(&message.ActivateRequest{
			SampleRate: float64(sampleRate),
			MinFrames:  uint32(minFrames),
			MaxFrames:  uint32(maxFrames),
		})
		if err != nil {
			logger.Error().Err(err).Msg("activate request failed")
			return C.bool(false)
		}
		return C.bool(resp.Accepted)
	default:
		resp, err := h.inst.Dispatch(transport.MainDispatch, &message.DispatchRequest{
			Opcode: vst2.EffOpen,
			Value:  int64(maxFrames),
			Option: float32(sampleRate),
		})
		if err != nil {
			logger.Error().Err(err).Msg("activate dispatch failed")
			return C.bool(false)
		}
		return C.bool(resp.ReturnValue != 0)
	}
}

//export GoDeactivate
func GoDeactivate(plugin unsafe.Pointer) {
	h := handleFor(plugin)
	if h == nil {
		return
	}
	switch h.inst.PluginType() {
	case "vst3", "clap":
		if err := h.inst.DeactivateTyped(&message.DeactivateRequest{}); err != nil {
			logger.Error().Err(err).Msg("deactivate request failed")
		}
	default:
		if _, err := h.inst.Dispatch(transport.MainDispatch, &message.DispatchRequest{Opcode: vst2.EffClose}); err != nil {
			logger.Error().Err(err).Msg("deactivate dispatch failed")
		}
	}
}

//export GoGetVersion
func GoGetVersion(major, minor, patch *C.uint32_t) C.bool {
	*major = C.uint32_t(VersionMajor)
	*minor = C.uint32_t(VersionMinor)
	*patch = C.uint32_t(VersionPatch)
	return C.bool(true)
}

func main() {
	fmt.Fprintln(os.Stderr, "plugbridge: nativeplugin built as a shared library; host loads it via CLAP entry points")
}
