// Package config centralizes the bridge's environment-variable surface
// (spec.md §6): every knob is optional, read once at process start, and
// defaults to the behavior that needs no override.
//
// Grounded on cmd/generate-manifest/main.go's detectPlatform, which reads
// GOOS straight from os.Getenv with a sniffed-environment fallback —
// generalized here into one struct covering every PLUGBRIDGE_* variable
// instead of one-off os.Getenv calls scattered across entry points.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/plugbridge/plugbridge/internal/telemetry"
)

// Env is the parsed form of every environment variable spec.md §6 names.
type Env struct {
	LogFilePath     string // PLUGBRIDGE_LOG_FILE; empty uses stderr
	LogVerbosity    telemetry.Verbosity
	EditorTrace     bool // PLUGBRIDGE_EDITOR_TRACE
	ForceDragDrop   bool // PLUGBRIDGE_FORCE_DND quirk flag
	CoordCorrection bool // PLUGBRIDGE_COORD_CORRECTION quirk flag, default on
	UseEmbedProto   bool // PLUGBRIDGE_EMBED_PROTOCOL quirk flag, default on
	FrameRate       time.Duration
	WinePrefix      string // PLUGBRIDGE_WINEPREFIX override
}

const defaultFrameRate = 16 * time.Millisecond

// Load reads the bridge's environment variables, defaulting every unset
// or malformed value to the behavior spec.md §6 calls "all optional."
func Load() Env {
	e := Env{
		LogFilePath:     os.Getenv("PLUGBRIDGE_LOG_FILE"),
		LogVerbosity:    telemetry.ParseVerbosity(os.Getenv("PLUGBRIDGE_LOG_VERBOSITY")),
		EditorTrace:     boolEnv("PLUGBRIDGE_EDITOR_TRACE", false),
		ForceDragDrop:   boolEnv("PLUGBRIDGE_FORCE_DND", false),
		CoordCorrection: boolEnv("PLUGBRIDGE_COORD_CORRECTION", true),
		UseEmbedProto:   boolEnv("PLUGBRIDGE_EMBED_PROTOCOL", true),
		FrameRate:       durationEnv("PLUGBRIDGE_FRAME_RATE_MS", defaultFrameRate),
		WinePrefix:      os.Getenv("PLUGBRIDGE_WINEPREFIX"),
	}
	return e
}

func boolEnv(name string, def bool) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func durationEnv(name string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
