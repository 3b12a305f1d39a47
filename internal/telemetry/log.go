// Package telemetry is the bridge's logging and metrics surface: a
// verbosity-gated, timestamped structured logger (spec.md §4.10) and a
// small set of Prometheus collectors tracking opcode latency and socket
// activity.
package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/lestrrat-go/strftime"
	"github.com/rs/zerolog"
)

// Verbosity is the three-level scheme from spec.md §4.10, configurable
// from the PLUGBRIDGE_LOG_VERBOSITY environment variable.
type Verbosity int

const (
	// VerbosityBasic logs only startup and warnings. No allocation on the
	// audio path is permitted at this level.
	VerbosityBasic Verbosity = iota
	// VerbosityMostEvents logs every dispatched opcode except periodic
	// idle and time queries.
	VerbosityMostEvents
	// VerbosityAllEvents logs everything, including audio and idle.
	VerbosityAllEvents
)

func (v Verbosity) String() string {
	switch v {
	case VerbosityBasic:
		return "basic"
	case VerbosityMostEvents:
		return "most-events"
	case VerbosityAllEvents:
		return "all-events"
	default:
		return "unknown"
	}
}

// ParseVerbosity reads the PLUGBRIDGE_LOG_VERBOSITY values, defaulting to
// VerbosityBasic for anything unrecognized.
func ParseVerbosity(s string) Verbosity {
	switch s {
	case "most-events":
		return VerbosityMostEvents
	case "all-events":
		return VerbosityAllEvents
	default:
		return VerbosityBasic
	}
}

// defaultTimestampPattern matches the human-readable, timestamped line
// format spec.md §4.10 requires; Config.TimeFormat overrides it with
// another strftime pattern. No environment variable sets it.
const defaultTimestampPattern = "%Y-%m-%d %H:%M:%S.%f"

// Logger wraps a zerolog.Logger with the bridge's verbosity gate. At
// VerbosityBasic, opcode-level call sites must check ShouldLogOpcode before
// building a log event so that no allocation happens on the audio path;
// Logger.Opcode does this internally.
type Logger struct {
	zl        zerolog.Logger
	verbosity Verbosity
}

// Config controls how New builds a Logger.
type Config struct {
	// Out is the destination writer. Defaults to os.Stderr.
	Out io.Writer
	// Verbosity gates opcode-level logging.
	Verbosity Verbosity
	// TimeFormat is an strftime pattern; empty uses defaultTimestampPattern.
	TimeFormat string
	// Component names the subsystem (e.g. "worker", "nativeplugin",
	// "arbiter") and is attached to every event.
	Component string
}

// New builds a Logger per cfg. A bad TimeFormat falls back to the default
// pattern rather than failing construction — a malformed pattern must not
// prevent the bridge from starting.
func New(cfg Config) *Logger {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}

	pattern := cfg.TimeFormat
	if pattern == "" {
		pattern = defaultTimestampPattern
	}
	f, err := strftime.New(pattern, strftime.WithMicroseconds('f'))
	if err != nil {
		f, _ = strftime.New(defaultTimestampPattern, strftime.WithMicroseconds('f'))
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMicro
	writer := zerolog.ConsoleWriter{
		Out: out,
		FormatTimestamp: func(i interface{}) string {
			micros, ok := i.(json.Number)
			var unix float64
			if ok {
				unix, err = micros.Float64()
			} else {
				unix, err = strconv.ParseFloat(fmt.Sprint(i), 64)
			}
			if err != nil {
				return fmt.Sprint(i)
			}
			sec := int64(unix / 1e6)
			nsec := int64(unix-float64(sec)*1e6) * 1e3
			return f.FormatString(time.Unix(sec, nsec).UTC())
		},
	}

	zl := zerolog.New(writer).With().Timestamp().Str("component", cfg.Component).Logger()
	return &Logger{zl: zl, verbosity: cfg.Verbosity}
}

// Verbosity reports the logger's configured gate level.
func (l *Logger) Verbosity() Verbosity {
	return l.verbosity
}

// Basic returns an Event at the always-on basic level (startup, warnings,
// fatal protocol errors).
func (l *Logger) Basic() *zerolog.Event {
	return l.zl.Info()
}

// Warn returns a warning-level Event, always emitted regardless of
// verbosity.
func (l *Logger) Warn() *zerolog.Event {
	return l.zl.Warn()
}

// Error returns an error-level Event, always emitted regardless of
// verbosity.
func (l *Logger) Error() *zerolog.Event {
	return l.zl.Error()
}

// ShouldLogOpcode reports whether an opcode dispatch at the given
// periodicity class should be logged under the logger's configured
// verbosity. periodic marks idle/time-query style calls that
// VerbosityMostEvents excludes.
func (l *Logger) ShouldLogOpcode(periodic bool) bool {
	switch l.verbosity {
	case VerbosityAllEvents:
		return true
	case VerbosityMostEvents:
		return !periodic
	default:
		return false
	}
}

// Opcode logs a dispatched opcode call if the verbosity gate allows it.
// At VerbosityBasic with periodic == true or false, this is a single
// branch and no zerolog.Event is constructed, keeping the audio path
// allocation-free.
func (l *Logger) Opcode(name string, periodic bool, fields func(*zerolog.Event)) {
	if !l.ShouldLogOpcode(periodic) {
		return
	}
	ev := l.zl.Debug().Str("opcode", name)
	if fields != nil {
		fields(ev)
	}
	ev.Msg("dispatch")
}

// Raw exposes the underlying zerolog.Logger for call sites that need the
// full event-builder API (e.g. attaching errors via .Err()).
func (l *Logger) Raw() *zerolog.Logger {
	return &l.zl
}
