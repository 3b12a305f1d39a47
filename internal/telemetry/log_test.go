package telemetry

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseVerbosity(t *testing.T) {
	require.Equal(t, VerbosityBasic, ParseVerbosity(""))
	require.Equal(t, VerbosityBasic, ParseVerbosity("garbage"))
	require.Equal(t, VerbosityMostEvents, ParseVerbosity("most-events"))
	require.Equal(t, VerbosityAllEvents, ParseVerbosity("all-events"))
}

func TestShouldLogOpcodeGating(t *testing.T) {
	cases := []struct {
		v        Verbosity
		periodic bool
		want     bool
	}{
		{VerbosityBasic, false, false},
		{VerbosityBasic, true, false},
		{VerbosityMostEvents, false, true},
		{VerbosityMostEvents, true, false},
		{VerbosityAllEvents, false, true},
		{VerbosityAllEvents, true, true},
	}
	for _, c := range cases {
		l := New(Config{Out: &bytes.Buffer{}, Verbosity: c.v, Component: "test"})
		require.Equal(t, c.want, l.ShouldLogOpcode(c.periodic), "verbosity=%s periodic=%v", c.v, c.periodic)
	}
}

func TestOpcodeSkipsFieldBuilderWhenGated(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Out: &buf, Verbosity: VerbosityBasic, Component: "test"})

	called := false
	l.Opcode("process", true, func(e *zerolog.Event) { called = true })
	require.False(t, called, "field builder must not run when the verbosity gate rejects the call")
}

func TestMalformedTimeFormatFallsBack(t *testing.T) {
	var buf bytes.Buffer
	require.NotPanics(t, func() {
		New(Config{Out: &buf, Verbosity: VerbosityBasic, TimeFormat: "%", Component: "test"})
	})
}
