package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBoolEnvFallsBackOnMissingOrMalformed(t *testing.T) {
	require.NoError(t, os.Unsetenv("PLUGBRIDGE_TEST_BOOL"))
	require.True(t, boolEnv("PLUGBRIDGE_TEST_BOOL", true))

	t.Setenv("PLUGBRIDGE_TEST_BOOL", "not-a-bool")
	require.False(t, boolEnv("PLUGBRIDGE_TEST_BOOL", false))

	t.Setenv("PLUGBRIDGE_TEST_BOOL", "true")
	require.True(t, boolEnv("PLUGBRIDGE_TEST_BOOL", false))
}

func TestDurationEnvRejectsNonPositiveValues(t *testing.T) {
	t.Setenv("PLUGBRIDGE_TEST_MS", "0")
	require.Equal(t, 5*time.Millisecond, durationEnv("PLUGBRIDGE_TEST_MS", 5*time.Millisecond))

	t.Setenv("PLUGBRIDGE_TEST_MS", "33")
	require.Equal(t, 33*time.Millisecond, durationEnv("PLUGBRIDGE_TEST_MS", 5*time.Millisecond))
}

func TestLoadDefaultsCoordCorrectionAndEmbedProtocolOn(t *testing.T) {
	e := Load()
	require.True(t, e.CoordCorrection)
	require.True(t, e.UseEmbedProto)
}
