package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkerPathHonorsOverrideEnvVar(t *testing.T) {
	t.Setenv("PLUGBRIDGE_WORKER_PATH", "/opt/plugbridge/worker")
	require.Equal(t, "/opt/plugbridge/worker", workerPath())
}

func TestWorkerPathFallsBackToSiblingOfExecutable(t *testing.T) {
	require.NoError(t, os.Unsetenv("PLUGBRIDGE_WORKER_PATH"))
	p := workerPath()
	require.NotEmpty(t, p)
}
