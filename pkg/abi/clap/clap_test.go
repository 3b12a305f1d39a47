package clap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInvalidIDSentinel(t *testing.T) {
	require.Equal(t, uint32(0xFFFFFFFF), InvalidID)
}

func TestProcessStatusValues(t *testing.T) {
	require.Equal(t, ProcessStatus(1), ProcessContinue)
	require.Equal(t, ProcessStatus(4), ProcessSleep)
}
