package vst2

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEffectMagicMatchesVstP(t *testing.T) {
	require.Equal(t, int32(0x56737450), EffectMagic)
}

func TestHostCanDoFastPathOnlyContainsKnownStrings(t *testing.T) {
	known := map[CanDo]bool{
		CanDoSendEvents: true, CanDoSendMIDI: true, CanDoReceiveEvents: true,
		CanDoReceiveMIDI: true, CanDoReceiveTimeInfo: true, CanDoOffline: true,
		CanDoMIDIProgramNames: true, CanDoBypass: true, CanDoSizeWindow: true,
		CanDoOpenFileSelector: true, CanDoCloseFileSelector: true,
		CanDoAcceptIOChanges: true, CanDoStartStopProcess: true,
		CanDoShellCategory: true, CanDoSendVstMidiEventFlagIsRealtime: true,
	}
	for cando := range HostCanDoFastPath {
		require.True(t, known[cando], "fast-path table references unknown CanDo string %q", cando)
	}
}

func TestOpcodeValuesMatchPublishedVST2SDK(t *testing.T) {
	require.Equal(t, Opcode(25), EffProcessEvents)
	require.Equal(t, Opcode(23), EffGetChunk)
	require.Equal(t, Opcode(24), EffSetChunk)
	require.Equal(t, HostOpcode(7), AudioMasterGetTime)
}
