package vst3

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpeakerArrangementsComposeFromBits(t *testing.T) {
	require.Equal(t, SpeakerArrangement(0b11), SpeakerArrStereo)
	require.Equal(t, SpeakerArrangement(0b100), SpeakerArrMono)
}

func TestProcessSetupHoldsAssignedFields(t *testing.T) {
	ps := ProcessSetup{
		ProcessMode:        int32(ProcessModeRealtime),
		SymbolicSampleSize: SampleSize32,
		MaxSamplesPerBlock: 512,
		SampleRate:         48000,
	}
	require.Equal(t, int32(0), ps.ProcessMode)
	require.Equal(t, int32(512), ps.MaxSamplesPerBlock)
}
