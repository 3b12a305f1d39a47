// Package vst2 mirrors the wire-stable shapes of the VST 2.4 ABI that
// cross the bridge boundary: opcode numbers, the AEffect/VstTimeInfo
// layouts, and the effCanDo capability strings. Field order and sizes are
// fixed by the published VST2 SDK (reconstructed here, as upstream SDK
// headers are no longer distributable, from the vestige-style
// `aeffectx.h` shape every open-source VST2 host and bridge carries).
package vst2

// Opcode is a plugin-side dispatcher opcode (the second argument to
// AEffect.dispatcher).
type Opcode int32

const (
	EffOpen                   Opcode = 0
	EffClose                  Opcode = 1
	EffSetProgram             Opcode = 2
	EffGetProgram             Opcode = 3
	EffSetProgramName         Opcode = 4
	EffGetProgramName         Opcode = 5
	EffGetParamLabel          Opcode = 6
	EffGetParamDisplay        Opcode = 7
	EffGetParamName           Opcode = 8
	EffSetSampleRate          Opcode = 10
	EffSetBlockSize           Opcode = 11
	EffMainsChanged           Opcode = 12
	EffEditGetRect            Opcode = 13
	EffEditOpen               Opcode = 14
	EffEditClose              Opcode = 15
	EffEditIdle               Opcode = 19
	EffEditTop                Opcode = 20
	EffIdentify               Opcode = 22
	EffGetChunk               Opcode = 23
	EffSetChunk               Opcode = 24
	EffProcessEvents          Opcode = 25
	EffCanBeAutomated         Opcode = 26
	EffGetProgramNameIndexed  Opcode = 29
	EffGetPlugCategory        Opcode = 35
	EffGetEffectName          Opcode = 45
	EffGetParameterProperties Opcode = 56
	EffGetVendorString        Opcode = 47
	EffGetProductString       Opcode = 48
	EffGetVendorVersion       Opcode = 49
	EffCanDo                  Opcode = 51
	EffIdle                   Opcode = 53
	EffGetVstVersion          Opcode = 58
	EffBeginSetProgram        Opcode = 67
	EffEndSetProgram          Opcode = 68
	EffStartProcess           Opcode = 71
	EffStopProcess            Opcode = 72
	EffShellGetNextPlugin     Opcode = 70
	EffBeginLoadBank          Opcode = 75
	EffBeginLoadProgram       Opcode = 76
)

// HostOpcode is a host callback opcode (the second argument to
// audioMasterCallback).
type HostOpcode int32

const (
	AudioMasterAutomate                    HostOpcode = 0
	AudioMasterVersion                     HostOpcode = 1
	AudioMasterCurrentID                   HostOpcode = 2
	AudioMasterIdle                        HostOpcode = 3
	AudioMasterPinConnected                HostOpcode = 4
	AudioMasterWantMidi                    HostOpcode = 6
	AudioMasterGetTime                     HostOpcode = 7
	AudioMasterProcessEvents               HostOpcode = 8
	AudioMasterSetTime                     HostOpcode = 9
	AudioMasterTempoAt                     HostOpcode = 10
	AudioMasterGetNumAutomatableParameters HostOpcode = 11
	AudioMasterGetParameterQuantization    HostOpcode = 12
	AudioMasterIOChanged                   HostOpcode = 13
	AudioMasterNeedIdle                    HostOpcode = 14
	AudioMasterSizeWindow                  HostOpcode = 15
	AudioMasterGetSampleRate               HostOpcode = 16
	AudioMasterGetBlockSize                HostOpcode = 17
	AudioMasterGetInputLatency             HostOpcode = 18
	AudioMasterGetOutputLatency            HostOpcode = 19
	AudioMasterGetCurrentProcessLevel      HostOpcode = 23
	AudioMasterGetAutomationState          HostOpcode = 24
	AudioMasterGetVendorString             HostOpcode = 32
	AudioMasterGetProductString            HostOpcode = 33
	AudioMasterGetVendorVersion            HostOpcode = 34
	AudioMasterVendorSpecific              HostOpcode = 35
	AudioMasterCanDo                       HostOpcode = 37
	AudioMasterGetLanguage                 HostOpcode = 38
	AudioMasterUpdateDisplay               HostOpcode = 42
	AudioMasterBeginEdit                   HostOpcode = 43
	AudioMasterEndEdit                     HostOpcode = 44
)

// Effect flags, the AEffect.flags bitfield.
const (
	EffFlagsHasEditor      int32 = 1
	EffFlagsCanReplacing   int32 = 1 << 4
	EffFlagsProgramChunks  int32 = 1 << 5
	EffFlagsIsSynth        int32 = 1 << 8
)

const (
	EffectMagic    int32 = 0x56737450 // 'VstP'
	VstLangEnglish int32 = 1
	VstMIDIType    int32 = 1
	VstSysExType   int32 = 6
)

// Transport time-info validity/state flags, VstTimeInfo.flags.
const (
	TimeInfoNanosValid       int32 = 1 << 8
	TimeInfoPpqPosValid      int32 = 1 << 9
	TimeInfoTempoValid       int32 = 1 << 10
	TimeInfoBarsValid        int32 = 1 << 11
	TimeInfoCyclePosValid    int32 = 1 << 12
	TimeInfoTimeSigValid     int32 = 1 << 13
	TimeInfoSmpteValid       int32 = 1 << 14
	TimeInfoClockValid       int32 = 1 << 15
	TransportPlaying         int32 = 1 << 1
	TransportCycleActive     int32 = 1 << 2
	TransportChanged         int32 = 1
)

// Rect mirrors VstRect, the edit-window geometry struct returned from
// effEditGetRect.
type Rect struct {
	Top    int16
	Left   int16
	Bottom int16
	Right  int16
}

// TimeInfo mirrors VstTimeInfo, returned by the host in response to
// audioMasterGetTime.
type TimeInfo struct {
	SamplePos         float64
	SampleRate        float64
	NanoSeconds       float64
	PpqPos            float64
	Tempo             float64
	BarStartPos       float64
	CycleStartPos     float64
	CycleEndPos       float64
	TimeSigNumerator  int32
	TimeSigDenominator int32
	Flags             int32
}

// MIDIEvent mirrors VstMidiEvent, a single short MIDI message inside a
// VstEvents block.
type MIDIEvent struct {
	DeltaFrames     int32
	Flags           int32
	NoteLength      int32
	NoteOffset      int32
	MIDIData        [4]byte
	Detune          int8
	NoteOffVelocity int8
}

// SysexEvent mirrors VstMidiSysExEvent. SysexDump is an owned copy on
// this side of the bridge; the upstream struct instead carries a raw
// char* into host-owned memory.
type SysexEvent struct {
	DeltaFrames int32
	Flags       int32
	SysexDump   []byte
}

// CanDo is one of the fixed effCanDo / audioMasterCanDo capability
// strings plugins and hosts exchange. The fast-path table below is a
// supplemented feature: yabridge special-cases the strings a plugin is
// overwhelmingly likely to ask about so the round trip can be answered
// from a local table before falling back to a full dispatch call.
type CanDo string

const (
	CanDoSendEvents          CanDo = "sendVstEvents"
	CanDoSendMIDI            CanDo = "sendVstMidiEvent"
	CanDoReceiveEvents       CanDo = "receiveVstEvents"
	CanDoReceiveMIDI         CanDo = "receiveVstMidiEvent"
	CanDoReceiveTimeInfo     CanDo = "receiveVstTimeInfo"
	CanDoOffline              CanDo = "offline"
	CanDoMIDIProgramNames    CanDo = "midiProgramNames"
	CanDoBypass              CanDo = "bypass"
	CanDoSizeWindow          CanDo = "sizeWindow"
	CanDoOpenFileSelector    CanDo = "openFileSelector"
	CanDoCloseFileSelector   CanDo = "closeFileSelector"
	CanDoAcceptIOChanges     CanDo = "acceptIOChanges"
	CanDoStartStopProcess    CanDo = "startStopProcess"
	CanDoShellCategory       CanDo = "shellCategory"
	CanDoSendVstMidiEventFlagIsRealtime CanDo = "sendVstMidiEventFlagIsRealtime"
)

// HostCanDoFastPath is the set of audioMasterCanDo queries the native
// side answers from this table (internal/nativeside's answerHostCallback)
// instead of passing them to its host-callback handler, because every
// VST2 host built after ~2005 supports them and the round trip is pure
// overhead. A query not in this table goes to that handler (see spec.md
// §4.4's "unknown query" edge case).
var HostCanDoFastPath = map[CanDo]bool{
	CanDoSendEvents:      true,
	CanDoSendMIDI:        true,
	CanDoReceiveEvents:   true,
	CanDoReceiveMIDI:     true,
	CanDoReceiveTimeInfo: true,
	CanDoSizeWindow:      true,
	CanDoAcceptIOChanges: true,
	CanDoStartStopProcess: true,
}
