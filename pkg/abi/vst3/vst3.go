// Package vst3 mirrors the wire-stable shapes of the VST3 ABI the bridge
// proxies: speaker arrangements, process setup, parameter info flags, and
// the IPlugView result codes used by the editor embedder. VST3 exposes
// its surface through typed COM-style interfaces rather than a single
// opcode dispatcher (spec.md §4.4), so unlike pkg/abi/vst2 this package
// has no single Opcode enum — each interface method becomes its own
// message type in internal/message.
package vst3

// SpeakerArrangement is a 64-bit channel-presence bitmask, one bit per
// speaker position, matching Steinberg::Vst::SpeakerArrangement.
type SpeakerArrangement uint64

const (
	SpeakerL  SpeakerArrangement = 1 << 0
	SpeakerR  SpeakerArrangement = 1 << 1
	SpeakerC  SpeakerArrangement = 1 << 2
	SpeakerLs SpeakerArrangement = 1 << 8
	SpeakerRs SpeakerArrangement = 1 << 9
)

const (
	SpeakerArrMono   SpeakerArrangement = SpeakerC
	SpeakerArrStereo SpeakerArrangement = SpeakerL | SpeakerR
)

// MediaType distinguishes audio and event buses on an IComponent.
type MediaType int32

const (
	MediaTypeAudio MediaType = 0
	MediaTypeEvent MediaType = 1
)

// BusDirection is kInput or kOutput.
type BusDirection int32

const (
	BusDirectionInput  BusDirection = 0
	BusDirectionOutput BusDirection = 1
)

// BusType distinguishes main and auxiliary buses.
type BusType int32

const (
	BusTypeMain BusType = 0
	BusTypeAux  BusType = 1
)

// BusFlags, Steinberg::Vst::BusInfo::BusFlags.
const (
	BusFlagDefaultActive  int32 = 1 << 0
	BusFlagIsControlVoltage int32 = 1 << 1
)

// IoMode, passed to IComponent::setIoMode.
type IoMode int32

const (
	IoModeSimple   IoMode = 0
	IoModeAdvanced IoMode = 1
	IoModeOfflineProcessing IoMode = 2
)

// ProcessModes, Steinberg::Vst::ProcessModes.
const (
	ProcessModeRealtime IoMode = 0
	ProcessModeOffline  IoMode = 1
	ProcessModePrefetch IoMode = 2
)

// SymbolicSampleSizes, Steinberg::Vst::SymbolicSampleSizes.
const (
	SampleSize32 int32 = 0
	SampleSize64 int32 = 1
)

// ProcessSetup mirrors Steinberg::Vst::ProcessSetup, the struct passed to
// IAudioProcessor::setupProcessing.
type ProcessSetup struct {
	ProcessMode        int32
	SymbolicSampleSize int32
	MaxSamplesPerBlock int32
	SampleRate         float64
}

// ParamValueNormalized is the [0, 1]-normalized parameter value VST3
// automation and the edit controller exchange.
type ParamValueNormalized float64

// ParameterInfo flags, Steinberg::Vst::ParameterInfo::ParameterFlags.
const (
	ParamCanAutomate    int32 = 1 << 0
	ParamIsReadOnly     int32 = 1 << 1
	ParamIsWrapAround   int32 = 1 << 2
	ParamIsList         int32 = 1 << 3
	ParamIsHidden       int32 = 1 << 4
	ParamIsProgramChange int32 = 1 << 15
	ParamIsBypass       int32 = 1 << 16
)

// IPlugView result codes (tresult values relevant to the editor
// embedder's onSize/onWheel/canResize surface).
const (
	ResultOK          int32 = 0
	ResultFalse       int32 = 1
	ResultNotImplemented int32 = -2
	ResultInvalidArgument int32 = -3
)

// ViewRect mirrors Steinberg::ViewRect, the editor window geometry struct.
type ViewRect struct {
	Left   int32
	Top    int32
	Right  int32
	Bottom int32
}

// RestartFlags, Steinberg::Vst::RestartFlags, passed to
// IComponentHandler::restartComponent.
const (
	RestartReloadComponent   int32 = 1 << 0
	RestartIoChanged         int32 = 1 << 1
	RestartParamValuesChanged int32 = 1 << 2
	RestartLatencyChanged    int32 = 1 << 3
	RestartParamTitlesChanged int32 = 1 << 4
)
