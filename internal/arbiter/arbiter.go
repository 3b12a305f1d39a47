package arbiter

import (
	"sync"
	"sync/atomic"
)

// Arbiter coordinates the concurrency rules of spec.md §4.5 for one plugin
// instance (or, under group hosting, is shared by every instance in a
// worker process): it tracks which goroutine is the main thread and which
// are audio threads, owns the GUI-thread dispatch queue, and buffers
// MIDI-out events that arrive on the host-callback socket mid-process.
type Arbiter struct {
	mainThreadID   atomic.Uint64
	audioThreadIDs sync.Map // goroutine ID -> bool

	gui *GUIQueue

	midiOutMu  sync.Mutex
	midiOut    [][]byte
	inProcess  bool
}

// New returns an Arbiter with its GUI dispatch queue ready to run.
func New() *Arbiter {
	return &Arbiter{gui: NewGUIQueue()}
}

// SetMainThread marks the calling goroutine as the main thread. Call once,
// from the goroutine that will serve the main-dispatch socket.
func (a *Arbiter) SetMainThread() { a.setMainThread() }

// MarkAudioThread marks the calling goroutine as an audio thread. Call
// once, from the goroutine that will serve the audio socket.
func (a *Arbiter) MarkAudioThread() { a.markAudioThread() }

// UnmarkAudioThread removes the calling goroutine's audio-thread marking.
func (a *Arbiter) UnmarkAudioThread() { a.unmarkAudioThread() }

// AssertMainThread panics (debug builds only; a no-op otherwise) if the
// calling goroutine is not the one SetMainThread marked.
func (a *Arbiter) AssertMainThread(operation string) { a.assertMainThread(operation) }

// AssertAudioThread panics (debug builds only) if the calling goroutine is
// not one MarkAudioThread marked.
func (a *Arbiter) AssertAudioThread(operation string) { a.assertAudioThread(operation) }

// GUI returns the instance's GUI-thread dispatch queue, for enqueuing
// editor/window operations from non-GUI goroutines per spec.md §4.5: "All
// operations that touch the editor, create windows, or post window
// messages run on the GUI thread. Non-GUI threads dispatching an operation
// that must run on the GUI thread enqueue a closure and wait on a future."
func (a *Arbiter) GUI() *GUIQueue { return a.gui }

// BeginProcess marks the start of a process() call, opening the window
// during which MIDI-out events arriving on the host-callback socket are
// buffered rather than delivered immediately (spec.md §4.5's MIDI-out
// special case).
func (a *Arbiter) BeginProcess() {
	a.midiOutMu.Lock()
	defer a.midiOutMu.Unlock()
	a.inProcess = true
	a.midiOut = a.midiOut[:0]
}

// BufferMIDIOut records a MIDI-out event payload that arrived on the
// host-callback socket during the current process() call. Returns false
// if called outside a BeginProcess/EndProcess window, meaning the event
// should be delivered to the host immediately instead.
func (a *Arbiter) BufferMIDIOut(payload []byte) bool {
	a.midiOutMu.Lock()
	defer a.midiOutMu.Unlock()
	if !a.inProcess {
		return false
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)
	a.midiOut = append(a.midiOut, cp)
	return true
}

// EndProcess closes the buffering window and returns every MIDI-out event
// buffered during it, in arrival order, for the native side to deliver to
// the host immediately before returning from process().
func (a *Arbiter) EndProcess() [][]byte {
	a.midiOutMu.Lock()
	defer a.midiOutMu.Unlock()
	a.inProcess = false
	out := a.midiOut
	a.midiOut = nil
	return out
}
