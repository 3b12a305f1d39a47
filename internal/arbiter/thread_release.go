//go:build !debug

package arbiter

// In release builds the main/audio-thread assertions are no-ops, matching
// the teacher's pkg/thread/release.go: the goroutine-ID bookkeeping has a
// real (if small) per-call cost that a release build skips entirely rather
// than paying on every dispatch.

func (a *Arbiter) setMainThread()                  {}
func (a *Arbiter) markAudioThread()                {}
func (a *Arbiter) unmarkAudioThread()               {}
func (a *Arbiter) assertMainThread(operation string)  {}
func (a *Arbiter) assertAudioThread(operation string) {}
