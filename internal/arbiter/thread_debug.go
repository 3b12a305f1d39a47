//go:build debug

// Package arbiter is the concurrency/recursion arbiter (spec.md §4.5):
// main-thread dispatch, parameter access, audio processing, event
// dispatch, and host callbacks each run on their own goroutine per socket
// direction, coordinated through a GUI-thread dispatch queue and a
// recursion-depth guard rather than a single global lock.
//
// This file is the debug build of the main/audio-thread assertion helpers,
// adapted directly from the teacher's pkg/thread/debug.go: the same
// goroutine-ID-from-stack-trace technique marks the current goroutine as
// "main" or "audio" and panics on a violation, but the one global
// package-level debugChecker is replaced by a per-Arbiter instance since
// this bridge runs many plugin instances (and under group hosting, many
// instances sharing one worker process) in a single binary, where a
// single global checker would let one instance's thread marking leak into
// another's assertions.
package arbiter

import (
	"fmt"
	"runtime"
)

func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	for i := 9; i < n-1; i++ {
		if buf[i] == ' ' {
			id := uint64(0)
			for j := i + 1; j < n; j++ {
				if buf[j] < '0' || buf[j] > '9' {
					break
				}
				id = id*10 + uint64(buf[j]-'0')
			}
			return id
		}
	}
	return 0
}

func (a *Arbiter) setMainThread() {
	a.mainThreadID.Store(getGoroutineID())
}

func (a *Arbiter) markAudioThread() {
	a.audioThreadIDs.Store(getGoroutineID(), true)
}

func (a *Arbiter) unmarkAudioThread() {
	a.audioThreadIDs.Delete(getGoroutineID())
}

func (a *Arbiter) assertMainThread(operation string) {
	if id := getGoroutineID(); id != a.mainThreadID.Load() {
		panic(fmt.Sprintf("arbiter: %s called from goroutine %d, expected main thread %d", operation, id, a.mainThreadID.Load()))
	}
}

func (a *Arbiter) assertAudioThread(operation string) {
	id := getGoroutineID()
	if _, ok := a.audioThreadIDs.Load(id); !ok {
		panic(fmt.Sprintf("arbiter: %s called from non-audio goroutine %d", operation, id))
	}
}
