// Package rtprio is the realtime-priority syncer (spec.md §4.9): at low
// frequency the process request may carry a target scheduling priority,
// and when present the worker applies it to its audio-processing thread so
// that thread runs at the same realtime priority the host assigned to
// itself. Application errors are ignored per spec.md — a plugin denied
// realtime scheduling (no CAP_SYS_NICE, container limits) should keep
// running at whatever priority it already has rather than fail the audio
// callback.
//
// Grounded on the same direct golang.org/x/sys/unix syscall style
// internal/shm and internal/hostproc's watchdog use: no repo in the pack
// wraps sched_setscheduler at a higher level (there is no realtime
// scheduling library anywhere in the example pack or the wider Go
// ecosystem worth adding as a dependency for four syscalls), so this
// package calls golang.org/x/sys/unix directly, matching the pack's
// general posture toward low-level POSIX operations.
package rtprio

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// Policy mirrors the Linux scheduling policies relevant to realtime audio
// threads.
type Policy int

const (
	PolicyOther Policy = unix.SCHED_OTHER
	PolicyFIFO  Policy = unix.SCHED_FIFO
	PolicyRR    Policy = unix.SCHED_RR
)

// Current reports the calling OS thread's scheduling policy and priority.
// Must be called from the goroutine whose thread should be inspected; the
// caller should have already called runtime.LockOSThread, matching
// SetAudioThreadPriority's requirement below.
func Current() (Policy, int, error) {
	policy, err := unix.SchedGetscheduler(0)
	if err != nil {
		return 0, 0, err
	}
	var param unix.SchedParam
	if err := unix.SchedGetparam(0, &param); err != nil {
		return 0, 0, err
	}
	return Policy(policy), int(param.Priority), nil
}

// SetAudioThreadPriority applies policy/priority to the calling OS thread.
// The caller must have called runtime.LockOSThread first (the Go runtime
// otherwise may move the goroutine to a different OS thread between calls,
// silently undoing the request); this function does not call
// LockOSThread itself since the audio-processing goroutine typically locks
// once for its entire lifetime rather than per priority change.
//
// Per spec.md §4.9, "application errors are ignored": the caller should
// log this function's error at most, never propagate it as a process()
// failure.
func SetAudioThreadPriority(policy Policy, priority int) error {
	return unix.SchedSetscheduler(0, int(policy), &unix.SchedParam{Priority: int32(priority)})
}

// Sync applies a target priority received from the host's process request
// (spec.md §4.9's roughly-every-10s carried priority), locking the calling
// goroutine to its OS thread first since this is expected to be called
// from the dedicated audio-processing goroutine for the lifetime of the
// instance. Errors are swallowed into a best-effort bool so callers can
// log without treating a denied realtime-priority request as fatal.
func Sync(policy Policy, priority int) (applied bool) {
	runtime.LockOSThread()
	return SetAudioThreadPriority(policy, priority) == nil
}
