package hostproc

import (
	"time"

	"golang.org/x/sys/unix"
)

// alive reports whether pid still exists, using the POSIX kill(pid, 0)
// idiom: signal 0 performs no actual signal delivery but still returns
// ESRCH if the process is gone, which is exactly the liveness probe
// spec.md §4.5's "process-liveness watchdog on both sides" needs. Grounded
// on the pack's direct golang.org/x/sys/unix usage for POSIX primitives
// (doismellburning-samoyed's ioctl calls; internal/shm's mmap/ftruncate
// use the same package for the same reason: no higher-level wrapper for a
// bare syscall like this exists anywhere in the pack).
func alive(pid int) bool {
	err := unix.Kill(pid, 0)
	if err == nil {
		return true
	}
	return err != unix.ESRCH
}

// Watchdog polls a peer PID at a fixed interval and invokes onDead once
// when it disappears. Both the native side and the worker run one of
// these against the other's PID, per spec.md §4.8's "the worker uses that
// identifier for its watchdog" and §4.5's "a process-liveness watchdog on
// both sides shuts the instance down when the peer exits."
type Watchdog struct {
	peerPID  int
	interval time.Duration
	stop     chan struct{}
}

// NewWatchdog returns a Watchdog that will poll peerPID every interval
// once Start is called. A zero interval defaults to 500ms.
func NewWatchdog(peerPID int, interval time.Duration) *Watchdog {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Watchdog{peerPID: peerPID, interval: interval, stop: make(chan struct{})}
}

// Start runs the poll loop on a new goroutine, calling onDead exactly once
// when the peer PID is first observed gone. Start returns immediately;
// call Stop to cancel the loop before that happens (e.g. on clean
// shutdown, where the peer's disappearance is expected and should not
// trigger onDead).
func (w *Watchdog) Start(onDead func()) {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-w.stop:
				return
			case <-ticker.C:
				if !alive(w.peerPID) {
					onDead()
					return
				}
			}
		}
	}()
}

// Stop cancels the poll loop. Safe to call once; a second call would panic
// on close of a closed channel, matching the single-shot lifetime every
// watchdog call site in this bridge uses (one Watchdog per instance, torn
// down exactly once on shutdown).
func (w *Watchdog) Stop() {
	close(w.stop)
}
