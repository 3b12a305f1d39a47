// Package hostproc is the process/host manager (spec.md §4.8): it spawns
// and tracks worker processes and runs the liveness watchdog each side
// uses to detect a vanished peer. It names two lifetimes, individual (one
// worker per plugin instance) and group (one worker per (group-name, ABI,
// worker-user) triple), but Spawn starts a new process for both; no
// rendezvous socket is bound or looked up.
package hostproc

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/creack/pty"
	"github.com/google/uuid"
)

// Lifetime distinguishes the two worker-spawn modes of spec.md §4.8.
type Lifetime int

const (
	Individual Lifetime = iota
	Group
)

// Key identifies a group-hosted worker process: the (group-name, ABI,
// worker-user) triple the rendezvous socket is named from. Zero value is
// meaningless for Group lifetime and unused for Individual.
type Key struct {
	GroupName  string
	ABI        string
	WorkerUser string
}

// RendezvousName derives a stable socket name from the triple. No code in
// this module binds or dials a socket under this name.
func (k Key) RendezvousName() string {
	return fmt.Sprintf("plugbridge-group-%s-%s-%s", k.GroupName, k.ABI, k.WorkerUser)
}

// SpawnConfig is everything needed to launch one worker process.
type SpawnConfig struct {
	WorkerPath    string
	PluginPath    string
	InstanceDir   string
	PluginType    string
	Lifetime      Lifetime
	Key           Key
	Env           []string
	Trace         bool   // capture the worker's stdout/stderr through a pty for diagnostics
	TraceLogPath  string
}

// Process is a running (or exited) worker, tracked so a Watchdog can poll
// its liveness and Wait can reap its exit code.
type Process struct {
	cmd     *exec.Cmd
	id      uuid.UUID
	traceF  *os.File
}

// Spawn launches a worker process per spec.md §6's process-argument
// contract: `<plugin-library-path> <instance-socket-dir> <parent-pid>
// [plugin-type]`. The worker uses the parent PID argument for its own
// watchdog; this side tracks the child's PID for a Watchdog.
//
// Grounded on doismellburning-samoyed's src/kiss.go, which opens a
// github.com/creack/pty pseudo-terminal pair to capture a subordinate
// process's I/O for diagnostics (there: a TNC client; here: a worker's
// stdout/stderr when Trace is set) and on its os/exec usage elsewhere in
// the pack (morse_test.go, aprs_tt.go) for plain exec.Command invocation
// when no tracing is requested.
func Spawn(ctx context.Context, cfg SpawnConfig) (*Process, error) {
	args := []string{cfg.PluginPath, cfg.InstanceDir, strconv.Itoa(os.Getpid())}
	if cfg.PluginType != "" {
		args = append(args, cfg.PluginType)
	}

	cmd := exec.CommandContext(ctx, cfg.WorkerPath, args...)
	cmd.Env = append(os.Environ(), cfg.Env...)

	p := &Process{id: uuid.New()}

	if cfg.Trace {
		ptmx, err := pty.Start(cmd)
		if err != nil {
			return nil, fmt.Errorf("hostproc: starting worker under pty: %w", err)
		}
		p.traceF = ptmx
		if cfg.TraceLogPath != "" {
			go copyTraceToFile(ptmx, cfg.TraceLogPath)
		}
	} else {
		cmd.Stdout = os.Stderr
		cmd.Stderr = os.Stderr
		if err := cmd.Start(); err != nil {
			return nil, fmt.Errorf("hostproc: starting worker: %w", err)
		}
	}

	p.cmd = cmd
	return p, nil
}

func copyTraceToFile(ptmx *os.File, path string) {
	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer f.Close()
	buf := make([]byte, 4096)
	for {
		n, err := ptmx.Read(buf)
		if n > 0 {
			f.Write(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

// PID returns the worker's operating system process ID.
func (p *Process) PID() int {
	if p.cmd.Process == nil {
		return -1
	}
	return p.cmd.Process.Pid
}

// ID is the rendezvous/diagnostic UUID assigned to this process at spawn
// time, independent of the OS PID (which can be reused after exit).
func (p *Process) ID() uuid.UUID {
	return p.id
}

// Wait blocks until the worker exits and returns its exit code. Exit code
// 0 is a clean shutdown; nonzero is an initialization failure per spec.md
// §6.
func (p *Process) Wait() (int, error) {
	err := p.cmd.Wait()
	if p.traceF != nil {
		p.traceF.Close()
	}
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

// Kill forcibly terminates the worker, used when the watchdog on this side
// detects the peer has wedged rather than exited cleanly.
func (p *Process) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

// SpawnTimeout bounds how long Spawn's caller should wait for the worker's
// socket set to finish connecting (spec.md §4.8: "When the worker fails to
// come up within a bounded time ... the native side detects via a parallel
// process-liveness poll and surfaces the failure as a construction error
// rather than hanging").
const SpawnTimeout = 5 * time.Second
