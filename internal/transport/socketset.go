// Package transport is the socket set (spec.md §4.2): a fixed bundle of six
// Unix domain stream sockets per plugin instance, accepted by the native
// side in a fixed order while the worker connects in the same order, then
// the listeners are closed and their socket files unlinked. Each socket's
// writer is serialized by its own mutex so main-thread dispatch, event
// dispatch, host callbacks, parameter access, and audio processing can each
// proceed on their own goroutine without interleaving frames from two
// concurrent writers onto the same connection.
//
// Grounded on doismellburning-samoyed's goroutine-per-listener pattern
// (server.go's server_connect_listen_thread spawning one goroutine to
// accept, then one goroutine per connection) for the accept/serve shape,
// adapted from TCP to a Unix domain socket directory; golang.org/x/sync is
// part of the pack's dependency graph (pulled in by doismellburning-samoyed)
// and is used here via errgroup to supervise the fixed-order accept loop so
// a failure on any one socket tears down the whole set instead of leaving
// the instance half-connected.
package transport

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/plugbridge/plugbridge/internal/wire"
)

// Socket names the six roles in the accept order spec.md §4.2 fixes.
type Socket int

const (
	MainDispatch Socket = iota
	EventDispatch
	HostCallback
	Parameters
	Audio
	Control

	numSockets
)

func (s Socket) String() string {
	switch s {
	case MainDispatch:
		return "main-dispatch"
	case EventDispatch:
		return "event-dispatch"
	case HostCallback:
		return "host-callback"
	case Parameters:
		return "parameters"
	case Audio:
		return "audio"
	case Control:
		return "control"
	default:
		return fmt.Sprintf("socket(%d)", int(s))
	}
}

// socketOrder is the fixed accept/connect order from spec.md §4.2's table.
var socketOrder = [numSockets]Socket{MainDispatch, EventDispatch, HostCallback, Parameters, Audio, Control}

// Conn pairs one connection with the write mutex that serializes frames
// onto it and a FrameReader/FrameWriter for decoding/encoding.
type Conn struct {
	Socket Socket

	conn net.Conn
	mu   sync.Mutex
	fw   *wire.FrameWriter
	fr   *wire.FrameReader
}

// WriteFrame serializes payload onto the connection behind this socket's
// write mutex. Safe for concurrent callers; frames never interleave.
func (c *Conn) WriteFrame(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fw.WriteFrame(payload)
}

// ReadFrame blocks for the next frame. Only the socket's single reader
// goroutine should call this: unlike WriteFrame, reading is not
// mutex-guarded because spec.md §4.2 assigns exactly one dedicated reader
// per socket direction.
func (c *Conn) ReadFrame() ([]byte, error) {
	return c.fr.ReadFrame()
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// Set is the six live connections of one instance's socket set, indexed by
// role.
type Set struct {
	conns [numSockets]*Conn
}

// Get returns the Conn for the given role.
func (s *Set) Get(role Socket) *Conn {
	return s.conns[role]
}

func (s *Set) set(role Socket, c net.Conn) {
	s.conns[role] = &Conn{
		Socket: role,
		conn:   c,
		fw:     wire.NewFrameWriter(c),
		fr:     wire.NewFrameReader(c),
	}
}

// CloseAll closes every connection in the set and returns the first error
// it meets, if any.
func (s *Set) CloseAll() error {
	var first error
	for _, c := range s.conns {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// socketPath builds the path for one named socket under an instance's
// directory, per spec.md §6's "sockets named by role".
func socketPath(dir string, role Socket) string {
	return filepath.Join(dir, role.String()+".sock")
}

// Listen is the native side of the handshake: it binds a unique socket
// directory (the caller chooses and owns the directory's lifetime and
// cleanup) and accepts all six connections in the fixed order, one listener
// per named socket since each one is a distinct path. Once every connection
// is accepted, all six listeners are closed and their socket files
// unlinked, matching spec.md §4.2's "once all N connections are established
// the listener is closed and the socket path is unlinked."
func Listen(ctx context.Context, dir string) (*Set, error) {
	listeners := make(map[Socket]*net.UnixListener, numSockets)
	defer func() {
		for _, l := range listeners {
			l.Close()
		}
	}()

	for _, role := range socketOrder {
		path := socketPath(dir, role)
		addr, err := net.ResolveUnixAddr("unix", path)
		if err != nil {
			return nil, fmt.Errorf("transport: resolve %s: %w", role, err)
		}
		l, err := net.ListenUnix("unix", addr)
		if err != nil {
			return nil, fmt.Errorf("transport: listen %s: %w", role, err)
		}
		listeners[role] = l
	}

	set := &Set{}
	g, gctx := errgroup.WithContext(ctx)
	for _, role := range socketOrder {
		role := role
		l := listeners[role]
		g.Go(func() error {
			type result struct {
				conn net.Conn
				err  error
			}
			ch := make(chan result, 1)
			go func() {
				c, err := l.Accept()
				ch <- result{c, err}
			}()
			select {
			case <-gctx.Done():
				return gctx.Err()
			case r := <-ch:
				if r.err != nil {
					return fmt.Errorf("transport: accept %s: %w", role, r.err)
				}
				set.set(role, r.conn)
				return nil
			}
		})
	}
	if err := g.Wait(); err != nil {
		set.CloseAll()
		return nil, err
	}

	for role, l := range listeners {
		l.Close()
		os.Remove(socketPath(dir, role))
	}
	return set, nil
}

// Dial is the worker side of the handshake: it connects to all six named
// sockets under dir in the same fixed order the native side accepts them
// in, since net.Dial against a Unix socket path that doesn't exist yet
// would fail, the caller is expected to only invoke Dial once it knows
// Listen has bound the directory (e.g. after the rendezvous socket in
// internal/hostproc signals readiness).
func Dial(dir string) (*Set, error) {
	set := &Set{}
	for _, role := range socketOrder {
		path := socketPath(dir, role)
		addr, err := net.ResolveUnixAddr("unix", path)
		if err != nil {
			return nil, fmt.Errorf("transport: resolve %s: %w", role, err)
		}
		c, err := net.DialUnix("unix", nil, addr)
		if err != nil {
			set.CloseAll()
			return nil, fmt.Errorf("transport: dial %s: %w", role, err)
		}
		set.set(role, c)
	}
	return set, nil
}
