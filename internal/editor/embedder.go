package editor

import (
	"sync"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/rs/zerolog"
)

// CloseDelay is spec.md §4.6's deferred-close window: the wrapper is
// unmapped immediately on Close, but the underlying windows are only
// destroyed after this delay, giving the plugin's own event loop time to
// unwind any in-flight paint or menu tracking against them.
const CloseDelay = time.Second

// IdleInterval is the default idle-timer period that keeps the foreign
// window's native event loop flowing while a host-side modal (a menu, a
// dialog) would otherwise starve it of X11 events, per spec.md §4.6.
const IdleInterval = 16 * time.Millisecond

// Embedder owns one open editor window sandwich. Not safe for concurrent
// use from more than one goroutine at a time; the arbiter package's GUI
// queue is expected to serialize all calls onto a single goroutine, the
// same way the teacher's pkg/thread package funnels GUI work onto one
// queue.
type Embedder struct {
	conn    *xgb.Conn
	log     zerolog.Logger
	wmState xproto.Atom

	mu       sync.Mutex
	sandwich Sandwich
	open     bool
	grabbed  bool
	idleStop chan struct{}
	closeTmr *time.Timer
}

// New wraps an already-established X11 connection. The caller owns the
// connection's lifetime; Embedder never calls conn.Close.
func New(conn *xgb.Conn, log zerolog.Logger) (*Embedder, error) {
	atom, err := xproto.InternAtom(conn, true, uint16(len("WM_STATE")), "WM_STATE").Reply()
	if err != nil {
		return nil, err
	}
	return &Embedder{conn: conn, log: log, wmState: atom.Atom}, nil
}

// Open performs spec.md §4.6's open sequence: find the host window above
// the host-supplied parent, create a wrapper sized to the largest
// connected display, reparent the plugin's foreign window under the
// wrapper, then map both.
func (e *Embedder) Open(parent, foreign xproto.Window) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.open {
		return errAlreadyOpen
	}

	host, err := findHostWindow(e.conn, parent, e.wmState)
	if err != nil {
		return err
	}

	w, h := largestScreenDimensions(e.conn)
	wrapper, err := createWrapper(e.conn, parent, w, h)
	if err != nil {
		return err
	}

	if err := xproto.ReparentWindowChecked(e.conn, foreign, wrapper, 0, 0).Check(); err != nil {
		return err
	}
	if err := xproto.MapWindowChecked(e.conn, wrapper).Check(); err != nil {
		return err
	}
	if err := xproto.MapWindowChecked(e.conn, foreign).Check(); err != nil {
		return err
	}

	e.sandwich = Sandwich{Host: host, Parent: parent, Wrapper: wrapper, Foreign: foreign}
	e.open = true
	e.idleStop = make(chan struct{})
	go e.idleLoop(e.idleStop)
	e.log.Debug().Uint32("wrapper", uint32(wrapper)).Uint32("foreign", uint32(foreign)).Msg("editor opened")
	return nil
}

// Resize resizes only the wrapper window, per spec.md §4.6 ("only
// wrapper_window resizes; parent_window and foreign_window are left
// alone and rely on the wrapper's ConfigureNotify to learn the new
// size"). The foreign window receives its own size from the plugin and
// is never resized directly by this package.
func (e *Embedder) Resize(width, height uint16) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open {
		return errNotOpen
	}
	return xproto.ConfigureWindowChecked(e.conn, e.sandwich.Wrapper, xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(width), uint32(height)}).Check()
}

// CorrectCoordinates synthesizes a ConfigureNotify against the foreign
// window reporting its position relative to the wrapper, per spec.md
// §4.6: plugins that call XTranslateCoordinates against stale cached
// geometry need a synthetic event after every configure of host, parent,
// or wrapper, and on every pointer entry into the foreign window.
func (e *Embedder) CorrectCoordinates(x, y int16, width, height uint16) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open {
		return errNotOpen
	}
	ev := xproto.ConfigureNotifyEvent{
		Event:            e.sandwich.Foreign,
		Window:           e.sandwich.Foreign,
		AboveSibling:     0,
		X:                x,
		Y:                y,
		Width:            width,
		Height:           height,
		BorderWidth:      0,
		OverrideRedirect: false,
	}
	return xproto.SendEventChecked(e.conn, false, e.sandwich.Foreign, xproto.EventMaskStructureNotify, string(ev.Bytes())).Check()
}

// FocusEnter applies spec.md §4.6's pointer-enter focus rule: grab input
// focus for the foreign window only if the sandwich's toplevel is
// currently the active window, and only if a grab isn't already held
// (redundant grabs are suppressed rather than re-issued).
func (e *Embedder) FocusEnter(toplevelIsActive bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open || !toplevelIsActive || e.grabbed {
		return nil
	}
	if _, err := xproto.SetInputFocus(e.conn, xproto.InputFocusParent, e.sandwich.Foreign, xproto.TimeCurrentTime).Reply(); err != nil {
		return err
	}
	e.grabbed = true
	return nil
}

// FocusLeave releases the grab established by FocusEnter when the
// pointer leaves the foreign window, but only if the sandwich's toplevel
// is still active and the pointer isn't now over some other window of
// this same worker process (per spec.md §4.6, moving between two of the
// plugin's own windows should not bounce focus back to the host).
func (e *Embedder) FocusLeave(toplevelIsActive, pointerOverOwnProcess bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open || !e.grabbed || pointerOverOwnProcess || !toplevelIsActive {
		return nil
	}
	if _, err := xproto.SetInputFocus(e.conn, xproto.InputFocusParent, e.sandwich.Parent, xproto.TimeCurrentTime).Reply(); err != nil {
		return err
	}
	e.grabbed = false
	return nil
}

// FocusDirect is spec.md §4.6's shift-modifier escape hatch: directly
// focus the foreign window regardless of the active-toplevel check,
// letting the user reach the plugin's own widgets even when the
// embedding host's focus tracking disagrees about who's active.
func (e *Embedder) FocusDirect() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open {
		return errNotOpen
	}
	_, err := xproto.SetInputFocus(e.conn, xproto.InputFocusParent, e.sandwich.Foreign, xproto.TimeCurrentTime).Reply()
	return err
}

// HitTest implements spec.md §4.6's "nowhere outside the visible editor
// region" rule: points outside [0, width) x [0, height) of the wrapper
// never resolve to the foreign window, even though the foreign window
// itself is sized to the largest connected display and would otherwise
// happily accept them.
func (e *Embedder) HitTest(x, y int16, visibleWidth, visibleHeight uint16) bool {
	return x >= 0 && y >= 0 && x < int16(visibleWidth) && y < int16(visibleHeight)
}

// Reparent re-detects the host window, per spec.md §4.6: hosts that
// rebuild their own window tree (docking, tab reordering) leave
// parent_window's ancestry changed without notifying the plugin, so this
// package re-walks the tree on demand rather than caching Host forever.
func (e *Embedder) Reparent() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open {
		return errNotOpen
	}
	host, err := findHostWindow(e.conn, e.sandwich.Parent, e.wmState)
	if err != nil {
		return err
	}
	e.sandwich.Host = host
	return nil
}

// Close unmaps the wrapper immediately and schedules actual window
// destruction after CloseDelay, per spec.md §4.6's deferred-close rule.
func (e *Embedder) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open {
		return
	}
	close(e.idleStop)
	xproto.UnmapWindowChecked(e.conn, e.sandwich.Wrapper).Check()
	wrapper := e.sandwich.Wrapper
	e.open = false
	e.closeTmr = time.AfterFunc(CloseDelay, func() {
		xproto.DestroyWindowChecked(e.conn, wrapper).Check()
	})
}

func (e *Embedder) idleLoop(stop chan struct{}) {
	t := time.NewTicker(IdleInterval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			e.conn.Sync()
		}
	}
}

func largestScreenDimensions(conn *xgb.Conn) (uint16, uint16) {
	setup := xproto.Setup(conn)
	var w, h uint16
	for _, screen := range setup.Roots {
		if screen.WidthInPixels > w {
			w = screen.WidthInPixels
		}
		if screen.HeightInPixels > h {
			h = screen.HeightInPixels
		}
	}
	if w == 0 {
		w = 1920
	}
	if h == 0 {
		h = 1080
	}
	return w, h
}
