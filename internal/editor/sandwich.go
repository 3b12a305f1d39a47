// Package editor is the editor embedder (spec.md §4.6): the foreign
// plugin's GUI window is embedded into the host's window through a
// four-deep window sandwich (host window, host-supplied parent window, a
// wrapper window this package creates, and the plugin's own foreign
// window), with coordinate correction, focus handoff, an idle-tick timer,
// and deferred window destruction.
//
// Grounded on original_source/src/common/serialization/vst3/plug-view-proxy.h's
// proxy-state design (the proxy object tracks the view's last known
// attached-parent handle and reattaches on reparent) for the
// Reparent-tracking responsibility, adapted here from a VST3 IPlugView COM
// proxy to this package's Sandwich/Embedder pair. github.com/jezek/xgb is
// named directly (no pack example repo embeds X11 windows) as the X11
// client library this embedder is built on, the way SPEC_FULL.md's
// DOMAIN STACK section records it.
package editor

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Sandwich is the four-window stack of spec.md §4.6.
type Sandwich struct {
	Host    xproto.Window // topmost ancestor of Parent with WM_STATE set
	Parent  xproto.Window // supplied by the host
	Wrapper xproto.Window // created by this package
	Foreign xproto.Window // created by the plugin
}

// findHostWindow walks up the window tree from parent looking for the
// topmost ancestor that carries a WM_STATE property, per spec.md §4.6's
// "topmost ancestor of parent_window with WM_STATE set." wmState is the
// interned WM_STATE atom, looked up once by the caller and passed in so
// repeated calls (e.g. from Reparent) don't re-intern it.
func findHostWindow(conn *xgb.Conn, parent xproto.Window, wmState xproto.Atom) (xproto.Window, error) {
	current := parent
	topmostWithState := parent
	for {
		hasState, err := windowHasProperty(conn, current, wmState)
		if err != nil {
			return 0, err
		}
		if hasState {
			topmostWithState = current
		}
		tree, err := xproto.QueryTree(conn, current).Reply()
		if err != nil {
			return 0, err
		}
		if tree.Parent == 0 || tree.Parent == tree.Root {
			break
		}
		current = tree.Parent
	}
	return topmostWithState, nil
}

func windowHasProperty(conn *xgb.Conn, win xproto.Window, atom xproto.Atom) (bool, error) {
	reply, err := xproto.GetProperty(conn, false, win, atom, xproto.GetPropertyTypeAny, 0, 0).Reply()
	if err != nil {
		return false, err
	}
	return reply != nil && reply.Format != 0, nil
}

// createWrapper creates the bare wrapper window sized to the largest
// connected display, per spec.md §4.6's open sequence: "create a
// foreign-window of size = largest connected display ... wrap it."
func createWrapper(conn *xgb.Conn, parent xproto.Window, width, height uint16) (xproto.Window, error) {
	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}
	screen := xproto.Setup(conn).DefaultScreen(conn)
	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		parent,
		0, 0, width, height, 0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwEventMask,
		[]uint32{xproto.EventMaskStructureNotify | xproto.EventMaskSubstructureNotify},
	).Check()
	if err != nil {
		return 0, err
	}
	return wid, nil
}
