package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

const (
	stateFullscreen = "_NET_WM_STATE_FULLSCREEN"

	// Source indication for EWMH requests: normal application.
	sourceApplication = 1
	iconicState       = 3
)

// SetFullscreen asks the window manager to add or remove the fullscreen state.
func (c *Connection) SetFullscreen(windowID xproto.Window, on bool) error {
	action := ewmh.StateRemove
	if on {
		action = ewmh.StateAdd
	}
	if err := ewmh.WmStateReq(c.XUtil, windowID, action, stateFullscreen); err != nil {
		return fmt.Errorf("failed to request fullscreen state: %w", err)
	}
	return nil
}

// MarkFullscreen writes the fullscreen atom into _NET_WM_STATE directly. The
// window manager only honours this before the window is mapped.
func (c *Connection) MarkFullscreen(windowID xproto.Window) error {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		states = nil
	}
	if hasState(states, stateFullscreen) {
		return nil
	}
	return ewmh.WmStateSet(c.XUtil, windowID, append(states, stateFullscreen))
}

// IsFullscreen reports whether _NET_WM_STATE currently carries the fullscreen atom.
func (c *Connection) IsFullscreen(windowID xproto.Window) (bool, error) {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return false, err
	}
	return hasState(states, stateFullscreen), nil
}

// Minimize iconifies a window via WM_CHANGE_STATE.
func (c *Connection) Minimize(windowID xproto.Window) error {
	return c.sendRootMessage(windowID, "WM_CHANGE_STATE", iconicState)
}

// Activate restores and raises a window using _NET_ACTIVE_WINDOW.
// The message is built by hand; the ewmh request helpers are not used here
// because they panic on this library version.
func (c *Connection) Activate(windowID xproto.Window) error {
	return c.sendRootMessage(windowID, "_NET_ACTIVE_WINDOW", sourceApplication)
}

// Size returns the inner size of a window in pixels.
func (c *Connection) Size(windowID xproto.Window) (width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, err
	}
	return int(geom.Width), int(geom.Height), nil
}

// Resizable reports whether WM_NORMAL_HINTS leave the window size free.
// Windows without hints are resizable.
func (c *Connection) Resizable(windowID xproto.Window) bool {
	hints, err := icccm.WmNormalHintsGet(c.XUtil, windowID)
	if err != nil {
		return true
	}
	return resizableHints(hints)
}

// PointerPosition returns the pointer location in root window coordinates.
func (c *Connection) PointerPosition() (x, y int, err error) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return 0, 0, err
	}
	return int(reply.RootX), int(reply.RootY), nil
}

func hasState(states []string, want string) bool {
	for _, s := range states {
		if s == want {
			return true
		}
	}
	return false
}

func resizableHints(h *icccm.NormalHints) bool {
	const fixed = icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize
	if h == nil || h.Flags&fixed != fixed {
		return true
	}
	return h.MinWidth != h.MaxWidth || h.MinHeight != h.MaxHeight
}
