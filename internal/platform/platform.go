// Package platform builds the native window, attaches the web content surface
// to it and renders the application menu.
//
// Each supported OS has its own implementation selected at compile time. All
// methods must be called on the UI thread, which is the thread main locked
// with runtime.LockOSThread.
package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/1broseidon/webshell/internal/bootstrap"
	"github.com/1broseidon/webshell/internal/config"
	"github.com/1broseidon/webshell/internal/menu"
)

var (
	// ErrSurfaceBound is returned when a second surface is attached to a window.
	ErrSurfaceBound = errors.New("window already has a content surface")
	// ErrUnsupported is returned by New on builds without a native backend.
	ErrUnsupported = errors.New("no native window backend in this build")
)

// Window is a native top-level window.
type Window interface {
	// Size returns the inner size in logical pixels.
	Size() (width, height float64)
	Resizable() bool
	IsFullscreen() bool
	SetFullscreen(on bool) error
	// StartDrag hands the pointer to the window manager for an interactive move.
	StartDrag() error
	SetMinimized(on bool) error
}

// Surface is the web content view bound to a Window.
type Surface interface {
	// Run pumps native events until Terminate is called.
	Run()
	// Dispatch schedules f on the UI thread. Safe to call from any goroutine.
	Dispatch(f func())
	Terminate()
	OpenDevtools() error
	Destroy()
}

// SurfaceOptions configures AttachSurface.
type SurfaceOptions struct {
	URL *url.URL
	// InitScript runs before any page script on every navigation.
	InitScript string
	// IPC receives every message posted by the page. Called on the UI thread.
	IPC func(msg string)
}

// Platform creates the native pieces of the shell.
type Platform interface {
	// BootstrapVariant selects the bootstrap script matching the window chrome.
	BootstrapVariant() bootstrap.Variant
	// BuildMenu renders the application menu. onSelect receives the ID of
	// custom items. Platforms without an application menu ignore the call.
	BuildMenu(m *menu.Model, onSelect func(id string)) error
	BuildWindow(spec config.WindowSpec) (Window, error)
	AttachSurface(w Window, opts SurfaceOptions) (Surface, error)
}

// Options configures New.
type Options struct {
	// Devtools enables the web inspector.
	Devtools bool
	// Icon is the window icon path. Only used on windows.
	Icon   string
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// surfaceSlot tracks the one-to-one binding between a window and its surface.
type surfaceSlot struct {
	bound bool
}

func (s *surfaceSlot) claim() error {
	if s.bound {
		return ErrSurfaceBound
	}
	s.bound = true
	return nil
}

// validateURL checks that u can be handed to the web view.
func validateURL(u *url.URL) error {
	if u == nil {
		return errors.New("surface url is empty")
	}
	if !u.IsAbs() {
		return fmt.Errorf("surface url %q is not absolute", u.String())
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("surface url %q has no host", u.String())
		}
	case "file", "data":
	default:
		return fmt.Errorf("surface url scheme %q is not supported", u.Scheme)
	}
	return nil
}

// logicalSize converts a device-pixel size to logical units at the given
// integer scale factor.
func logicalSize(width, height, scale int) (float64, float64) {
	if scale < 1 {
		scale = 1
	}
	return float64(width) / float64(scale), float64(height) / float64(scale)
}
