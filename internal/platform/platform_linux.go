//go:build linux && cgo

package platform

/*
#cgo pkg-config: gtk+-3.0 webkit2gtk-4.0
#include <gtk/gtk.h>
#include <gdk/gdkx.h>
#include <webkit2/webkit2.h>

static unsigned long webshell_xid(void *w) {
	GtkWidget *widget = GTK_WIDGET(w);
	gtk_widget_realize(widget);
	GdkWindow *gw = gtk_widget_get_window(widget);
	if (gw == NULL || !GDK_IS_X11_WINDOW(gw)) {
		return 0;
	}
	return (unsigned long)gdk_x11_window_get_xid(gw);
}

static int webshell_scale(void *w) {
	return gtk_widget_get_scale_factor(GTK_WIDGET(w));
}

static void webshell_begin_move(void *w, int x, int y) {
	gtk_window_begin_move_drag(GTK_WINDOW(w), 1, x, y, GDK_CURRENT_TIME);
}

static int webshell_show_inspector(void *w) {
	GtkWidget *child = gtk_bin_get_child(GTK_BIN(w));
	if (child == NULL || !WEBKIT_IS_WEB_VIEW(child)) {
		return 0;
	}
	webkit_web_inspector_show(webkit_web_view_get_inspector(WEBKIT_WEB_VIEW(child)));
	return 1;
}
*/
import "C"

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/1broseidon/webshell/internal/bootstrap"
	"github.com/1broseidon/webshell/internal/config"
	"github.com/1broseidon/webshell/internal/menu"
	"github.com/1broseidon/webshell/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	webview "github.com/webview/webview_go"
)

type linuxPlatform struct {
	conn   *x11.Connection
	opts   Options
	logger *slog.Logger
}

var _ Platform = (*linuxPlatform)(nil)

// New returns the GTK/X11 platform. GDK is pinned to the X11 backend so the
// EWMH requests reach the window manager.
func New(opts Options) (Platform, error) {
	if os.Getenv("GDK_BACKEND") == "" {
		if err := os.Setenv("GDK_BACKEND", "x11"); err != nil {
			return nil, fmt.Errorf("failed to set GDK_BACKEND: %w", err)
		}
	}
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &linuxPlatform{conn: conn, opts: opts, logger: opts.logger()}, nil
}

func (p *linuxPlatform) BootstrapVariant() bootstrap.Variant {
	return bootstrap.VariantDefault
}

// BuildMenu is a no-op; the GTK window carries no menu bar.
func (p *linuxPlatform) BuildMenu(*menu.Model, func(string)) error {
	return nil
}

func (p *linuxPlatform) BuildWindow(spec config.WindowSpec) (Window, error) {
	spec.Title = ""
	wv, err := newWebView(spec, p.opts.Devtools)
	if err != nil {
		return nil, err
	}

	xid := C.webshell_xid(wv.Window())
	if xid == 0 {
		wv.Destroy()
		return nil, fmt.Errorf("window has no X11 id (GDK_BACKEND=%s)", os.Getenv("GDK_BACKEND"))
	}

	w := &linuxWindow{
		wv:     wv,
		conn:   p.conn,
		id:     xproto.Window(xid),
		width:  spec.Width,
		height: spec.Height,
	}
	if spec.Fullscreen {
		// The property covers a window the manager has not mapped yet; the
		// request covers one it already has.
		if err := p.conn.MarkFullscreen(w.id); err != nil {
			p.logger.Debug("failed to preset fullscreen state", "error", err)
		}
		if err := w.SetFullscreen(true); err != nil {
			wv.Destroy()
			return nil, err
		}
	}
	p.logger.Debug("window created", "xid", uint32(w.id), "width", spec.Width, "height", spec.Height)
	return w, nil
}

func (p *linuxPlatform) AttachSurface(win Window, opts SurfaceOptions) (Surface, error) {
	w, ok := win.(*linuxWindow)
	if !ok {
		return nil, fmt.Errorf("window %T was not built by this platform", win)
	}
	if err := w.slot.claim(); err != nil {
		return nil, err
	}
	handle := w.wv.Window()
	inspect := func() error {
		if C.webshell_show_inspector(handle) == 0 {
			return fmt.Errorf("web inspector is not available")
		}
		return nil
	}
	s, err := attachWebView(w.wv, opts, inspect, p.logger)
	if err != nil {
		return nil, err
	}
	return &linuxSurface{webSurface: s, conn: p.conn}, nil
}

// linuxSurface closes the X11 connection together with the web view.
type linuxSurface struct {
	*webSurface
	conn *x11.Connection
}

func (s *linuxSurface) Destroy() {
	s.webSurface.Destroy()
	s.conn.Close()
}

type linuxWindow struct {
	wv   webview.WebView
	conn *x11.Connection
	id   xproto.Window
	slot surfaceSlot

	width, height float64
	fullscreen    fullscreenState
}

// Size converts the X11 geometry, which is in device pixels, to the logical
// units the window was created with.
func (w *linuxWindow) Size() (float64, float64) {
	width, height, err := w.conn.Size(w.id)
	if err != nil {
		return w.width, w.height
	}
	return logicalSize(width, height, int(C.webshell_scale(w.wv.Window())))
}

func (w *linuxWindow) Resizable() bool {
	return w.conn.Resizable(w.id)
}

// IsFullscreen reads _NET_WM_STATE. The window manager applies requests
// asynchronously, so the requested value stands in until the property
// catches up.
func (w *linuxWindow) IsFullscreen() bool {
	return w.fullscreen.resolve(w.conn.IsFullscreen(w.id))
}

func (w *linuxWindow) SetFullscreen(on bool) error {
	if err := w.conn.SetFullscreen(w.id, on); err != nil {
		return err
	}
	w.fullscreen.request(on)
	return nil
}

// StartDrag goes through GTK because GTK holds the pointer grab while the
// button is down; a request from another client would be refused.
func (w *linuxWindow) StartDrag() error {
	x, y, err := w.conn.PointerPosition()
	if err != nil {
		return fmt.Errorf("failed to query pointer: %w", err)
	}
	C.webshell_begin_move(w.wv.Window(), C.int(x), C.int(y))
	return nil
}

func (w *linuxWindow) SetMinimized(on bool) error {
	if on {
		return w.conn.Minimize(w.id)
	}
	return w.conn.Activate(w.id)
}
