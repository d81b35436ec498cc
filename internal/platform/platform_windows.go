//go:build windows && cgo

package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/1broseidon/webshell/internal/bootstrap"
	"github.com/1broseidon/webshell/internal/config"
	"github.com/1broseidon/webshell/internal/icon"
	"github.com/1broseidon/webshell/internal/menu"
	webview "github.com/webview/webview_go"
	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procReleaseCapture   = user32.NewProc("ReleaseCapture")
	procSendMessageW     = user32.NewProc("SendMessageW")
	procGetWindowRect    = user32.NewProc("GetWindowRect")
	procGetClientRect    = user32.NewProc("GetClientRect")
	procSetWindowPos     = user32.NewProc("SetWindowPos")
	procMonitorFromWnd   = user32.NewProc("MonitorFromWindow")
	procGetMonitorInfoW  = user32.NewProc("GetMonitorInfoW")
	procShowWindow       = user32.NewProc("ShowWindow")
	procGetDpiForWindow  = user32.NewProc("GetDpiForWindow")
	procCreateIcon       = user32.NewProc("CreateIcon")
	procDestroyIcon      = user32.NewProc("DestroyIcon")
	procGetWindowLongPtr = user32.NewProc(windowLongProc("GetWindowLong"))
	procSetWindowLongPtr = user32.NewProc(windowLongProc("SetWindowLong"))
)

const (
	wmSetIcon       = 0x0080
	wmNCLButtonDown = 0x00A1
	htCaption       = 2
	iconSmall       = 0
	iconBig         = 1

	wsOverlappedWindow = 0x00CF0000
	wsThickFrame       = 0x00040000

	swMinimize = 6
	swRestore  = 9

	swpNoZOrder      = 0x0004
	swpFrameChanged  = 0x0020
	swpNoOwnerZOrder = 0x0200
	monitorDefaultTo = 2 // MONITOR_DEFAULTTONEAREST
	defaultDPI       = 96
)

var gwlStyle int32 = -16

// GetWindowLongPtrW only exists in 64-bit user32.
func windowLongProc(base string) string {
	if unsafe.Sizeof(uintptr(0)) == 8 {
		return base + "PtrW"
	}
	return base + "W"
}

type rect struct {
	Left, Top, Right, Bottom int32
}

type monitorInfo struct {
	CbSize  uint32
	Monitor rect
	Work    rect
	Flags   uint32
}

type windowsPlatform struct {
	opts   Options
	icon   *icon.Image
	logger *slog.Logger
}

var _ Platform = (*windowsPlatform)(nil)

// New returns the Win32/WebView2 platform. The window icon is decoded up
// front; a missing or unreadable icon is fatal.
func New(opts Options) (Platform, error) {
	img, err := icon.Load(opts.Icon)
	if err != nil {
		return nil, err
	}
	return &windowsPlatform{opts: opts, icon: img, logger: opts.logger()}, nil
}

func (p *windowsPlatform) BootstrapVariant() bootstrap.Variant {
	return bootstrap.VariantDefault
}

// BuildMenu is a no-op; the window keeps the system menu only.
func (p *windowsPlatform) BuildMenu(*menu.Model, func(string)) error {
	return nil
}

func (p *windowsPlatform) BuildWindow(spec config.WindowSpec) (Window, error) {
	spec.Title = ""
	wv, err := newWebView(spec, p.opts.Devtools)
	if err != nil {
		return nil, err
	}
	w := &windowsWindow{wv: wv, hwnd: uintptr(wv.Window())}

	if err := w.setIcon(p.icon); err != nil {
		wv.Destroy()
		return nil, err
	}
	if spec.Fullscreen {
		if err := w.SetFullscreen(true); err != nil {
			wv.Destroy()
			return nil, err
		}
	}
	p.logger.Debug("window created", "hwnd", w.hwnd, "width", spec.Width, "height", spec.Height)
	return w, nil
}

func (p *windowsPlatform) AttachSurface(win Window, opts SurfaceOptions) (Surface, error) {
	w, ok := win.(*windowsWindow)
	if !ok {
		return nil, fmt.Errorf("window %T was not built by this platform", win)
	}
	if err := w.slot.claim(); err != nil {
		return nil, err
	}
	inspect := func() error {
		p.logger.Info("devtools are available from the page context menu")
		return nil
	}
	s, err := attachWebView(w.wv, opts, inspect, p.logger)
	if err != nil {
		return nil, err
	}
	return &windowsSurface{webSurface: s, win: w}, nil
}

// windowsSurface releases the icon handles together with the web view.
type windowsSurface struct {
	*webSurface
	win *windowsWindow
}

func (s *windowsSurface) Destroy() {
	s.webSurface.Destroy()
	if s.win.hicon != 0 {
		procDestroyIcon.Call(s.win.hicon)
		s.win.hicon = 0
	}
}

type windowsWindow struct {
	wv    webview.WebView
	hwnd  uintptr
	hicon uintptr
	slot  surfaceSlot

	fullscreen bool
	savedStyle uintptr
	savedRect  rect
}

func (w *windowsWindow) setIcon(img *icon.Image) error {
	if img == nil {
		return errors.New("window icon is missing")
	}
	andStride := ((img.Width + 15) / 16) * 2
	andMask := make([]byte, andStride*img.Height)
	xorBits := img.BGRA()

	h, _, err := procCreateIcon.Call(
		0,
		uintptr(img.Width),
		uintptr(img.Height),
		1,
		32,
		uintptr(unsafe.Pointer(&andMask[0])),
		uintptr(unsafe.Pointer(&xorBits[0])),
	)
	if h == 0 {
		return fmt.Errorf("failed to create window icon: %w", err)
	}
	w.hicon = h
	procSendMessageW.Call(w.hwnd, wmSetIcon, iconBig, h)
	procSendMessageW.Call(w.hwnd, wmSetIcon, iconSmall, h)
	return nil
}

func (w *windowsWindow) scale() float64 {
	if err := procGetDpiForWindow.Find(); err != nil {
		return 1
	}
	dpi, _, _ := procGetDpiForWindow.Call(w.hwnd)
	if dpi == 0 {
		return 1
	}
	return float64(dpi) / defaultDPI
}

func (w *windowsWindow) Size() (float64, float64) {
	var r rect
	procGetClientRect.Call(w.hwnd, uintptr(unsafe.Pointer(&r)))
	s := w.scale()
	return float64(r.Right-r.Left) / s, float64(r.Bottom-r.Top) / s
}

func (w *windowsWindow) Resizable() bool {
	style := w.style()
	if w.fullscreen {
		style = w.savedStyle
	}
	return style&wsThickFrame != 0
}

func (w *windowsWindow) style() uintptr {
	s, _, _ := procGetWindowLongPtr.Call(w.hwnd, uintptr(gwlStyle))
	return s
}

func (w *windowsWindow) IsFullscreen() bool {
	return w.fullscreen
}

// SetFullscreen switches between the decorated window and a borderless window
// covering the nearest monitor.
func (w *windowsWindow) SetFullscreen(on bool) error {
	if on == w.fullscreen {
		return nil
	}
	if on {
		w.savedStyle = w.style()
		if r, _, err := procGetWindowRect.Call(w.hwnd, uintptr(unsafe.Pointer(&w.savedRect))); r == 0 {
			return fmt.Errorf("GetWindowRect failed: %w", err)
		}
		mon, _, _ := procMonitorFromWnd.Call(w.hwnd, monitorDefaultTo)
		mi := monitorInfo{CbSize: uint32(unsafe.Sizeof(monitorInfo{}))}
		if r, _, err := procGetMonitorInfoW.Call(mon, uintptr(unsafe.Pointer(&mi))); r == 0 {
			return fmt.Errorf("GetMonitorInfoW failed: %w", err)
		}
		procSetWindowLongPtr.Call(w.hwnd, uintptr(gwlStyle), w.savedStyle&^wsOverlappedWindow)
		m := mi.Monitor
		procSetWindowPos.Call(w.hwnd, 0,
			uintptr(m.Left), uintptr(m.Top),
			uintptr(m.Right-m.Left), uintptr(m.Bottom-m.Top),
			swpNoOwnerZOrder|swpFrameChanged)
	} else {
		procSetWindowLongPtr.Call(w.hwnd, uintptr(gwlStyle), w.savedStyle)
		r := w.savedRect
		procSetWindowPos.Call(w.hwnd, 0,
			uintptr(r.Left), uintptr(r.Top),
			uintptr(r.Right-r.Left), uintptr(r.Bottom-r.Top),
			swpNoZOrder|swpNoOwnerZOrder|swpFrameChanged)
	}
	w.fullscreen = on
	return nil
}

// StartDrag hands the pressed button to the system move loop, which returns
// once the button is released.
func (w *windowsWindow) StartDrag() error {
	procReleaseCapture.Call()
	procSendMessageW.Call(w.hwnd, wmNCLButtonDown, htCaption, 0)
	return nil
}

func (w *windowsWindow) SetMinimized(on bool) error {
	cmd := uintptr(swRestore)
	if on {
		cmd = swMinimize
	}
	procShowWindow.Call(w.hwnd, cmd)
	return nil
}
