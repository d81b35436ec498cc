//go:build cgo && (linux || darwin || windows)

package platform

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/webshell/internal/bootstrap"
	"github.com/1broseidon/webshell/internal/config"
	webview "github.com/webview/webview_go"
)

// newWebView creates the native window together with its web view and applies
// the size rules shared by every platform.
func newWebView(spec config.WindowSpec, devtools bool) (webview.WebView, error) {
	wv := webview.New(devtools)
	if wv == nil || wv.Window() == nil {
		return nil, fmt.Errorf("failed to create native window")
	}
	hint := webview.HintNone
	if !spec.Resizable {
		hint = webview.HintFixed
	}
	wv.SetTitle(spec.Title)
	wv.SetSize(int(spec.Width), int(spec.Height), hint)
	return wv, nil
}

// webSurface implements Surface on top of webview_go. The native parts that
// webview_go does not expose are supplied by the platform through inspect.
type webSurface struct {
	wv      webview.WebView
	inspect func() error
	logger  *slog.Logger
}

func attachWebView(wv webview.WebView, opts SurfaceOptions, inspect func() error, logger *slog.Logger) (*webSurface, error) {
	if err := validateURL(opts.URL); err != nil {
		return nil, err
	}

	if opts.InitScript != "" {
		wv.Init(opts.InitScript)
	}
	if opts.IPC != nil {
		ipc := opts.IPC
		if err := wv.Bind(bootstrap.BindingName, func(msg string) {
			ipc(msg)
		}); err != nil {
			return nil, fmt.Errorf("failed to bind ipc handler: %w", err)
		}
	}
	wv.Navigate(opts.URL.String())

	return &webSurface{wv: wv, inspect: inspect, logger: logger}, nil
}

func (s *webSurface) Run() {
	s.wv.Run()
}

func (s *webSurface) Dispatch(f func()) {
	s.wv.Dispatch(f)
}

func (s *webSurface) Terminate() {
	s.wv.Terminate()
}

func (s *webSurface) OpenDevtools() error {
	if s.inspect == nil {
		return ErrUnsupported
	}
	return s.inspect()
}

func (s *webSurface) Destroy() {
	s.wv.Destroy()
}
