// Package shell wires the configuration, the native platform and the event
// loop into the running application.
package shell

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/webshell/internal/bootstrap"
	"github.com/1broseidon/webshell/internal/bridge"
	"github.com/1broseidon/webshell/internal/config"
	"github.com/1broseidon/webshell/internal/eventloop"
	"github.com/1broseidon/webshell/internal/menu"
	"github.com/1broseidon/webshell/internal/platform"
)

// Options configures Run.
type Options struct {
	Config   *config.Config
	Platform platform.Platform
	// Launcher opens open_browser links. Nil uses the default browser.
	Launcher bridge.Launcher
	Logger   *slog.Logger
}

// Run builds the menu, the window and its content surface, then pumps events
// until the window closes or ctx is cancelled. It must be called on the UI
// thread. Startup failures are returned before the event loop starts.
func Run(ctx context.Context, opts Options) error {
	cfg := opts.Config
	if cfg == nil {
		return errors.New("config is nil")
	}
	if opts.Platform == nil {
		return errors.New("platform is nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	p := opts.Platform

	app := &app{
		cfg:    cfg,
		bridge: bridge.New(opts.Launcher, logger),
		logger: logger,
	}
	app.loop = eventloop.New(app, logger)

	if err := p.BuildMenu(menu.DefaultAppMenu(), func(id string) {
		app.loop.Dispatch(eventloop.MenuSelected(id))
	}); err != nil {
		return fmt.Errorf("failed to build menu: %w", err)
	}

	win, err := p.BuildWindow(cfg.Window)
	if err != nil {
		return fmt.Errorf("failed to build window: %w", err)
	}
	app.win = win

	script, err := bootstrap.Script(p.BootstrapVariant(), cfg.Inject)
	if err != nil {
		return fmt.Errorf("failed to assemble bootstrap script: %w", err)
	}

	surf, err := p.AttachSurface(win, platform.SurfaceOptions{
		URL:        cfg.Window.URL,
		InitScript: script,
		IPC: func(msg string) {
			app.loop.Dispatch(eventloop.IPCMessage(msg))
		},
	})
	if err != nil {
		return fmt.Errorf("failed to attach content surface: %w", err)
	}
	app.surf = surf
	defer surf.Destroy()

	if cfg.Devtools {
		if err := surf.OpenDevtools(); err != nil {
			logger.Warn("failed to open devtools", "error", err)
		}
	}

	// The watcher must be gone before the deferred Destroy runs.
	stop := make(chan struct{})
	watcherDone := make(chan struct{})
	go func() {
		defer close(watcherDone)
		select {
		case <-ctx.Done():
			logger.Info("shutdown requested", "reason", context.Cause(ctx))
			surf.Dispatch(app.requestClose)
		case <-stop:
		}
	}()
	defer func() {
		close(stop)
		<-watcherDone
	}()

	logger.Info("window opened", "url", cfg.Window.URL.String(), "width", cfg.Window.Width, "height", cfg.Window.Height)

	surf.Dispatch(func() {
		app.loop.Dispatch(eventloop.Init())
	})
	app.running = true
	surf.Run()
	app.running = false

	// The native window went away without a close request passing through
	// the loop.
	if !app.loop.Exited() {
		app.loop.Dispatch(eventloop.CloseRequested())
	}
	logger.Info("window closed")
	return nil
}

// app is the event handler. Every method runs on the UI thread.
type app struct {
	cfg    *config.Config
	bridge *bridge.Bridge
	loop   *eventloop.Loop
	win    platform.Window
	surf   platform.Surface
	logger *slog.Logger

	running    bool
	terminated bool
}

func (a *app) HandleEvent(ev eventloop.Event) {
	switch ev.Kind {
	case eventloop.KindIPCMessage:
		if a.win == nil {
			return
		}
		cmd := a.bridge.Handle(a.win, ev.Message)
		if cmd != bridge.CommandNone {
			a.logger.Debug("ipc command", "command", cmd)
		}
	case eventloop.KindMenuSelected:
		a.handleMenu(ev.MenuID)
	case eventloop.KindCloseRequested:
		a.terminate()
	}
}

func (a *app) handleMenu(id string) {
	if id != menu.CloseWindowID || a.win == nil {
		return
	}
	switch a.cfg.CloseWindowAction {
	case config.CloseWindowClose:
		// Queued rather than dispatched inline so this event finishes
		// before the close request is handled.
		if a.surf != nil {
			a.surf.Dispatch(a.requestClose)
		}
	default:
		if err := a.win.SetMinimized(true); err != nil {
			a.logger.Warn("failed to minimize window", "error", err)
		}
	}
}

func (a *app) requestClose() {
	a.loop.Dispatch(eventloop.CloseRequested())
}

func (a *app) terminate() {
	if a.terminated || !a.running || a.surf == nil {
		return
	}
	a.terminated = true
	a.surf.Terminate()
}
