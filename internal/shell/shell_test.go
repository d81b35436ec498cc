package shell

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/webshell/internal/bootstrap"
	"github.com/1broseidon/webshell/internal/bridge"
	"github.com/1broseidon/webshell/internal/config"
	"github.com/1broseidon/webshell/internal/menu"
	"github.com/1broseidon/webshell/internal/platform"
)

type fakeWindow struct {
	spec        config.WindowSpec
	fullscreen  bool
	toggles     int
	drags       int
	minimized   bool
	minimizeErr error
}

func (w *fakeWindow) Size() (float64, float64) { return w.spec.Width, w.spec.Height }
func (w *fakeWindow) Resizable() bool { return w.spec.Resizable }
func (w *fakeWindow) IsFullscreen() bool { return w.fullscreen }

func (w *fakeWindow) SetFullscreen(on bool) error {
	w.fullscreen = on
	w.toggles++
	return nil
}

func (w *fakeWindow) StartDrag() error {
	w.drags++
	return nil
}

func (w *fakeWindow) SetMinimized(on bool) error {
	if w.minimizeErr != nil {
		return w.minimizeErr
	}
	w.minimized = on
	return nil
}

// fakeSurface runs dispatched functions on the goroutine that called Run,
// standing in for the UI thread.
type fakeSurface struct {
	queue      chan func()
	stop       bool
	terminated int
	devtools   int
	devtoolErr error
	onReturn   func()

	mu        sync.Mutex
	destroyed bool
	late      int // Dispatch calls after Destroy
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{queue: make(chan func(), 64)}
}

func (s *fakeSurface) Run() {
	for !s.stop {
		f := <-s.queue
		f()
	}
	if s.onReturn != nil {
		s.onReturn()
	}
}

func (s *fakeSurface) Dispatch(f func()) {
	s.mu.Lock()
	if s.destroyed {
		s.late++
	}
	s.mu.Unlock()
	s.queue <- f
}

func (s *fakeSurface) Terminate() {
	s.terminated++
	s.stop = true
}

func (s *fakeSurface) OpenDevtools() error {
	s.devtools++
	return s.devtoolErr
}

func (s *fakeSurface) Destroy() {
	s.mu.Lock()
	s.destroyed = true
	s.mu.Unlock()
}

func (s *fakeSurface) lateDispatches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.late
}

// closeNative simulates the user closing the window through the window
// manager: the pump stops without Terminate.
func (s *fakeSurface) closeNative() { s.stop = true }

type fakePlatform struct {
	menuErr    error
	windowErr  error
	surfaceErr error
	devtoolErr error

	// onSurfaceReturn runs as the surface's Run returns.
	onSurfaceReturn func()

	model    *menu.Model
	onSelect func(string)
	window   *fakeWindow
	surface  *fakeSurface
	opts     platform.SurfaceOptions
	attached chan struct{}
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{attached: make(chan struct{}, 1)}
}

func (p *fakePlatform) BootstrapVariant() bootstrap.Variant { return bootstrap.VariantDefault }

func (p *fakePlatform) BuildMenu(m *menu.Model, onSelect func(string)) error {
	if p.menuErr != nil {
		return p.menuErr
	}
	p.model = m
	p.onSelect = onSelect
	return nil
}

func (p *fakePlatform) BuildWindow(spec config.WindowSpec) (platform.Window, error) {
	if p.windowErr != nil {
		return nil, p.windowErr
	}
	p.window = &fakeWindow{spec: spec, fullscreen: spec.Fullscreen}
	return p.window, nil
}

func (p *fakePlatform) AttachSurface(w platform.Window, opts platform.SurfaceOptions) (platform.Surface, error) {
	if p.surfaceErr != nil {
		return nil, p.surfaceErr
	}
	if p.surface != nil {
		return nil, platform.ErrSurfaceBound
	}
	p.opts = opts
	p.surface = newFakeSurface()
	p.surface.devtoolErr = p.devtoolErr
	p.surface.onReturn = p.onSurfaceReturn
	p.attached <- struct{}{}
	return p.surface, nil
}

type recordingLauncher struct {
	urls []string
}

func (l *recordingLauncher) OpenURL(u string) error {
	l.urls = append(l.urls, u)
	return nil
}

// slowHandler delays records with the given message.
type slowHandler struct {
	slog.Handler
	msg   string
	delay time.Duration
}

func (h slowHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Message == h.msg {
		time.Sleep(h.delay)
	}
	return h.Handler.Handle(ctx, r)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig(t.TempDir())
	cfg.Window.Width = 800
	cfg.Window.Height = 600
	return cfg
}

// start runs the shell on its own goroutine and waits for the surface.
func start(t *testing.T, ctx context.Context, cfg *config.Config, p *fakePlatform, l bridge.Launcher) <-chan error {
	t.Helper()
	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(ctx, Options{Config: cfg, Platform: p, Launcher: l, Logger: discardLogger()})
	}()
	select {
	case <-p.attached:
	case err := <-errCh:
		t.Fatalf("Run returned before attaching a surface: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for surface")
	}
	return errCh
}

func wait(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for Run to return")
		return nil
	}
}

func TestRun_BuildsWindowFromConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Window.Resizable = false
	cfg.Window.Fullscreen = true

	ctx, cancel := context.WithCancel(context.Background())
	p := newFakePlatform()
	errCh := start(t, ctx, cfg, p, nil)
	cancel()
	if err := wait(t, errCh); err != nil {
		t.Fatalf("Run: %v", err)
	}

	w, h := p.window.Size()
	if w != 800 || h != 600 {
		t.Fatalf("window size = %vx%v, want 800x600", w, h)
	}
	if p.window.Resizable() {
		t.Fatalf("window should not be resizable")
	}
	if !p.window.IsFullscreen() {
		t.Fatalf("window should start fullscreen")
	}
	if p.opts.URL != cfg.Window.URL {
		t.Fatalf("surface url = %v, want %v", p.opts.URL, cfg.Window.URL)
	}
	if !strings.Contains(p.opts.InitScript, bootstrap.BindingName) {
		t.Fatalf("init script does not bind %s", bootstrap.BindingName)
	}
	if p.model == nil {
		t.Fatalf("menu was not built")
	}
	if _, ok := p.model.Lookup(menu.CloseWindowID); !ok {
		t.Fatalf("menu has no CloseWindow item")
	}
}

func TestRun_CancelTerminatesOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := newFakePlatform()
	errCh := start(t, ctx, testConfig(t), p, nil)
	cancel()
	if err := wait(t, errCh); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if p.surface.terminated != 1 {
		t.Fatalf("Terminate called %d times, want 1", p.surface.terminated)
	}
	if !p.surface.destroyed {
		t.Fatalf("surface was not destroyed")
	}
}

func TestRun_IPCMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := newFakePlatform()
	launcher := &recordingLauncher{}
	errCh := start(t, ctx, testConfig(t), p, launcher)

	ipc := p.opts.IPC
	p.surface.Dispatch(func() {
		ipc("fullscreen")
		ipc("fullscreen")
		ipc("drag_window")
		ipc("open_browser:https://example.com")
		ipc("Fullscreen")
		ipc("hello")
	})
	cancel()
	if err := wait(t, errCh); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if p.window.toggles != 2 || p.window.IsFullscreen() {
		t.Fatalf("toggles = %d fullscreen = %v, want 2 toggles back to windowed", p.window.toggles, p.window.IsFullscreen())
	}
	if p.window.drags != 1 {
		t.Fatalf("drags = %d, want 1", p.window.drags)
	}
	if len(launcher.urls) != 1 || launcher.urls[0] != "https://example.com" {
		t.Fatalf("launched %v, want [https://example.com]", launcher.urls)
	}
}

func TestRun_CloseWindowMenuMinimizesByDefault(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := newFakePlatform()
	errCh := start(t, ctx, testConfig(t), p, nil)

	onSelect := p.onSelect
	stillRunning := make(chan bool, 1)
	p.surface.Dispatch(func() {
		onSelect(menu.CloseWindowID)
		onSelect("unknown")
		stillRunning <- p.surface.terminated == 0
	})
	if !<-stillRunning {
		t.Fatalf("CloseWindow should not end the loop when minimizing")
	}
	cancel()
	if err := wait(t, errCh); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !p.window.minimized {
		t.Fatalf("window was not minimized")
	}
}

func TestRun_CloseWindowMenuCloses(t *testing.T) {
	cfg := testConfig(t)
	cfg.CloseWindowAction = config.CloseWindowClose
	p := newFakePlatform()
	errCh := start(t, context.Background(), cfg, p, nil)

	onSelect := p.onSelect
	p.surface.Dispatch(func() { onSelect(menu.CloseWindowID) })
	if err := wait(t, errCh); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if p.window.minimized {
		t.Fatalf("close action should not minimize")
	}
	if p.surface.terminated != 1 {
		t.Fatalf("Terminate called %d times, want 1", p.surface.terminated)
	}
}

func TestRun_NativeCloseEndsRun(t *testing.T) {
	p := newFakePlatform()
	errCh := start(t, context.Background(), testConfig(t), p, nil)

	surf := p.surface
	surf.Dispatch(surf.closeNative)
	if err := wait(t, errCh); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if surf.terminated != 0 {
		t.Fatalf("Terminate called after the pump stopped")
	}
	if !surf.destroyed {
		t.Fatalf("surface was not destroyed")
	}
}

func TestRun_CancelDuringNativeCloseDispatchesBeforeDestroy(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := newFakePlatform()
	p.onSurfaceReturn = cancel
	logger := slog.New(slowHandler{
		Handler: slog.NewTextHandler(io.Discard, nil),
		msg:     "shutdown requested",
		delay:   50 * time.Millisecond,
	})
	cfg := testConfig(t)

	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(ctx, Options{Config: cfg, Platform: p, Logger: logger})
	}()
	select {
	case <-p.attached:
	case err := <-errCh:
		t.Fatalf("Run returned before attaching a surface: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for surface")
	}

	surf := p.surface
	surf.Dispatch(surf.closeNative)
	if err := wait(t, errCh); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := surf.lateDispatches(); n != 0 {
		t.Fatalf("Dispatch called %d times after Destroy", n)
	}
}

func TestRun_Devtools(t *testing.T) {
	cfg := testConfig(t)
	cfg.Devtools = true
	ctx, cancel := context.WithCancel(context.Background())
	p := newFakePlatform()
	p.devtoolErr = errors.New("no inspector")
	errCh := start(t, ctx, cfg, p, nil)
	cancel()
	if err := wait(t, errCh); err != nil {
		t.Fatalf("devtools failure should not abort: %v", err)
	}
	if p.surface.devtools != 1 {
		t.Fatalf("OpenDevtools called %d times, want 1", p.surface.devtools)
	}
}

func TestRun_StartupFailures(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name  string
		setup func(p *fakePlatform, cfg *config.Config)
	}{
		{
			name:  "menu",
			setup: func(p *fakePlatform, _ *config.Config) { p.menuErr = boom },
		},
		{
			name:  "window",
			setup: func(p *fakePlatform, _ *config.Config) { p.windowErr = boom },
		},
		{
			name:  "surface",
			setup: func(p *fakePlatform, _ *config.Config) { p.surfaceErr = boom },
		},
		{
			name:  "inject",
			setup: func(_ *fakePlatform, cfg *config.Config) {
				cfg.Inject = []string{filepath.Join(t.TempDir(), "missing.js")}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newFakePlatform()
			cfg := testConfig(t)
			tt.setup(p, cfg)

			err := Run(context.Background(), Options{Config: cfg, Platform: p, Logger: discardLogger()})
			if err == nil {
				t.Fatalf("expected error")
			}
			if tt.name != "inject" && !errors.Is(err, boom) {
				t.Fatalf("error %v does not wrap the cause", err)
			}
			if p.surface != nil {
				t.Fatalf("surface attached despite failure")
			}
		})
	}
}

func TestRun_RequiresConfigAndPlatform(t *testing.T) {
	if err := Run(context.Background(), Options{Platform: newFakePlatform()}); err == nil {
		t.Fatalf("expected error for nil config")
	}
	if err := Run(context.Background(), Options{Config: testConfig(t)}); err == nil {
		t.Fatalf("expected error for nil platform")
	}
}
