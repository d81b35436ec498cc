package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
)

// CloseWindowAction selects what the application menu's CloseWindow item does.
type CloseWindowAction string

const (
	// CloseWindowMinimize miniaturizes the window. Default, despite the
	// "CloseWindow" label.
	CloseWindowMinimize CloseWindowAction = "minimize"
	// CloseWindowClose requests the window to close, ending the process.
	CloseWindowClose CloseWindowAction = "close"
)

const (
	DefaultName      = "webshell"
	DefaultWidth     = 1200.0
	DefaultHeight    = 780.0
	DefaultURL       = "index.html"
	DefaultIconPath  = "icons/icon.png"
	DefaultLogLevel  = "info"
	configDirName    = "webshell"
	configFileName   = "config.json"
	fileURLScheme    = "file"
	injectScriptExt  = ".js"
	injectStyleExt   = ".css"
	defaultCloseItem = CloseWindowMinimize
)

// WindowSpec is the resolved, immutable description of the single
// application window.
type WindowSpec struct {
	URL         *url.URL
	Title       string
	Width       float64
	Height      float64
	Resizable   bool
	Fullscreen  bool
	Transparent bool // macOS only: transparent title bar
}

// Config is the effective application configuration.
type Config struct {
	Name              string
	Icon              string   // absolute path; only used on Windows
	Devtools          bool     // enable the developer tools panel
	Inject            []string // absolute paths to .js/.css files injected after the bootstrap
	CloseWindowAction CloseWindowAction
	LogLevel          string
	Window            WindowSpec

	// Dir is the directory relative paths in the document are resolved against.
	Dir string
}

// DefaultConfig returns the configuration used for any value the startup
// document does not set. Relative paths resolve against dir.
func DefaultConfig(dir string) *Config {
	u, _ := ResolveURL(DefaultURL, dir)
	return &Config{
		Name:              DefaultName,
		Icon:              resolvePath(dir, DefaultIconPath),
		CloseWindowAction: defaultCloseItem,
		LogLevel:          DefaultLogLevel,
		Window: WindowSpec{
			URL:       u,
			Width:     DefaultWidth,
			Height:    DefaultHeight,
			Resizable: true,
		},
		Dir: dir,
	}
}

// Validate checks invariants the rest of the program relies on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Path: "name", Err: fmt.Errorf("name must not be empty")}
	}
	if c.Window.URL == nil {
		return &ValidationError{Path: "windows.0.url", Err: fmt.Errorf("url is required")}
	}
	if err := checkScheme(c.Window.URL); err != nil {
		return &ValidationError{Path: "windows.0.url", Err: err}
	}
	if c.Window.Width <= 0 {
		return &ValidationError{Path: "windows.0.width", Err: fmt.Errorf("width must be > 0")}
	}
	if c.Window.Height <= 0 {
		return &ValidationError{Path: "windows.0.height", Err: fmt.Errorf("height must be > 0")}
	}
	switch c.CloseWindowAction {
	case CloseWindowMinimize, CloseWindowClose:
	default:
		return &ValidationError{Path: "close_window_action", Err: fmt.Errorf("close_window_action must be one of: minimize, close")}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	for i, path := range c.Inject {
		switch strings.ToLower(filepath.Ext(path)) {
		case injectScriptExt, injectStyleExt:
		default:
			return &ValidationError{Path: fmt.Sprintf("inject.%d", i), Err: fmt.Errorf("inject entries must be .js or .css files, got %q", path)}
		}
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level. Unknown values map to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ResolveURL turns the configured url into an absolute URL. Values without a
// scheme are treated as file paths relative to baseDir; a query or fragment
// on such a path is kept.
func ResolveURL(raw string, baseDir string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("url must not be empty")
	}

	// "C:\app\index.html" parses as scheme "c"; treat volume paths as files.
	if filepath.VolumeName(raw) == "" {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid url %q: %w", raw, err)
		}
		if u.Scheme != "" {
			if err := checkScheme(u); err != nil {
				return nil, err
			}
			return u, nil
		}
	}

	file, fragment, _ := strings.Cut(raw, "#")
	file, query, _ := strings.Cut(file, "?")
	if file == "" {
		return nil, fmt.Errorf("url %q has no path", raw)
	}
	p := filepath.ToSlash(resolvePath(baseDir, file))
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return &url.URL{Scheme: fileURLScheme, Path: p, RawQuery: query, Fragment: fragment}, nil
}

func checkScheme(u *url.URL) error {
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("url %q has no host", u.String())
		}
		return nil
	case fileURLScheme, "data":
		return nil
	default:
		return fmt.Errorf("unsupported url scheme %q (want http, https, file or data)", u.Scheme)
	}
}

func resolvePath(baseDir string, p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) || baseDir == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(baseDir, p)
}
