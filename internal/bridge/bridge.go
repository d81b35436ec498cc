package bridge

import (
	"log/slog"
	"strings"

	"github.com/pkg/browser"
)

// Page script messages. The vocabulary is closed; anything else is ignored.
const (
	MessageDragWindow = "drag_window"
	MessageFullscreen = "fullscreen"
	OpenBrowserPrefix = "open_browser:"
)

// Command is a parsed page message.
type Command int

const (
	CommandNone Command = iota
	CommandDrag
	CommandToggleFullscreen
	CommandOpenBrowser
)

// String returns the string representation of the command.
func (c Command) String() string {
	switch c {
	case CommandDrag:
		return "drag_window"
	case CommandToggleFullscreen:
		return "fullscreen"
	case CommandOpenBrowser:
		return "open_browser"
	default:
		return "none"
	}
}

// Window is the subset of native window operations the bridge drives.
type Window interface {
	StartDrag() error
	IsFullscreen() bool
	SetFullscreen(fullscreen bool) error
}

// Launcher opens a URL outside the shell.
type Launcher interface {
	OpenURL(url string) error
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(url string) error

func (f LauncherFunc) OpenURL(url string) error { return f(url) }

// DefaultLauncher opens URLs in the user's default browser.
var DefaultLauncher Launcher = LauncherFunc(browser.OpenURL)

// Parse matches msg against the command vocabulary. Matching is exact and
// case-sensitive; for open_browser the text after the prefix is returned
// untouched.
func Parse(msg string) (Command, string) {
	switch msg {
	case MessageDragWindow:
		return CommandDrag, ""
	case MessageFullscreen:
		return CommandToggleFullscreen, ""
	}
	if href, ok := strings.CutPrefix(msg, OpenBrowserPrefix); ok {
		return CommandOpenBrowser, href
	}
	return CommandNone, ""
}

// Bridge turns page messages into native window operations.
type Bridge struct {
	launcher Launcher
	logger   *slog.Logger
}

// New creates a bridge. A nil launcher uses DefaultLauncher.
func New(launcher Launcher, logger *slog.Logger) *Bridge {
	if launcher == nil {
		launcher = DefaultLauncher
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{launcher: launcher, logger: logger}
}

// Handle performs the command in msg against win and reports which command
// ran. Unknown messages return CommandNone without side effects.
func (b *Bridge) Handle(win Window, msg string) Command {
	cmd, arg := Parse(msg)
	switch cmd {
	case CommandDrag:
		// A drag that fails to start (button already released, no pointer)
		// has nothing useful to report to the page.
		_ = win.StartDrag()
	case CommandToggleFullscreen:
		if err := win.SetFullscreen(!win.IsFullscreen()); err != nil {
			b.logger.Warn("fullscreen toggle failed", "error", err)
		}
	case CommandOpenBrowser:
		if err := b.launcher.OpenURL(arg); err != nil {
			b.logger.Warn("failed to open external browser", "url", arg, "error", err)
		}
	}
	return cmd
}
