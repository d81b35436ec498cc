package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/1broseidon/webshell/internal/bridge"
	"github.com/1broseidon/webshell/internal/config"
	"github.com/1broseidon/webshell/internal/platform"
	"github.com/1broseidon/webshell/internal/shell"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

func init() {
	// Cocoa, GTK and Win32 all require the UI to stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	if len(os.Args) < 2 || strings.HasPrefix(os.Args[1], "-") {
		os.Exit(runApp(os.Args[1:]))
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runApp(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: webshell [command] [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Open the application window (default)")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  help                Show this help")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run options:")
	fmt.Fprintln(w, "  --config PATH       Startup document (default: ~/.config/webshell/config.json)")
	fmt.Fprintln(w, "  --devtools          Enable the web inspector")
}

func runApp(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() { printMainUsage(os.Stderr) }
	path := fs.String("config", "", "Startup document path (default: ~/.config/webshell/config.json)")
	devtools := fs.Bool("devtools", false, "Enable the web inspector")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "run takes no arguments, got %q\n", fs.Args())
		return 2
	}

	res, err := config.LoadWithSources(*path)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := res.Config
	cfg.Devtools = cfg.Devtools || *devtools || platform.DevtoolsBuild

	logger := newLogger(os.Stderr, cfg.SlogLevel())
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "path", res.File, "name", cfg.Name, "devtools", cfg.Devtools)

	p, err := platform.New(platform.Options{
		Devtools: cfg.Devtools,
		Icon:     cfg.Icon,
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("Failed to initialize window system: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := shell.Run(ctx, shell.Options{
		Config:   cfg,
		Platform: p,
		Launcher: bridge.DefaultLauncher,
		Logger:   logger,
	}); err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	return 0
}

// newLogger writes text to a terminal and JSON everywhere else.
func newLogger(f *os.File, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if term.IsTerminal(int(f.Fd())) {
		return slog.New(slog.NewTextHandler(f, opts))
	}
	return slog.New(slog.NewJSONHandler(f, opts))
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  webshell config validate [--config PATH]")
		fmt.Fprintln(os.Stderr, "  webshell config print [--config PATH] [--defaults]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("config", "", "Startup document path (default: ~/.config/webshell/config.json)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		if _, err := config.LoadWithSources(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("config", "", "Startup document path (default: ~/.config/webshell/config.json)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var cfg *config.Config
		if *printDefaults {
			dir := ""
			if p, err := config.DefaultConfigPath(); err == nil {
				dir = filepath.Dir(p)
			}
			cfg = config.DefaultConfig(dir)
		} else {
			res, err := config.LoadWithSources(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			fmt.Printf("# source: %s\n", res.File)
			cfg = res.Config
		}

		data, err := yaml.Marshal(cfg.Raw())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", args[0])
		return 2
	}
}
