package config

import (
	"fmt"
	"strings"
)

// ValidationError reports a problem with a single config value. Path uses the
// dotted document path ("windows.0.width").
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig layers raw over the defaults. Only the first window
// entry is used; an empty list keeps the default window.
func BuildEffectiveConfig(raw RawConfig, dir string) (*Config, error) {
	cfg := DefaultConfig(dir)

	if raw.Name != nil {
		cfg.Name = strings.TrimSpace(*raw.Name)
	}
	if raw.Icon != nil {
		cfg.Icon = resolvePath(dir, strings.TrimSpace(*raw.Icon))
	}
	if raw.Devtools != nil {
		cfg.Devtools = *raw.Devtools
	}
	if len(raw.Inject) > 0 {
		cfg.Inject = make([]string, 0, len(raw.Inject))
		for i, p := range raw.Inject {
			p = strings.TrimSpace(p)
			if p == "" {
				return nil, &ValidationError{Path: fmt.Sprintf("inject.%d", i), Err: fmt.Errorf("inject entry must not be empty")}
			}
			cfg.Inject = append(cfg.Inject, resolvePath(dir, p))
		}
	}
	if raw.CloseWindowAction != nil {
		cfg.CloseWindowAction = CloseWindowAction(strings.ToLower(strings.TrimSpace(string(*raw.CloseWindowAction))))
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
	}

	if len(raw.Windows) > 0 {
		w := raw.Windows[0]
		if w.URL != nil {
			u, err := ResolveURL(*w.URL, dir)
			if err != nil {
				return nil, &ValidationError{Path: "windows.0.url", Err: err}
			}
			cfg.Window.URL = u
		}
		if w.Title != nil {
			cfg.Window.Title = *w.Title
		}
		if w.Width != nil {
			cfg.Window.Width = *w.Width
		}
		if w.Height != nil {
			cfg.Window.Height = *w.Height
		}
		if w.Resizable != nil {
			cfg.Window.Resizable = *w.Resizable
		}
		if w.Fullscreen != nil {
			cfg.Window.Fullscreen = *w.Fullscreen
		}
		if w.Transparent != nil {
			cfg.Window.Transparent = *w.Transparent
		}
	}

	return cfg, nil
}
