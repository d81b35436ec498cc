package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// InjectList supports either:
//
//	"inject": "extra.js"
//
// or:
//
//	"inject": ["extra.js", "theme.css"]
type InjectList []string

func (l *InjectList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("inject must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("inject entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("inject must be a string or list of strings")
	}
}

func (l *InjectList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*l = nil
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*l = []string{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("inject must be a string or list of strings")
	}
	*l = many
	return nil
}

// RawWindow is one entry of the "windows" list as written in the document.
// Pointer fields distinguish "absent" from an explicit zero value, so an
// explicit "resizable": false survives defaulting.
type RawWindow struct {
	URL         *string  `json:"url,omitempty" yaml:"url,omitempty"`
	Title       *string  `json:"title,omitempty" yaml:"title,omitempty"`
	Width       *float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height      *float64 `json:"height,omitempty" yaml:"height,omitempty"`
	Resizable   *bool    `json:"resizable,omitempty" yaml:"resizable,omitempty"`
	Fullscreen  *bool    `json:"fullscreen,omitempty" yaml:"fullscreen,omitempty"`
	Transparent *bool    `json:"transparent,omitempty" yaml:"transparent,omitempty"`
}

// RawConfig mirrors the startup document.
type RawConfig struct {
	Name              *string            `json:"name,omitempty" yaml:"name,omitempty"`
	Icon              *string            `json:"icon,omitempty" yaml:"icon,omitempty"`
	Devtools          *bool              `json:"devtools,omitempty" yaml:"devtools,omitempty"`
	Inject            InjectList         `json:"inject,omitempty" yaml:"inject,omitempty"`
	CloseWindowAction *CloseWindowAction `json:"close_window_action,omitempty" yaml:"close_window_action,omitempty"`
	LogLevel          *string            `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	Windows           []RawWindow        `json:"windows,omitempty" yaml:"windows,omitempty"`
}

// Raw converts an effective config back to its document form.
func (c *Config) Raw() RawConfig {
	name := c.Name
	icon := c.Icon
	devtools := c.Devtools
	action := c.CloseWindowAction
	level := c.LogLevel

	w := c.Window
	var u *string
	if w.URL != nil {
		s := w.URL.String()
		u = &s
	}
	title := w.Title
	width := w.Width
	height := w.Height
	resizable := w.Resizable
	fullscreen := w.Fullscreen
	transparent := w.Transparent

	return RawConfig{
		Name:              &name,
		Icon:              &icon,
		Devtools:          &devtools,
		Inject:            append(InjectList(nil), c.Inject...),
		CloseWindowAction: &action,
		LogLevel:          &level,
		Windows: []RawWindow{{
			URL:         u,
			Title:       &title,
			Width:       &width,
			Height:      &height,
			Resizable:   &resizable,
			Fullscreen:  &fullscreen,
			Transparent: &transparent,
		}},
	}
}
