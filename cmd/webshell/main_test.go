package main

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func writeDoc(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestRunConfig_ExitCodes(t *testing.T) {
	valid := writeDoc(t, `{"windows": [{"url": "https://example.com", "width": 640, "height": 480}]}`)
	invalid := writeDoc(t, `{"windows": [{"url": "https://example.com", "width": -1}]}`)
	missing := filepath.Join(t.TempDir(), "missing.json")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "no subcommand", args: nil, want: 2},
		{name: "unknown subcommand", args: []string{"explain"}, want: 2},
		{name: "validate ok", args: []string{"validate", "--config", valid}, want: 0},
		{name: "validate invalid", args: []string{"validate", "--config", invalid}, want: 1},
		{name: "validate missing", args: []string{"validate", "--config", missing}, want: 1},
		{name: "validate bad flag", args: []string{"validate", "--nope"}, want: 2},
		{name: "print ok", args: []string{"print", "--config", valid}, want: 0},
		{name: "print defaults", args: []string{"print", "--defaults"}, want: 0},
		{name: "print missing", args: []string{"print", "--config", missing}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runConfig(tt.args); got != tt.want {
				t.Fatalf("runConfig(%v) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}

func TestRunApp_UsageErrors(t *testing.T) {
	if got := runApp([]string{"--nope"}); got != 2 {
		t.Fatalf("unknown flag exit = %d, want 2", got)
	}
	if got := runApp([]string{"extra"}); got != 2 {
		t.Fatalf("positional arg exit = %d, want 2", got)
	}
}

func TestNewLogger_NonTerminalUsesJSON(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "log"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	newLogger(f, slog.LevelInfo).Info("hello", "k", "v")

	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var rec map[string]any
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("log line is not JSON: %q", data)
	}
	if rec["msg"] != "hello" || rec["k"] != "v" {
		t.Fatalf("record = %v", rec)
	}
}
