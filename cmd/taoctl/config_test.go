package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taoctl.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadREPLConfigDefaults(t *testing.T) {
	cfg, err := loadREPLConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Prompt != "Tao> " {
		t.Fatalf("unexpected prompt: %q", cfg.Prompt)
	}
	if cfg.HistoryFile == "" {
		t.Fatalf("expected a default history file")
	}
	if len(cfg.Startup) != 0 {
		t.Fatalf("unexpected startup: %+v", cfg.Startup)
	}
}

func TestLoadREPLConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
[repl]
prompt = "tao@ring> "
history_file = "/tmp/ring_history"
startup = ["place * none", " ", "set plot r11 visible = T"]
`)

	cfg, err := loadREPLConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Prompt != "tao@ring> " {
		t.Fatalf("unexpected prompt: %q", cfg.Prompt)
	}
	if cfg.HistoryFile != "/tmp/ring_history" {
		t.Fatalf("unexpected history file: %q", cfg.HistoryFile)
	}
	if len(cfg.Startup) != 2 || cfg.Startup[1] != "set plot r11 visible = T" {
		t.Fatalf("unexpected startup: %+v", cfg.Startup)
	}
}

func TestLoadREPLConfigPartial(t *testing.T) {
	path := writeConfig(t, `
[engine]
path = "tao-pipe"

[repl]
history_file = ""
`)

	cfg, err := loadREPLConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Prompt != "Tao> " {
		t.Fatalf("prompt should keep its default: %q", cfg.Prompt)
	}
	if cfg.HistoryFile != "" {
		t.Fatalf("history file should be disabled: %q", cfg.HistoryFile)
	}
}

func TestLoadREPLConfigBlankPromptKeepsDefault(t *testing.T) {
	path := writeConfig(t, `
[repl]
prompt = "   "
`)

	cfg, err := loadREPLConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Prompt != "Tao> " {
		t.Fatalf("unexpected prompt: %q", cfg.Prompt)
	}
}

func TestLoadREPLConfigBadFile(t *testing.T) {
	path := writeConfig(t, "[repl\nprompt =")

	if _, err := loadREPLConfig(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
