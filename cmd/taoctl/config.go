package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/taoctl/internal/repl"
)

// fileConfig reads the optional [repl] table of the session config.
// The session tables themselves load elsewhere; only keys present in
// the file override the shell defaults.
type fileConfig struct {
	REPL struct {
		Prompt      string   `toml:"prompt"`
		HistoryFile string   `toml:"history_file"`
		Startup     []string `toml:"startup"`
	} `toml:"repl"`
}

func loadREPLConfig(path string) (repl.Config, error) {
	cfg := repl.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return repl.Config{}, fmt.Errorf("load repl config: %w", err)
	}

	if meta.IsDefined("repl", "prompt") {
		prompt := raw.REPL.Prompt
		if strings.TrimSpace(prompt) != "" {
			cfg.Prompt = prompt
		}
	}

	if meta.IsDefined("repl", "history_file") {
		cfg.HistoryFile = strings.TrimSpace(raw.REPL.HistoryFile)
	}

	if meta.IsDefined("repl", "startup") {
		cfg.Startup = normalizeStartup(raw.REPL.Startup)
	}

	return cfg, nil
}

func normalizeStartup(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(in))
	for _, cmd := range in {
		v := strings.TrimSpace(cmd)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
