package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/danmuck/taoctl/internal/protocol"
)

type SessionConfig struct {
	Engine EngineConfig `toml:"engine"`
	Pipe   PipeConfig   `toml:"pipe"`
}

type EngineConfig struct {
	Path    string   `toml:"path"`
	Args    []string `toml:"args"`
	Workdir string   `toml:"workdir"`
}

type PipeConfig struct {
	CommandLog string `toml:"command_log"`
	Strictness string `toml:"strictness"`
}

func LoadSessionConfig(path string) (SessionConfig, error) {
	var cfg SessionConfig
	if err := loadToml(path, &cfg); err != nil {
		return SessionConfig{}, err
	}
	if cfg.Engine.Path == "" {
		cfg.Engine.Path = "tao-pipe"
	}
	if cfg.Pipe.Strictness == "" {
		cfg.Pipe.Strictness = string(protocol.StrictArrays)
	}
	if err := ValidateSessionConfig(cfg); err != nil {
		return SessionConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateSessionConfig(cfg SessionConfig) error {
	if strings.TrimSpace(cfg.Engine.Path) == "" {
		return fmt.Errorf("session config missing engine path")
	}
	if cfg.Engine.Workdir != "" {
		info, err := os.Stat(cfg.Engine.Workdir)
		if err != nil {
			return fmt.Errorf("session config workdir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("session config workdir is not a directory: %s", cfg.Engine.Workdir)
		}
	}
	if err := protocol.Strictness(cfg.Pipe.Strictness).Validate(); err != nil {
		return fmt.Errorf("session config strictness: %w", err)
	}
	return nil
}
