package config

import (
	"github.com/danmuck/taoctl/internal/engine"
	"github.com/danmuck/taoctl/internal/protocol"
)

// EngineSpec converts the [engine] table into a spawn spec, keeping the
// engine defaults for everything the file leaves unset.
func EngineSpec(cfg SessionConfig) engine.Config {
	spec := engine.DefaultConfig()
	if cfg.Engine.Path != "" {
		spec.Path = cfg.Engine.Path
	}
	spec.Args = cfg.Engine.Args
	spec.Dir = cfg.Engine.Workdir
	return spec
}

// DecodeMode converts the [pipe] strictness into a fold mode.
func DecodeMode(cfg SessionConfig) protocol.Strictness {
	if cfg.Pipe.Strictness == "" {
		return protocol.StrictArrays
	}
	return protocol.Strictness(cfg.Pipe.Strictness)
}
