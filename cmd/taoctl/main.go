package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/taoctl/internal/config"
	"github.com/danmuck/taoctl/internal/logging"
	"github.com/danmuck/taoctl/internal/observability"
	"github.com/danmuck/taoctl/internal/pipe"
	"github.com/danmuck/taoctl/internal/repl"
	"github.com/danmuck/taoctl/internal/tao"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "taoctl: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "session config file (TOML)")
	oneShot := flag.String("c", "", "run one command, print its output, exit")
	flag.Parse()

	logging.ConfigureRuntime()
	log := observability.InitLogger("taoctl")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg config.SessionConfig
	if *configPath != "" {
		loaded, err := config.LoadSessionConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	// Arguments after the flags (use -- before engine flags) extend the
	// engine init arguments from the config file.
	cfg.Engine.Args = append(cfg.Engine.Args, flag.Args()...)

	var history *pipe.CommandLog
	if cfg.Pipe.CommandLog != "" {
		h, err := pipe.OpenCommandLog(cfg.Pipe.CommandLog)
		if err != nil {
			return err
		}
		history = h
		defer history.Close()
	}

	spec := config.EngineSpec(cfg)
	spec.Log = log
	client, err := tao.Launch(ctx, spec, tao.Options{
		Strictness: config.DecodeMode(cfg),
		Log:        log,
		CommandLog: history,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	if *oneShot != "" {
		out, err := client.Capture(*oneShot)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	}

	replCfg, err := loadREPLConfig(*configPath)
	if err != nil {
		return err
	}
	replCfg.Log = log
	return repl.New(client, replCfg).Run(ctx)
}
