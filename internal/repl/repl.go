// Package repl is the interactive shell over one engine session.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"

	"github.com/danmuck/taoctl/internal/capture"
	"github.com/danmuck/taoctl/internal/pipe"
	"github.com/danmuck/taoctl/internal/protocol"
	"github.com/danmuck/taoctl/internal/tao"
)

// errQuit ends the loop without reporting a failure.
var errQuit = errors.New("repl: quit")

// Config describes one shell session.
type Config struct {
	// Prompt precedes every input line.
	Prompt string

	// HistoryFile persists input across sessions. Empty disables it.
	HistoryFile string

	// Startup commands run before the first prompt.
	Startup []string

	// Out receives shell output. Leave nil for the process stdout
	// stream, where the engine's own chatter also arrives.
	Out io.Writer

	Log zerolog.Logger
}

func DefaultConfig() Config {
	return Config{
		Prompt:      "Tao> ",
		HistoryFile: filepath.Join(os.TempDir(), ".taoctl_history"),
	}
}

// Session dispatches shell input: plain lines go to the engine as
// commands, colon-prefixed lines run local structured queries.
type Session struct {
	client *tao.Client
	cfg    Config
	out    io.Writer
	log    zerolog.Logger
}

func New(client *tao.Client, cfg Config) *Session {
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	return &Session{client: client, cfg: cfg, out: out, log: cfg.Log}
}

// Run reads input until exit, EOF, or a dead engine. Startup commands
// run first; a startup failure that leaves the engine alive only warns.
func (s *Session) Run(ctx context.Context) error {
	if err := s.startup(); err != nil {
		if errors.Is(err, errQuit) {
			return nil
		}
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            s.cfg.Prompt,
		HistoryFile:       s.cfg.HistoryFile,
		AutoComplete:      completer(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("repl: readline: %w", err)
	}
	defer rl.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				continue
			}
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return fmt.Errorf("repl: readline: %w", err)
		}

		if err := s.dispatch(line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			if fatal(err) {
				fmt.Fprintf(s.out, "engine gone: %v\n", err)
				return err
			}
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
}

// startup runs the configured startup commands. Failures that leave
// the engine alive only warn; errQuit and dead-engine errors bubble up.
func (s *Session) startup() error {
	for _, cmd := range s.cfg.Startup {
		if err := s.dispatch(cmd); err != nil {
			if errors.Is(err, errQuit) || fatal(err) {
				return err
			}
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
	return nil
}

// fatal reports whether the session cannot continue. Transport
// sentinels are never retried, and a failed descriptor restore leaves
// the raw output stream in an unknown state.
func fatal(err error) bool {
	var rerr capture.RestoreError
	return errors.Is(err, pipe.ErrEngineCrashed) ||
		errors.Is(err, pipe.ErrEngineClosed) ||
		errors.As(err, &rerr)
}

func (s *Session) dispatch(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "!") {
		return nil
	}
	switch line {
	case "exit", "quit":
		return errQuit
	case "help", "?":
		s.printHelp()
		return nil
	}
	if name, rest, ok := cutLocal(line); ok {
		return s.runLocal(name, rest)
	}
	// Plain input is an engine command; its output streams through on
	// the raw output path as it arrives.
	return s.client.Command(line)
}

// cutLocal splits a colon-prefixed local command from its argument
// text.
func cutLocal(line string) (string, string, bool) {
	if !strings.HasPrefix(line, ":") {
		return "", "", false
	}
	name, rest, _ := strings.Cut(line[1:], " ")
	return name, strings.TrimSpace(rest), true
}

func (s *Session) runLocal(name, rest string) error {
	switch name {
	case "python":
		if rest == "" {
			return fmt.Errorf("usage: :python <query>")
		}
		records, err := s.client.Python(rest)
		if err != nil {
			return err
		}
		for _, rec := range records {
			fmt.Fprintln(s.out, strings.Join(rec, ";"))
		}
		return nil

	case "props":
		if rest == "" {
			return fmt.Errorf("usage: :props <query>")
		}
		props, err := s.client.Properties(rest)
		if err != nil {
			return err
		}
		s.printProps(props)
		return nil

	case "params":
		if rest == "" {
			return fmt.Errorf("usage: :params <query>")
		}
		params, err := s.client.Parameters(rest)
		if err != nil {
			return err
		}
		s.printParams(params)
		return nil

	case "plots":
		plots, err := s.client.Plots()
		if err != nil {
			return err
		}
		for _, plot := range plots {
			fmt.Fprintln(s.out, plot)
		}
		return nil

	case "curves":
		if rest == "" {
			return fmt.Errorf("usage: :curves <plot>")
		}
		names, err := s.client.CurveNames(rest)
		if err != nil {
			return err
		}
		for _, curve := range names {
			fmt.Fprintln(s.out, curve)
		}
		return nil

	case "capture":
		if rest == "" {
			return fmt.Errorf("usage: :capture <command>")
		}
		out, err := s.client.Capture(rest)
		if err != nil {
			return err
		}
		fmt.Fprint(s.out, out)
		return nil

	case "session":
		fmt.Fprintln(s.out, s.client.Session())
		return nil

	default:
		return fmt.Errorf("unknown command :%s (try help)", name)
	}
}

func (s *Session) printProps(m *protocol.PropertyMap) {
	for _, name := range m.Names() {
		p, ok := m.Get(name)
		if !ok {
			continue
		}
		if p.IsArray {
			for i, v := range p.Array {
				fmt.Fprintf(s.out, "%s[%d] = %s\n", name, i+1, v.Text())
			}
			continue
		}
		fmt.Fprintf(s.out, "%s = %s\n", name, p.Value.Text())
	}
}

func (s *Session) printParams(m *protocol.ParamMap) {
	for _, name := range m.Names() {
		e, ok := m.Get(name)
		if !ok {
			continue
		}
		if e.IsArray {
			for i, p := range e.Array {
				s.printParam(fmt.Sprintf("%s[%d]", name, i+1), p)
			}
			continue
		}
		s.printParam(name, e.Param)
	}
}

func (s *Session) printParam(label string, p protocol.Parameter) {
	if p.CanVary {
		fmt.Fprintf(s.out, "%s = %s (vary)\n", label, p.Value.Text())
		return
	}
	fmt.Fprintf(s.out, "%s = %s\n", label, p.Value.Text())
}

func (s *Session) printHelp() {
	fmt.Fprint(s.out, `Plain input runs as an engine command.
Local commands:
  :python <query>    run a structured query, print raw records
  :props <query>     run a structured query, print decoded properties
  :params <query>    run a structured query, print parameters with vary flags
  :plots             list plot templates
  :curves <plot>     list a plot's curve names
  :capture <cmd>     run a command, print only its captured output
  :session           print the session id
  help               this text
  exit               leave the shell
`)
}

func completer() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("?"),
		readline.PcItem("exit"),
		readline.PcItem("quit"),
		readline.PcItem(":python"),
		readline.PcItem(":props"),
		readline.PcItem(":params"),
		readline.PcItem(":plots"),
		readline.PcItem(":curves"),
		readline.PcItem(":capture"),
		readline.PcItem(":session"),
		readline.PcItem("show",
			readline.PcItem("lattice"),
			readline.PcItem("ele"),
			readline.PcItem("var"),
			readline.PcItem("data"),
			readline.PcItem("plot"),
		),
		readline.PcItem("set",
			readline.PcItem("var"),
			readline.PcItem("ele"),
			readline.PcItem("plot"),
		),
		readline.PcItem("change",
			readline.PcItem("var"),
			readline.PcItem("ele"),
		),
		readline.PcItem("place"),
		readline.PcItem("read",
			readline.PcItem("lattice"),
		),
	)
}
