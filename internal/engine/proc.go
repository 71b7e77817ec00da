// Package engine spawns one engine adapter process and speaks its
// line conversation.
//
// The adapter answers one request line per call:
//
//	cmd <text>   -> "ok" once the command has run
//	nlines       -> "ok <count>"
//	line <n>     -> "ok <bytes>" then exactly <bytes> raw bytes
//	anything     -> "err <reason>"
//
// The adapter keeps the engine's own printed output off this stream by
// routing it to stderr; Proc forwards that chatter onto the local raw
// output stream as it arrives.
package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/taoctl/internal/capture"
	"github.com/danmuck/taoctl/internal/pipe"
)

const defaultGraceTimeout = 2 * time.Second

// Config describes how to launch the engine adapter.
type Config struct {
	// Path locates the adapter binary bundled with the engine build.
	Path string

	// Args are the engine init arguments (lattice file, startup flags).
	Args []string

	// Dir is the working directory; lattice paths resolve against it.
	Dir string

	// RawOutput receives the engine's forwarded chatter. Leave nil for
	// the process stdout stream: SendAndCapture only sees output that
	// goes through it.
	RawOutput io.Writer

	// GraceTimeout bounds how long Close waits before killing.
	GraceTimeout time.Duration

	Log zerolog.Logger
}

func DefaultConfig() Config {
	return Config{
		Path:         "tao-pipe",
		GraceTimeout: defaultGraceTimeout,
	}
}

// Proc is one running engine adapter. It implements pipe.Transport:
// every call writes one request line and blocks for the reply.
//
// A Proc is not safe for concurrent use; callers serialize externally.
type Proc struct {
	cfg     Config
	log     zerolog.Logger
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	replies *bufio.Reader
	closing atomic.Bool
	done    chan struct{}
	waitErr error // valid once done is closed
}

var _ pipe.Transport = (*Proc)(nil)

// rawForward hides the destination's concrete type from os/exec so the
// child always gets a pipe, never the destination descriptor itself.
// The copy then happens in this process, which is what lets capture
// intercept it at the descriptor level.
type rawForward struct {
	dst io.Writer
}

func (f rawForward) Write(p []byte) (int, error) {
	return f.dst.Write(p)
}

// Spawn launches the adapter and wires its three streams: requests in,
// replies out, chatter forwarded. The context bounds the process
// lifetime, not individual calls; calls have no cancellation.
func Spawn(ctx context.Context, cfg Config) (*Proc, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("engine: adapter path required")
	}
	if cfg.RawOutput == nil {
		cfg.RawOutput = os.Stdout
	}
	if cfg.GraceTimeout <= 0 {
		cfg.GraceTimeout = defaultGraceTimeout
	}

	cmd := exec.CommandContext(ctx, cfg.Path, cfg.Args...)
	cmd.Dir = cfg.Dir
	cmd.Stderr = rawForward{dst: cfg.RawOutput}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("engine: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("engine: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("engine: start %s: %w", cfg.Path, err)
	}

	p := &Proc{
		cfg:     cfg,
		log:     cfg.Log,
		cmd:     cmd,
		stdin:   stdin,
		replies: bufio.NewReader(stdout),
		done:    make(chan struct{}),
	}
	go p.waitLoop()
	p.log.Info().
		Str("path", cfg.Path).
		Strs("args", cfg.Args).
		Int("pid", cmd.Process.Pid).
		Msg("engine.Spawn started")
	return p, nil
}

func (p *Proc) waitLoop() {
	err := p.cmd.Wait()
	p.waitErr = err
	close(p.done)
	if p.closing.Load() {
		p.log.Debug().Msg("engine.Proc exited after close")
		return
	}
	p.log.Error().Err(err).Msg("engine.Proc exited unexpectedly")
}

// Send submits one command and blocks until the adapter acknowledges
// that the engine finished it.
func (p *Proc) Send(cmd string) error {
	if strings.ContainsAny(cmd, "\r\n") {
		return fmt.Errorf("engine: command contains line break")
	}
	reply, err := p.request("cmd " + cmd)
	if err != nil {
		return err
	}
	if reply != "ok" {
		return replyError(reply)
	}
	return nil
}

// SendAndCapture runs Send inside a stdout capture window, returning
// the chatter forwarded while the command ran. Output the adapter has
// not flushed by the time the engine acknowledges the command is
// missed; commands that print synchronously are captured faithfully.
func (p *Proc) SendAndCapture(cmd string) (string, error) {
	return capture.Stdout(func() error {
		return p.Send(cmd)
	})
}

// LineCount reports the scratch buffer size.
func (p *Proc) LineCount() (int, error) {
	reply, err := p.request("nlines")
	if err != nil {
		return 0, err
	}
	raw, ok := strings.CutPrefix(reply, "ok ")
	if !ok {
		return 0, replyError(reply)
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("engine: bad line count %q", raw)
	}
	return n, nil
}

// Line fetches one scratch buffer line by 1-based index.
func (p *Proc) Line(n int) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("engine: line index %d out of range", n)
	}
	reply, err := p.request("line " + strconv.Itoa(n))
	if err != nil {
		return "", err
	}
	raw, ok := strings.CutPrefix(reply, "ok ")
	if !ok {
		return "", replyError(reply)
	}
	size, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || size < 0 {
		return "", fmt.Errorf("engine: bad line size %q", raw)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(p.replies, buf); err != nil {
		return "", p.ioFailure("read line", err)
	}
	return string(buf), nil
}

// Close asks the adapter to shut the engine down by closing its
// request stream, waits out the grace period, then kills. Close is
// idempotent; later calls on the Proc fail with ErrEngineClosed.
func (p *Proc) Close() error {
	if p.closing.Swap(true) {
		return nil
	}
	if err := p.stdin.Close(); err != nil {
		p.log.Warn().Err(err).Msg("engine.Proc close request stream")
	}
	select {
	case <-p.done:
	case <-time.After(p.cfg.GraceTimeout):
		p.log.Warn().Msg("engine.Proc close grace elapsed, killing")
		_ = p.cmd.Process.Kill()
		<-p.done
	}
	p.log.Info().Msg("engine.Proc closed")
	return nil
}

func (p *Proc) request(req string) (string, error) {
	if p.closing.Load() {
		return "", pipe.ErrEngineClosed
	}
	select {
	case <-p.done:
		return "", fmt.Errorf("%w: exited: %v", pipe.ErrEngineCrashed, p.waitErr)
	default:
	}
	if _, err := io.WriteString(p.stdin, req+"\n"); err != nil {
		return "", p.ioFailure("write request", err)
	}
	reply, err := p.replies.ReadString('\n')
	if err != nil {
		return "", p.ioFailure("read reply", err)
	}
	return strings.TrimSuffix(reply, "\n"), nil
}

// ioFailure maps a dead conversation to the transport sentinels: a
// closed Proc reports ErrEngineClosed, anything else is a crash.
func (p *Proc) ioFailure(stage string, err error) error {
	if p.closing.Load() {
		return pipe.ErrEngineClosed
	}
	p.log.Error().Err(err).Str("stage", stage).Msg("engine.Proc conversation failed")
	return fmt.Errorf("%w: %s: %v", pipe.ErrEngineCrashed, stage, err)
}

func replyError(reply string) error {
	if msg, ok := strings.CutPrefix(reply, "err "); ok {
		return fmt.Errorf("engine: adapter: %s", msg)
	}
	return fmt.Errorf("engine: unexpected reply %q", reply)
}
