package pipe

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/danmuck/taoctl/internal/observability"
	"github.com/danmuck/taoctl/internal/protocol"
)

// Config carries the channel collaborators.
type Config struct {
	Log zerolog.Logger

	// CommandLog receives every issued command. Optional; the caller
	// keeps ownership and closes it.
	CommandLog *CommandLog
}

// Channel speaks the command side of the engine conversation: plain
// commands, captured commands, and structured queries. Transport
// failures pass through unchanged; the channel never retries.
//
// A Channel is not safe for concurrent use. Callers drive it from one
// goroutine or serialize with their own lock.
type Channel struct {
	transport Transport
	log       zerolog.Logger
	history   *CommandLog
	session   string
}

func NewChannel(t Transport, cfg Config) *Channel {
	session := uuid.NewString()
	logger := cfg.Log.With().Str("session_id", session).Logger()
	ch := &Channel{
		transport: t,
		log:       logger,
		history:   cfg.CommandLog,
		session:   session,
	}
	if ch.history != nil {
		if err := ch.history.Comment("session " + session); err != nil {
			logger.Warn().Err(err).Msg("pipe.Channel command log header")
		}
	}
	logger.Debug().Msg("pipe.Channel ready")
	return ch
}

// Session returns the channel's session id.
func (c *Channel) Session() string {
	return c.session
}

// Command serializes args into one command line and executes it.
// Exactly one transport send, no reads.
func (c *Channel) Command(args ...any) error {
	cmd, err := c.submit(args...)
	if err != nil {
		return err
	}
	observability.RecordPipeCommand("command")
	c.log.Debug().Str("cmd", cmd).Msg("pipe.Command sent")
	return nil
}

// Capture executes one command and returns the raw text the engine
// printed while running it.
func (c *Channel) Capture(args ...any) (string, error) {
	cmd := protocol.JoinArgs(args...)
	if err := c.record(cmd); err != nil {
		return "", err
	}
	out, err := c.transport.SendAndCapture(cmd)
	if err != nil {
		c.log.Error().Err(err).Str("cmd", cmd).Msg("pipe.Capture failed")
		return "", err
	}
	observability.RecordPipeCommand("capture")
	observability.RecordCaptureBytes(len(out))
	c.log.Debug().Str("cmd", cmd).Int("bytes", len(out)).Msg("pipe.Capture complete")
	return out, nil
}

// Python runs a structured query: the command executes in
// non-interactive mode, then the scratch buffer is read back line by
// line and split into records. Any sub-call failure aborts the whole
// query with no partial result.
func (c *Channel) Python(args ...any) ([]protocol.Record, error) {
	started := time.Now()
	full := make([]any, 0, len(args)+2)
	full = append(full, "python", "-noprint")
	full = append(full, args...)
	if _, err := c.submit(full...); err != nil {
		return nil, err
	}
	count, err := c.transport.LineCount()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: line count %d", ErrMalformedReply, count)
	}
	records := make([]protocol.Record, 0, count)
	for n := 1; n <= count; n++ {
		line, err := c.transport.Line(n)
		if err != nil {
			return nil, err
		}
		records = append(records, protocol.ParseRecord(line))
	}
	observability.RecordStructuredQuery(len(records), time.Since(started))
	c.log.Debug().Int("lines", count).Msg("pipe.Python complete")
	return records, nil
}

// Close shuts the transport down. The command log stays open; its
// owner closes it.
func (c *Channel) Close() error {
	return c.transport.Close()
}

// submit serializes args into one command line, records it in the
// history, and performs exactly one transport send.
func (c *Channel) submit(args ...any) (string, error) {
	cmd := protocol.JoinArgs(args...)
	if err := c.record(cmd); err != nil {
		return "", err
	}
	if err := c.transport.Send(cmd); err != nil {
		c.log.Error().Err(err).Str("cmd", cmd).Msg("pipe.Command failed")
		return "", err
	}
	return cmd, nil
}

func (c *Channel) record(cmd string) error {
	if c.history == nil {
		return nil
	}
	if err := c.history.Record(cmd); err != nil {
		return fmt.Errorf("pipe: record command: %w", err)
	}
	return nil
}
