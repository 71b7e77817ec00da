package pipe

import (
	"fmt"
	"io"
	"os"
	"time"
)

// CommandLog appends every issued command to a writer, one per line,
// timestamped and unbuffered so nothing is lost if the session dies.
// Comment lines use the engine's '!' convention.
type CommandLog struct {
	w io.Writer
	f *os.File
}

// NewCommandLog logs onto an existing writer owned by the caller.
func NewCommandLog(w io.Writer) *CommandLog {
	return &CommandLog{w: w}
}

// OpenCommandLog opens (or creates) an append-mode history file.
func OpenCommandLog(path string) (*CommandLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("pipe: open command log: %w", err)
	}
	return &CommandLog{w: f, f: f}, nil
}

func (l *CommandLog) Record(cmd string) error {
	_, err := fmt.Fprintf(l.w, "%s\t%s\n", time.Now().UTC().Format(time.RFC3339Nano), cmd)
	if err != nil {
		return fmt.Errorf("pipe: command log write: %w", err)
	}
	return nil
}

func (l *CommandLog) Comment(text string) error {
	_, err := fmt.Fprintf(l.w, "! %s\n", text)
	if err != nil {
		return fmt.Errorf("pipe: command log write: %w", err)
	}
	return nil
}

// Close closes the underlying file when the log owns one.
func (l *CommandLog) Close() error {
	if l.f == nil {
		return nil
	}
	return l.f.Close()
}
