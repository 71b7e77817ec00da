// Package capture redirects a process output stream into a pipe for
// the duration of one operation, then hands back what was written.
package capture

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// StdoutFD is the descriptor the engine's raw output arrives on.
const StdoutFD = 1

// RestoreError reports a failure to put the original descriptor back.
// The stream is left redirected, so the session must be treated as
// lost; there is no recovery short of restarting the process.
type RestoreError struct {
	FD  int
	Err error
}

func (e RestoreError) Error() string {
	return fmt.Sprintf("capture: restore fd %d: %v", e.FD, e.Err)
}

func (e RestoreError) Unwrap() error {
	return e.Err
}

// IO swaps one file descriptor for a pipe while an operation runs. An
// IO is reusable across captures but never concurrently: exactly one
// capture owns the stream at a time.
type IO struct {
	fd int
	r  *os.File
	w  *os.File
}

func New(fd int) (*IO, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("capture: pipe: %w", err)
	}
	return &IO{fd: fd, r: r, w: w}, nil
}

// Run redirects the descriptor, invokes op, restores the descriptor,
// then drains and returns everything op wrote. The descriptor is
// restored on every exit path, panics included. Output written after
// op returns is not seen: capture is faithful only for operations that
// finish their writes before returning.
func (c *IO) Run(op func() error) (string, error) {
	saved, err := unix.Dup(c.fd)
	if err != nil {
		return "", fmt.Errorf("capture: dup fd %d: %w", c.fd, err)
	}
	if err := unix.Dup3(int(c.w.Fd()), c.fd, 0); err != nil {
		unix.Close(saved)
		return "", fmt.Errorf("capture: redirect fd %d: %w", c.fd, err)
	}

	var restoreErr error
	restored := false
	restore := func() {
		if restored {
			return
		}
		restored = true
		if err := unix.Dup3(saved, c.fd, 0); err != nil {
			restoreErr = RestoreError{FD: c.fd, Err: err}
		}
		unix.Close(saved)
	}
	defer restore()

	opErr := op()
	restore()
	if restoreErr != nil {
		return "", restoreErr
	}
	if opErr != nil {
		return "", opErr
	}
	return c.drain(), nil
}

// Close releases the pipe. The IO must not be mid-capture.
func (c *IO) Close() error {
	if err := c.w.Close(); err != nil {
		c.r.Close()
		return err
	}
	return c.r.Close()
}

func (c *IO) drain() string {
	var b strings.Builder
	buf := make([]byte, 1024)
	for c.readable() {
		n, err := c.r.Read(buf)
		if n > 0 {
			b.Write(buf[:n])
		}
		if err != nil {
			break
		}
	}
	return b.String()
}

// readable polls with a zero timeout: draining consumes what is
// already buffered and never blocks waiting for more.
func (c *IO) readable() bool {
	fds := []unix.PollFd{{Fd: int32(c.r.Fd()), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(fds, 0)
		if err == unix.EINTR {
			continue
		}
		return err == nil && n > 0 && fds[0].Revents&unix.POLLIN != 0
	}
}

// Stdout captures everything op writes to the process stdout stream.
func Stdout(op func() error) (string, error) {
	c, err := New(StdoutFD)
	if err != nil {
		return "", err
	}
	defer c.Close()
	return c.Run(op)
}
