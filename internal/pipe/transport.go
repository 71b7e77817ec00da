package pipe

import "errors"

var (
	// ErrEngineCrashed reports an engine process that died underneath the
	// session. The session is unusable; callers must not retry through it.
	ErrEngineCrashed = errors.New("pipe: engine process crashed")

	// ErrEngineClosed reports an operation attempted after Close.
	ErrEngineClosed = errors.New("pipe: engine connection closed")

	// ErrMalformedReply reports a transport answer that violates the
	// conversation contract, such as a negative line count.
	ErrMalformedReply = errors.New("pipe: malformed reply")
)

// Transport is the blocking request/response conversation with one
// engine process. Every call parks the caller until the engine answers;
// there is no cancellation mid-call.
//
// Implementations are not required to be safe for concurrent use.
type Transport interface {
	// Send submits one command for execution and returns once the
	// engine has finished it.
	Send(cmd string) error

	// SendAndCapture submits one command and returns the raw text the
	// engine printed while executing it.
	SendAndCapture(cmd string) (string, error)

	// LineCount reports how many lines the engine's scratch output
	// buffer currently holds.
	LineCount() (int, error)

	// Line fetches one scratch buffer line by 1-based index.
	Line(n int) (string, error)

	// Close shuts the engine down. Later calls fail with
	// ErrEngineClosed.
	Close() error
}
