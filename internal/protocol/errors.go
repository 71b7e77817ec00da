package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedRecord = errors.New("protocol: malformed record")
)

// Consistency reasons reported during array reassembly.
const (
	ConsistencyIndexOrder    = "index out of order"
	ConsistencyCountMismatch = "count mismatch"
	ConsistencyCountMissing  = "missing count field"
)

// DecodeError indicates a field payload that does not parse under its kind tag.
type DecodeError struct {
	Name string
	Kind Kind
	Raw  string
	Err  error
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("protocol: decode %s field %q: %q: %v", e.Kind, e.Name, e.Raw, e.Err)
}

func (e DecodeError) Unwrap() error {
	return e.Err
}

// ConsistencyError indicates an indexed array that contradicts itself:
// elements out of order, or a declared count that disagrees with the
// number of elements actually received.
type ConsistencyError struct {
	Name   string
	Reason string
	Want   int
	Got    int
}

func (e ConsistencyError) Error() string {
	return fmt.Sprintf("protocol: array %q: %s (want %d, got %d)", e.Name, e.Reason, e.Want, e.Got)
}

// MalformedRowError indicates a numeric table row with the wrong field count.
type MalformedRowError struct {
	Row    int
	Fields int
	Want   int
}

func (e MalformedRowError) Error() string {
	return fmt.Sprintf("protocol: table row %d: want %d fields, got %d", e.Row, e.Want, e.Fields)
}
