// Package fault defines the error kinds raised by the dnastore codec.
//
// Every failure that crosses a package boundary is an *Error carrying one
// Kind. Callers match on kinds with errors.Is against the exported
// sentinels:
//
//	if errors.Is(err, fault.ErrIndexMismatch) {
//	    // a chunk is missing, reordered or truncated
//	}
//
// All kinds are terminal for the call that raised them.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a codec failure
type Kind int

const (
	// InvalidInput covers malformed bit strings, unknown symbols and bad options.
	InvalidInput Kind = iota + 1
	// LengthError is raised when a size is not a multiple of a codec's block size.
	LengthError
	// CorruptionDetected is a packet checksum mismatch.
	CorruptionDetected
	// HeaderCorrupt means the bootstrap header could not be corrected or parsed.
	HeaderCorrupt
	// IndexMismatch means a decoded packet is not where the stream says it should be.
	IndexMismatch
	// UncorrectableError means the byte-block FEC exceeded its correction bound.
	UncorrectableError
	// ConstraintUnsatisfiable means the rejection sampler ran out of nonces.
	ConstraintUnsatisfiable
	// OutOfBounds is a random-access index outside [0, chunk_count).
	OutOfBounds
)

var kindNames = map[Kind]string{
	InvalidInput:            "invalid input",
	LengthError:             "length error",
	CorruptionDetected:      "corruption detected",
	HeaderCorrupt:           "header corrupt",
	IndexMismatch:           "index mismatch",
	UncorrectableError:      "uncorrectable error",
	ConstraintUnsatisfiable: "constraint unsatisfiable",
	OutOfBounds:             "out of bounds",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Class groups kinds the way failure reports count them
type Class string

const (
	ClassCorruption  Class = "corruption_detected"
	ClassMissingData Class = "missing_data"
	ClassSystem      Class = "system_error"
)

// Class returns the failure class reported for k
func (k Kind) Class() Class {
	switch k {
	case CorruptionDetected, HeaderCorrupt, UncorrectableError:
		return ClassCorruption
	case IndexMismatch, OutOfBounds:
		return ClassMissingData
	default:
		return ClassSystem
	}
}

// Error is a codec failure of a given kind
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "hamming.decode"
	Msg  string
	Err  error // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Msg == "" && t.Err == nil
}

// Sentinels for errors.Is matching
var (
	ErrInvalidInput            = &Error{Kind: InvalidInput}
	ErrLengthError             = &Error{Kind: LengthError}
	ErrCorruptionDetected      = &Error{Kind: CorruptionDetected}
	ErrHeaderCorrupt           = &Error{Kind: HeaderCorrupt}
	ErrIndexMismatch           = &Error{Kind: IndexMismatch}
	ErrUncorrectable           = &Error{Kind: UncorrectableError}
	ErrConstraintUnsatisfiable = &Error{Kind: ConstraintUnsatisfiable}
	ErrOutOfBounds             = &Error{Kind: OutOfBounds}
)

// New returns an *Error with a formatted message
func New(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns an *Error of the given kind around err
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or 0
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
