package common

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline errors by how they are handled
type ErrorKind string

const (
	KindMalformedFrame ErrorKind = "MALFORMED_FRAME"
	KindInvalidLength  ErrorKind = "INVALID_LENGTH"
	KindNetwork        ErrorKind = "NETWORK_ERROR"
	KindEmptyQueue     ErrorKind = "EMPTY_QUEUE"
	KindOverrun        ErrorKind = "OVERRUN"
)

// Sentinels for errors.Is. Matching is by kind only.
var (
	ErrMalformedFrame = &ScopeError{Kind: KindMalformedFrame, Message: "malformed frame"}
	ErrInvalidLength  = &ScopeError{Kind: KindInvalidLength, Message: "invalid transform length"}
	ErrNetwork        = &ScopeError{Kind: KindNetwork, Message: "network failure"}
	ErrEmptyQueue     = &ScopeError{Kind: KindEmptyQueue, Message: "queue is empty"}
	ErrOverrun        = &ScopeError{Kind: KindOverrun, Message: "render overrun"}
)

// ScopeError represents pipeline errors
type ScopeError struct {
	Kind    ErrorKind `json:"kind"`
	Op      string    `json:"op,omitempty"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

func (e *ScopeError) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *ScopeError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a ScopeError of the same kind
func (e *ScopeError) Is(target error) bool {
	t, ok := target.(*ScopeError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewScopeError creates a new pipeline error
func NewScopeError(kind ErrorKind, op, message string, cause error) *ScopeError {
	return &ScopeError{
		Kind:    kind,
		Op:      op,
		Message: message,
		Cause:   cause,
	}
}

// MalformedFrame builds a MALFORMED_FRAME error for a frame of the given length
func MalformedFrame(op string, length int, reason string) *ScopeError {
	return NewScopeError(KindMalformedFrame, op, fmt.Sprintf("frame of %d bytes: %s", length, reason), nil)
}

// InvalidLength builds an INVALID_LENGTH error for a transform input
func InvalidLength(op string, length int) *ScopeError {
	return NewScopeError(KindInvalidLength, op, fmt.Sprintf("length %d is not a power of two", length), nil)
}

// NetworkError wraps a transport failure
func NetworkError(op string, cause error) *ScopeError {
	return NewScopeError(KindNetwork, op, "receive failed", cause)
}

// KindOf returns the kind of the first ScopeError in err's chain, or "" if none
func KindOf(err error) ErrorKind {
	var se *ScopeError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// ErrorChain flattens err and every error it wraps, outermost first.
// Joined errors are walked depth-first.
func ErrorChain(err error) []string {
	var chain []string
	var walk func(error)
	walk = func(e error) {
		for e != nil {
			chain = append(chain, fmt.Sprintf("%T: %s", e, e.Error()))
			switch x := e.(type) {
			case interface{ Unwrap() []error }:
				for _, inner := range x.Unwrap() {
					walk(inner)
				}
				return
			case interface{ Unwrap() error }:
				e = x.Unwrap()
			default:
				return
			}
		}
	}
	walk(err)
	return chain
}
