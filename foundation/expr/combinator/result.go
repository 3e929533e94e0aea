// File: result.go
// Title: Parse Result
// Description: Tagged success/failure outcome of running a parser.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package combinator

import (
	"fmt"

	"github.com/msto63/frege/foundation/expr/token"
)

// Reason classifies a failure
type Reason int

const (
	// ReasonNone is the reason of a successful result
	ReasonNone Reason = iota

	// ReasonMismatch means a token was present but not the expected one
	ReasonMismatch

	// ReasonExhausted means the stream ended where a token was required
	ReasonExhausted
)

// String returns the string representation of the reason
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonMismatch:
		return "mismatch"
	case ReasonExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Result is either a success carrying the remaining stream and a value, or a
// failure carrying a message. Exactly one variant is populated.
type Result[A any] struct {
	ok        bool
	remaining token.Stream
	value     A
	message   string
	reason    Reason
}

// Success creates a successful result
func Success[A any](remaining token.Stream, value A) Result[A] {
	return Result[A]{ok: true, remaining: remaining, value: value}
}

// Failure creates a failed result
func Failure[A any](reason Reason, message string) Result[A] {
	return Result[A]{reason: reason, message: message}
}

// Failuref creates a failed result with a formatted message
func Failuref[A any](reason Reason, format string, args ...interface{}) Result[A] {
	return Failure[A](reason, fmt.Sprintf(format, args...))
}

// IsSuccess reports whether the parser succeeded
func (r Result[A]) IsSuccess() bool {
	return r.ok
}

// Remaining returns the unconsumed stream of a success, empty on failure
func (r Result[A]) Remaining() token.Stream {
	return r.remaining
}

// Value returns the parsed value of a success, the zero value on failure
func (r Result[A]) Value() A {
	return r.value
}

// Message returns the failure message, empty on success
func (r Result[A]) Message() string {
	return r.message
}

// Reason returns the failure classification, ReasonNone on success
func (r Result[A]) Reason() Reason {
	return r.reason
}

// String renders the result as success([..], v) or failure("..")
func (r Result[A]) String() string {
	if r.ok {
		return fmt.Sprintf("success(%s, %v)", r.remaining, r.value)
	}
	return fmt.Sprintf("failure(%q)", r.message)
}

// forward re-types a failure without touching its message or reason
func forward[B, A any](r Result[A]) Result[B] {
	return Result[B]{reason: r.reason, message: r.message}
}
