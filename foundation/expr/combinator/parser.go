// File: parser.go
// Title: Parsers and Combinators
// Description: Parser type, primitive parsers TokenP and NumP, and the
//              combinators AndP, OrP and Map.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package combinator

import (
	"github.com/msto63/frege/foundation/expr/token"
)

// MessageExhausted is the failure message of every primitive on empty input
const MessageExhausted = "out of tokens"

// Parser is a pure function from a token stream to a result
type Parser[A any] func(token.Stream) Result[A]

// Thunk defers construction of a parser until its branch is reached
type Thunk[A any] func() Parser[A]

// Unit is the value of parsers that only recognise input
type Unit struct{}

// Pair holds the values of two sequentially composed parsers
type Pair[A, B any] struct {
	First  A
	Second B
}

// Now lifts an already constructed parser into a thunk
func Now[A any](p Parser[A]) Thunk[A] {
	return func() Parser[A] { return p }
}

// Run invokes p on s
func Run[A any](p Parser[A], s token.Stream) Result[A] {
	return p(s)
}

// TokenP matches exactly one token structurally equal to expected
func TokenP(expected token.Token) Parser[Unit] {
	return func(s token.Stream) Result[Unit] {
		head, ok := s.Head()
		if !ok {
			return Failure[Unit](ReasonExhausted, MessageExhausted)
		}
		if !token.Equal(head, expected) {
			return Failuref[Unit](ReasonMismatch, "expected %s, got %s", expected, head)
		}
		return Success(s.Tail(), Unit{})
	}
}

// NumP matches an integer literal and yields its value
func NumP() Parser[int64] {
	return func(s token.Stream) Result[int64] {
		head, ok := s.Head()
		if !ok {
			return Failure[int64](ReasonExhausted, MessageExhausted)
		}
		if !head.IsInt() {
			return Failuref[int64](ReasonMismatch, "expected integer literal, got %s", head)
		}
		return Success(s.Tail(), head.Value)
	}
}

// AndP runs left, then right on what left left over. The first failure is
// returned verbatim and right is not forced unless left succeeds.
func AndP[A, B any](left Thunk[A], right Thunk[B]) Parser[Pair[A, B]] {
	return func(s token.Stream) Result[Pair[A, B]] {
		r1 := left()(s)
		if !r1.ok {
			return forward[Pair[A, B]](r1)
		}
		r2 := right()(r1.remaining)
		if !r2.ok {
			return forward[Pair[A, B]](r2)
		}
		return Success(r2.remaining, Pair[A, B]{First: r1.value, Second: r2.value})
	}
}

// OrP returns the result of left if it succeeds, otherwise the result of
// right on the original input. When both fail the left failure is dropped.
func OrP[A any](left, right Thunk[A]) Parser[A] {
	return func(s token.Stream) Result[A] {
		if r := left()(s); r.ok {
			return r
		}
		return right()(s)
	}
}

// Map transforms the value of a successful result
func Map[A, B any](p Parser[A], f func(A) B) Parser[B] {
	return func(s token.Stream) Result[B] {
		r := p(s)
		if !r.ok {
			return forward[B](r)
		}
		return Success(r.remaining, f(r.value))
	}
}
