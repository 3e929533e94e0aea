// File: stream.go
// Title: Persistent Token Stream
// Description: Immutable, index-based token sequence with O(1) head/tail.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package token

import (
	"strings"
)

// Stream is a read cursor over an immutable token slice. The zero value is
// an empty stream. Streams are values; Tail never modifies the receiver.
type Stream struct {
	toks []Token
	pos  int
}

// NewStream creates a stream over a private copy of toks
func NewStream(toks ...Token) Stream {
	owned := make([]Token, len(toks))
	copy(owned, toks)
	return Stream{toks: owned}
}

// Empty reports whether no tokens remain
func (s Stream) Empty() bool {
	return s.pos >= len(s.toks)
}

// Head returns the first remaining token
func (s Stream) Head() (Token, bool) {
	if s.Empty() {
		return Token{}, false
	}
	return s.toks[s.pos], true
}

// Tail returns the stream without its first token. The tail of an empty
// stream is the empty stream.
func (s Stream) Tail() Stream {
	if s.Empty() {
		return s
	}
	return Stream{toks: s.toks, pos: s.pos + 1}
}

// Len returns the number of remaining tokens
func (s Stream) Len() int {
	if s.Empty() {
		return 0
	}
	return len(s.toks) - s.pos
}

// Pos returns how many tokens of the backing sequence have been consumed
func (s Stream) Pos() int {
	return s.pos
}

// Tokens returns a copy of the remaining tokens
func (s Stream) Tokens() []Token {
	out := make([]Token, s.Len())
	if len(out) > 0 {
		copy(out, s.toks[s.pos:])
	}
	return out
}

// Equal reports whether both streams hold structurally equal remaining tokens
func (s Stream) Equal(other Stream) bool {
	if s.Len() != other.Len() {
		return false
	}
	for i := 0; i < s.Len(); i++ {
		if !Equal(s.toks[s.pos+i], other.toks[other.pos+i]) {
			return false
		}
	}
	return true
}

// String renders the remaining tokens as [1 + 2]
func (s Stream) String() string {
	parts := make([]string, 0, s.Len())
	for _, t := range s.Tokens() {
		parts = append(parts, t.String())
	}
	return "[" + strings.Join(parts, " ") + "]"
}
