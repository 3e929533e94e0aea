// File: token.go
// Title: Expression Tokens
// Description: Token kinds, constructors and structural equality.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package token

import (
	"strconv"
)

// Kind represents the variant of a token
type Kind int

const (
	// KindInt is an integer literal carrying Value
	KindInt Kind = iota

	// KindPlus is the '+' operator
	KindPlus
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "INT"
	case KindPlus:
		return "PLUS"
	default:
		return "UNKNOWN"
	}
}

// Token is a single lexical unit. Pos is the byte offset in the source
// and is ignored by Equal.
type Token struct {
	Kind  Kind
	Value int64
	Pos   int
}

// Int creates an integer literal token
func Int(value int64) Token {
	return Token{Kind: KindInt, Value: value}
}

// Plus creates a plus operator token
func Plus() Token {
	return Token{Kind: KindPlus}
}

// At returns a copy of the token positioned at the given offset
func (t Token) At(pos int) Token {
	t.Pos = pos
	return t
}

// IsInt reports whether the token is an integer literal
func (t Token) IsInt() bool {
	return t.Kind == KindInt
}

// String renders the token the way it appears in parse messages
func (t Token) String() string {
	switch t.Kind {
	case KindInt:
		return strconv.FormatInt(t.Value, 10)
	case KindPlus:
		return "+"
	default:
		return "?"
	}
}

// Equal compares two tokens structurally. Plus tokens are always equal,
// integer literals are equal iff their values are, kinds never cross.
func Equal(a, b Token) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == KindInt {
		return a.Value == b.Value
	}
	return true
}
