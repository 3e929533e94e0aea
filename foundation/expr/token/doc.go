// File: doc.go
// Title: Expression Token Package Documentation
// Description: Token model, persistent token stream and lexer for the
//              Frege expression language.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

/*
Package token defines the lexical layer of the Frege expression language.

The language knows exactly two token kinds: integer literals and the plus
operator. Tokens compare structurally; source offsets are carried for error
reporting only and never take part in equality.

A Stream is a persistent view over an immutable token slice. Consuming a
token returns a new view and leaves every other view untouched, so any
number of parsers may hold independent positions over the same input:

	s, err := token.Tokenize("1 + 2")
	head, _ := s.Head()   // Int(1)
	rest := s.Tail()      // [+, Int(2)]
	_ = s.Len()           // still 3
*/
package token
