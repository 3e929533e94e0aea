// File: lexer.go
// Title: Expression Lexer
// Description: Converts source text into a token stream. Recognises decimal
//              integer literals and '+', skips whitespace and reports illegal
//              characters with their byte offset.
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

	mdwerror "github.com/msto63/frege/foundation/core/error"
)

// Lexer performs lexical analysis of expression source text
type Lexer struct {
	input    string
	position int  // offset of ch
	readPos  int  // offset after ch
	ch       byte // 0 at end of input
}

// NewLexer creates a new lexer for the given input
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// Next returns the next token. ok is false once the input is exhausted.
func (l *Lexer) Next() (tok Token, ok bool, err error) {
	l.skipWhitespace()
	pos := l.position

	switch {
	case l.ch == 0 && l.position >= len(l.input):
		return Token{}, false, nil
	case l.ch == '+':
		l.readChar()
		return Plus().At(pos), true, nil
	case isDigit(l.ch):
		literal := l.readNumber()
		value, parseErr := strconv.ParseInt(literal, 10, 64)
		if parseErr != nil {
			return Token{}, false, mdwerror.Wrap(parseErr, "integer literal out of range").
				WithCode(mdwerror.CodeLexical).
				WithOperation("token.Lexer.Next").
				WithDetail("offset", pos).
				WithDetail("literal", literal)
		}
		return Int(value).At(pos), true, nil
	default:
		return Token{}, false, mdwerror.Newf("illegal character %q at offset %d", l.ch, pos).
			WithCode(mdwerror.CodeLexical).
			WithOperation("token.Lexer.Next").
			WithDetail("offset", pos).
			WithDetail("character", string(l.ch))
	}
}

// Tokenize consumes the whole input and returns it as a stream
func (l *Lexer) Tokenize() (Stream, error) {
	var toks []Token
	for {
		tok, ok, err := l.Next()
		if err != nil {
			return Stream{}, err
		}
		if !ok {
			return Stream{toks: toks}, nil
		}
		toks = append(toks, tok)
	}
}

// Tokenize is a shorthand for NewLexer(src).Tokenize()
func Tokenize(src string) (Stream, error) {
	return NewLexer(src).Tokenize()
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.position = l.readPos
	l.readPos++
}

func (l *Lexer) readNumber() string {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
