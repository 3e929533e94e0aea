// File: doc.go
// Title: Expression Engine Package Documentation
// Description: High-level entry point that tokenizes, parses and evaluates
//              Frege expressions.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

/*
Package expr ties the lexer, the grammar and the AST visitors together.

	engine, err := expr.NewEngine(expr.Options{Logger: logger})
	outcome, err := engine.Parse("1 + 2 + 3")
	fmt.Println(outcome.AST)          // Plus(Int(1), Plus(Int(2), Int(3)))

	ev, err := engine.Evaluate("1 + 2")
	fmt.Println(ev.Value)             // 3

Sub-packages:

  - token: tokens, persistent token stream and lexer
  - combinator: parse results, primitive parsers and combinators
  - ast: expression tree and visitors
  - grammar: the expression grammar

Errors are *mdwerror.Error values. Lexical problems carry CodeLexical,
grammar failures CodeParseMismatch or CodeParseExhausted, arithmetic
overflow CodeEvaluation. A failed parse still returns its Outcome so callers
can inspect the raw combinator result.

By default a parse succeeds even when tokens remain after the expression.
Set Options.RequireComplete (or Mode.RequireComplete per call) to turn
leftovers into a CodeIncompleteInput error.
*/
package expr
