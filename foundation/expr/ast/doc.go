// File: doc.go
// Title: Expression AST Package Documentation
// Description: Abstract syntax tree of the Frege expression language with
//              visitors for evaluation, printing and structural encoding.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

/*
Package ast defines the expression tree produced by the grammar.

An Exp is either an *Int leaf or a *Plus node with two children. Trees are
built bottom-up by successful parses, are never mutated afterwards and are
always finite.

Processing is done with visitors:

	value, err := ast.Evaluate(e)  // int64 sum, overflow is an error
	text := ast.Print(e)           // "(1 + (2 + 3))"
	depth := ast.Depth(e)

String renders the constructor form used in tests and logs, e.g.
Plus(Int(1), Int(2)). ToMap and FromMap convert trees to and from the
generic map form used by the JSON, gRPC and storage layers.
*/
package ast
