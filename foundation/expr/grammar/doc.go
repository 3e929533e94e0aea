// File: doc.go
// Title: Expression Grammar Package Documentation
// Description: Parsers for the Frege expression grammar built from the
//              combinator primitives.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

/*
Package grammar encodes the expression grammar

	exp ::= integer '+' exp | integer

as mutually recursive parser factories. Each rule is a zero-argument
function returning a freshly built parser, so PlusP can refer to
ExpressionP and back without building an infinite value up front.

Because the recursion sits on the right, 1 + 2 + 3 parses as
Plus(Int(1), Plus(Int(2), Int(3))). This is the reference behaviour and is
what ExpressionP returns. Callers that need conventional left-associative
trees opt in with LeftExpressionP or ForAssociativity(AssocLeft).

Parsers never require the whole input to be consumed. A success may carry
remaining tokens, e.g. "1 +" yields Int(1) with [+] left over. Use Complete
to check for full consumption.
*/
package grammar
