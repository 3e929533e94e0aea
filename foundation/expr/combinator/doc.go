// File: doc.go
// Title: Parser Combinator Package Documentation
// Description: Parse results, parser values and the primitive parsers and
//              combinators the expression grammar is built from.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

/*
Package combinator provides a minimal parser-combinator toolkit over
token.Stream.

A Parser is a pure function from a stream to a Result. Parsers hold no
mutable state, can be invoked any number of times and may be shared between
goroutines without coordination.

Failures are values. Every combinator inspects the result of its operands
and forwards a failure verbatim without running any success-path work:

  - TokenP matches one literal token
  - NumP matches an integer literal and yields its value
  - AndP runs two parsers in sequence and pairs their values
  - OrP tries its left operand and falls back to the right one on the
    original input; when both fail only the right failure is reported

Operands of AndP and OrP are thunks, zero-argument functions returning a
parser. A thunk is only forced when its branch is actually reached, which
lets self-referential grammars be built without diverging:

	var count combinator.Thunk[int]
	count = func() combinator.Parser[int] {
		more := combinator.Map(
			combinator.AndP(combinator.Now(combinator.NumP()), count),
			func(p combinator.Pair[int64, int]) int { return p.Second + 1 },
		)
		one := combinator.Map(combinator.NumP(), func(int64) int { return 1 })
		return combinator.OrP(combinator.Now(more), combinator.Now(one))
	}

Grammars must consume at least one token before recursing. A left-recursive
rule recurses forever and is a construction error, not a runtime concern of
this package.
*/
package combinator
