// File: grammar.go
// Title: Expression Grammar
// Description: integer, plus and expression rules, the opt-in
//              left-associative variant and associativity selection.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package grammar

import (
	"strings"

	"github.com/msto63/frege/foundation/expr/ast"
	c "github.com/msto63/frege/foundation/expr/combinator"
	"github.com/msto63/frege/foundation/expr/token"
)

// IntegerP parses an integer literal into an *ast.Int
func IntegerP() c.Parser[ast.Exp] {
	return c.Map(c.NumP(), func(v int64) ast.Exp {
		return ast.NewInt(v)
	})
}

// PlusP parses integer '+' exp into an *ast.Plus
func PlusP() c.Parser[ast.Exp] {
	head := c.AndP(c.Thunk[ast.Exp](IntegerP), c.Now(c.TokenP(token.Plus())))
	return c.Map(
		c.AndP(c.Now(head), c.Thunk[ast.Exp](ExpressionP)),
		func(p c.Pair[c.Pair[ast.Exp, c.Unit], ast.Exp]) ast.Exp {
			return ast.NewPlus(p.First.First, p.Second)
		},
	)
}

// ExpressionP tries PlusP and falls back to IntegerP
func ExpressionP() c.Parser[ast.Exp] {
	return c.OrP(c.Thunk[ast.Exp](PlusP), c.Thunk[ast.Exp](IntegerP))
}

// LeftExpressionP parses integer ('+' integer)* and folds the terms to the
// left, so 1 + 2 + 3 yields Plus(Plus(Int(1), Int(2)), Int(3)).
func LeftExpressionP() c.Parser[ast.Exp] {
	return c.Map(termsP(), func(terms []ast.Exp) ast.Exp {
		acc := terms[0]
		for _, term := range terms[1:] {
			acc = ast.NewPlus(acc, term)
		}
		return acc
	})
}

// termsP parses one or more '+'-separated integers. Every recursive step
// consumes an integer and a plus token first.
func termsP() c.Parser[[]ast.Exp] {
	more := c.Map(
		c.AndP(c.Thunk[ast.Exp](IntegerP), c.Thunk[[]ast.Exp](moreTermsP)),
		func(p c.Pair[ast.Exp, []ast.Exp]) []ast.Exp {
			return append([]ast.Exp{p.First}, p.Second...)
		},
	)
	single := c.Map(IntegerP(), func(e ast.Exp) []ast.Exp {
		return []ast.Exp{e}
	})
	return c.OrP(c.Now(more), c.Now(single))
}

func moreTermsP() c.Parser[[]ast.Exp] {
	return c.Map(
		c.AndP(c.Now(c.TokenP(token.Plus())), c.Thunk[[]ast.Exp](termsP)),
		func(p c.Pair[c.Unit, []ast.Exp]) []ast.Exp {
			return p.Second
		},
	)
}

// Complete reports whether r is a success that consumed all input
func Complete(r c.Result[ast.Exp]) bool {
	return r.IsSuccess() && r.Remaining().Empty()
}

// Assoc selects how chains of '+' are grouped
type Assoc int

const (
	// AssocRight groups a + b + c as a + (b + c)
	AssocRight Assoc = iota

	// AssocLeft groups a + b + c as (a + b) + c
	AssocLeft
)

// String returns the string representation of the associativity
func (a Assoc) String() string {
	switch a {
	case AssocLeft:
		return "left"
	default:
		return "right"
	}
}

// ParseAssoc parses "left" or "right"; the empty string means right
func ParseAssoc(s string) (Assoc, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "right", "r":
		return AssocRight, true
	case "left", "l":
		return AssocLeft, true
	default:
		return AssocRight, false
	}
}

// ForAssociativity returns the expression parser for a
func ForAssociativity(a Assoc) c.Parser[ast.Exp] {
	if a == AssocLeft {
		return LeftExpressionP()
	}
	return ExpressionP()
}
