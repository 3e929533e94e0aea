// File: visitor.go
// Title: Expression AST Visitors
// Description: Visitor interface and the evaluator, printer and depth
//              visitors.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package ast

import (
	"math"
	"strconv"
	"strings"

	mdwerror "github.com/msto63/frege/foundation/core/error"
)

// Visitor interface for traversing expression nodes
type Visitor interface {
	VisitInt(n *Int) interface{}
	VisitPlus(n *Plus) interface{}
}

// Evaluator sums a tree. The first overflow stops evaluation and is kept
// in Err.
type Evaluator struct {
	Err error
}

func (ev *Evaluator) VisitInt(n *Int) interface{} {
	return n.Value
}

func (ev *Evaluator) VisitPlus(n *Plus) interface{} {
	left := n.Left.Accept(ev).(int64)
	if ev.Err != nil {
		return int64(0)
	}
	right := n.Right.Accept(ev).(int64)
	if ev.Err != nil {
		return int64(0)
	}

	if (right > 0 && left > math.MaxInt64-right) || (right < 0 && left < math.MinInt64-right) {
		ev.Err = mdwerror.Newf("integer overflow: %d + %d", left, right).
			WithCode(mdwerror.CodeEvaluation).
			WithOperation("ast.Evaluate")
		return int64(0)
	}
	return left + right
}

// Evaluate returns the sum of all literals in e
func Evaluate(e Exp) (int64, error) {
	ev := &Evaluator{}
	value := e.Accept(ev).(int64)
	if ev.Err != nil {
		return 0, ev.Err
	}
	return value, nil
}

// Printer renders a tree as fully parenthesised infix
type Printer struct {
	buf strings.Builder
}

func (p *Printer) VisitInt(n *Int) interface{} {
	p.buf.WriteString(strconv.FormatInt(n.Value, 10))
	return nil
}

func (p *Printer) VisitPlus(n *Plus) interface{} {
	p.buf.WriteByte('(')
	n.Left.Accept(p)
	p.buf.WriteString(" + ")
	n.Right.Accept(p)
	p.buf.WriteByte(')')
	return nil
}

// String returns everything printed so far
func (p *Printer) String() string {
	return p.buf.String()
}

// Print renders e as infix text, e.g. (1 + (2 + 3))
func Print(e Exp) string {
	p := &Printer{}
	e.Accept(p)
	return p.String()
}

// depthVisitor returns the height of a subtree
type depthVisitor struct{}

func (depthVisitor) VisitInt(*Int) interface{} {
	return 1
}

func (d depthVisitor) VisitPlus(n *Plus) interface{} {
	left := n.Left.Accept(d).(int)
	right := n.Right.Accept(d).(int)
	if left > right {
		return left + 1
	}
	return right + 1
}

// Depth returns the height of the tree, 1 for a single literal
func Depth(e Exp) int {
	return e.Accept(depthVisitor{}).(int)
}

// collector gathers literals in source order
type collector struct {
	values []int64
}

func (c *collector) VisitInt(n *Int) interface{} {
	c.values = append(c.values, n.Value)
	return nil
}

func (c *collector) VisitPlus(n *Plus) interface{} {
	n.Left.Accept(c)
	n.Right.Accept(c)
	return nil
}

// Literals returns the integer literals of e from left to right
func Literals(e Exp) []int64 {
	c := &collector{}
	e.Accept(c)
	return c.values
}
