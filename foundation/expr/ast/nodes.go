// File: nodes.go
// Title: Expression AST Nodes
// Description: Int and Plus nodes, constructors and structural equality.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package ast

import (
	"encoding/json"
	"fmt"
)

// Exp is the base interface for all expression nodes
type Exp interface {
	// String returns the constructor form of the node
	String() string

	// Accept implements the visitor pattern
	Accept(visitor Visitor) interface{}

	expNode() // marker method
}

// Int is an integer literal
type Int struct {
	Value int64
}

// Plus is the sum of two expressions
type Plus struct {
	Left  Exp
	Right Exp
}

// NewInt creates an integer node
func NewInt(value int64) *Int {
	return &Int{Value: value}
}

// NewPlus creates a sum node
func NewPlus(left, right Exp) *Plus {
	return &Plus{Left: left, Right: right}
}

func (*Int) expNode()  {}
func (*Plus) expNode() {}

func (n *Int) String() string {
	return fmt.Sprintf("Int(%d)", n.Value)
}

func (n *Int) Accept(visitor Visitor) interface{} {
	return visitor.VisitInt(n)
}

// MarshalJSON encodes the node in its map form
func (n *Int) MarshalJSON() ([]byte, error) {
	return json.Marshal(ToMap(n))
}

func (n *Plus) String() string {
	return fmt.Sprintf("Plus(%s, %s)", n.Left, n.Right)
}

func (n *Plus) Accept(visitor Visitor) interface{} {
	return visitor.VisitPlus(n)
}

// MarshalJSON encodes the node in its map form
func (n *Plus) MarshalJSON() ([]byte, error) {
	return json.Marshal(ToMap(n))
}

// Equal compares two trees structurally
func Equal(a, b Exp) bool {
	switch x := a.(type) {
	case *Int:
		y, ok := b.(*Int)
		return ok && x != nil && y != nil && x.Value == y.Value
	case *Plus:
		y, ok := b.(*Plus)
		return ok && x != nil && y != nil && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	default:
		return a == nil && b == nil
	}
}
