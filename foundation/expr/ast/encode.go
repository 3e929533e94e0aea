// File: encode.go
// Title: Expression AST Encoding
// Description: Conversion between trees and the generic map form shared by
//              the JSON, gRPC and storage layers.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package ast

import (
	"bytes"
	"encoding/json"
	"math"

	mdwerror "github.com/msto63/frege/foundation/core/error"
)

const (
	typeInt  = "int"
	typePlus = "plus"
)

// ToMap encodes e as {"type":"int","value":n} or
// {"type":"plus","left":...,"right":...}
func ToMap(e Exp) map[string]interface{} {
	switch n := e.(type) {
	case *Int:
		return map[string]interface{}{"type": typeInt, "value": n.Value}
	case *Plus:
		return map[string]interface{}{"type": typePlus, "left": ToMap(n.Left), "right": ToMap(n.Right)}
	default:
		return nil
	}
}

// FromMap decodes the map form. Numbers may arrive as any Go numeric type
// since JSON and structpb both decode them as float64.
func FromMap(m map[string]interface{}) (Exp, error) {
	if m == nil {
		return nil, invalid("missing node")
	}

	switch m["type"] {
	case typeInt:
		value, err := toInt64(m["value"])
		if err != nil {
			return nil, err
		}
		return NewInt(value), nil
	case typePlus:
		left, err := child(m, "left")
		if err != nil {
			return nil, err
		}
		right, err := child(m, "right")
		if err != nil {
			return nil, err
		}
		return NewPlus(left, right), nil
	default:
		return nil, invalid("unknown node type").WithDetail("type", m["type"])
	}
}

// Decode parses the JSON map form
func Decode(data []byte) (Exp, error) {
	var m map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return nil, mdwerror.Wrap(err, "decode expression").WithCode(mdwerror.CodeInvalidInput)
	}
	return FromMap(m)
}

func child(m map[string]interface{}, key string) (Exp, error) {
	sub, ok := m[key].(map[string]interface{})
	if !ok {
		return nil, invalid("missing child").WithDetail("child", key)
	}
	return FromMap(sub)
}

func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, invalid("value is not an int64").WithDetail("value", n)
		}
		return int64(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, invalid("value is not an int64").WithDetail("value", n.String())
		}
		return i, nil
	default:
		return 0, invalid("missing integer value")
	}
}

func invalid(message string) *mdwerror.Error {
	return mdwerror.New(message).
		WithCode(mdwerror.CodeInvalidInput).
		WithOperation("ast.FromMap")
}
