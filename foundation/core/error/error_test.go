// File: error_test.go
// Title: Error Module Tests
// Description: Tests for error creation, wrapping, codes, severity and metadata.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with comprehensive test coverage
// - 2026-10-19 v0.2.0: Parser codes, testify assertions

package error

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New("test error message")
	require.NotNil(t, err)

	assert.Equal(t, "test error message", err.Error())
	assert.Equal(t, CodeUnknown, err.Code())
	assert.Equal(t, SeverityMedium, err.Severity())
	assert.False(t, err.Timestamp().IsZero())
	require.NotEmpty(t, err.StackTrace())
	assert.Contains(t, err.StackTrace()[0].Function, "TestNew")
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
		wantNil bool
		wantMsg string
	}{
		{name: "wrap nil error", err: nil, message: "context", wantNil: true},
		{name: "wrap standard error", err: errors.New("boom"), message: "context", wantMsg: "context: boom"},
		{name: "wrap foundation error", err: New("inner"), message: "outer", wantMsg: "outer: inner"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.err, tt.message)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantMsg, got.Error())
			assert.Same(t, tt.err, errors.Unwrap(got))
		})
	}
}

func TestWrap_PreservesClassification(t *testing.T) {
	inner := New("illegal character").
		WithCode(CodeLexical).
		WithDetail("offset", 3).
		WithRequestID("req-1")

	outer := Wrap(inner, "tokenize failed")

	assert.Equal(t, CodeLexical, outer.Code())
	assert.Equal(t, SeverityLow, outer.Severity())
	assert.Equal(t, 3, outer.Details()["offset"])
	assert.Equal(t, "req-1", outer.RequestID())
}

func TestWrap_TruncatesDeepChains(t *testing.T) {
	var err error = errors.New("root")
	for i := 0; i < MaxErrorChainDepth+5; i++ {
		err = Wrap(err, fmt.Sprintf("level %d", i))
	}

	mdwErr, ok := As(err)
	require.True(t, ok)
	assert.Less(t, chainDepth(mdwErr), MaxErrorChainDepth+1)
	assert.Contains(t, err.Error(), "chain truncated")
}

func TestWithCode_SetsSeverity(t *testing.T) {
	tests := []struct {
		code Code
		want Severity
	}{
		{CodeParseMismatch, SeverityLow},
		{CodeParseExhausted, SeverityLow},
		{CodeDatabaseError, SeverityHigh},
		{CodeServiceUnavailable, SeverityCritical},
		{CodeConfigError, SeverityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, New("x").WithCode(tt.code).Severity())
		})
	}
}

func TestWithCode_KeepsExplicitSeverity(t *testing.T) {
	err := New("x").WithSeverity(SeverityCritical).WithCode(CodeLexical)
	assert.Equal(t, SeverityCritical, err.Severity())
}

func TestHasCode_ThroughStandardWrapping(t *testing.T) {
	inner := New("out of tokens").WithCode(CodeParseExhausted)
	outer := fmt.Errorf("parse: %w", inner)

	assert.True(t, HasCode(outer, CodeParseExhausted))
	assert.False(t, HasCode(outer, CodeParseMismatch))
	assert.Equal(t, CodeParseExhausted, GetCode(outer))
	assert.Equal(t, CodeUnknown, GetCode(errors.New("plain")))
	assert.Equal(t, SeverityMedium, GetSeverity(errors.New("plain")))
}

func TestCode_Classification(t *testing.T) {
	assert.True(t, CodeParseMismatch.IsValid())
	assert.False(t, Code("NOPE").IsValid())
	assert.Equal(t, "expression", CodeLexical.Category())
	assert.Equal(t, "database", CodeDatabaseError.Category())
	assert.Equal(t, 400, CodeParseExhausted.HTTPStatus())
	assert.Equal(t, 422, CodeEvaluation.HTTPStatus())
	assert.Equal(t, 500, CodeInternal.HTTPStatus())
}

func TestError_String(t *testing.T) {
	err := New("bad token").
		WithCode(CodeParseMismatch).
		WithOperation("grammar.ExpressionP").
		WithDetail("b", 2).
		WithDetail("a", 1)

	s := err.String()
	assert.Contains(t, s, "Code: PARSE_MISMATCH")
	assert.Contains(t, s, "Operation: grammar.ExpressionP")
	assert.Contains(t, s, "Details: {a=1, b=2}")
	assert.Len(t, strings.Split(s, "\n"), 6)
}

func TestError_MarshalJSON(t *testing.T) {
	err := Wrap(errors.New("root"), "outer").
		WithCode(CodeEvaluation).
		WithRequestID("abc")

	data, marshalErr := json.Marshal(err)
	require.NoError(t, marshalErr)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "outer", decoded["message"])
	assert.Equal(t, "EVALUATION", decoded["code"])
	assert.Equal(t, "low", decoded["severity"])
	assert.Equal(t, "root", decoded["cause"])
	assert.Equal(t, "abc", decoded["request_id"])
}
