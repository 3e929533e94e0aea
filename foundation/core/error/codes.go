// File: codes.go
// Title: Error Code Definitions
// Description: Defines standardized error codes for consistent error classification
//              across the Frege services. Parser specific codes distinguish lexical
//              errors, grammar mismatches and token exhaustion.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with core error codes
// - 2026-10-19 v0.2.0: Replaced TCOL codes with expression parser codes

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeTimeout      Code = "TIMEOUT"
	CodeCanceled     Code = "CANCELED"

	// Storage
	CodeDatabaseError    Code = "DATABASE_ERROR"
	CodeConnectionFailed Code = "CONNECTION_FAILED"

	// Service and network
	CodeServiceUnavailable    Code = "SERVICE_UNAVAILABLE"
	CodeNetworkError          Code = "NETWORK_ERROR"
	CodeServiceInitialization Code = "SERVICE_INITIALIZATION"

	// Expression parsing
	CodeLexical         Code = "LEXICAL"
	CodeParseMismatch   Code = "PARSE_MISMATCH"
	CodeParseExhausted  Code = "PARSE_EXHAUSTED"
	CodeIncompleteInput Code = "INCOMPLETE_INPUT"
	CodeEvaluation      Code = "EVALUATION"

	// Configuration
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeMissingConfig Code = "MISSING_CONFIG"
	CodeInvalidConfig Code = "INVALID_CONFIG"

	// Validation
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodeInvalidLength    Code = "INVALID_LENGTH"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsValid checks if the error code is a known valid code
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeNotFound, CodeInvalidInput, CodeTimeout, CodeCanceled,
		CodeDatabaseError, CodeConnectionFailed,
		CodeServiceUnavailable, CodeNetworkError, CodeServiceInitialization,
		CodeLexical, CodeParseMismatch, CodeParseExhausted, CodeIncompleteInput, CodeEvaluation,
		CodeConfigError, CodeMissingConfig, CodeInvalidConfig,
		CodeValidationFailed, CodeInvalidLength:
		return true
	default:
		return false
	}
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeDatabaseError, CodeConnectionFailed:
		return "database"
	case CodeServiceUnavailable, CodeNetworkError, CodeServiceInitialization:
		return "service"
	case CodeLexical, CodeParseMismatch, CodeParseExhausted, CodeIncompleteInput, CodeEvaluation:
		return "expression"
	case CodeConfigError, CodeMissingConfig, CodeInvalidConfig:
		return "configuration"
	case CodeValidationFailed, CodeInvalidLength:
		return "validation"
	default:
		return "generic"
	}
}

// HTTPStatus returns the appropriate HTTP status code for this error code
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return 404
	case CodeInvalidInput, CodeValidationFailed, CodeInvalidLength,
		CodeLexical, CodeParseMismatch, CodeParseExhausted, CodeIncompleteInput:
		return 400
	case CodeEvaluation:
		return 422
	case CodeTimeout:
		return 408
	case CodeCanceled:
		return 499
	case CodeServiceUnavailable, CodeDatabaseError, CodeConnectionFailed:
		return 503
	default:
		return 500
	}
}
