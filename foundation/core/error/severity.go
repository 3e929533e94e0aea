// File: severity.go
// Title: Error Severity Levels
// Description: Severity classification for errors, used by the logger to pick
//              a log level and by services to decide whether to alert.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation
// - 2026-10-19 v0.2.0: Severity mapping for parser codes

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow indicates a minor error such as rejected user input
	SeverityLow Severity = iota

	// SeverityMedium indicates an error that affects functionality but has workarounds
	SeverityMedium

	// SeverityHigh indicates a serious error, e.g. the history store is unreachable
	SeverityHigh

	// SeverityCritical indicates the service cannot operate
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ShouldAlert returns true if this severity level should trigger alerts
func (s Severity) ShouldAlert() bool {
	return s >= SeverityHigh
}

// GetSeverityFromCode determines appropriate severity level based on error code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeServiceUnavailable:
		return SeverityCritical

	case CodeDatabaseError, CodeConnectionFailed, CodeServiceInitialization, CodeInternal:
		return SeverityHigh

	case CodeLexical, CodeParseMismatch, CodeParseExhausted, CodeIncompleteInput,
		CodeEvaluation, CodeInvalidInput, CodeNotFound, CodeValidationFailed,
		CodeInvalidLength, CodeCanceled:
		return SeverityLow

	default:
		return SeverityMedium
	}
}
