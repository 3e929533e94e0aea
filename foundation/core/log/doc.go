// Package log provides structured logging for the Frege platform.
//
// Package: log
// Title: Frege Structured Logging
// Description: Leveled, structured logger with JSON, text and console output.
//              Loggers are immutable values: every With* call returns a clone,
//              so a configured logger can be shared between goroutines and
//              specialised per request.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging
// - 2026-10-19 v0.2.0: Removed async buffering and user context
//
// Usage:
//   logger := log.New().WithName("frege-engine").WithFormat(log.FormatText)
//   logger.Info("expression parsed", log.Fields{"tokens": 5})
//
//   timer := logger.StartTimer("parse")
//   defer timer.Stop()
package log
