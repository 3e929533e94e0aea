// Package error provides structured error handling for the Frege parser platform.
//
// Package: error
// Title: Frege Error Handling Framework
// Description: Structured errors with codes, severity, details and stack traces.
//              Lexical and grammar failures surfaced by the expression engine are
//              reported through this package so services can map them to
//              transport status codes consistently.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors and codes
// - 2026-10-19 v0.2.0: Parser codes, dropped localization fields
//
// Usage:
//   import mdwerror "github.com/msto63/frege/foundation/core/error"
//
//   err := mdwerror.New("illegal character '*'").
//     WithCode(mdwerror.CodeLexical).
//     WithDetail("offset", 4)
//
//   if mdwerror.HasCode(err, mdwerror.CodeLexical) {
//     // reject the input before parsing
//   }
package error
