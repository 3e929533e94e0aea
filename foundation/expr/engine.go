// File: engine.go
// Title: Expression Engine
// Description: Tokenizes, parses and evaluates expressions with configurable
//              associativity and consumption checks.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package expr

import (
	"strings"
	"time"

	mdwerror "github.com/msto63/frege/foundation/core/error"
	mdwlog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/foundation/expr/ast"
	"github.com/msto63/frege/foundation/expr/combinator"
	"github.com/msto63/frege/foundation/expr/grammar"
	"github.com/msto63/frege/foundation/expr/token"
)

// DefaultMaxInputLength bounds the source length accepted by the engine
const DefaultMaxInputLength = 4096

// Engine parses and evaluates expressions. It is safe for concurrent use.
type Engine struct {
	logger  *mdwlog.Logger
	options Options
	parsers map[grammar.Assoc]combinator.Parser[ast.Exp]
}

// Options configures the engine
type Options struct {
	Logger          *mdwlog.Logger
	Assoc           grammar.Assoc
	RequireComplete bool
	MaxInputLength  int
}

// Mode controls a single parse
type Mode struct {
	Assoc           grammar.Assoc
	RequireComplete bool
}

// Outcome is the full record of one parse
type Outcome struct {
	Source    string
	Mode      Mode
	Tokens    token.Stream
	Result    combinator.Result[ast.Exp]
	AST       ast.Exp
	Remaining token.Stream
	Duration  time.Duration
}

// Success reports whether the grammar accepted the input
func (o *Outcome) Success() bool {
	return o.Result.IsSuccess()
}

// Complete reports whether the parse succeeded and consumed every token
func (o *Outcome) Complete() bool {
	return grammar.Complete(o.Result)
}

// Evaluation is an outcome together with the computed value
type Evaluation struct {
	*Outcome
	Value int64
}

// NewEngine creates a new expression engine
func NewEngine(opts Options) (*Engine, error) {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	if opts.MaxInputLength == 0 {
		opts.MaxInputLength = DefaultMaxInputLength
	}
	if opts.MaxInputLength < 0 {
		return nil, mdwerror.Newf("max input length must be positive, got %d", opts.MaxInputLength).
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("expr.NewEngine")
	}

	logger := opts.Logger.WithField("component", "expr-engine")

	engine := &Engine{
		logger:  logger,
		options: opts,
		parsers: map[grammar.Assoc]combinator.Parser[ast.Exp]{
			grammar.AssocRight: grammar.ForAssociativity(grammar.AssocRight),
			grammar.AssocLeft:  grammar.ForAssociativity(grammar.AssocLeft),
		},
	}

	logger.Debug("Expression engine initialized", mdwlog.Fields{
		"assoc":           opts.Assoc.String(),
		"requireComplete": opts.RequireComplete,
		"maxInputLength":  opts.MaxInputLength,
	})

	return engine, nil
}

// DefaultMode returns the mode configured through Options
func (e *Engine) DefaultMode() Mode {
	return Mode{Assoc: e.options.Assoc, RequireComplete: e.options.RequireComplete}
}

// MaxInputLength returns the configured source length limit
func (e *Engine) MaxInputLength() int {
	return e.options.MaxInputLength
}

// Tokenize validates the source length and runs the lexer
func (e *Engine) Tokenize(src string) (token.Stream, error) {
	if len(src) > e.options.MaxInputLength {
		return token.Stream{}, mdwerror.Newf("input too long: %d bytes (max %d)", len(src), e.options.MaxInputLength).
			WithCode(mdwerror.CodeInvalidLength).
			WithOperation("expr.Tokenize").
			WithDetail("length", len(src)).
			WithDetail("max", e.options.MaxInputLength)
	}
	return token.Tokenize(src)
}

// Parse parses src with the default mode
func (e *Engine) Parse(src string) (*Outcome, error) {
	return e.ParseMode(src, e.DefaultMode())
}

// ParseMode parses src. Grammar failures return the outcome together with an
// error carrying CodeParseMismatch or CodeParseExhausted.
func (e *Engine) ParseMode(src string, mode Mode) (*Outcome, error) {
	timer := e.logger.StartTimer("parse").WithLevel(mdwlog.LevelTrace)

	toks, err := e.Tokenize(src)
	if err != nil {
		timer.StopWithError(err)
		return nil, err
	}

	parser, ok := e.parsers[mode.Assoc]
	if !ok {
		parser = e.parsers[grammar.AssocRight]
	}

	result := combinator.Run(parser, toks)
	outcome := &Outcome{
		Source:    src,
		Mode:      mode,
		Tokens:    toks,
		Result:    result,
		Remaining: result.Remaining(),
	}
	if result.IsSuccess() {
		outcome.AST = result.Value()
	}

	err = e.check(outcome)
	outcome.Duration = timer.WithField("tokens", toks.Len()).StopWithError(err)
	return outcome, err
}

func (e *Engine) check(o *Outcome) error {
	if !o.Result.IsSuccess() {
		code := mdwerror.CodeParseMismatch
		if o.Result.Reason() == combinator.ReasonExhausted {
			code = mdwerror.CodeParseExhausted
		}
		return mdwerror.New(o.Result.Message()).
			WithCode(code).
			WithOperation("expr.Parse").
			WithDetails(map[string]interface{}{
				"reason": o.Result.Reason().String(),
				"assoc":  o.Mode.Assoc.String(),
			})
	}

	if o.Mode.RequireComplete && !o.Remaining.Empty() {
		offset := -1
		if next, ok := o.Remaining.Head(); ok {
			offset = next.Pos
		}
		return mdwerror.Newf("unexpected %s after expression", describeRemaining(o.Remaining)).
			WithCode(mdwerror.CodeIncompleteInput).
			WithOperation("expr.Parse").
			WithDetail("remaining", o.Remaining.Len()).
			WithDetail("offset", offset)
	}
	return nil
}

// Evaluate parses src with the default mode and computes its value
func (e *Engine) Evaluate(src string) (*Evaluation, error) {
	return e.EvaluateMode(src, e.DefaultMode())
}

// EvaluateMode parses src with mode and computes its value
func (e *Engine) EvaluateMode(src string, mode Mode) (*Evaluation, error) {
	outcome, err := e.ParseMode(src, mode)
	if err != nil {
		return &Evaluation{Outcome: outcome}, err
	}

	value, err := ast.Evaluate(outcome.AST)
	if err != nil {
		e.logger.Debug("Evaluation failed", mdwlog.Fields{"source": src, "error": err})
		return &Evaluation{Outcome: outcome}, err
	}
	e.logger.Trace("Evaluated", mdwlog.Fields{"source": src, "value": value})
	return &Evaluation{Outcome: outcome, Value: value}, nil
}

func describeRemaining(s token.Stream) string {
	toks := s.Tokens()
	if len(toks) > 3 {
		toks = toks[:3]
	}
	parts := make([]string, 0, len(toks))
	for _, t := range toks {
		parts = append(parts, t.String())
	}
	text := strings.Join(parts, " ")
	if s.Len() > 3 {
		text += " ..."
	}
	return "'" + text + "'"
}
