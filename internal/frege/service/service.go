package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	mdwerror "github.com/msto63/frege/foundation/core/error"
	"github.com/msto63/frege/foundation/expr"
	"github.com/msto63/frege/foundation/expr/ast"
	"github.com/msto63/frege/foundation/expr/grammar"
	"github.com/msto63/frege/foundation/expr/token"
	"github.com/msto63/frege/internal/frege/store"
	"github.com/msto63/frege/pkg/core/cache"
	"github.com/msto63/frege/pkg/core/config"
	"github.com/msto63/frege/pkg/core/logging"
	"github.com/msto63/frege/pkg/core/metrics"
)

// Request describes one parse or evaluate call
type Request struct {
	Source string `json:"source"`

	// Assoc is "right", "left" or empty for the configured default
	Assoc string `json:"assoc,omitempty"`

	// RequireComplete rejects leftover tokens. False keeps the configured default.
	RequireComplete bool `json:"require_complete,omitempty"`

	RequestID string `json:"request_id,omitempty"`
}

// Response is the result of a request. Grammar failures are responses with
// Success=false, not errors.
type Response struct {
	ID        string   `json:"id"`
	RequestID string   `json:"request_id,omitempty"`
	Source    string   `json:"source"`
	Assoc     string   `json:"assoc"`
	Success   bool     `json:"success"`
	Message   string   `json:"message,omitempty"`
	Reason    string   `json:"reason,omitempty"`
	Tokens    []string `json:"tokens"`
	AST       ast.Exp  `json:"ast,omitempty"`
	Printed   string   `json:"printed,omitempty"`
	Value     *int64   `json:"value,omitempty"`
	Remaining []string `json:"remaining"`
	Cached    bool     `json:"cached"`
	Duration  float64  `json:"duration_ms"`
}

// Config holds configuration for the service
type Config struct {
	Assoc           grammar.Assoc
	RequireComplete bool
	MaxInputLength  int

	CacheEnabled bool
	CacheSize    int
	CacheTTL     time.Duration

	EnablePersistence bool
	StorePath         string
	Retention         time.Duration
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Assoc:             grammar.AssocRight,
		MaxInputLength:    expr.DefaultMaxInputLength,
		CacheEnabled:      true,
		CacheSize:         1024,
		CacheTTL:          10 * time.Minute,
		EnablePersistence: false,
		StorePath:         store.DefaultSQLiteConfig().Path,
		Retention:         30 * 24 * time.Hour,
	}
}

// ConfigFrom derives the service configuration from the application config
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Assoc:             cfg.Assoc(),
		RequireComplete:   cfg.Grammar.RequireComplete,
		MaxInputLength:    cfg.Grammar.MaxInputLength,
		CacheEnabled:      cfg.Cache.Enabled,
		CacheSize:         cfg.Cache.MaxSize,
		CacheTTL:          cfg.Cache.TTL.Duration,
		EnablePersistence: cfg.Store.Enabled,
		StorePath:         cfg.Store.Path,
		Retention:         cfg.Store.Retention.Duration,
	}
}

// Option customizes a Service
type Option func(*Service)

// WithStore uses s instead of opening the configured SQLite database
func WithStore(s store.HistoryStore) Option {
	return func(svc *Service) { svc.store = s }
}

// WithMetrics records request metrics into m
func WithMetrics(m *metrics.Metrics) Option {
	return func(svc *Service) { svc.metrics = m }
}

// Metrics returns the registry requests are recorded into, or nil
func (s *Service) Metrics() *metrics.Metrics {
	return s.metrics
}

// WithLogger replaces the default service logger
func WithLogger(l *logging.Logger) Option {
	return func(svc *Service) { svc.logger = l }
}

// Service is the frege parser service
type Service struct {
	logger  *logging.Logger
	engine  *expr.Engine
	cache   *cache.Cache
	store   store.HistoryStore
	metrics *metrics.Metrics
	cfg     Config
}

// NewService creates a new parser service
func NewService(cfg Config, opts ...Option) (*Service, error) {
	svc := &Service{
		logger: logging.New("frege"),
		cfg:    cfg,
	}
	for _, opt := range opts {
		opt(svc)
	}

	engine, err := expr.NewEngine(expr.Options{
		Logger:          svc.logger.Base(),
		Assoc:           cfg.Assoc,
		RequireComplete: cfg.RequireComplete,
		MaxInputLength:  cfg.MaxInputLength,
	})
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to create expression engine").
			WithCode(mdwerror.CodeServiceInitialization).
			WithOperation("service.NewService")
	}
	svc.engine = engine

	if cfg.CacheEnabled {
		c, err := cache.New(cache.Config{MaxItems: cfg.CacheSize, TTL: cfg.CacheTTL})
		if err != nil {
			return nil, mdwerror.Wrap(err, "failed to create result cache").
				WithCode(mdwerror.CodeServiceInitialization).
				WithOperation("service.NewService")
		}
		svc.cache = c
		svc.metrics.TrackCacheEvictions(c.Evictions)
	}

	if svc.store == nil && cfg.EnablePersistence {
		historyStore, err := store.NewSQLiteHistoryStore(store.SQLiteConfig{Path: cfg.StorePath})
		if err != nil {
			return nil, mdwerror.Wrap(err, "failed to create history store").
				WithCode(mdwerror.CodeServiceInitialization).
				WithOperation("service.NewService")
		}
		svc.store = historyStore
		svc.logger.Info("History persistence enabled", "path", cfg.StorePath)
	}

	svc.logger.Debug("Service initialized",
		"assoc", cfg.Assoc.String(),
		"require_complete", cfg.RequireComplete,
		"cache", cfg.CacheEnabled,
		"history", svc.store != nil)

	return svc, nil
}

// Engine returns the underlying expression engine
func (s *Service) Engine() *expr.Engine {
	return s.engine
}

// Parse tokenizes and parses req.Source
func (s *Service) Parse(ctx context.Context, req Request) (*Response, error) {
	return s.handle(ctx, store.OperationParse, req)
}

// Evaluate parses req.Source and computes its value
func (s *Service) Evaluate(ctx context.Context, req Request) (*Response, error) {
	return s.handle(ctx, store.OperationEvaluate, req)
}

// History returns the most recent requests, newest first
func (s *Service) History(ctx context.Context, limit int) ([]*store.Entry, error) {
	if s.store == nil {
		return []*store.Entry{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, contextError(err, "service.History")
	}
	return s.store.Recent(ctx, limit)
}

// Prune drops history entries older than the configured retention
func (s *Service) Prune(ctx context.Context) (int64, error) {
	if s.store == nil || s.cfg.Retention <= 0 {
		return 0, nil
	}
	deleted, err := s.store.Prune(ctx, s.cfg.Retention)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("Pruned history", "deleted", deleted, "retention", s.cfg.Retention.String())
	}
	s.updateHistorySize(ctx)
	return deleted, nil
}

// RunMaintenance prunes the history and drops expired cache entries every
// interval until ctx is done
func (s *Service) RunMaintenance(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Prune(ctx); err != nil {
				s.logger.WarnWithErr("History pruning failed", err)
			}
			if s.cache != nil {
				if n := s.cache.Cleanup(); n > 0 {
					s.logger.Debug("Expired cache entries removed", "count", n)
				}
			}
		}
	}
}

// Close releases the history store
func (s *Service) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

func (s *Service) handle(ctx context.Context, op store.Operation, req Request) (*Response, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, contextError(err, "service."+string(op))
	}

	mode, err := s.mode(req)
	if err != nil {
		return nil, err
	}
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}

	key := cache.Key(string(op), mode.Assoc.String(), boolKey(mode.RequireComplete), req.Source)

	resp, cached := s.lookup(key)
	if !cached {
		resp, err = s.compute(op, req.Source, mode)
		if err != nil {
			s.metrics.ObserveRequest(string(op), mode.Assoc.String(), metrics.OutcomeError, time.Since(start))
			s.logger.Base().WithRequestID(req.RequestID).LogError(err)
			return nil, err
		}
		if s.cache != nil {
			s.cache.Set(key, *resp)
		}
	}

	resp.ID = uuid.New().String()
	resp.RequestID = req.RequestID
	resp.Cached = cached
	resp.Duration = float64(time.Since(start).Nanoseconds()) / 1e6

	s.metrics.ObserveRequest(string(op), resp.Assoc, outcomeLabel(resp), time.Since(start))
	s.record(ctx, op, resp)

	return resp, nil
}

func (s *Service) mode(req Request) (expr.Mode, error) {
	mode := s.engine.DefaultMode()
	if req.Assoc != "" {
		assoc, ok := grammar.ParseAssoc(req.Assoc)
		if !ok {
			return mode, mdwerror.Newf("unknown associativity %q", req.Assoc).
				WithCode(mdwerror.CodeInvalidInput).
				WithOperation("service.Parse").
				WithDetail("assoc", req.Assoc)
		}
		mode.Assoc = assoc
	}
	if req.RequireComplete {
		mode.RequireComplete = true
	}
	return mode, nil
}

func (s *Service) lookup(key string) (*Response, bool) {
	if s.cache == nil {
		return nil, false
	}
	if v, ok := s.cache.Get(key); ok {
		s.metrics.CacheHit()
		resp := v.(Response)
		return &resp, true
	}
	s.metrics.CacheMiss()
	return nil, false
}

// compute runs the engine. Grammar failures become unsuccessful responses;
// lexical, length and evaluation errors are returned.
func (s *Service) compute(op store.Operation, src string, mode expr.Mode) (*Response, error) {
	var outcome *expr.Outcome
	var value int64
	var err error

	if op == store.OperationEvaluate {
		var ev *expr.Evaluation
		ev, err = s.engine.EvaluateMode(src, mode)
		if ev != nil {
			outcome, value = ev.Outcome, ev.Value
		}
	} else {
		outcome, err = s.engine.ParseMode(src, mode)
	}

	if outcome == nil {
		return nil, err
	}

	resp := &Response{
		Source:    src,
		Assoc:     mode.Assoc.String(),
		Tokens:    tokenStrings(outcome.Tokens),
		Remaining: tokenStrings(outcome.Remaining),
	}
	s.metrics.ObserveTokens(outcome.Tokens.Len())

	if err != nil {
		if !isGrammarFailure(err) {
			return nil, err
		}
		mdwErr, _ := mdwerror.As(err)
		resp.Message = mdwErr.Message()
		resp.Reason = reasonFor(mdwErr.Code())
		if outcome.AST != nil && mdwErr.Code() == mdwerror.CodeIncompleteInput {
			resp.AST = outcome.AST
			resp.Printed = ast.Print(outcome.AST)
		}
		return resp, nil
	}

	resp.Success = true
	resp.AST = outcome.AST
	resp.Printed = ast.Print(outcome.AST)
	if op == store.OperationEvaluate {
		v := value
		resp.Value = &v
	}
	return resp, nil
}

func (s *Service) record(ctx context.Context, op store.Operation, resp *Response) {
	if s.store == nil {
		return
	}

	entry := &store.Entry{
		ID:        resp.ID,
		RequestID: resp.RequestID,
		Operation: op,
		Source:    resp.Source,
		Assoc:     resp.Assoc,
		Success:   resp.Success,
		Message:   resp.Message,
		Value:     resp.Value,
		Remaining: len(resp.Remaining),
		Duration:  resp.Duration,
	}
	if resp.AST != nil {
		if data, err := json.Marshal(resp.AST); err == nil {
			entry.AST = string(data)
		}
	}

	if err := s.store.Record(ctx, entry); err != nil {
		s.logger.Warn("Failed to record history", "error", err, "request_id", resp.RequestID)
		return
	}
	s.updateHistorySize(ctx)
}

func (s *Service) updateHistorySize(ctx context.Context) {
	if s.metrics == nil || s.store == nil {
		return
	}
	if n, err := s.store.Count(ctx); err == nil {
		s.metrics.SetHistorySize(n)
	}
}

func isGrammarFailure(err error) bool {
	switch mdwerror.GetCode(err) {
	case mdwerror.CodeParseMismatch, mdwerror.CodeParseExhausted, mdwerror.CodeIncompleteInput:
		return true
	}
	return false
}

func reasonFor(code mdwerror.Code) string {
	switch code {
	case mdwerror.CodeParseMismatch:
		return metrics.OutcomeMismatch
	case mdwerror.CodeParseExhausted:
		return metrics.OutcomeExhausted
	case mdwerror.CodeIncompleteInput:
		return metrics.OutcomeIncomplete
	}
	return ""
}

func outcomeLabel(resp *Response) string {
	if resp.Success {
		return metrics.OutcomeSuccess
	}
	return resp.Reason
}

func tokenStrings(s token.Stream) []string {
	toks := s.Tokens()
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.String()
	}
	return out
}

func boolKey(b bool) string {
	if b {
		return "complete"
	}
	return "prefix"
}

func contextError(err error, op string) *mdwerror.Error {
	code := mdwerror.CodeCanceled
	if errors.Is(err, context.DeadlineExceeded) {
		code = mdwerror.CodeTimeout
	}
	return mdwerror.Wrap(err, "request aborted").
		WithCode(code).
		WithOperation(op)
}
