package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	mdwerror "github.com/msto63/frege/foundation/core/error"
	"github.com/msto63/frege/internal/frege/service"
	"github.com/msto63/frege/internal/frege/store"
	"github.com/msto63/frege/pkg/core/health"
	"github.com/msto63/frege/pkg/core/logging"
	"github.com/msto63/frege/pkg/core/metrics"
	"github.com/msto63/frege/pkg/core/version"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 1000
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HistoryResponse lists recent requests
type HistoryResponse struct {
	Entries []*store.Entry `json:"entries"`
	Total   int            `json:"total"`
}

// Handler serves the REST API
type Handler struct {
	service *service.Service
	health  *health.Registry
	metrics *metrics.Metrics
	logger  *logging.Logger
}

// NewHandler creates a new REST handler
func NewHandler(svc *service.Service, healthRegistry *health.Registry) *Handler {
	return &Handler{
		service: svc,
		health:  healthRegistry,
		metrics: svc.Metrics(),
		logger:  logging.New("frege-gateway"),
	}
}

// RegisterHandlers registers the api handlers for their respective routes.
// ws, when set, serves /api/v1/parse/ws.
func (h *Handler) RegisterHandlers(router chi.Router, ws http.Handler) {
	router.Get("/health", h.handleHealth)
	router.Get("/version", h.handleVersion)
	if h.metrics != nil {
		router.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/parse", h.handleParse)
		r.Post("/evaluate", h.handleEvaluate)
		r.Get("/history", h.handleHistory)
		if ws != nil {
			r.Method(http.MethodGet, "/parse/ws", ws)
		}
	})
}

func (h *Handler) handleParse(w http.ResponseWriter, r *http.Request) {
	h.handleRequest(w, r, h.service.Parse)
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	h.handleRequest(w, r, h.service.Evaluate)
}

type serviceCall func(ctx context.Context, req service.Request) (*service.Response, error)

func (h *Handler) handleRequest(w http.ResponseWriter, r *http.Request, call serviceCall) {
	limit := int64(h.service.Engine().MaxInputLength())*4 + 1024
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	var req service.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, mdwerror.Wrap(err, "invalid request body").
			WithCode(mdwerror.CodeInvalidInput))
		return
	}
	if req.RequestID == "" {
		req.RequestID = r.Header.Get(RequestIDHeader)
	}

	resp, err := call(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.writeError(w, mdwerror.Newf("invalid limit %q", raw).
				WithCode(mdwerror.CodeInvalidInput).
				WithDetail("limit", raw))
			return
		}
		limit = n
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	entries, err := h.service.History(r.Context(), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, HistoryResponse{Entries: entries, Total: len(entries)})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := h.health.Check(r.Context())
	status := http.StatusOK
	if !report.Serving() {
		status = http.StatusServiceUnavailable
		h.logger.Warn("Health check failed", "failing", report.Failing())
	}
	h.writeJSON(w, status, report)
}

func (h *Handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, version.Get())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to write JSON response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error(), Code: "internal"}
	status := http.StatusInternalServerError

	alert := true
	if mdwErr, ok := mdwerror.As(err); ok {
		status = mdwErr.Code().HTTPStatus()
		resp.Code = codeString(mdwErr.Code())
		resp.Details = mdwErr.Details()
		alert = mdwErr.Severity().ShouldAlert()
	}
	if alert || status >= http.StatusInternalServerError {
		h.logger.ErrorWithErr("Request failed", err)
	}
	h.writeJSON(w, status, resp)
}

func codeString(code mdwerror.Code) string {
	return strings.ToLower(string(code))
}
