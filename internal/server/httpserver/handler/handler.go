package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/yndnr/evalboard/internal/core/domain"
	"github.com/yndnr/evalboard/internal/telemetry/logger"
	"github.com/yndnr/evalboard/internal/telemetry/metric"
)

// maxBodyBytes bounds request bodies and channel messages.
const maxBodyBytes = 64 << 10

// Analyzer answers analysis requests.
type Analyzer interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error)
	EngineRunning() bool
}

// Handler serves the analysis API.
type Handler struct {
	svc      Analyzer
	logger   logger.Logger
	metrics  *metric.Registry
	upgrader websocket.Upgrader
	mux      *http.ServeMux
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// WithMetrics sets the metrics registry.
func WithMetrics(m *metric.Registry) Option {
	return func(h *Handler) { h.metrics = m }
}

// WithAllowedOrigins restricts duplex channel upgrades to the given
// origins. "*" or an empty list allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(h *Handler) { h.upgrader.CheckOrigin = originChecker(origins) }
}

// New creates a Handler.
func New(svc Analyzer, opts ...Option) *Handler {
	h := &Handler{
		svc:    svc,
		logger: logger.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(nil),
		},
		mux: http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)
	h.mux.HandleFunc("POST /analyze", h.handleAnalyze)
	h.mux.HandleFunc("GET /ws", h.handleChannel)
}

// writeJSON writes a JSON response.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError converts a service error into an HTTP response.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorBody(err)
	if status >= 500 {
		logger.L(r.Context()).Error("request failed", "error", err)
	}
	w.Header().Set("X-Error-Code", body.Code)
	h.writeJSON(w, status, body)
}

// errorBody maps an error to a status code and error object.
func errorBody(err error) (int, ErrorResponse) {
	de, ok := domain.AsDomainError(err)
	if !ok {
		return http.StatusInternalServerError, ErrorResponse{Code: "EB-SYS-5000", Message: "internal server error"}
	}
	msg := de.Message
	if de.Details != "" {
		msg += ": " + de.Details
	}
	return de.Status(), ErrorResponse{Code: de.Code, Message: msg}
}

func originChecker(origins []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(origins) == 0 {
			return true
		}
		for _, o := range origins {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}
