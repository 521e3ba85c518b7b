package httpserver

import (
	"net/http"

	"github.com/yndnr/evalboard/internal/server/httpserver/handler"
	"github.com/yndnr/evalboard/internal/telemetry/logger"
	"github.com/yndnr/evalboard/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Analyzer serves analysis requests.
	Analyzer handler.Analyzer

	Logger  logger.Logger
	Metrics *metric.Registry

	// CORSOrigins is the list of allowed origins (empty = allow all).
	CORSOrigins []string

	// RateLimit is the per-IP request rate on the analysis endpoints; zero
	// disables rate limiting.
	RateLimit float64
	RateBurst int
}

// NewRouter creates the HTTP router with all routes and middleware.
//
// Every route gets Recover -> RequestID -> AccessLog. The analysis
// endpoints add CORS and the per-IP rate limit.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	h := handler.New(cfg.Analyzer,
		handler.WithLogger(log),
		handler.WithMetrics(cfg.Metrics),
		handler.WithAllowedOrigins(cfg.CORSOrigins),
	)

	base := []Middleware{Recover(), RequestID(log), AccessLog(cfg.Metrics)}

	api := append([]Middleware{}, base...)
	api = append(api, CORS(cfg.CORSOrigins))
	if cfg.RateLimit > 0 {
		api = append(api, RateLimit(NewRateLimiterRegistry(cfg.RateLimit, cfg.RateBurst)))
	}

	mux := http.NewServeMux()

	mux.Handle("GET /health", Chain(h, base...))
	mux.Handle("GET /ready", Chain(h, base...))
	mux.Handle("GET /metrics", Chain(cfg.Metrics.Handler(), base...))

	mux.Handle("POST /analyze", Chain(h, api...))
	mux.Handle("OPTIONS /analyze", Chain(h, api...))
	mux.Handle("GET /ws", Chain(h, api...))

	return mux
}
