package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yndnr/evalboard/internal/core/domain"
	"github.com/yndnr/evalboard/internal/telemetry/logger"
	"github.com/yndnr/evalboard/internal/telemetry/metric"
)

// Searcher runs engine searches.
type Searcher interface {
	Analyze(ctx context.Context, pos domain.Position, depth int) (domain.AnalysisResult, error)
	Running() bool
}

// ResultCache stores finished analyses by position.
type ResultCache interface {
	// Get returns an analysis of pos searched to at least depth.
	Get(ctx context.Context, pos domain.Position, depth int) (domain.AnalysisResult, bool, error)
	Put(ctx context.Context, pos domain.Position, res domain.AnalysisResult) error
}

// PositionValidator decodes a position and reports its game state.
type PositionValidator interface {
	Status(pos domain.Position) (domain.Status, error)
}

// AnalysisConfig bounds requested searches.
type AnalysisConfig struct {
	DefaultDepth int
	MaxDepth     int

	// SearchTimeout bounds one engine search; zero waits for the engine.
	SearchTimeout time.Duration
}

// AnalysisService answers analysis requests from the cache or the engine.
type AnalysisService struct {
	engine    Searcher
	validator PositionValidator
	cache     ResultCache
	cfg       AnalysisConfig
	metrics   *metric.Registry
	logger    logger.Logger
}

// AnalysisOption configures an AnalysisService.
type AnalysisOption func(*AnalysisService)

// WithCache enables result caching.
func WithCache(c ResultCache) AnalysisOption {
	return func(s *AnalysisService) { s.cache = c }
}

// WithMetrics sets the metrics registry.
func WithMetrics(m *metric.Registry) AnalysisOption {
	return func(s *AnalysisService) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) AnalysisOption {
	return func(s *AnalysisService) { s.logger = l }
}

// NewAnalysisService creates an AnalysisService.
func NewAnalysisService(engine Searcher, validator PositionValidator, cfg AnalysisConfig, opts ...AnalysisOption) *AnalysisService {
	if cfg.DefaultDepth <= 0 {
		cfg.DefaultDepth = domain.DefaultDepth
	}
	s := &AnalysisService{
		engine:    engine,
		validator: validator,
		cfg:       cfg,
		logger:    logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze evaluates req.Position.
func (s *AnalysisService) Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error) {
	// 1. Validate input
	if req.Position.IsEmpty() {
		return domain.AnalysisResult{}, domain.ErrEmptyPosition
	}
	depth, err := s.Depth(req.Depth)
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	if _, err := s.validator.Status(req.Position); err != nil {
		return domain.AnalysisResult{}, err
	}

	log := logger.L(ctx).With("position", req.Position.String(), "depth", depth)

	// 2. Serve from cache
	if s.cache != nil {
		res, ok, err := s.cache.Get(ctx, req.Position, depth)
		if err != nil {
			log.Warn("cache lookup failed", "error", err)
		}
		s.metrics.RecordCacheLookup(ok)
		if ok {
			log.Debug("cache hit", "cached_depth", res.Depth)
			return res, nil
		}
	}

	// 3. Search
	searchCtx := ctx
	if s.cfg.SearchTimeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, s.cfg.SearchTimeout)
		defer cancel()
	}
	res, err := s.engine.Analyze(searchCtx, req.Position, depth)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	// 4. Store
	if s.cache != nil {
		if err := s.cache.Put(ctx, req.Position, res); err != nil {
			log.Warn("cache store failed", "error", err)
		}
	}
	return res, nil
}

// Depth resolves a requested depth: zero selects the default and values
// above the maximum are clamped.
func (s *AnalysisService) Depth(requested int) (int, error) {
	switch {
	case requested < 0:
		return 0, domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("depth must not be negative, got %d", requested))
	case requested == 0:
		requested = s.cfg.DefaultDepth
	}
	if s.cfg.MaxDepth > 0 && requested > s.cfg.MaxDepth {
		requested = s.cfg.MaxDepth
	}
	return requested, nil
}

// EngineRunning reports whether the engine process is alive.
func (s *AnalysisService) EngineRunning() bool {
	return s.engine.Running()
}
