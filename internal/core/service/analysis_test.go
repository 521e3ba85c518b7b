package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/evalboard/internal/core/domain"
	"github.com/yndnr/evalboard/internal/core/rules"
	"github.com/yndnr/evalboard/internal/telemetry/metric"
)

type mockSearcher struct {
	mu     sync.Mutex
	calls  []int
	result domain.AnalysisResult
	err    error
}

func (m *mockSearcher) Analyze(ctx context.Context, pos domain.Position, depth int) (domain.AnalysisResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, depth)
	if m.err != nil {
		return domain.AnalysisResult{}, m.err
	}
	res := m.result
	res.Depth = depth
	return res, nil
}

func (m *mockSearcher) Running() bool { return true }

func (m *mockSearcher) depths() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.calls...)
}

type mockCache struct {
	entries map[domain.Position]domain.AnalysisResult
	getErr  error
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[domain.Position]domain.AnalysisResult)}
}

func (m *mockCache) Get(ctx context.Context, pos domain.Position, depth int) (domain.AnalysisResult, bool, error) {
	if m.getErr != nil {
		return domain.AnalysisResult{}, false, m.getErr
	}
	res, ok := m.entries[pos]
	if !ok || res.Depth < depth {
		return domain.AnalysisResult{}, false, nil
	}
	return res, true, nil
}

func (m *mockCache) Put(ctx context.Context, pos domain.Position, res domain.AnalysisResult) error {
	m.entries[pos] = res
	return nil
}

func newTestService(engine Searcher, opts ...AnalysisOption) *AnalysisService {
	return NewAnalysisService(engine, rules.New(), AnalysisConfig{DefaultDepth: 20, MaxDepth: 30}, opts...)
}

func TestAnalysisService_Depth(t *testing.T) {
	svc := newTestService(&mockSearcher{})

	tests := []struct {
		in      int
		want    int
		wantErr bool
	}{
		{0, 20, false},
		{12, 12, false},
		{30, 30, false},
		{99, 30, false},
		{-1, 0, true},
	}
	for _, tt := range tests {
		got, err := svc.Depth(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Depth(%d) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Depth(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestAnalysisService_Analyze(t *testing.T) {
	eng := &mockSearcher{result: domain.AnalysisResult{Evaluation: 0.3, BestMove: "e2e4"}}
	svc := newTestService(eng)

	res, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Position: domain.StartPosition})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if res.BestMove != "e2e4" || res.Depth != 20 {
		t.Errorf("Analyze() = %+v", res)
	}
}

func TestAnalysisService_InvalidInput(t *testing.T) {
	eng := &mockSearcher{}
	svc := newTestService(eng)
	ctx := context.Background()

	tests := []struct {
		name string
		req  domain.AnalysisRequest
		want error
	}{
		{"empty position", domain.AnalysisRequest{}, domain.ErrEmptyPosition},
		{"garbage position", domain.AnalysisRequest{Position: "not a fen"}, domain.ErrInvalidPosition},
		{"negative depth", domain.AnalysisRequest{Position: domain.StartPosition, Depth: -3}, domain.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Analyze(ctx, tt.req); !errors.Is(err, tt.want) {
				t.Errorf("Analyze() error = %v, want %v", err, tt.want)
			}
		})
	}
	if n := len(eng.depths()); n != 0 {
		t.Errorf("engine called %d times for invalid input", n)
	}
}

func TestAnalysisService_Cache(t *testing.T) {
	eng := &mockSearcher{result: domain.AnalysisResult{BestMove: "d2d4"}}
	cache := newMockCache()
	reg := metric.NewRegistry()
	svc := newTestService(eng, WithCache(cache), WithMetrics(reg))
	ctx := context.Background()
	req := domain.AnalysisRequest{Position: domain.StartPosition, Depth: 18}

	if _, err := svc.Analyze(ctx, req); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Analyze(ctx, req); err != nil {
		t.Fatal(err)
	}
	req.Depth = 10
	if _, err := svc.Analyze(ctx, req); err != nil {
		t.Fatal(err)
	}
	req.Depth = 25
	if _, err := svc.Analyze(ctx, req); err != nil {
		t.Fatal(err)
	}

	got := eng.depths()
	if len(got) != 2 || got[0] != 18 || got[1] != 25 {
		t.Errorf("engine depths = %v, want [18 25]", got)
	}
	if hits := testutil.ToFloat64(reg.CacheLookups.WithLabelValues("hit")); hits != 2 {
		t.Errorf("cache hits = %v, want 2", hits)
	}
	if misses := testutil.ToFloat64(reg.CacheLookups.WithLabelValues("miss")); misses != 2 {
		t.Errorf("cache misses = %v, want 2", misses)
	}
}

func TestAnalysisService_CacheErrorFallsThrough(t *testing.T) {
	eng := &mockSearcher{result: domain.AnalysisResult{BestMove: "c2c4"}}
	cache := newMockCache()
	cache.getErr = errors.New("disk on fire")
	svc := newTestService(eng, WithCache(cache))

	res, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Position: domain.StartPosition})
	if err != nil || res.BestMove != "c2c4" {
		t.Errorf("Analyze() = %+v, %v", res, err)
	}
}

func TestAnalysisService_EngineError(t *testing.T) {
	eng := &mockSearcher{err: domain.ErrEngineUnavailable}
	svc := newTestService(eng)

	_, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Position: domain.StartPosition})
	if !errors.Is(err, domain.ErrEngineUnavailable) {
		t.Errorf("error = %v, want ErrEngineUnavailable", err)
	}
	if !svc.EngineRunning() {
		t.Error("EngineRunning() = false")
	}
}

type blockingSearcher struct{}

func (blockingSearcher) Analyze(ctx context.Context, pos domain.Position, depth int) (domain.AnalysisResult, error) {
	<-ctx.Done()
	return domain.AnalysisResult{}, domain.ErrEngine.WithCause(ctx.Err())
}

func (blockingSearcher) Running() bool { return true }

func TestAnalysisService_SearchTimeout(t *testing.T) {
	svc := NewAnalysisService(blockingSearcher{}, rules.New(), AnalysisConfig{SearchTimeout: 20 * time.Millisecond})

	_, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Position: domain.StartPosition})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
}
