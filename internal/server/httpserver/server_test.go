package httpserver

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yndnr/evalboard/internal/core/domain"
	"github.com/yndnr/evalboard/internal/telemetry/metric"
)

type stubAnalyzer struct {
	calls atomic.Int32
}

func (s *stubAnalyzer) Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error) {
	s.calls.Add(1)
	if req.Position.IsEmpty() {
		return domain.AnalysisResult{}, domain.ErrEmptyPosition
	}
	return domain.AnalysisResult{Evaluation: 0.2, BestMove: "e2e4", Depth: req.Depth}, nil
}

func (s *stubAnalyzer) EngineRunning() bool { return true }

func TestServer_ServeAndShutdown(t *testing.T) {
	s := New("127.0.0.1:0", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		t.Fatal(err)
	}
	errChan := make(chan error, 1)
	go func() { errChan <- s.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown error: %v", err)
	}

	select {
	case err := <-errChan:
		if err != nil {
			t.Errorf("Serve returned %v after shutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Error("timeout waiting for Serve to return")
	}
}

func newTestRouter(t *testing.T, cfg *RouterConfig) (*httptest.Server, *stubAnalyzer) {
	t.Helper()
	an := &stubAnalyzer{}
	cfg.Analyzer = an
	srv := httptest.NewServer(NewRouter(cfg))
	t.Cleanup(srv.Close)
	return srv, an
}

func TestRouter_Routes(t *testing.T) {
	reg := metric.NewRegistry()
	srv, _ := newTestRouter(t, &RouterConfig{Metrics: reg})

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{"GET", "/health", "", http.StatusOK},
		{"GET", "/ready", "", http.StatusOK},
		{"GET", "/metrics", "", http.StatusOK},
		{"POST", "/analyze", `{"position":"` + string(domain.StartPosition) + `"}`, http.StatusOK},
		{"GET", "/analyze", "", http.StatusMethodNotAllowed},
		{"GET", "/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, srv.URL+tt.path, strings.NewReader(tt.body))
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			if tt.want == http.StatusOK && resp.Header.Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID")
			}
		})
	}
}

func TestRouter_RateLimitOnAnalyze(t *testing.T) {
	srv, _ := newTestRouter(t, &RouterConfig{RateLimit: 0.001, RateBurst: 1})
	body := `{"fen":"` + string(domain.StartPosition) + `"}`

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		resp, err := http.Post(srv.URL+"/analyze", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("status codes = %v, want [200 429]", codes)
	}

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/health rate limited: %d", resp.StatusCode)
	}
}

func TestRouter_ChannelThroughMiddleware(t *testing.T) {
	reg := metric.NewRegistry()
	srv, an := newTestRouter(t, &RouterConfig{Metrics: reg, CORSOrigins: []string{"*"}})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]any{"position": domain.StartPosition, "depth": 12}); err != nil {
		t.Fatal(err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	var res domain.AnalysisResult
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatal(err)
	}
	if res.BestMove != "e2e4" || res.Depth != 12 || an.calls.Load() != 1 {
		t.Errorf("result = %+v, calls = %d", res, an.calls.Load())
	}
}
