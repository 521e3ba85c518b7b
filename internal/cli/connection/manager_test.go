package connection

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/evalboard/internal/core/domain"
	"github.com/yndnr/evalboard/internal/telemetry/metric"
)

const afterE4 = domain.Position("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")

// resultSink collects results delivered to the manager callback.
type resultSink struct {
	mu      sync.Mutex
	results []domain.AnalysisResult
	notify  chan struct{}
}

func newResultSink() *resultSink {
	return &resultSink{notify: make(chan struct{}, 16)}
}

func (s *resultSink) onAnalysis(r domain.AnalysisResult) {
	s.mu.Lock()
	s.results = append(s.results, r)
	s.mu.Unlock()
	s.notify <- struct{}{}
}

func (s *resultSink) wait(t *testing.T) domain.AnalysisResult {
	t.Helper()
	select {
	case <-s.notify:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for analysis result")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results[len(s.results)-1]
}

func (s *resultSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// manualClock records scheduled reconnections instead of running them.
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	d       time.Duration
	f       func()
	stopped atomic.Bool
}

func (t *manualTimer) Stop() bool {
	return !t.stopped.Swap(true)
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// fireLast runs the most recent timer unless it was stopped.
func (c *manualClock) fireLast() bool {
	c.mu.Lock()
	t := c.timers[len(c.timers)-1]
	c.mu.Unlock()
	if t.stopped.Load() {
		return false
	}
	t.f()
	return true
}

// failingDialer never connects.
type failingDialer struct {
	calls atomic.Int32
}

func (d *failingDialer) Dial(context.Context, string) (Conn, error) {
	d.calls.Add(1)
	return nil, errors.New("connection refused")
}

// fakeConn is an in-memory channel controlled by the test.
type fakeConn struct {
	mu       sync.Mutex
	writes   []any
	writeErr error

	reads     chan fakeRead
	closed    chan struct{}
	closeOnce sync.Once
}

type fakeRead struct {
	data []byte
	err  error
}

func newFakeConn() *fakeConn {
	return &fakeConn{reads: make(chan fakeRead, 8), closed: make(chan struct{})}
}

func (c *fakeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.writes = append(c.writes, v)
	return nil
}

func (c *fakeConn) WriteMessage(int, []byte) error { return nil }

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case r := <-c.reads:
		if r.err != nil {
			return 0, nil, r.err
		}
		return websocket.TextMessage, r.data, nil
	case <-c.closed:
		return 0, nil, errors.New("use of closed network connection")
	}
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) writeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.writes)
}

// connDialer hands out fresh fakeConns.
type connDialer struct {
	mu    sync.Mutex
	conns []*fakeConn
}

func (d *connDialer) Dial(context.Context, string) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c := newFakeConn()
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *connDialer) last() *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[len(d.conns)-1]
}

func waitForState(t *testing.T, m *Manager, want domain.ConnectionState) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if m.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("State() = %s, want %s", m.State(), want)
}

// analysisServer serves both the duplex channel and the fallback endpoint.
type analysisServer struct {
	*httptest.Server
	fallbackCalls atomic.Int32
	channelMsgs   chan map[string]any
}

func newAnalysisServer(t *testing.T, reply string) *analysisServer {
	t.Helper()
	s := &analysisServer{channelMsgs: make(chan map[string]any, 8)}
	upgrader := websocket.Upgrader{}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var msg map[string]any
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			s.channelMsgs <- msg
			if err := conn.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
				return
			}
		}
	})
	mux.HandleFunc("/analyze", func(w http.ResponseWriter, r *http.Request) {
		s.fallbackCalls.Add(1)
		w.Write([]byte(reply))
	})

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func TestNewManager_Defaults(t *testing.T) {
	m := NewManager(Config{}, nil)
	if m.State() != domain.StateDisconnected {
		t.Errorf("State() = %s, want disconnected", m.State())
	}
	if m.cfg.MaxReconnectAttempts != DefaultMaxReconnectAttempts {
		t.Errorf("MaxReconnectAttempts = %d, want %d", m.cfg.MaxReconnectAttempts, DefaultMaxReconnectAttempts)
	}
	if off := NewManager(Config{MaxReconnectAttempts: NoReconnect}, nil); off.cfg.MaxReconnectAttempts != 0 {
		t.Errorf("NoReconnect stored as %d, want 0 attempts", off.cfg.MaxReconnectAttempts)
	}
	if m.cfg.ReconnectDelay != 2*time.Second {
		t.Errorf("ReconnectDelay = %v, want 2s", m.cfg.ReconnectDelay)
	}
	if m.cfg.Depth != domain.DefaultDepth {
		t.Errorf("Depth = %d, want %d", m.cfg.Depth, domain.DefaultDepth)
	}

	d := DefaultConfig()
	if d.MaxReconnectAttempts != 5 || d.ReconnectDelay != 2000*time.Millisecond {
		t.Errorf("DefaultConfig() reconnect = %d/%v", d.MaxReconnectAttempts, d.ReconnectDelay)
	}
}

func TestManager_ConnectedAnalyzeUsesChannel(t *testing.T) {
	srv := newAnalysisServer(t, `{"evaluation":0.0,"is_mate":false,"mate_in":0,"best_move":"e2e4"}`)
	sink := newResultSink()
	reg := metric.NewRegistry()

	cfg := DefaultConfig()
	cfg.Server = srv.URL
	m := NewManager(cfg, sink.onAnalysis, WithMetrics(reg))
	defer m.Close()

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if m.State() != domain.StateConnected {
		t.Fatalf("State() = %s, want connected", m.State())
	}

	if err := m.Analyze(context.Background(), domain.StartPosition); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	got := sink.wait(t)
	want := domain.AnalysisResult{Evaluation: 0, IsMate: false, MateIn: 0, BestMove: "e2e4"}
	if got.Evaluation != want.Evaluation || got.IsMate != want.IsMate ||
		got.MateIn != want.MateIn || got.BestMove != want.BestMove {
		t.Errorf("result = %+v, want %+v", got, want)
	}

	msg := <-srv.channelMsgs
	if msg["position"] != string(domain.StartPosition) {
		t.Errorf("channel position = %v", msg["position"])
	}
	if _, ok := msg["depth"]; ok {
		t.Error("channel message must not carry depth")
	}

	if n := srv.fallbackCalls.Load(); n != 0 {
		t.Errorf("fallback calls = %d, want 0", n)
	}
	if got := testutil.ToFloat64(reg.AnalyzeRequests.WithLabelValues("channel")); got != 1 {
		t.Errorf("channel requests metric = %v, want 1", got)
	}
}

func TestManager_DisconnectedAnalyzeUsesFallback(t *testing.T) {
	srv := newAnalysisServer(t, `{"evaluation":0.25,"is_mate":false,"mate_in":0,"best_move":"d2d4"}`)
	sink := newResultSink()

	cfg := DefaultConfig()
	cfg.Server = srv.URL
	m := NewManager(cfg, sink.onAnalysis)
	defer m.Close()

	for i := 0; i < 3; i++ {
		if err := m.Analyze(context.Background(), domain.StartPosition); err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		if got := sink.wait(t); got.BestMove != "d2d4" {
			t.Errorf("BestMove = %q, want d2d4", got.BestMove)
		}
	}
	if n := srv.fallbackCalls.Load(); n != 3 {
		t.Errorf("fallback calls = %d, want 3", n)
	}
}

func TestManager_AnalyzeEmptyPosition(t *testing.T) {
	m := NewManager(DefaultConfig(), nil)
	if err := m.Analyze(context.Background(), ""); !errors.Is(err, domain.ErrEmptyPosition) {
		t.Errorf("Analyze() error = %v, want ErrEmptyPosition", err)
	}
}

func TestManager_ReconnectionIsBounded(t *testing.T) {
	clock := &manualClock{}
	dialer := &failingDialer{}

	cfg := DefaultConfig()
	m := NewManager(cfg, nil, WithDialer(dialer), WithTimerFunc(clock.AfterFunc))
	defer m.Close()

	if err := m.Connect(context.Background()); !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("Connect() error = %v, want ErrTransport", err)
	}

	for i := 1; i <= 5; i++ {
		if m.State() != domain.StateReconnecting {
			t.Fatalf("after failure %d: State() = %s, want reconnecting", i, m.State())
		}
		if m.Attempts() != i {
			t.Fatalf("after failure %d: Attempts() = %d", i, m.Attempts())
		}
		if clock.count() != i {
			t.Fatalf("after failure %d: timers = %d", i, clock.count())
		}
		if clock.timers[i-1].d != 2*time.Second {
			t.Errorf("timer delay = %v, want 2s", clock.timers[i-1].d)
		}
		if !clock.fireLast() {
			t.Fatalf("timer %d was stopped", i)
		}
	}

	if m.State() != domain.StateFailedOver {
		t.Fatalf("State() = %s, want failed_over", m.State())
	}
	if clock.count() != 5 {
		t.Errorf("timers scheduled = %d, want 5", clock.count())
	}
	if n := dialer.calls.Load(); n != 6 {
		t.Errorf("dial attempts = %d, want 6", n)
	}
}

func TestManager_FailedOverUsesFallbackUntilConnect(t *testing.T) {
	srv := newAnalysisServer(t, `{"evaluation":1.0,"is_mate":false,"mate_in":0,"best_move":"g1f3"}`)
	sink := newResultSink()
	clock := &manualClock{}

	cfg := DefaultConfig()
	cfg.Server = srv.URL
	cfg.MaxReconnectAttempts = NoReconnect
	m := NewManager(cfg, sink.onAnalysis, WithDialer(&failingDialer{}), WithTimerFunc(clock.AfterFunc))
	defer m.Close()

	_ = m.Connect(context.Background())
	if m.State() != domain.StateFailedOver {
		t.Fatalf("State() = %s, want failed_over", m.State())
	}
	if clock.count() != 0 {
		t.Errorf("timers = %d, want 0", clock.count())
	}

	if err := m.Analyze(context.Background(), afterE4); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	sink.wait(t)
	if n := srv.fallbackCalls.Load(); n != 1 {
		t.Errorf("fallback calls = %d, want 1", n)
	}
}

func TestManager_SuccessfulConnectResetsAttempts(t *testing.T) {
	clock := &manualClock{}
	dialer := &connDialer{}

	m := NewManager(DefaultConfig(), nil, WithDialer(dialer), WithTimerFunc(clock.AfterFunc))
	defer m.Close()

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	// Close the channel repeatedly; every reconnect succeeds.
	for i := 1; i <= 8; i++ {
		dialer.last().reads <- fakeRead{err: &websocket.CloseError{Code: websocket.CloseAbnormalClosure}}
		waitForState(t, m, domain.StateReconnecting)
		if m.Attempts() != 1 {
			t.Fatalf("closure %d: Attempts() = %d, want 1", i, m.Attempts())
		}
		clock.fireLast()
		if m.State() != domain.StateConnected {
			t.Fatalf("closure %d: State() = %s, want connected", i, m.State())
		}
		if m.Attempts() != 0 {
			t.Fatalf("closure %d: Attempts() = %d, want 0 after connect", i, m.Attempts())
		}
	}
}

func TestManager_DisconnectCancelsReconnect(t *testing.T) {
	clock := &manualClock{}
	dialer := &failingDialer{}

	m := NewManager(DefaultConfig(), nil, WithDialer(dialer), WithTimerFunc(clock.AfterFunc))
	defer m.Close()

	_ = m.Connect(context.Background())
	if m.State() != domain.StateReconnecting {
		t.Fatalf("State() = %s, want reconnecting", m.State())
	}

	m.Disconnect()
	if m.State() != domain.StateDisconnected {
		t.Errorf("State() = %s, want disconnected", m.State())
	}
	if clock.fireLast() {
		t.Error("reconnect timer still active after Disconnect")
	}
	if n := dialer.calls.Load(); n != 1 {
		t.Errorf("dial attempts = %d, want 1", n)
	}
}

func TestManager_StaleTimerIgnored(t *testing.T) {
	clock := &manualClock{}
	dialer := &failingDialer{}

	m := NewManager(DefaultConfig(), nil, WithDialer(dialer), WithTimerFunc(clock.AfterFunc))
	defer m.Close()

	_ = m.Connect(context.Background())
	timer := clock.timers[0]

	// A new explicit connect supersedes the pending timer.
	_ = m.Connect(context.Background())
	if !timer.stopped.Load() {
		t.Error("previous timer not stopped by Connect")
	}

	// Run the old callback anyway; it must not dial.
	before := dialer.calls.Load()
	timer.f()
	if dialer.calls.Load() != before {
		t.Error("stale timer triggered a dial")
	}
}

func TestManager_MalformedMessageDropped(t *testing.T) {
	sink := newResultSink()
	dialer := &connDialer{}
	reg := metric.NewRegistry()

	m := NewManager(DefaultConfig(), sink.onAnalysis, WithDialer(dialer), WithMetrics(reg))
	defer m.Close()

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	conn := dialer.last()
	conn.reads <- fakeRead{data: []byte("not json")}
	conn.reads <- fakeRead{data: []byte(`{"best_move":"e2e4"}`)}
	conn.reads <- fakeRead{data: []byte(`{"evaluation":-0.5,"is_mate":false,"mate_in":0,"best_move":"c7c5"}`)}

	got := sink.wait(t)
	if got.BestMove != "c7c5" || got.Evaluation != -0.5 {
		t.Errorf("result = %+v", got)
	}
	if sink.count() != 1 {
		t.Errorf("results = %d, want 1", sink.count())
	}
	if m.State() != domain.StateConnected {
		t.Errorf("State() = %s, want connected", m.State())
	}
	if got := testutil.ToFloat64(reg.MalformedMessages); got != 2 {
		t.Errorf("malformed metric = %v, want 2", got)
	}
}

func TestManager_TransportErrorFallsBackWithLastPosition(t *testing.T) {
	var gotPosition atomic.Value
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req domain.AnalysisRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotPosition.Store(req.Position)
		w.Write([]byte(`{"evaluation":0.4,"is_mate":false,"mate_in":0,"best_move":"e7e5"}`))
	}))
	defer fallback.Close()

	sink := newResultSink()
	clock := &manualClock{}
	dialer := &connDialer{}

	cfg := DefaultConfig()
	cfg.Server = fallback.URL
	m := NewManager(cfg, sink.onAnalysis, WithDialer(dialer), WithTimerFunc(clock.AfterFunc))
	defer m.Close()

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := m.Analyze(context.Background(), afterE4); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if dialer.last().writeCount() != 1 {
		t.Fatalf("channel writes = %d, want 1", dialer.last().writeCount())
	}

	dialer.last().reads <- fakeRead{err: errors.New("connection reset by peer")}

	got := sink.wait(t)
	if got.BestMove != "e7e5" {
		t.Errorf("BestMove = %q, want e7e5", got.BestMove)
	}
	if p, _ := gotPosition.Load().(domain.Position); p != afterE4 {
		t.Errorf("fallback position = %q, want %q", p, afterE4)
	}
	if m.State() != domain.StateReconnecting {
		t.Errorf("State() = %s, want reconnecting", m.State())
	}
}

func TestManager_CleanCloseReconnectsWithoutFallback(t *testing.T) {
	var calls atomic.Int32
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"evaluation":0}`))
	}))
	defer fallback.Close()

	clock := &manualClock{}
	dialer := &connDialer{}
	cfg := DefaultConfig()
	cfg.Server = fallback.URL
	m := NewManager(cfg, nil, WithDialer(dialer), WithTimerFunc(clock.AfterFunc))

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	_ = m.Analyze(context.Background(), afterE4)
	dialer.last().reads <- fakeRead{err: &websocket.CloseError{Code: websocket.CloseGoingAway}}
	waitForState(t, m, domain.StateReconnecting)

	m.Close()
	if n := calls.Load(); n != 0 {
		t.Errorf("fallback calls = %d, want 0", n)
	}
	if clock.count() != 1 {
		t.Errorf("timers = %d, want 1", clock.count())
	}
}

func TestManager_WriteErrorFallsBack(t *testing.T) {
	srv := newAnalysisServer(t, `{"evaluation":0.1,"is_mate":false,"mate_in":0,"best_move":"b1c3"}`)
	sink := newResultSink()
	clock := &manualClock{}
	dialer := &connDialer{}

	cfg := DefaultConfig()
	cfg.Server = srv.URL
	m := NewManager(cfg, sink.onAnalysis, WithDialer(dialer), WithTimerFunc(clock.AfterFunc))
	defer m.Close()

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	conn := dialer.last()
	conn.mu.Lock()
	conn.writeErr = errors.New("broken pipe")
	conn.mu.Unlock()

	if err := m.Analyze(context.Background(), domain.StartPosition); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got := sink.wait(t); got.BestMove != "b1c3" {
		t.Errorf("BestMove = %q, want b1c3", got.BestMove)
	}
	if n := srv.fallbackCalls.Load(); n != 1 {
		t.Errorf("fallback calls = %d, want 1", n)
	}
	if m.State() != domain.StateReconnecting {
		t.Errorf("State() = %s, want reconnecting", m.State())
	}
}

func TestManager_DropStale(t *testing.T) {
	tests := []struct {
		name      string
		dropStale bool
		want      int
	}{
		{"last write wins without correlation", false, 2},
		{"stale results dropped", true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			release := make(chan struct{})
			fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var req domain.AnalysisRequest
				json.NewDecoder(r.Body).Decode(&req)
				if req.Position == domain.StartPosition {
					<-release
					w.Write([]byte(`{"evaluation":0.2,"is_mate":false,"mate_in":0,"best_move":"e2e4"}`))
					return
				}
				w.Write([]byte(`{"evaluation":0.3,"is_mate":false,"mate_in":0,"best_move":"e7e5"}`))
			}))
			defer fallback.Close()

			sink := newResultSink()
			reg := metric.NewRegistry()

			cfg := DefaultConfig()
			cfg.Server = fallback.URL
			cfg.DropStale = tt.dropStale
			m := NewManager(cfg, sink.onAnalysis, WithMetrics(reg))

			_ = m.Analyze(context.Background(), domain.StartPosition)
			_ = m.Analyze(context.Background(), afterE4)

			if got := sink.wait(t); got.BestMove != "e7e5" {
				t.Errorf("first delivered = %q, want e7e5", got.BestMove)
			}
			close(release)
			m.Close()

			if sink.count() != tt.want {
				t.Errorf("results = %d, want %d", sink.count(), tt.want)
			}
			if tt.dropStale {
				if got := testutil.ToFloat64(reg.StaleResults); got != 1 {
					t.Errorf("stale metric = %v, want 1", got)
				}
			}
		})
	}
}

func TestManager_FallbackErrorReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"code":"EB-ENG-5031","message":"engine unavailable"}`))
	}))
	defer srv.Close()

	errCh := make(chan error, 1)
	cfg := DefaultConfig()
	cfg.Server = srv.URL
	m := NewManager(cfg, func(domain.AnalysisResult) {
		t.Error("callback invoked for failed request")
	}, WithOnError(func(err error) { errCh <- err }))
	defer m.Close()

	_ = m.Analyze(context.Background(), domain.StartPosition)

	select {
	case err := <-errCh:
		if !errors.Is(err, domain.ErrFallbackFailed) {
			t.Errorf("error = %v, want ErrFallbackFailed", err)
		}
		if !strings.Contains(err.Error(), "engine unavailable") {
			t.Errorf("error = %q, want server message", err.Error())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for error")
	}
}

func TestManager_DisconnectClosesChannel(t *testing.T) {
	dialer := &connDialer{}
	m := NewManager(DefaultConfig(), nil, WithDialer(dialer))

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	conn := dialer.last()

	m.Disconnect()
	select {
	case <-conn.closed:
	default:
		t.Error("channel not closed by Disconnect")
	}
	if m.State() != domain.StateDisconnected {
		t.Errorf("State() = %s, want disconnected", m.State())
	}

	if err := m.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := m.Connect(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Connect() after Close error = %v, want ErrClosed", err)
	}
}

func TestManager_ConnectReplacesChannel(t *testing.T) {
	dialer := &connDialer{}
	m := NewManager(DefaultConfig(), nil, WithDialer(dialer))
	defer m.Close()

	_ = m.Connect(context.Background())
	first := dialer.last()
	_ = m.Connect(context.Background())

	select {
	case <-first.closed:
	default:
		t.Error("previous channel not closed before new connect")
	}
	if m.State() != domain.StateConnected {
		t.Errorf("State() = %s, want connected", m.State())
	}
}
