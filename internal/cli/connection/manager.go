package connection

import (
	"context"
	"crypto/tls"
	"errors"
	"sync"
	"time"

	"github.com/yndnr/evalboard/internal/core/domain"
	"github.com/yndnr/evalboard/internal/telemetry/logger"
	"github.com/yndnr/evalboard/internal/telemetry/metric"
)

// Defaults for the reconnection policy.
const (
	DefaultMaxReconnectAttempts = 5
	DefaultReconnectDelay       = 2000 * time.Millisecond

	// NoReconnect as MaxReconnectAttempts disables reconnection: a lost
	// channel goes straight to FailedOver.
	NoReconnect = -1
)

// ErrClosed is returned by Connect after Close.
var ErrClosed = errors.New("connection manager closed")

// Config configures a Manager.
type Config struct {
	// Server is the base URL of the analysis service.
	Server string

	ChannelPath string
	AnalyzePath string
	HealthPath  string

	// Depth is sent with fallback requests. Zero means DefaultDepth.
	Depth int

	// MaxReconnectAttempts of zero means DefaultMaxReconnectAttempts; any
	// negative value behaves as NoReconnect.
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration

	// DropStale discards fallback results that arrive after a newer
	// position was submitted.
	DropStale bool

	// RequestTimeout bounds fallback requests. Zero means no timeout.
	RequestTimeout time.Duration

	// TLS configures https and wss servers; nil uses Go's defaults.
	TLS *tls.Config
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Server:               "http://127.0.0.1:8000",
		ChannelPath:          "/ws",
		AnalyzePath:          "/analyze",
		HealthPath:           "/health",
		Depth:                domain.DefaultDepth,
		MaxReconnectAttempts: DefaultMaxReconnectAttempts,
		ReconnectDelay:       DefaultReconnectDelay,
	}
}

// Timer is a pending reconnection.
type Timer interface {
	Stop() bool
}

// TimerFunc schedules f after d.
type TimerFunc func(d time.Duration, f func()) Timer

func afterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures a Manager.
type Option func(*Manager)

// WithDialer sets the channel dialer.
func WithDialer(d Dialer) Option {
	return func(m *Manager) { m.dialer = d }
}

// WithHTTPClient sets the fallback client.
func WithHTTPClient(c *HTTPClient) Option {
	return func(m *Manager) { m.http = c }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithMetrics sets the metrics registry.
func WithMetrics(r *metric.Registry) Option {
	return func(m *Manager) { m.metrics = r }
}

// WithTimerFunc sets the function used to schedule reconnections.
func WithTimerFunc(f TimerFunc) Option {
	return func(m *Manager) { m.afterFunc = f }
}

// WithOnError sets a callback for fallback failures. These errors are
// otherwise only logged.
func WithOnError(f func(error)) Option {
	return func(m *Manager) { m.onError = f }
}

// channelRequest is the message sent over the duplex channel.
type channelRequest struct {
	Position domain.Position `json:"position"`
}

// Manager owns the duplex channel to the analysis service, the pending
// reconnection timer and the fallback path.
//
// At most one channel and one timer are live at a time. Every Connect and
// Disconnect bumps a generation counter; read loops and timers from an older
// generation are ignored.
type Manager struct {
	cfg        Config
	dialer     Dialer
	http       *HTTPClient
	logger     logger.Logger
	metrics    *metric.Registry
	afterFunc  TimerFunc
	onAnalysis func(domain.AnalysisResult)
	onError    func(error)

	mu       sync.Mutex
	state    domain.ConnectionState
	conn     Conn
	timer    Timer
	attempts int
	gen      uint64
	seq      uint64
	closed   bool

	// lastPosition is re-requested over the fallback path when the open
	// channel fails.
	lastPosition domain.Position

	writeMu   sync.Mutex
	deliverMu sync.Mutex
	wg        sync.WaitGroup
}

// NewManager creates a Manager in the Disconnected state. onAnalysis
// receives every accepted result from either path.
func NewManager(cfg Config, onAnalysis func(domain.AnalysisResult), opts ...Option) *Manager {
	def := DefaultConfig()
	if cfg.Server == "" {
		cfg.Server = def.Server
	}
	if cfg.ChannelPath == "" {
		cfg.ChannelPath = def.ChannelPath
	}
	if cfg.Depth <= 0 {
		cfg.Depth = def.Depth
	}
	switch {
	case cfg.MaxReconnectAttempts == 0:
		cfg.MaxReconnectAttempts = def.MaxReconnectAttempts
	case cfg.MaxReconnectAttempts < 0:
		cfg.MaxReconnectAttempts = 0
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = def.ReconnectDelay
	}

	m := &Manager{
		cfg:        cfg,
		onAnalysis: onAnalysis,
		afterFunc:  afterFunc,
		state:      domain.StateDisconnected,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.dialer == nil {
		m.dialer = NewWebSocketDialer(10 * time.Second).WithTLS(cfg.TLS)
	}
	if m.http == nil {
		m.http = NewHTTPClient(cfg.Server, cfg.RequestTimeout).
			WithPaths(cfg.AnalyzePath, cfg.HealthPath).
			WithTLS(cfg.TLS)
	}
	if m.logger == nil {
		m.logger = logger.Default()
	}
	m.logger = m.logger.With("component", "connection")
	return m
}

// State returns the current connection state.
func (m *Manager) State() domain.ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Attempts returns the number of reconnections since the last successful connect.
func (m *Manager) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

// HTTP returns the fallback client.
func (m *Manager) HTTP() *HTTPClient {
	return m.http
}

// Connect opens the duplex channel, replacing any existing one. A failure
// is handled like a channel closure: a reconnection is scheduled while
// attempts remain, otherwise the manager fails over.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.stopTimerLocked()
	old := m.conn
	m.conn = nil
	m.gen++
	gen := m.gen
	m.setStateLocked(domain.StateConnecting)
	m.mu.Unlock()

	if old != nil {
		m.closeConn(old)
	}

	url, err := channelURL(m.cfg.Server, m.cfg.ChannelPath)
	if err != nil {
		m.mu.Lock()
		m.setStateLocked(domain.StateDisconnected)
		m.mu.Unlock()
		return domain.ErrInvalidArgument.WithCause(err)
	}

	conn, err := m.dialer.Dial(ctx, url)

	m.mu.Lock()
	if gen != m.gen || m.closed {
		m.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return domain.ErrTransport.WithDetails("connect superseded")
	}
	if err != nil {
		m.lostLocked(err)
		m.mu.Unlock()
		return domain.ErrTransport.WithCause(err)
	}

	m.conn = conn
	m.attempts = 0
	m.setStateLocked(domain.StateConnected)
	m.wg.Add(1)
	m.mu.Unlock()

	m.logger.Info("channel connected", "url", url)
	go m.readLoop(gen, conn)
	return nil
}

// Disconnect closes the channel and cancels any pending reconnection.
// In-flight fallback requests are not retracted.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.stopTimerLocked()
	m.gen++
	conn := m.conn
	m.conn = nil
	m.setStateLocked(domain.StateDisconnected)
	m.mu.Unlock()

	if conn != nil {
		m.writeMu.Lock()
		_ = conn.WriteMessage(closeMessageType, closeMessage())
		m.writeMu.Unlock()
		m.closeConn(conn)
		m.logger.Info("channel disconnected")
	}
}

// Close disconnects and waits for read loops and in-flight fallback
// requests to finish. The manager cannot be reused.
func (m *Manager) Close() error {
	m.Disconnect()
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.wg.Wait()
	return nil
}

// Analyze submits pos for analysis. While Connected the position is sent
// over the channel; in any other state it goes through the fallback path.
// It never waits for the result.
func (m *Manager) Analyze(ctx context.Context, pos domain.Position) error {
	if pos.IsEmpty() {
		return domain.ErrEmptyPosition
	}

	m.mu.Lock()
	m.lastPosition = pos
	m.seq++
	seq := m.seq
	state, conn, gen := m.state, m.conn, m.gen
	m.mu.Unlock()

	if state != domain.StateConnected || conn == nil {
		m.fallback(ctx, pos, seq)
		return nil
	}

	m.writeMu.Lock()
	err := conn.WriteJSON(channelRequest{Position: pos})
	m.writeMu.Unlock()
	if err == nil {
		m.metrics.IncAnalyze("channel")
		return nil
	}

	m.channelFailed(gen, conn, err, false)
	m.fallback(ctx, pos, seq)
	return nil
}

func (m *Manager) readLoop(gen uint64, conn Conn) {
	defer m.wg.Done()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.channelFailed(gen, conn, err, true)
			return
		}
		m.handleMessage(gen, data)
	}
}

func (m *Manager) handleMessage(gen uint64, data []byte) {
	m.mu.Lock()
	current := gen == m.gen
	m.mu.Unlock()
	if !current {
		return
	}

	res, err := domain.DecodeAnalysisResult(data)
	if err != nil {
		m.metrics.IncMalformed()
		m.logger.Warn("dropping malformed analysis message", "error", err, "size", len(data))
		return
	}
	m.deliver(res)
}

// channelFailed handles a read or write failure on the channel of
// generation gen. When reactive is set, the last position is re-requested
// through the fallback path unless the peer closed cleanly.
func (m *Manager) channelFailed(gen uint64, conn Conn, err error, reactive bool) {
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.conn = nil
	m.lostLocked(err)
	state, attempts := m.state, m.attempts
	pos := m.lastPosition
	seq := m.seq
	m.mu.Unlock()

	m.closeConn(conn)

	clean := isCleanClose(err)
	if clean {
		m.logger.Info("channel closed by peer", "state", state.String(), "attempt", attempts)
	} else {
		m.logger.Warn("channel transport error", "error", err, "state", state.String(), "attempt", attempts)
	}

	if reactive && !clean && !pos.IsEmpty() {
		m.fallback(context.Background(), pos, seq)
	}
}

// lostLocked moves to Reconnecting while attempts remain, otherwise to
// FailedOver.
func (m *Manager) lostLocked(cause error) {
	m.gen++
	if m.attempts >= m.cfg.MaxReconnectAttempts {
		m.setStateLocked(domain.StateFailedOver)
		m.logger.Warn("reconnection attempts exhausted, using fallback only",
			"attempts", m.attempts, "error", cause)
		return
	}

	m.attempts++
	m.setStateLocked(domain.StateReconnecting)
	m.metrics.IncReconnect()

	gen := m.gen
	m.timer = m.afterFunc(m.cfg.ReconnectDelay, func() { m.reconnect(gen) })
	m.logger.Info("reconnect scheduled", "attempt", m.attempts, "delay", m.cfg.ReconnectDelay)
}

func (m *Manager) reconnect(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.state != domain.StateReconnecting || m.closed {
		m.mu.Unlock()
		return
	}
	m.timer = nil
	m.mu.Unlock()

	if err := m.Connect(context.Background()); err != nil {
		m.logger.Debug("reconnect failed", "error", err)
	}
}

func (m *Manager) fallback(ctx context.Context, pos domain.Position, seq uint64) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.wg.Add(1)
	m.mu.Unlock()

	m.metrics.IncAnalyze("fallback")
	ctx = context.WithoutCancel(ctx)

	go func() {
		defer m.wg.Done()

		res, err := m.http.Analyze(ctx, pos, m.cfg.Depth)
		if err != nil {
			m.logger.Warn("fallback analysis failed", "error", err)
			if m.onError != nil {
				m.onError(err)
			}
			return
		}

		if m.cfg.DropStale {
			m.mu.Lock()
			stale := seq != m.seq
			m.mu.Unlock()
			if stale {
				m.metrics.IncStale()
				m.logger.Debug("dropping stale fallback result", "seq", seq)
				return
			}
		}
		m.deliver(res)
	}()
}

func (m *Manager) deliver(res domain.AnalysisResult) {
	if m.onAnalysis == nil {
		return
	}
	m.deliverMu.Lock()
	defer m.deliverMu.Unlock()
	m.onAnalysis(res)
}

func (m *Manager) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Manager) setStateLocked(s domain.ConnectionState) {
	m.state = s
	m.metrics.SetConnectionState(int(s))
}

func (m *Manager) closeConn(conn Conn) {
	if err := conn.Close(); err != nil {
		m.logger.Debug("close channel", "error", err)
	}
}
