package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/evalboard/internal/core/domain"
	"github.com/yndnr/evalboard/internal/telemetry/logger"
	"github.com/yndnr/evalboard/internal/telemetry/metric"
)

// Config holds the engine options applied after the handshake.
type Config struct {
	Threads int
	HashMB  int
	MultiPV int

	// HandshakeTimeout bounds uci/uciok and isready/readyok.
	HandshakeTimeout time.Duration

	// StopTimeout bounds the wait for bestmove after a "stop".
	StopTimeout time.Duration
}

// DefaultConfig returns the options the analysis server starts with.
func DefaultConfig() Config {
	return Config{
		Threads:          2,
		HashMB:           128,
		MultiPV:          3,
		HandshakeTimeout: 10 * time.Second,
		StopTimeout:      2 * time.Second,
	}
}

// Engine runs searches on a single UCI engine process.
type Engine struct {
	launch  Launcher
	cfg     Config
	logger  logger.Logger
	metrics *metric.Registry

	mu      sync.Mutex
	proc    *Process
	w       *bufio.Writer
	lines    chan string
	launched bool

	running atomic.Bool
	closed  atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics sets the metrics registry.
func WithMetrics(m *metric.Registry) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates an Engine. The process is started lazily by Start or by
// the first search.
func New(launch Launcher, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		launch: launch,
		cfg:    cfg,
		logger: logger.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "engine")
	return e
}

// Start launches the engine process and completes the UCI handshake.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ensureRunning(ctx)
}

// Running reports whether the engine process is alive.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Analyze searches pos to the given depth.
func (e *Engine) Analyze(ctx context.Context, pos domain.Position, depth int) (domain.AnalysisResult, error) {
	if e.closed.Load() {
		return domain.AnalysisResult{}, domain.ErrEngineUnavailable.WithDetails("engine closed")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	res, err := e.search(ctx, pos, depth)
	e.metrics.RecordSearch(time.Since(start), err)
	if err != nil {
		e.logger.Warn("search failed", "position", pos.String(), "depth", depth, "error", err)
		return domain.AnalysisResult{}, err
	}
	e.logger.Debug("search completed", "position", pos.String(), "depth", res.Depth,
		"best_move", res.BestMove, "elapsed", time.Since(start))
	return res, nil
}

func (e *Engine) search(ctx context.Context, pos domain.Position, depth int) (domain.AnalysisResult, error) {
	if err := e.ensureRunning(ctx); err != nil {
		return domain.AnalysisResult{}, err
	}

	if err := e.send("ucinewgame", "position fen "+pos.String(), "isready"); err != nil {
		return domain.AnalysisResult{}, e.fail(err)
	}
	if _, err := e.readUntil(ctx, e.cfg.HandshakeTimeout, exact("readyok")); err != nil {
		return domain.AnalysisResult{}, e.fail(err)
	}
	if err := e.send(fmt.Sprintf("go depth %d", depth)); err != nil {
		return domain.AnalysisResult{}, e.fail(err)
	}

	s := newSearch()
	for {
		select {
		case line, ok := <-e.lines:
			if !ok {
				return domain.AnalysisResult{}, e.fail(errors.New("engine exited during search"))
			}
			if s.feed(line) {
				return s.result(pos.SideToMove(), e.cfg.MultiPV), nil
			}
		case <-ctx.Done():
			e.abort()
			return domain.AnalysisResult{}, domain.ErrEngine.WithCause(ctx.Err())
		}
	}
}

// ensureRunning starts the process if it has not been started or has died.
// Callers hold e.mu.
func (e *Engine) ensureRunning(ctx context.Context) error {
	if e.closed.Load() {
		return domain.ErrEngineUnavailable.WithDetails("engine closed")
	}
	if e.proc != nil && e.running.Load() {
		return nil
	}
	if e.proc != nil {
		e.kill()
	}
	if e.launched {
		e.logger.Warn("engine process died, restarting")
		e.metrics.IncEngineRestart()
	}

	proc, err := e.launch(ctx)
	if err != nil {
		return domain.ErrEngineUnavailable.WithCause(err)
	}
	e.attach(proc)
	e.launched = true

	if err := e.handshake(ctx); err != nil {
		e.kill()
		return domain.ErrEngineUnavailable.WithCause(err)
	}
	e.logger.Info("engine ready", "threads", e.cfg.Threads, "hash_mb", e.cfg.HashMB, "multipv", e.cfg.MultiPV)
	return nil
}

func (e *Engine) attach(proc *Process) {
	e.proc = proc
	e.w = bufio.NewWriter(proc.Stdin)
	e.lines = make(chan string, 64)
	e.running.Store(true)

	go func(lines chan<- string) {
		sc := bufio.NewScanner(proc.Stdout)
		for sc.Scan() {
			lines <- strings.TrimSpace(sc.Text())
		}
		e.running.Store(false)
		close(lines)
	}(e.lines)
}

func (e *Engine) handshake(ctx context.Context) error {
	if err := e.send("uci"); err != nil {
		return err
	}
	if _, err := e.readUntil(ctx, e.cfg.HandshakeTimeout, exact("uciok")); err != nil {
		return fmt.Errorf("uci handshake: %w", err)
	}

	var opts []string
	if e.cfg.MultiPV > 0 {
		opts = append(opts, fmt.Sprintf("setoption name MultiPV value %d", e.cfg.MultiPV))
	}
	if e.cfg.Threads > 0 {
		opts = append(opts, fmt.Sprintf("setoption name Threads value %d", e.cfg.Threads))
	}
	if e.cfg.HashMB > 0 {
		opts = append(opts, fmt.Sprintf("setoption name Hash value %d", e.cfg.HashMB))
	}
	opts = append(opts, "isready")
	if err := e.send(opts...); err != nil {
		return err
	}
	if _, err := e.readUntil(ctx, e.cfg.HandshakeTimeout, exact("readyok")); err != nil {
		return fmt.Errorf("ready check: %w", err)
	}
	return nil
}

func (e *Engine) send(cmds ...string) error {
	for _, c := range cmds {
		if _, err := e.w.WriteString(c + "\n"); err != nil {
			return err
		}
	}
	return e.w.Flush()
}

// readUntil consumes lines until match accepts one. A zero timeout waits
// for ctx only.
func (e *Engine) readUntil(ctx context.Context, timeout time.Duration, match func(string) bool) (string, error) {
	var deadline <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		deadline = t.C
	}
	for {
		select {
		case line, ok := <-e.lines:
			if !ok {
				return "", errors.New("engine exited")
			}
			if match(line) {
				return line, nil
			}
		case <-deadline:
			return "", errors.New("timed out waiting for engine")
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// abort stops a search in progress. The process is killed if it does not
// answer with bestmove in time, and the next search restarts it.
func (e *Engine) abort() {
	if err := e.send("stop"); err == nil {
		_, err = e.readUntil(context.Background(), e.cfg.StopTimeout, func(l string) bool {
			return strings.HasPrefix(l, "bestmove")
		})
		if err == nil {
			return
		}
	}
	e.logger.Warn("engine did not stop, killing process")
	e.kill()
}

func (e *Engine) fail(err error) error {
	e.kill()
	return domain.ErrEngine.WithCause(err)
}

func (e *Engine) kill() {
	if e.proc == nil {
		return
	}
	e.running.Store(false)
	_ = e.proc.Stdin.Close()
	if e.proc.Kill != nil {
		_ = e.proc.Kill()
	}
	// Drain so the reader goroutine can exit.
	for range e.lines {
	}
	if e.proc.Wait != nil {
		_ = e.proc.Wait()
	}
	e.proc = nil
}

// Close sends quit and reaps the process.
func (e *Engine) Close() error {
	if e.closed.Swap(true) {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.proc == nil {
		return nil
	}
	_ = e.send("quit")
	_ = e.proc.Stdin.Close()

	done := make(chan struct{})
	go func() {
		for range e.lines {
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(e.cfg.StopTimeout + time.Second):
		if e.proc.Kill != nil {
			_ = e.proc.Kill()
		}
		<-done
	}
	if e.proc.Wait != nil {
		_ = e.proc.Wait()
	}
	e.running.Store(false)
	e.proc = nil
	e.logger.Info("engine closed")
	return nil
}

func exact(want string) func(string) bool {
	return func(line string) bool { return line == want }
}
