// Package session binds the current position of a game to a remote
// analyzer and holds the most recent analysis result.
package session

import (
	"context"
	"sync"

	"github.com/yndnr/evalboard/internal/core/domain"
	"github.com/yndnr/evalboard/internal/core/navigation"
)

// Analyzer accepts positions for asynchronous analysis.
type Analyzer interface {
	Analyze(ctx context.Context, pos domain.Position) error
}

// Session pushes every position change into an Analyzer. Results arrive via
// OnResult and replace the previous result wholesale.
type Session struct {
	nav      *navigation.Navigator
	analyzer Analyzer

	mu        sync.RWMutex
	latest    *domain.AnalysisResult
	indicator *navigation.Indicator
	pending   bool
}

// New creates a session over nav. analyzer may be nil, in which case
// position changes are not analyzed.
func New(nav *navigation.Navigator, analyzer Analyzer) *Session {
	return &Session{nav: nav, analyzer: analyzer}
}

// Navigator returns the underlying navigator.
func (s *Session) Navigator() *navigation.Navigator {
	return s.nav
}

// Load loads a transcript and analyzes the starting position.
func (s *Session) Load(ctx context.Context, transcript string) error {
	if err := s.nav.LoadTranscript(transcript); err != nil {
		return err
	}
	return s.push(ctx, s.nav.Position(), true)
}

// Goto moves the cursor and analyzes the resulting position.
func (s *Session) Goto(ctx context.Context, i int) error {
	pos, err := s.nav.GotoIndex(i)
	if err != nil {
		return err
	}
	return s.push(ctx, pos, false)
}

// Next steps forward and analyzes the resulting position. At the last move
// it does nothing.
func (s *Session) Next(ctx context.Context) error {
	return s.step(ctx, s.nav.Next)
}

// Previous steps back and analyzes the resulting position. At the start of
// the game it does nothing.
func (s *Session) Previous(ctx context.Context) error {
	return s.step(ctx, s.nav.Previous)
}

func (s *Session) step(ctx context.Context, move func() (domain.Position, error)) error {
	before := s.nav.Cursor()
	pos, err := move()
	if err != nil {
		return err
	}
	if s.nav.Cursor() == before {
		return nil
	}
	return s.push(ctx, pos, false)
}

// Play applies a move. On success the best-move indicator is cleared and
// the new position is analyzed.
func (s *Session) Play(ctx context.Context, move string) (navigation.PlayResult, error) {
	res, err := s.nav.ApplyMove(move)
	if err != nil {
		return res, err
	}
	return res, s.push(ctx, res.Position, res.ClearIndicator)
}

// Reset discards the game and analyzes the initial position.
func (s *Session) Reset(ctx context.Context) error {
	s.nav.Reset()
	return s.push(ctx, s.nav.Position(), true)
}

// Refresh requests analysis of the current position again.
func (s *Session) Refresh(ctx context.Context) error {
	return s.push(ctx, s.nav.Position(), false)
}

func (s *Session) push(ctx context.Context, pos domain.Position, clearIndicator bool) error {
	s.mu.Lock()
	if clearIndicator {
		s.indicator = nil
	}
	s.pending = s.analyzer != nil
	s.mu.Unlock()

	if s.analyzer == nil {
		return nil
	}
	return s.analyzer.Analyze(ctx, pos)
}

// OnResult records an analysis result. It is the callback handed to the
// connection manager.
func (s *Session) OnResult(result domain.AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := result
	s.latest = &r
	s.pending = false
	if ind, ok := navigation.BestMoveIndicator(result.BestMove); ok {
		s.indicator = &ind
	} else {
		s.indicator = nil
	}
}

// Latest returns the most recent result, if any.
func (s *Session) Latest() (domain.AnalysisResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return domain.AnalysisResult{}, false
	}
	return *s.latest, true
}

// Indicator returns the best-move indicator of the latest result, unless
// it was cleared by a move.
func (s *Session) Indicator() (navigation.Indicator, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.indicator == nil {
		return navigation.Indicator{}, false
	}
	return *s.indicator, true
}

// Pending reports whether an analysis was requested and no result has
// arrived since.
func (s *Session) Pending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending
}
