// Package navigation reconstructs board positions along a loaded game and
// tracks direct play against the current position.
package navigation

import (
	"fmt"
	"sync"

	"github.com/yndnr/evalboard/internal/core/domain"
	"github.com/yndnr/evalboard/internal/core/rules"
)

// StartIndex is the cursor value denoting the starting position.
const StartIndex = -1

// Rules is the rules-engine collaborator. All methods are pure functions
// over positions.
type Rules interface {
	Initial() domain.Position
	Parse(transcript string) (domain.Position, domain.MoveList, error)
	Apply(pos domain.Position, mv domain.Move) (rules.Outcome, error)
	Decode(pos domain.Position, text string) (domain.Move, error)
	Status(pos domain.Position) (domain.Status, error)
}

// PlayResult describes a move accepted by ApplyMove.
type PlayResult struct {
	Move     domain.Move
	Position domain.Position
	Status   domain.Status

	// ClearIndicator tells the host that any displayed best-move
	// indicator refers to the previous position.
	ClearIndicator bool
}

// Navigator owns a MoveList and a cursor into it.
//
// The position at the cursor is always rebuilt by replaying moves from the
// game's initial position; nothing is cached between calls.
type Navigator struct {
	mu sync.RWMutex

	rules Rules

	start    domain.Position
	moves    domain.MoveList
	cursor   int
	position domain.Position
	status   domain.Status

	// history is the display log of moves played directly.
	history []string
}

// New creates a Navigator positioned at the standard initial position with
// no game loaded.
func New(r Rules) *Navigator {
	n := &Navigator{rules: r}
	n.resetLocked(r.Initial(), nil)
	return n
}

// LoadTranscript parses text and replaces the loaded game. On failure the
// previous game, cursor and history are left untouched.
func (n *Navigator) LoadTranscript(text string) error {
	start, moves, err := n.rules.Parse(text)
	if err != nil {
		return fmt.Errorf("load transcript: %w", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.resetLocked(start, moves)
	return nil
}

// Reset discards the loaded game and the play history.
func (n *Navigator) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resetLocked(n.rules.Initial(), nil)
}

func (n *Navigator) resetLocked(start domain.Position, moves domain.MoveList) {
	n.start = start
	n.moves = moves
	n.cursor = StartIndex
	n.position = start
	n.history = nil
	if st, err := n.rules.Status(start); err == nil {
		n.status = st
	} else {
		n.status = domain.Status{Turn: start.SideToMove()}
	}
}

// GotoIndex moves the cursor to i, clamped to [StartIndex, len-1], and
// returns the position after moves 0..i.
func (n *Navigator) GotoIndex(i int) (domain.Position, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.gotoLocked(i)
}

func (n *Navigator) gotoLocked(i int) (domain.Position, error) {
	i = clamp(i, StartIndex, len(n.moves)-1)

	pos := n.start
	status, err := n.rules.Status(pos)
	if err != nil {
		return "", fmt.Errorf("replay to %d: %w", i, err)
	}
	for k := 0; k <= i; k++ {
		out, err := n.rules.Apply(pos, n.moves[k])
		if err != nil {
			return "", fmt.Errorf("replay move %d (%s): %w", k, n.moves[k], err)
		}
		pos = out.Position
		status = out.Status
	}

	n.cursor = i
	n.position = pos
	n.status = status
	return pos, nil
}

// Next advances the cursor by one. At the last move it does nothing.
func (n *Navigator) Next() (domain.Position, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cursor >= len(n.moves)-1 {
		return n.position, nil
	}
	return n.gotoLocked(n.cursor + 1)
}

// Previous moves the cursor back by one. At the start it does nothing.
func (n *Navigator) Previous() (domain.Position, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cursor <= StartIndex {
		return n.position, nil
	}
	return n.gotoLocked(n.cursor - 1)
}

// ApplyMove plays text (coordinate or algebraic notation) against the
// current position. A rejected move leaves all state unchanged.
func (n *Navigator) ApplyMove(text string) (PlayResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	mv, err := n.rules.Decode(n.position, text)
	if err != nil {
		return PlayResult{}, err
	}
	out, err := n.rules.Apply(n.position, mv)
	if err != nil {
		return PlayResult{}, err
	}

	n.position = out.Position
	n.status = out.Status
	n.history = append(n.history, out.Move.String())

	return PlayResult{
		Move:           out.Move,
		Position:       out.Position,
		Status:         out.Status,
		ClearIndicator: true,
	}, nil
}

// Cursor returns the current cursor.
func (n *Navigator) Cursor() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.cursor
}

// Moves returns the loaded move list.
func (n *Navigator) Moves() domain.MoveList {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.moves
}

// History returns a copy of the directly played moves.
func (n *Navigator) History() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]string, len(n.history))
	copy(out, n.history)
	return out
}

// Position returns the current position.
func (n *Navigator) Position() domain.Position {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.position
}

// Status returns the game status of the current position.
func (n *Navigator) Status() domain.Status {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.status
}

func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
