// Package domain defines the core domain models for evalboard.
package domain

import "strings"

// Position is a serialized board state in Forsyth-Edwards Notation.
// Positions are immutable values; every change produces a new one.
type Position string

// StartPosition is the standard initial position.
const StartPosition Position = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Color identifies a side.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// String returns the position as a plain string.
func (p Position) String() string {
	return string(p)
}

// IsEmpty reports whether the position carries no board state.
func (p Position) IsEmpty() bool {
	return strings.TrimSpace(string(p)) == ""
}

// SideToMove returns the side to move encoded in the position.
// It defaults to White when the field is absent.
func (p Position) SideToMove() Color {
	fields := strings.Fields(string(p))
	if len(fields) > 1 && fields[1] == "b" {
		return Black
	}
	return White
}

// Placement returns the piece placement field of the position.
func (p Position) Placement() string {
	fields := strings.Fields(string(p))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Status describes the game state of a position as reported by the rules engine.
type Status struct {
	Turn      Color  `json:"turn" yaml:"turn"`
	Check     bool   `json:"check" yaml:"check"`
	Checkmate bool   `json:"checkmate" yaml:"checkmate"`
	Draw      bool   `json:"draw" yaml:"draw"`
	Method    string `json:"method,omitempty" yaml:"method,omitempty"`
}

// IsOver reports whether no further moves can be played.
func (s Status) IsOver() bool {
	return s.Checkmate || s.Draw
}
