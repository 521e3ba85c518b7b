// Package domain defines the core domain models for evalboard.
package domain

// Move is a single parsed move. Moves are produced once, when a transcript
// is parsed or a move is played, and never mutated.
type Move struct {
	From      string `json:"from" yaml:"from"`
	To        string `json:"to" yaml:"to"`
	Promotion string `json:"promotion,omitempty" yaml:"promotion,omitempty"`
	SAN       string `json:"san" yaml:"san"`
}

// UCI returns the coordinate notation of the move (e.g. "e2e4", "e7e8q").
func (m Move) UCI() string {
	return m.From + m.To + m.Promotion
}

// String returns the algebraic notation when known, otherwise coordinates.
func (m Move) String() string {
	if m.SAN != "" {
		return m.SAN
	}
	return m.UCI()
}

// MoveList is the ordered move sequence of one loaded game.
type MoveList []Move

// Len returns the number of plies in the list.
func (l MoveList) Len() int {
	return len(l)
}

// SAN returns the algebraic notation of every move.
func (l MoveList) SAN() []string {
	out := make([]string, len(l))
	for i, m := range l {
		out[i] = m.String()
	}
	return out
}
