package output

import (
	"fmt"
	"strings"

	"github.com/yndnr/evalboard/internal/core/domain"
	"github.com/yndnr/evalboard/internal/core/navigation"
)

// Report is the analysis of one position as shown to the user. Analysis
// is nil for finished games.
type Report struct {
	Position  domain.Position        `json:"position" yaml:"position"`
	Status    *domain.Status         `json:"status,omitempty" yaml:"status,omitempty"`
	Analysis  *domain.AnalysisResult `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	Indicator *navigation.Indicator  `json:"indicator,omitempty" yaml:"indicator,omitempty"`
}

// NewReport builds a report, deriving the indicator from the best move.
func NewReport(pos domain.Position, st *domain.Status, res domain.AnalysisResult) Report {
	r := Report{Position: pos, Status: st, Analysis: &res}
	if ind, ok := navigation.BestMoveIndicator(res.BestMove); ok {
		r.Indicator = &ind
	}
	return r
}

// MoveListView is a loaded game with its cursor.
type MoveListView struct {
	Moves  []string `json:"moves" yaml:"moves"`
	Cursor int      `json:"cursor" yaml:"cursor"`
}

// NewMoveListView builds a view over moves with the cursor at cursor.
func NewMoveListView(moves domain.MoveList, cursor int) MoveListView {
	return MoveListView{Moves: moves.SAN(), Cursor: cursor}
}

// StateView describes the session state.
type StateView struct {
	Position   domain.Position `json:"position" yaml:"position"`
	Status     domain.Status   `json:"status" yaml:"status"`
	Cursor     int             `json:"cursor" yaml:"cursor"`
	Plies      int             `json:"plies" yaml:"plies"`
	History    []string        `json:"history,omitempty" yaml:"history,omitempty"`
	Connection string          `json:"connection" yaml:"connection"`
	Attempts   int             `json:"reconnect_attempts" yaml:"reconnect_attempts"`
	Pending    bool            `json:"pending" yaml:"pending"`
}

// FormatEvaluation renders an evaluation from White's point of view:
// "+0.35", "-1.20", "#3" or "#-2".
func FormatEvaluation(res domain.AnalysisResult) string {
	if res.IsMate {
		return fmt.Sprintf("#%d", res.MateIn)
	}
	return fmt.Sprintf("%+.2f", res.Evaluation)
}

// FormatTopMove renders one multi-PV entry.
func FormatTopMove(m domain.TopMove) string {
	switch {
	case m.MateIn != nil:
		return fmt.Sprintf("%s (#%d)", m.Move, *m.MateIn)
	case m.Evaluation != nil:
		return fmt.Sprintf("%s (%+.2f)", m.Move, *m.Evaluation)
	default:
		return m.Move
	}
}

// FormatMoveText renders moves as numbered movetext. When cursor is in
// range the move at the cursor is bracketed.
func FormatMoveText(moves []string, cursor int) string {
	var b strings.Builder
	for i, m := range moves {
		if i > 0 {
			b.WriteByte(' ')
		}
		if i%2 == 0 {
			fmt.Fprintf(&b, "%d. ", i/2+1)
		}
		if i == cursor {
			b.WriteString("[" + m + "]")
		} else {
			b.WriteString(m)
		}
	}
	return b.String()
}
