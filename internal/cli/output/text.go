package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/yndnr/evalboard/internal/cli/connection"
	"github.com/yndnr/evalboard/internal/core/domain"
)

// TextFormatter formats data for humans.
type TextFormatter struct{}

// Format renders known view types as text; anything else is rendered as a
// field/value table.
func (f *TextFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case nil:
		return nil
	case Report:
		return f.report(w, v)
	case *Report:
		return f.report(w, *v)
	case domain.AnalysisResult:
		return f.analysis(w, v)
	case MoveListView:
		return f.moves(w, v)
	case StateView:
		return f.state(w, v)
	case connection.HealthStatus:
		return f.health(w, v)
	case string:
		_, err := fmt.Fprintln(w, v)
		return err
	default:
		table, err := toTable(data)
		if err != nil {
			_, err = fmt.Fprintf(w, "%v\n", data)
			return err
		}
		return table.Render(w)
	}
}

func (f *TextFormatter) report(w io.Writer, r Report) error {
	t := &Table{}
	t.AddRow("Position", r.Position.String())
	if r.Status != nil {
		t.AddRow("To move", string(r.Status.Turn))
		if s := statusLine(*r.Status); s != "" {
			t.AddRow("Status", s)
		}
	}
	if r.Analysis != nil {
		analysisRows(t, *r.Analysis)
	}
	if r.Indicator != nil {
		t.AddRow("Arrow", r.Indicator.From+" -> "+r.Indicator.To)
	}
	return t.Render(w)
}

func (f *TextFormatter) analysis(w io.Writer, res domain.AnalysisResult) error {
	t := &Table{}
	analysisRows(t, res)
	return t.Render(w)
}

func analysisRows(t *Table, res domain.AnalysisResult) {
	t.AddRow("Evaluation", FormatEvaluation(res))
	t.AddRow("Best move", dash(res.BestMove))
	if res.Depth > 0 {
		t.AddRow("Depth", fmt.Sprintf("%d", res.Depth))
	}
	if len(res.TopMoves) > 0 {
		parts := make([]string, len(res.TopMoves))
		for i, m := range res.TopMoves {
			parts[i] = FormatTopMove(m)
		}
		t.AddRow("Top moves", strings.Join(parts, ", "))
	}
	if len(res.BestLine) > 0 {
		t.AddRow("Line", strings.Join(res.BestLine, " "))
	}
	if res.Comment != "" {
		t.AddRow("Comment", res.Comment)
	}
}

func (f *TextFormatter) moves(w io.Writer, v MoveListView) error {
	if len(v.Moves) == 0 {
		_, err := fmt.Fprintln(w, "(no moves)")
		return err
	}
	_, err := fmt.Fprintln(w, FormatMoveText(v.Moves, v.Cursor))
	return err
}

func (f *TextFormatter) state(w io.Writer, v StateView) error {
	t := &Table{}
	t.AddRow("Position", v.Position.String())
	t.AddRow("To move", string(v.Status.Turn))
	if s := statusLine(v.Status); s != "" {
		t.AddRow("Status", s)
	}
	t.AddRow("Cursor", fmt.Sprintf("%d/%d", v.Cursor+1, v.Plies))
	if len(v.History) > 0 {
		t.AddRow("Played", strings.Join(v.History, " "))
	}
	t.AddRow("Connection", v.Connection)
	if v.Attempts > 0 {
		t.AddRow("Reconnects", fmt.Sprintf("%d", v.Attempts))
	}
	if v.Pending {
		t.AddRow("Analysis", "pending")
	}
	return t.Render(w)
}

func (f *TextFormatter) health(w io.Writer, h connection.HealthStatus) error {
	engine := "stopped"
	if h.EngineRunning {
		engine = "running"
	}
	_, err := fmt.Fprintf(w, "status: %s, engine: %s\n", dash(h.Status), engine)
	return err
}

func statusLine(st domain.Status) string {
	switch {
	case st.Checkmate:
		return "checkmate"
	case st.Draw:
		return "draw (" + st.Method + ")"
	case st.Check:
		return "check"
	default:
		return ""
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
