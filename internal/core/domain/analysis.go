// Package domain defines the core domain models for evalboard.
package domain

import (
	"encoding/json"
)

// AnalysisResult is the evaluation of one position returned by the analysis
// service. Evaluation is in pawns from White's point of view. A new result
// supersedes the previous one wholesale.
type AnalysisResult struct {
	Evaluation float64   `json:"evaluation" yaml:"evaluation"`
	IsMate     bool      `json:"is_mate" yaml:"is_mate"`
	MateIn     int       `json:"mate_in" yaml:"mate_in"`
	BestMove   string    `json:"best_move" yaml:"best_move"`
	TopMoves   []TopMove `json:"top_moves,omitempty" yaml:"top_moves,omitempty"`
	BestLine   []string  `json:"best_line,omitempty" yaml:"best_line,omitempty"`
	Comment    string    `json:"comment,omitempty" yaml:"comment,omitempty"`
	Depth      int       `json:"depth,omitempty" yaml:"depth,omitempty"`
}

// TopMove is one principal variation head reported with multi-PV search.
type TopMove struct {
	Move       string   `json:"move" yaml:"move"`
	Evaluation *float64 `json:"evaluation" yaml:"evaluation"`
	MateIn     *int     `json:"mate_in" yaml:"mate_in"`
}

// AnalysisRequest is the payload sent to the analysis service.
// The duplex channel omits Depth; the request/response endpoint sends it.
type AnalysisRequest struct {
	Position Position `json:"position"`
	Depth    int      `json:"depth,omitempty"`
}

// DefaultDepth is the search depth used when a request does not specify one.
const DefaultDepth = 20

// analysisWire mirrors AnalysisResult with presence tracking.
type analysisWire struct {
	Evaluation *float64  `json:"evaluation"`
	IsMate     *bool     `json:"is_mate"`
	MateIn     *int      `json:"mate_in"`
	BestMove   *string   `json:"best_move"`
	TopMoves   []TopMove `json:"top_moves"`
	BestLine   []string  `json:"best_line"`
	Comment    string    `json:"comment"`
	Depth      int       `json:"depth"`
}

// DecodeAnalysisResult parses an analysis message.
//
// The message must be a JSON object with a numeric "evaluation". A null
// "mate_in" or "best_move" decodes to the zero value.
func DecodeAnalysisResult(data []byte) (AnalysisResult, error) {
	var w analysisWire
	if err := json.Unmarshal(data, &w); err != nil {
		return AnalysisResult{}, ErrMalformedResponse.WithCause(err)
	}
	if w.Evaluation == nil {
		return AnalysisResult{}, ErrMalformedResponse.WithDetails("missing evaluation")
	}

	res := AnalysisResult{
		Evaluation: *w.Evaluation,
		TopMoves:   w.TopMoves,
		BestLine:   w.BestLine,
		Comment:    w.Comment,
		Depth:      w.Depth,
	}
	if w.IsMate != nil {
		res.IsMate = *w.IsMate
	}
	if w.MateIn != nil {
		res.MateIn = *w.MateIn
	}
	if w.BestMove != nil {
		res.BestMove = *w.BestMove
	}
	return res, nil
}
