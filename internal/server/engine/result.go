package engine

import (
	"fmt"
	"sort"

	"github.com/yndnr/evalboard/internal/core/domain"
)

const (
	// MateScore is the evaluation reported for a forced mate.
	MateScore = 100.0

	maxBestLine = 5
)

// search accumulates the output of one "go" command.
type search struct {
	lines    map[int]info
	bestMove string
}

func newSearch() *search {
	return &search{lines: make(map[int]info)}
}

// feed consumes one engine line and reports whether the search finished.
func (s *search) feed(line string) bool {
	if mv, ok := parseBestMove(line); ok {
		s.bestMove = mv
		return true
	}
	if in, ok := parseInfo(line); ok {
		s.lines[in.multipv] = in
	}
	return false
}

// result builds the analysis. Engine scores are relative to the side to
// move and are flipped for Black so that positive always favors White.
func (s *search) result(side domain.Color, multiPV int) domain.AnalysisResult {
	sign := 1
	if side == domain.Black {
		sign = -1
	}

	res := domain.AnalysisResult{BestMove: s.bestMove}

	keys := make([]int, 0, len(s.lines))
	for k := range s.lines {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	for _, k := range keys {
		if multiPV > 0 && len(res.TopMoves) >= multiPV {
			break
		}
		in := s.lines[k]
		if len(in.pv) == 0 {
			continue
		}
		tm := domain.TopMove{Move: in.pv[0]}
		if in.isMate {
			m := sign * in.mate
			tm.MateIn = &m
		} else {
			ev := float64(sign*in.cp) / 100
			tm.Evaluation = &ev
		}
		res.TopMoves = append(res.TopMoves, tm)
	}

	if main, ok := s.lines[1]; ok {
		res.Depth = main.depth
		if main.isMate {
			res.IsMate = true
			res.MateIn = sign * main.mate
			// mate 0 means the side to move is already mated.
			res.Evaluation = float64(sign) * MateScore
			if main.mate <= 0 {
				res.Evaluation = -res.Evaluation
			}
		} else {
			res.Evaluation = float64(sign*main.cp) / 100
		}
		line := main.pv
		if len(line) > maxBestLine {
			line = line[:maxBestLine]
		}
		res.BestLine = line
		if res.BestMove == "" && len(main.pv) > 0 {
			res.BestMove = main.pv[0]
		}
	}

	res.Comment = Commentary(res)
	return res
}

// Commentary returns a one-line assessment of an analysis.
func Commentary(res domain.AnalysisResult) string {
	if res.IsMate {
		side := "White"
		if res.Evaluation < 0 {
			side = "Black"
		}
		n := res.MateIn
		if n < 0 {
			n = -n
		}
		if n == 0 {
			return fmt.Sprintf("%s has delivered checkmate.", side)
		}
		return fmt.Sprintf("%s has a forced mate in %d moves.", side, n)
	}

	side := "White"
	if res.Evaluation < 0 {
		side = "Black"
	}
	score := res.Evaluation
	if score < 0 {
		score = -score
	}
	switch {
	case score < 0.5:
		return "The position is approximately equal."
	case score < 1.5:
		return side + " has a slight advantage."
	case score < 3:
		return side + " has a clear advantage."
	default:
		return side + " has a winning position."
	}
}
