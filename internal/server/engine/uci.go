package engine

import (
	"strconv"
	"strings"
)

// info is one parsed "info" line carrying a score.
type info struct {
	depth   int
	multipv int
	cp      int
	mate    int
	isMate  bool
	pv      []string
}

// parseInfo parses a UCI info line. It reports false for lines without a
// score and for bound scores, which are not final for their depth.
func parseInfo(line string) (info, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "info" {
		return info{}, false
	}

	in := info{multipv: 1}
	scored := false
	for i := 1; i < len(fields); i++ {
		switch fields[i] {
		case "depth":
			if i+1 < len(fields) {
				in.depth, _ = strconv.Atoi(fields[i+1])
				i++
			}
		case "multipv":
			if i+1 < len(fields) {
				if n, err := strconv.Atoi(fields[i+1]); err == nil && n > 0 {
					in.multipv = n
				}
				i++
			}
		case "score":
			if i+2 >= len(fields) {
				return info{}, false
			}
			n, err := strconv.Atoi(fields[i+2])
			if err != nil {
				return info{}, false
			}
			switch fields[i+1] {
			case "cp":
				in.cp = n
			case "mate":
				in.mate = n
				in.isMate = true
			default:
				return info{}, false
			}
			scored = true
			i += 2
			if i+1 < len(fields) && (fields[i+1] == "lowerbound" || fields[i+1] == "upperbound") {
				return info{}, false
			}
		case "pv":
			in.pv = append([]string(nil), fields[i+1:]...)
			i = len(fields)
		case "string":
			i = len(fields)
		}
	}
	return in, scored
}

// parseBestMove returns the move of a "bestmove" line. The engine reports
// "(none)" when the side to move has no legal move.
func parseBestMove(line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "bestmove" {
		return "", false
	}
	if len(fields) < 2 || fields[1] == "(none)" {
		return "", true
	}
	return fields[1], true
}
