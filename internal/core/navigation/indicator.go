package navigation

import "strings"

// Indicator is a highlighted origin to destination square pair.
type Indicator struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// castling maps the four coordinate castling moves to the king's visual
// movement. The rook's squares are not part of coordinate notation.
var castling = map[string]Indicator{
	"e1g1": {From: "e1", To: "g1"},
	"e1c1": {From: "e1", To: "c1"},
	"e8g8": {From: "e8", To: "g8"},
	"e8c8": {From: "e8", To: "c8"},
}

// BestMoveIndicator maps a coordinate move string to an indicator. It
// returns false when the string is not a coordinate move.
func BestMoveIndicator(bestMove string) (Indicator, bool) {
	s := strings.ToLower(strings.TrimSpace(bestMove))
	if ind, ok := castling[s]; ok {
		return ind, true
	}
	if len(s) < 4 || len(s) > 5 {
		return Indicator{}, false
	}
	from, to := s[0:2], s[2:4]
	if !isSquare(from) || !isSquare(to) {
		return Indicator{}, false
	}
	return Indicator{From: from, To: to}, true
}

func isSquare(s string) bool {
	return len(s) == 2 && s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8'
}
