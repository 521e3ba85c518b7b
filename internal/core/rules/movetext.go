package rules

import (
	"regexp"
	"strings"
	"unicode"
)

var moveNumber = regexp.MustCompile(`^\d+\.+`)

// countMoveTokens counts the mainline move tokens in a PGN transcript.
// Tag pairs, comments, variations, NAGs, move numbers and the result
// marker are not moves.
func countMoveTokens(pgn string) int {
	var (
		n     int
		depth int
		tok   strings.Builder
	)
	flush := func() {
		if depth == 0 && isMoveToken(tok.String()) {
			n++
		}
		tok.Reset()
	}
	skipTo := func(i int, end rune) int {
		for i < len(pgn) && rune(pgn[i]) != end {
			i++
		}
		return i
	}

	for i := 0; i < len(pgn); i++ {
		r := rune(pgn[i])
		switch {
		case r == '{':
			flush()
			i = skipTo(i, '}')
		case r == ';':
			flush()
			i = skipTo(i, '\n')
		case r == '[' && depth == 0:
			flush()
			i = skipTag(pgn, i)
		case r == '(':
			flush()
			depth++
		case r == ')':
			flush()
			if depth > 0 {
				depth--
			}
		case unicode.IsSpace(r):
			flush()
		default:
			tok.WriteByte(pgn[i])
		}
	}
	flush()
	return n
}

// skipTag returns the index of the ']' closing the tag pair opened at i.
// Quoted values may contain ']'.
func skipTag(pgn string, i int) int {
	quoted := false
	for ; i < len(pgn); i++ {
		switch pgn[i] {
		case '\\':
			if quoted {
				i++
			}
		case '"':
			quoted = !quoted
		case ']':
			if !quoted {
				return i
			}
		}
	}
	return i
}

func isMoveToken(t string) bool {
	switch t {
	case "", "*", "1-0", "0-1", "1/2-1/2":
		return false
	}
	if strings.HasPrefix(t, "$") {
		return false
	}
	t = moveNumber.ReplaceAllString(t, "")
	return strings.Trim(t, "!?") != ""
}
