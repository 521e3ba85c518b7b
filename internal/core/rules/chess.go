package rules

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"

	"github.com/yndnr/evalboard/internal/core/domain"
)

// Outcome is the result of applying a move to a position.
type Outcome struct {
	Position domain.Position
	Move     domain.Move
	Status   domain.Status
}

// Chess implements the rules-engine contract on top of github.com/notnil/chess.
// It is stateless and safe for concurrent use.
type Chess struct{}

// New creates a new rules adapter.
func New() *Chess {
	return &Chess{}
}

// Initial returns the standard starting position.
func (c *Chess) Initial() domain.Position {
	return domain.Position(chess.NewGame().Position().String())
}

// Parse parses a PGN transcript. It returns the position the game starts
// from (the FEN tag when present, the standard position otherwise) and the
// ordered move list with algebraic notation filled in.
func (c *Chess) Parse(transcript string) (domain.Position, domain.MoveList, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", nil, domain.ErrParse.WithDetails("empty transcript")
	}

	opt, err := chess.PGN(strings.NewReader(transcript))
	if err != nil {
		return "", nil, domain.ErrParse.WithCause(err)
	}
	game := chess.NewGame(opt)

	positions := game.Positions()
	moves := game.Moves()
	if len(positions) == 0 {
		return "", nil, domain.ErrParse.WithDetails("no positions decoded")
	}
	// The PGN decoder stops silently at movetext it cannot read.
	if want := countMoveTokens(transcript); len(moves) < want {
		return "", nil, domain.ErrParse.WithDetails(fmt.Sprintf("decoded %d of %d moves", len(moves), want))
	}

	list := make(domain.MoveList, 0, len(moves))
	for i, m := range moves {
		san := chess.AlgebraicNotation{}.Encode(positions[i], m)
		list = append(list, toDomainMove(m, san))
	}

	return domain.Position(positions[0].String()), list, nil
}

// Apply applies mv to pos. The move must be legal in pos; otherwise
// ErrIllegalMove is returned and nothing changes.
func (c *Chess) Apply(pos domain.Position, mv domain.Move) (Outcome, error) {
	game, err := gameAt(pos)
	if err != nil {
		return Outcome{}, err
	}

	legal := findLegal(game.Position(), mv)
	if legal == nil {
		return Outcome{}, domain.ErrIllegalMove.WithDetails(mv.UCI())
	}

	before := game.Position()
	if err := game.Move(legal); err != nil {
		return Outcome{}, domain.ErrIllegalMove.WithDetails(mv.UCI()).WithCause(err)
	}

	next := domain.Position(game.Position().String())
	status := statusOf(game, next)
	status.Check = legal.HasTag(chess.Check)

	return Outcome{
		Position: next,
		Move:     toDomainMove(legal, chess.AlgebraicNotation{}.Encode(before, legal)),
		Status:   status,
	}, nil
}

// Decode interprets text as a move in pos. Coordinate notation ("e2e4",
// "e7e8q") and standard algebraic notation ("Nf3", "O-O") are accepted.
func (c *Chess) Decode(pos domain.Position, text string) (domain.Move, error) {
	game, err := gameAt(pos)
	if err != nil {
		return domain.Move{}, err
	}

	text = strings.TrimSpace(text)
	cp := game.Position()

	if m, err := (chess.UCINotation{}).Decode(cp, strings.ToLower(text)); err == nil {
		if legal := findLegal(cp, toDomainMove(m, "")); legal != nil {
			return toDomainMove(legal, chess.AlgebraicNotation{}.Encode(cp, legal)), nil
		}
	}

	if m, err := (chess.AlgebraicNotation{}).Decode(cp, text); err == nil {
		return toDomainMove(m, chess.AlgebraicNotation{}.Encode(cp, m)), nil
	}

	return domain.Move{}, domain.ErrIllegalMove.WithDetails(text)
}

// Status reports the game state of pos. The check flag is only known for
// positions reached by a move (see Outcome.Status); here it is set for
// checkmate only.
func (c *Chess) Status(pos domain.Position) (domain.Status, error) {
	game, err := gameAt(pos)
	if err != nil {
		return domain.Status{}, err
	}
	return statusOf(game, pos), nil
}

// LegalMoves returns the coordinate notation of every legal move in pos.
func (c *Chess) LegalMoves(pos domain.Position) ([]string, error) {
	game, err := gameAt(pos)
	if err != nil {
		return nil, err
	}
	valid := game.ValidMoves()
	out := make([]string, 0, len(valid))
	for _, m := range valid {
		out = append(out, toDomainMove(m, "").UCI())
	}
	return out, nil
}

func gameAt(pos domain.Position) (*chess.Game, error) {
	if pos.IsEmpty() {
		return nil, domain.ErrInvalidPosition.WithDetails("empty position")
	}
	opt, err := chess.FEN(string(pos))
	if err != nil {
		return nil, domain.ErrInvalidPosition.WithCause(err)
	}
	return chess.NewGame(opt), nil
}

func findLegal(pos *chess.Position, mv domain.Move) *chess.Move {
	for _, m := range pos.ValidMoves() {
		if m.S1().String() != mv.From || m.S2().String() != mv.To {
			continue
		}
		if promoString(m.Promo()) != strings.ToLower(mv.Promotion) {
			continue
		}
		return m
	}
	return nil
}

func toDomainMove(m *chess.Move, san string) domain.Move {
	return domain.Move{
		From:      m.S1().String(),
		To:        m.S2().String(),
		Promotion: promoString(m.Promo()),
		SAN:       san,
	}
}

func promoString(p chess.PieceType) string {
	if p == chess.NoPieceType {
		return ""
	}
	return p.String()
}

func statusOf(game *chess.Game, pos domain.Position) domain.Status {
	method := game.Method()
	st := domain.Status{
		Turn:      pos.SideToMove(),
		Checkmate: method == chess.Checkmate,
		Draw:      game.Outcome() == chess.Draw,
		Method:    methodName(method),
	}
	st.Check = st.Checkmate
	return st
}

func methodName(m chess.Method) string {
	switch m {
	case chess.NoMethod:
		return ""
	case chess.Checkmate:
		return "checkmate"
	case chess.Resignation:
		return "resignation"
	case chess.DrawOffer:
		return "draw offer"
	case chess.Stalemate:
		return "stalemate"
	case chess.ThreefoldRepetition:
		return "threefold repetition"
	case chess.FivefoldRepetition:
		return "fivefold repetition"
	case chess.FiftyMoveRule:
		return "fifty move rule"
	case chess.SeventyFiveMoveRule:
		return "seventy-five move rule"
	case chess.InsufficientMaterial:
		return "insufficient material"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}
