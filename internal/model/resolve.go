package model

import (
	"fmt"
	"sort"
)

type Outcome string

const (
	OutcomeMoved  Outcome = "moved"
	OutcomeStayed Outcome = "stayed"
	OutcomeDied   Outcome = "died"
)

// Event is what happened to one piece during a resolution.
type Event struct {
	PieceID  int       `json:"pieceId"`
	Outcome  Outcome   `json:"outcome"`
	From     Position  `json:"from"`
	To       *Position `json:"to,omitempty"`
	At       *Point    `json:"at,omitempty"`
	Halfway  bool      `json:"halfway,omitempty"`
	Notation string    `json:"notation"`
}

// Fight is one pairwise combat. A is always the lower piece id.
type Fight struct {
	A       int   `json:"a"`
	B       int   `json:"b"`
	PowerA  int   `json:"powerA"`
	PowerB  int   `json:"powerB"`
	At      Point `json:"at"`
	Halfway bool  `json:"halfway"`
	Losers  []int `json:"losers"`
}

// Resolution is the full outcome of one turn. Board is the state after the turn.
type Resolution struct {
	Turn   int     `json:"turn"`
	Board  *Board  `json:"board"`
	Fights []Fight `json:"fights"`
	Events []Event `json:"events"`
}

// Deaths lists the ids of pieces that died this turn, in event order.
func (r Resolution) Deaths() []int {
	ids := []int{}
	for _, e := range r.Events {
		if e.Outcome == OutcomeDied {
			ids = append(ids, e.PieceID)
		}
	}
	return ids
}

// Resolve computes the outcome of the turn committed on board. board is not modified.
// Both sides' turns must be legal.
func Resolve(board *Board) (Resolution, error) {
	for _, color := range []Color{White, Black} {
		if tc := board.CheckTurn(color); !tc.Legal() {
			return Resolution{}, fmt.Errorf("resolve turn %d: %s turn illegal (%d/%d moves, %d/%d predictions): %w",
				board.Turn, color, tc.Moves, tc.MaxMoves, tc.Predictions, tc.MaxPredictions, ErrInvariantViolation)
		}
	}

	next := board.Clone()
	next.Pieces = next.Alive()
	sort.Slice(next.Pieces, func(i, j int) bool { return next.Pieces[i].ID < next.Pieces[j].ID })

	fights := detectFights(next.Pieces)
	deaths := settleFights(fights)

	events := make([]Event, 0, len(next.Pieces))
	for _, death := range deaths {
		p := next.Piece(death.pieceID)
		at := death.at
		events = append(events, Event{
			PieceID:  p.ID,
			Outcome:  OutcomeDied,
			From:     p.Position,
			At:       &at,
			Halfway:  death.halfway,
			Notation: notation(p, OutcomeDied),
		})
	}

	dead := make(map[int]bool, len(deaths))
	for _, death := range deaths {
		dead[death.pieceID] = true
	}
	for _, p := range next.Pieces {
		if dead[p.ID] {
			p.Alive = false
			continue
		}
		if p.Move == nil {
			events = append(events, Event{PieceID: p.ID, Outcome: OutcomeStayed, From: p.Position, Notation: notation(p, OutcomeStayed)})
			continue
		}
		to := *p.Move
		events = append(events, Event{PieceID: p.ID, Outcome: OutcomeMoved, From: p.Position, To: &to, Notation: notation(p, OutcomeMoved)})
		p.Position = to
	}

	next.clearCommitments()
	next.Turn++

	return Resolution{
		Turn:   board.Turn,
		Board:  next,
		Fights: fights,
		Events: events,
	}, nil
}

// detectFights finds every pair that shares a final square, and every exact swap where
// at least one side walked into a predicted move.
func detectFights(pieces []*Piece) []Fight {
	fights := []Fight{}
	for i := 0; i < len(pieces); i++ {
		for j := i + 1; j < len(pieces); j++ {
			a, b := pieces[i], pieces[j]
			switch {
			case a.FinalPosition() == b.FinalPosition():
				fights = append(fights, newFight(a, b, a.FinalPosition().Point(), false))
			case isAmbushedSwap(a, b):
				fights = append(fights, newFight(a, b, Midpoint(a.Position, b.Position), true))
			}
		}
	}
	return fights
}

func isAmbushedSwap(a, b *Piece) bool {
	if a.Move == nil || b.Move == nil {
		return false
	}
	if *a.Move != b.Position || *b.Move != a.Position {
		return false
	}
	return predicted(a) || predicted(b)
}

func predicted(p *Piece) bool {
	return p.Move != nil && p.Prediction != nil && *p.Move == *p.Prediction
}

// newFight decides the fight from the pre-resolution powers of both pieces.
func newFight(a, b *Piece, at Point, halfway bool) Fight {
	if a.ID > b.ID {
		a, b = b, a
	}
	f := Fight{A: a.ID, B: b.ID, PowerA: a.Power(), PowerB: b.Power(), At: at, Halfway: halfway}
	switch {
	case f.PowerA > f.PowerB:
		f.Losers = []int{b.ID}
	case f.PowerB > f.PowerA:
		f.Losers = []int{a.ID}
	default:
		f.Losers = []int{a.ID, b.ID}
	}
	return f
}

type death struct {
	pieceID int
	at      Point
	halfway bool
}

// settleFights collects the losers of every fight. A piece that loses several fights dies
// once, at the first of them.
func settleFights(fights []Fight) []death {
	deaths := []death{}
	seen := map[int]bool{}
	for _, f := range fights {
		for _, id := range f.Losers {
			if seen[id] {
				continue
			}
			seen[id] = true
			deaths = append(deaths, death{pieceID: id, at: f.At, halfway: f.Halfway})
		}
	}
	return deaths
}

// ApplyResolution replays a resolution computed elsewhere onto a replica of the board it
// was computed from.
func ApplyResolution(board *Board, res Resolution) (*Board, error) {
	if board.Turn != res.Turn {
		return nil, fmt.Errorf("apply resolution for turn %d on turn %d: %w", res.Turn, board.Turn, ErrInvariantViolation)
	}
	next := board.Clone()
	next.Pieces = next.Alive()
	sort.Slice(next.Pieces, func(i, j int) bool { return next.Pieces[i].ID < next.Pieces[j].ID })

	for _, e := range res.Events {
		p := next.Piece(e.PieceID)
		if p == nil {
			return nil, fmt.Errorf("apply resolution: piece %d: %w", e.PieceID, ErrUnknownPiece)
		}
		switch e.Outcome {
		case OutcomeDied:
			p.Alive = false
		case OutcomeMoved:
			if e.To == nil {
				return nil, fmt.Errorf("apply resolution: piece %d moved without destination: %w", e.PieceID, ErrInvariantViolation)
			}
			p.Position = *e.To
		}
	}

	next.clearCommitments()
	next.Turn++
	return next, nil
}

func notation(p *Piece, outcome Outcome) string {
	prefix := p.Kind.notation() + p.Position.Notation()
	switch outcome {
	case OutcomeMoved:
		return prefix + "-" + p.Move.Notation()
	case OutcomeDied:
		return prefix + "x"
	default:
		return prefix
	}
}
