package model

import "fmt"

type PieceKind string

func (k PieceKind) notation() string {
	switch k {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	case Pawn:
		return ""
	}
	return "?"
}

const (
	King   PieceKind = "king"
	Queen  PieceKind = "queen"
	Rook   PieceKind = "rook"
	Bishop PieceKind = "bishop"
	Knight PieceKind = "knight"
	Pawn   PieceKind = "pawn"
)

// Piece is a single piece on the board. Move is the owner's commitment for this turn,
// Prediction is the opponent's guess about where this piece will go.
type Piece struct {
	ID         int       `json:"id"`
	Kind       PieceKind `json:"kind"`
	Color      Color     `json:"color"`
	Position   Position  `json:"position"`
	Move       *Position `json:"move"`
	Prediction *Position `json:"prediction"`
	Alive      bool      `json:"alive"`
}

// Power is the fighting strength of the piece this turn. Moving adds one;
// a move the opponent predicted exactly costs two.
func (p *Piece) Power() int {
	power := 0
	if p.Move != nil {
		power++
		if p.Prediction != nil && *p.Move == *p.Prediction {
			power -= 2
		}
	}
	return power
}

// FinalPosition is where the piece ends the turn if it survives.
func (p *Piece) FinalPosition() Position {
	if p.Move != nil {
		return *p.Move
	}
	return p.Position
}

func (p *Piece) String() string {
	return fmt.Sprintf("%s %s#%d@%s", p.Color, p.Kind, p.ID, p.Position.Notation())
}

func (p *Piece) clone() *Piece {
	c := *p
	if p.Move != nil {
		m := *p.Move
		c.Move = &m
	}
	if p.Prediction != nil {
		pr := *p.Prediction
		c.Prediction = &pr
	}
	return &c
}

// Board is the authoritative piece collection. Pieces are kept in ascending id order;
// a piece that died on the last resolution stays in the collection, not alive, for one turn.
type Board struct {
	Turn   int      `json:"turn"`
	Pieces []*Piece `json:"pieces"`
}

func NewEmptyBoard() *Board {
	return &Board{Turn: 1, Pieces: make([]*Piece, 0, 32)}
}

// NewBoard returns the standard opening setup, white on ranks 1 and 2.
func NewBoard() *Board {
	board := NewEmptyBoard()
	backRank := []PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for _, color := range []Color{White, Black} {
		home := 0
		if color == Black {
			home = BoardSize - 1
		}
		for x, kind := range backRank {
			board.mustPlace(kind, color, Position{X: x, Y: home})
		}
		for x := 0; x < BoardSize; x++ {
			board.mustPlace(Pawn, color, Position{X: x, Y: color.PawnRank()})
		}
	}
	return board
}

// Place adds a living piece. The square must not hold another living piece.
func (b *Board) Place(kind PieceKind, color Color, pos Position) (*Piece, error) {
	if _, err := TryPosition(pos.X, pos.Y); err != nil {
		return nil, err
	}
	if other := b.At(pos); other != nil {
		return nil, fmt.Errorf("place %s %s at %s: occupied by %s", color, kind, pos.Notation(), other)
	}
	piece := &Piece{
		ID:       b.nextID(),
		Kind:     kind,
		Color:    color,
		Position: pos,
		Alive:    true,
	}
	b.Pieces = append(b.Pieces, piece)
	return piece, nil
}

func (b *Board) mustPlace(kind PieceKind, color Color, pos Position) {
	if _, err := b.Place(kind, color, pos); err != nil {
		panic(err)
	}
}

func (b *Board) nextID() int {
	next := 1
	for _, p := range b.Pieces {
		if p.ID >= next {
			next = p.ID + 1
		}
	}
	return next
}

// Piece looks a piece up by id, dead or alive.
func (b *Board) Piece(id int) *Piece {
	for _, p := range b.Pieces {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// At returns the living piece resting on pos, or nil.
func (b *Board) At(pos Position) *Piece {
	for _, p := range b.Pieces {
		if p.Alive && p.Position == pos {
			return p
		}
	}
	return nil
}

func (b *Board) Alive() []*Piece {
	alive := make([]*Piece, 0, len(b.Pieces))
	for _, p := range b.Pieces {
		if p.Alive {
			alive = append(alive, p)
		}
	}
	return alive
}

// OfColor returns the living pieces of one side.
func (b *Board) OfColor(color Color) []*Piece {
	pieces := []*Piece{}
	for _, p := range b.Pieces {
		if p.Alive && p.Color == color {
			pieces = append(pieces, p)
		}
	}
	return pieces
}

func (b *Board) HasKing(color Color) bool {
	for _, p := range b.OfColor(color) {
		if p.Kind == King {
			return true
		}
	}
	return false
}

func (b *Board) Clone() *Board {
	c := &Board{Turn: b.Turn, Pieces: make([]*Piece, len(b.Pieces))}
	for i, p := range b.Pieces {
		c.Pieces[i] = p.clone()
	}
	return c
}

// clearCommitments wipes every move and prediction on the board.
func (b *Board) clearCommitments() {
	for _, p := range b.Pieces {
		p.Move = nil
		p.Prediction = nil
	}
}
