package model

var (
	rookDirs   = []Position{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}}
	bishopDirs = []Position{{X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1}}
	kingDirs   = append(append([]Position{}, rookDirs...), bishopDirs...)
	knightDirs = []Position{{X: 2, Y: 1}, {X: 2, Y: -1}, {X: -2, Y: 1}, {X: -2, Y: -1}, {X: 1, Y: 2}, {X: 1, Y: -2}, {X: -1, Y: 2}, {X: -1, Y: -2}}
)

// LegalDestinations lists the squares piece may move to this turn. Only resting
// positions of living pieces matter; pending moves and predictions are ignored.
func (b *Board) LegalDestinations(piece *Piece) []Position {
	if piece == nil || !piece.Alive {
		return []Position{}
	}
	switch piece.Kind {
	case Pawn:
		return b.pawnDestinations(piece)
	case Knight:
		return b.knightDestinations(piece)
	case Bishop:
		return b.rayDestinations(piece, bishopDirs, BoardSize)
	case Rook:
		return b.rayDestinations(piece, rookDirs, BoardSize)
	case Queen:
		return b.rayDestinations(piece, kingDirs, BoardSize)
	case King:
		return b.rayDestinations(piece, kingDirs, 1)
	default:
		return []Position{}
	}
}

// IsLegalDestination reports whether to is in LegalDestinations(piece).
func (b *Board) IsLegalDestination(piece *Piece, to Position) bool {
	for _, dest := range b.LegalDestinations(piece) {
		if dest == to {
			return true
		}
	}
	return false
}

func (b *Board) pawnDestinations(piece *Piece) []Position {
	moves := []Position{}
	dir := piece.Color.Forward()

	if one, err := piece.Position.Add(0, dir); err == nil && b.At(one) == nil {
		moves = append(moves, one)
		if piece.Position.Y == piece.Color.PawnRank() {
			if two, err := piece.Position.Add(0, dir*2); err == nil && b.At(two) == nil {
				moves = append(moves, two)
			}
		}
	}
	for _, dx := range []int{-1, 1} {
		target, err := piece.Position.Add(dx, dir)
		if err != nil {
			continue
		}
		if occupant := b.At(target); occupant != nil && occupant.Color != piece.Color {
			moves = append(moves, target)
		}
	}
	return moves
}

func (b *Board) knightDestinations(piece *Piece) []Position {
	moves := []Position{}
	for _, dir := range knightDirs {
		target, err := piece.Position.Add(dir.X, dir.Y)
		if err != nil {
			continue
		}
		if ManhattanDistance(piece.Position, target) != 3 {
			continue
		}
		if occupant := b.At(target); occupant != nil && occupant.Color == piece.Color {
			continue
		}
		moves = append(moves, target)
	}
	return moves
}

// rayDestinations walks each direction up to maxSteps squares. A friend stops the ray
// before its square, an enemy stops it on its square.
func (b *Board) rayDestinations(piece *Piece, dirs []Position, maxSteps int) []Position {
	moves := []Position{}
	for _, dir := range dirs {
		target := piece.Position
		for step := 0; step < maxSteps; step++ {
			next, err := target.Add(dir.X, dir.Y)
			if err != nil {
				break
			}
			target = next
			occupant := b.At(target)
			if occupant == nil {
				moves = append(moves, target)
				continue
			}
			if occupant.Color != piece.Color {
				moves = append(moves, target)
			}
			break
		}
	}
	return moves
}
