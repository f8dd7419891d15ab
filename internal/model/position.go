package model

import (
	"fmt"
	"math"
)

const BoardSize = 8

// Position is a square on the board. Both coordinates are always in [0, 7].
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NewPosition clamps both coordinates onto the board. It never fails.
func NewPosition(x, y int) Position {
	return Position{X: clamp(x), Y: clamp(y)}
}

// TryPosition only succeeds for coordinates already on the board.
func TryPosition(x, y int) (Position, error) {
	if !onBoard(x) || !onBoard(y) {
		return Position{}, fmt.Errorf("(%d,%d): %w", x, y, ErrOutOfBounds)
	}
	return Position{X: x, Y: y}, nil
}

// Add steps from p by (dx, dy). An off-board result is an error, never clamped.
func (p Position) Add(dx, dy int) (Position, error) {
	return TryPosition(p.X+dx, p.Y+dy)
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Notation returns the algebraic square name, a1 being (0,0).
func (p Position) Notation() string {
	return fmt.Sprintf("%c%d", 'a'+p.X, p.Y+1)
}

func ManhattanDistance(a, b Position) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// MarshalBinary encodes p as two bytes, x then y.
func (p Position) MarshalBinary() ([]byte, error) {
	if !onBoard(p.X) || !onBoard(p.Y) {
		return nil, fmt.Errorf("marshal %s: %w", p, ErrOutOfBounds)
	}
	return []byte{byte(p.X), byte(p.Y)}, nil
}

func (p *Position) UnmarshalBinary(data []byte) error {
	if len(data) != 2 {
		return fmt.Errorf("position wire form needs 2 bytes, got %d", len(data))
	}
	pos, err := TryPosition(int(data[0]), int(data[1]))
	if err != nil {
		return err
	}
	*p = pos
	return nil
}

// World projects the square centre into world space, the board centred on the origin.
func (p Position) World() (x, z float64) {
	return float64(p.X) - 3.5, float64(p.Y) - 3.5
}

// PositionFromWorld maps a world point to the square under it, if any.
func PositionFromWorld(x, z float64) (Position, error) {
	return TryPosition(worldToBoard(x), worldToBoard(z))
}

// ClampFromWorld maps a world point to the nearest square.
func ClampFromWorld(x, z float64) Position {
	return NewPosition(worldToBoard(x), worldToBoard(z))
}

// Point is a location in board coordinates that may fall between squares.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Position) Point() Point {
	return Point{X: float64(p.X), Y: float64(p.Y)}
}

func Midpoint(a, b Position) Point {
	return Point{X: float64(a.X+b.X) / 2, Y: float64(a.Y+b.Y) / 2}
}

func worldToBoard(v float64) int {
	return int(math.Floor(v + 3.5 + 0.5))
}

func onBoard(v int) bool {
	return v >= 0 && v < BoardSize
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v >= BoardSize {
		return BoardSize - 1
	}
	return v
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
