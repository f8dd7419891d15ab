package model

import (
	"errors"
	"testing"
)

func TestNewPositionClampsIntoBoard(t *testing.T) {
	for x := -3; x <= 10; x++ {
		for y := -3; y <= 10; y++ {
			p := NewPosition(x, y)
			if p.X < 0 || p.X > 7 || p.Y < 0 || p.Y > 7 {
				t.Fatalf("NewPosition(%d,%d) = %s, off board", x, y, p)
			}
			if onBoard(x) && onBoard(y) && (p.X != x || p.Y != y) {
				t.Fatalf("NewPosition(%d,%d) = %s, expected unchanged", x, y, p)
			}
		}
	}
}

func TestTryPositionRejectsOffBoard(t *testing.T) {
	for x := -3; x <= 10; x++ {
		for y := -3; y <= 10; y++ {
			p, err := TryPosition(x, y)
			if onBoard(x) && onBoard(y) {
				if err != nil {
					t.Fatalf("TryPosition(%d,%d) unexpected error: %v", x, y, err)
				}
				if p.X != x || p.Y != y {
					t.Fatalf("TryPosition(%d,%d) = %s", x, y, p)
				}
				continue
			}
			if !errors.Is(err, ErrOutOfBounds) {
				t.Fatalf("TryPosition(%d,%d) expected ErrOutOfBounds, got %v", x, y, err)
			}
		}
	}
}

func TestAddNeverClamps(t *testing.T) {
	corner := Position{X: 7, Y: 7}
	if _, err := corner.Add(1, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected stepping off the board to fail, got %v", err)
	}
	got, err := corner.Add(-2, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (Position{X: 5, Y: 6}) {
		t.Fatalf("expected (5,6), got %s", got)
	}
}

func TestManhattanDistance(t *testing.T) {
	tests := []struct {
		a, b Position
		want int
	}{
		{Position{0, 0}, Position{0, 0}, 0},
		{Position{0, 0}, Position{1, 2}, 3},
		{Position{7, 0}, Position{0, 7}, 14},
		{Position{4, 4}, Position{2, 5}, 3},
	}
	for _, tt := range tests {
		if got := ManhattanDistance(tt.a, tt.b); got != tt.want {
			t.Fatalf("ManhattanDistance(%s,%s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPositionWireForm(t *testing.T) {
	data, err := Position{X: 6, Y: 2}.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if len(data) != 2 || data[0] != 6 || data[1] != 2 {
		t.Fatalf("expected [6 2], got %v", data)
	}

	var p Position
	if err := p.UnmarshalBinary(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p != (Position{X: 6, Y: 2}) {
		t.Fatalf("expected (6,2), got %s", p)
	}

	if err := p.UnmarshalBinary([]byte{8, 0}); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected out of bounds for x=8, got %v", err)
	}
	if err := p.UnmarshalBinary([]byte{1}); err == nil {
		t.Fatalf("expected short payload to fail")
	}
}

func TestWorldProjectionIsInvertible(t *testing.T) {
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			p := Position{X: x, Y: y}
			wx, wz := p.World()
			back, err := PositionFromWorld(wx, wz)
			if err != nil {
				t.Fatalf("PositionFromWorld(%v,%v): %v", wx, wz, err)
			}
			if back != p {
				t.Fatalf("round trip of %s gave %s", p, back)
			}
		}
	}

	if _, err := PositionFromWorld(4.2, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected a point past the edge to be off board, got %v", err)
	}
	if got := ClampFromWorld(4.2, -9); got != (Position{X: 7, Y: 0}) {
		t.Fatalf("expected clamp to (7,0), got %s", got)
	}
}

func TestNotation(t *testing.T) {
	if got := (Position{X: 4, Y: 1}).Notation(); got != "e2" {
		t.Fatalf("expected e2, got %s", got)
	}
	if got := Midpoint(Position{X: 1, Y: 0}, Position{X: 2, Y: 2}); got != (Point{X: 1.5, Y: 1}) {
		t.Fatalf("unexpected midpoint %+v", got)
	}
}
