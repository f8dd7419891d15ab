package model

import "testing"

// square parses algebraic notation, a1 being (0,0).
func square(t *testing.T, name string) Position {
	t.Helper()
	if len(name) != 2 {
		t.Fatalf("bad square %q", name)
	}
	p, err := TryPosition(int(name[0]-'a'), int(name[1]-'1'))
	if err != nil {
		t.Fatalf("bad square %q: %v", name, err)
	}
	return p
}

func place(t *testing.T, b *Board, kind PieceKind, color Color, at string) *Piece {
	t.Helper()
	p, err := b.Place(kind, color, square(t, at))
	if err != nil {
		t.Fatalf("place %s %s at %s: %v", color, kind, at, err)
	}
	return p
}

func commitMove(t *testing.T, p *Piece, to string) {
	t.Helper()
	dest := square(t, to)
	p.Move = &dest
}

func commitPrediction(t *testing.T, p *Piece, to string) {
	t.Helper()
	dest := square(t, to)
	p.Prediction = &dest
}

func destinationSet(ps []Position) map[Position]bool {
	set := make(map[Position]bool, len(ps))
	for _, p := range ps {
		set[p] = true
	}
	return set
}

func expectDestinations(t *testing.T, b *Board, p *Piece, want ...string) {
	t.Helper()
	got := destinationSet(b.LegalDestinations(p))
	if len(got) != len(want) {
		t.Fatalf("%s: expected %d destinations %v, got %d %v", p, len(want), want, len(got), b.LegalDestinations(p))
	}
	for _, w := range want {
		if !got[square(t, w)] {
			t.Fatalf("%s: expected %s among destinations %v", p, w, b.LegalDestinations(p))
		}
	}
}
