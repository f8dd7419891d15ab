package model

import "testing"

func TestCheckTurnCounts(t *testing.T) {
	tests := []struct {
		name        string
		moves       []string
		predictions []string
		wantLegal   bool
	}{
		{name: "Empty", wantLegal: true},
		{name: "ThreeMoves", moves: []string{"a2", "b2", "c2"}, wantLegal: true},
		{name: "FourMoves", moves: []string{"a2", "b2", "c2", "d2"}},
		{name: "ThreePredictions", predictions: []string{"a7", "b7", "c7"}, wantLegal: true},
		{name: "FourPredictions", predictions: []string{"a7", "b7", "c7", "d7"}},
		{name: "LimitsAreIndependent", moves: []string{"a2", "b2", "c2"}, predictions: []string{"a7", "b7", "c7"}, wantLegal: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			b := NewBoard()
			for _, sq := range tt.moves {
				commitMove(t, b.At(square(t, sq)), sq[:1]+"3")
			}
			for _, sq := range tt.predictions {
				commitPrediction(t, b.At(square(t, sq)), sq[:1]+"6")
			}

			tc := b.CheckTurn(White)
			if tc.Moves != len(tt.moves) || tc.Predictions != len(tt.predictions) {
				t.Fatalf("expected %d moves and %d predictions, got %+v", len(tt.moves), len(tt.predictions), tc)
			}
			if tc.MaxMoves != MaxMoves || tc.MaxPredictions != MaxPredictions {
				t.Fatalf("unexpected limits %+v", tc)
			}
			if tc.Legal() != tt.wantLegal || b.TurnIsLegal(White) != tt.wantLegal {
				t.Fatalf("expected legal=%v, got %+v", tt.wantLegal, tc)
			}
			if !b.TurnIsLegal(Black) {
				t.Fatalf("black did nothing and should be legal")
			}
		})
	}
}

func TestMoveIsLegal(t *testing.T) {
	b := NewEmptyBoard()
	near := place(t, b, Rook, White, "a1")
	far := place(t, b, Rook, White, "h3")
	enemy := place(t, b, Knight, Black, "b5")

	if !b.MoveIsLegal(near) {
		t.Fatalf("a piece without a move is always legal")
	}

	commitMove(t, near, "a3")
	if !b.MoveIsLegal(near) {
		t.Fatalf("a1-a3 should be legal")
	}

	commitMove(t, far, "a3")
	if b.MoveIsLegal(near) || b.MoveIsLegal(far) {
		t.Fatalf("two friends moving to the same square must both be illegal")
	}
	if b.CheckTurn(White).MovesLegal {
		t.Fatalf("turn with colliding friends should be illegal")
	}

	commitMove(t, far, "h5")
	commitMove(t, enemy, "a3")
	if !b.MoveIsLegal(near) || !b.MoveIsLegal(enemy) {
		t.Fatalf("moving onto a square an enemy also moves to is legal")
	}

	commitMove(t, near, "b2")
	if b.MoveIsLegal(near) {
		t.Fatalf("rook cannot move diagonally")
	}
}

func TestPredictionIsLegal(t *testing.T) {
	b := NewBoard()
	knight := b.At(square(t, "g8"))

	commitPrediction(t, knight, "f6")
	if !b.PredictionIsLegal(knight) || !b.CheckTurn(White).PredictionsLegal {
		t.Fatalf("g8-f6 is a legal guess")
	}

	commitPrediction(t, knight, "g6")
	if b.PredictionIsLegal(knight) {
		t.Fatalf("g8-g6 is not a knight move")
	}
	tc := b.CheckTurn(White)
	if tc.PredictionsLegal || tc.Legal() {
		t.Fatalf("an impossible guess makes the turn illegal, got %+v", tc)
	}
	if !b.CheckTurn(Black).Legal() {
		t.Fatalf("white's guesses do not affect black's turn")
	}
}

func TestCheckTurnIgnoresDeadPieces(t *testing.T) {
	b := NewEmptyBoard()
	dead := place(t, b, Queen, White, "d1")
	commitMove(t, dead, "h5")
	dead.Alive = false

	if tc := b.CheckTurn(White); tc.Moves != 0 || !tc.Legal() {
		t.Fatalf("dead pieces should not count, got %+v", tc)
	}
}
