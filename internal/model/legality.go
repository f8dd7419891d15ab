package model

const (
	MaxMoves       = 3
	MaxPredictions = 3
)

// TurnCheck is one side's legality report for the current commit phase.
type TurnCheck struct {
	Color            Color `json:"color"`
	Moves            int   `json:"moves"`
	MaxMoves         int   `json:"maxMoves"`
	Predictions      int   `json:"predictions"`
	MaxPredictions   int   `json:"maxPredictions"`
	MovesLegal       bool  `json:"movesLegal"`
	PredictionsLegal bool  `json:"predictionsLegal"`
}

func (tc TurnCheck) MoveCountOk() bool {
	return tc.Moves <= tc.MaxMoves
}

func (tc TurnCheck) PredictionCountOk() bool {
	return tc.Predictions <= tc.MaxPredictions
}

func (tc TurnCheck) Legal() bool {
	return tc.MoveCountOk() && tc.PredictionCountOk() && tc.MovesLegal && tc.PredictionsLegal
}

// MoveIsLegal holds when the piece has no move, or its move is a legal destination
// that no friendly piece is also moving to.
func (b *Board) MoveIsLegal(piece *Piece) bool {
	if piece.Move == nil {
		return true
	}
	if !b.IsLegalDestination(piece, *piece.Move) {
		return false
	}
	for _, friend := range b.OfColor(piece.Color) {
		if friend.ID != piece.ID && friend.Move != nil && *friend.Move == *piece.Move {
			return false
		}
	}
	return true
}

// PredictionIsLegal holds when the piece has no prediction on it, or the prediction
// is a move the piece could legally make.
func (b *Board) PredictionIsLegal(piece *Piece) bool {
	if piece.Prediction == nil {
		return true
	}
	return b.IsLegalDestination(piece, *piece.Prediction)
}

// CheckTurn evaluates color's moves on its own pieces and predictions on enemy pieces.
func (b *Board) CheckTurn(color Color) TurnCheck {
	tc := TurnCheck{
		Color:            color,
		MaxMoves:         MaxMoves,
		MaxPredictions:   MaxPredictions,
		MovesLegal:       true,
		PredictionsLegal: true,
	}
	for _, p := range b.OfColor(color) {
		if p.Move != nil {
			tc.Moves++
		}
		if !b.MoveIsLegal(p) {
			tc.MovesLegal = false
		}
	}
	for _, p := range b.OfColor(color.Invert()) {
		if p.Prediction != nil {
			tc.Predictions++
		}
		if !b.PredictionIsLegal(p) {
			tc.PredictionsLegal = false
		}
	}
	return tc
}

func (b *Board) TurnIsLegal(color Color) bool {
	return b.CheckTurn(color).Legal()
}
