package model

// WSCommit is a commit request from the input layer: a move when the piece is the
// player's own, a prediction when it belongs to the opponent. Setting Target to the
// piece's current square clears the commitment.
type WSCommit struct {
	PieceID int      `json:"pieceId"`
	Target  Position `json:"target"`
}

type WSReady struct {
	Ready bool `json:"ready"`
}

// TurnRecord is one resolved turn kept in the game history.
type TurnRecord struct {
	Turn   int     `json:"turn"`
	Fights []Fight `json:"fights"`
	Events []Event `json:"events"`
}

func newTurnRecord(res Resolution) TurnRecord {
	return TurnRecord{Turn: res.Turn, Fights: res.Fights, Events: res.Events}
}
