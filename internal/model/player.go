package model

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Invert() Color {
	if c == White {
		return Black
	}
	return White
}

// Forward is the y direction this side's pawns advance in.
func (c Color) Forward() int {
	if c == White {
		return 1
	}
	return -1
}

// PawnRank is the rank this side's pawns start on and may double-step from.
func (c Color) PawnRank() int {
	if c == White {
		return 1
	}
	return BoardSize - 2
}

func (c Color) Valid() bool {
	return c == White || c == Black
}

type Player struct {
	ID    string
	Color Color
	Ready bool
	clock *Clock
}

type ClientPlayer struct {
	ID        string `json:"name"`
	Color     Color  `json:"color"`
	Ready     bool   `json:"ready"`
	ThinkTime int    `json:"thinkTime"`
}

func (p *Player) client() ClientPlayer {
	if p == nil {
		return ClientPlayer{}
	}
	cp := ClientPlayer{ID: p.ID, Color: p.Color, Ready: p.Ready}
	if p.clock != nil {
		cp.ThinkTime = int(p.clock.GetTimeUsed().Milliseconds() / 100)
	}
	return cp
}
