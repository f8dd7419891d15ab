package model

import (
	"errors"
	"fmt"
	"sync"

	"github.com/benbeisheim/predictchess-backend/internal/logger"
	"github.com/benbeisheim/predictchess-backend/internal/ws"
	"go.uber.org/zap"
)

type Phase string

const (
	PhaseCommitting Phase = "committing"
	PhaseResolving  Phase = "resolving"
	PhaseFinished   Phase = "finished"
)

type GameResult struct {
	Winner *Color `json:"winner"`
	Reason string `json:"reason"`
}

// Game is one match: the authoritative board, both players' ready handshake, and the
// sockets watching it. The game is the single resolver for its turns.
type Game struct {
	ID          string
	mu          sync.Mutex
	board       *Board
	players     map[Color]*Player
	phase       Phase
	history     []TurnRecord
	result      *GameResult
	version     int
	connections *GameConnections
}

// GameState is the board as one viewer is allowed to see it. Commitments of the other
// side stay hidden until resolution.
type GameState struct {
	GameID  string   `json:"gameId"`
	Version int      `json:"version"`
	Viewer  Color    `json:"viewer"`
	Phase   Phase    `json:"phase"`
	Turn    int      `json:"turn"`
	Pieces  []*Piece `json:"pieces"`
	Players struct {
		White ClientPlayer `json:"white"`
		Black ClientPlayer `json:"black"`
	} `json:"players"`
	TurnCheck *TurnCheck   `json:"turnCheck"`
	LastTurn  *TurnRecord  `json:"lastTurn"`
	History   []TurnRecord `json:"history"`
	Result    *GameResult  `json:"result"`
}

func NewGame(id string) *Game {
	return NewGameWithBoard(id, NewBoard())
}

// NewGameWithBoard starts a game from a prepared position.
func NewGameWithBoard(id string, board *Board) *Game {
	return &Game{
		ID:          id,
		board:       board,
		players:     make(map[Color]*Player, 2),
		phase:       PhaseCommitting,
		history:     make([]TurnRecord, 0),
		connections: NewGameConnections(),
	}
}

// AddPlayer seats playerID in the first free color. Rejoining keeps the seat.
func (g *Game) AddPlayer(playerID string) (Color, error) {
	var seat Color
	err := g.update(func() error {
		if p := g.playerByID(playerID); p != nil {
			seat = p.Color
			return nil
		}
		for _, color := range []Color{White, Black} {
			if g.players[color] == nil {
				clock := NewClock()
				clock.Start()
				g.players[color] = &Player{ID: playerID, Color: color, clock: clock}
				seat = color
				logger.Info("player joined game",
					zap.String("game", g.ID), zap.String("player", playerID), zap.String("color", string(color)))
				return nil
			}
		}
		return ErrGameFull
	})
	if err != nil {
		return "", err
	}
	return seat, nil
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playerByID(playerID) != nil
}

// ColorOf returns the seat of playerID, or "" for a spectator.
func (g *Game) ColorOf(playerID string) Color {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p := g.playerByID(playerID); p != nil {
		return p.Color
	}
	return ""
}

func (g *Game) playerByID(playerID string) *Player {
	if playerID == "" {
		return nil
	}
	for _, p := range g.players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// Commit routes a commit request the way the input layer sends it: own pieces get a
// move, enemy pieces get a prediction.
func (g *Game) Commit(playerID string, c WSCommit) error {
	return g.update(func() error {
		player, piece, err := g.commitTarget(playerID, c.PieceID, c.Target)
		if err != nil {
			return err
		}
		if piece.Color == player.Color {
			setCommitment(&piece.Move, piece, c.Target)
		} else {
			setCommitment(&piece.Prediction, piece, c.Target)
		}
		return nil
	})
}

// SetMove commits one of the player's own pieces to target. A target equal to the
// piece's square clears the move.
func (g *Game) SetMove(playerID string, pieceID int, target Position) error {
	return g.update(func() error {
		player, piece, err := g.commitTarget(playerID, pieceID, target)
		if err != nil {
			return err
		}
		if piece.Color != player.Color {
			return fmt.Errorf("move piece %d: %w", pieceID, ErrNotYourPiece)
		}
		setCommitment(&piece.Move, piece, target)
		return nil
	})
}

// SetPrediction records the player's guess about where an enemy piece will move.
// A target equal to the piece's square clears the prediction.
func (g *Game) SetPrediction(playerID string, pieceID int, target Position) error {
	return g.update(func() error {
		player, piece, err := g.commitTarget(playerID, pieceID, target)
		if err != nil {
			return err
		}
		if piece.Color == player.Color {
			return fmt.Errorf("predict piece %d: %w", pieceID, ErrNotEnemyPiece)
		}
		setCommitment(&piece.Prediction, piece, target)
		return nil
	})
}

// ResetTurn clears the player's moves and predictions.
func (g *Game) ResetTurn(playerID string) error {
	return g.update(func() error {
		player, err := g.committingPlayer(playerID)
		if err != nil {
			return err
		}
		for _, p := range g.board.OfColor(player.Color) {
			p.Move = nil
		}
		for _, p := range g.board.OfColor(player.Color.Invert()) {
			p.Prediction = nil
		}
		return nil
	})
}

func setCommitment(field **Position, piece *Piece, target Position) {
	if target == piece.Position {
		*field = nil
		return
	}
	t := target
	*field = &t
}

func (g *Game) commitTarget(playerID string, pieceID int, target Position) (*Player, *Piece, error) {
	player, err := g.committingPlayer(playerID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := TryPosition(target.X, target.Y); err != nil {
		return nil, nil, err
	}
	piece := g.board.Piece(pieceID)
	if piece == nil {
		return nil, nil, fmt.Errorf("piece %d: %w", pieceID, ErrUnknownPiece)
	}
	if !piece.Alive {
		return nil, nil, fmt.Errorf("piece %d: %w", pieceID, ErrPieceDead)
	}
	return player, piece, nil
}

func (g *Game) committingPlayer(playerID string) (*Player, error) {
	player := g.playerByID(playerID)
	if player == nil {
		return nil, ErrPlayerNotFound
	}
	if g.phase == PhaseFinished {
		return nil, ErrGameOver
	}
	if player.Ready {
		return nil, ErrPlayerReady
	}
	return player, nil
}

// SetReady marks the player ready or not. Readying with an illegal turn is refused and
// the player stays committing. When both players are ready the turn is resolved and
// the resolution returned.
func (g *Game) SetReady(playerID string, ready bool) (TurnCheck, *Resolution, error) {
	var (
		check TurnCheck
		res   *Resolution
	)
	err := g.update(func() error {
		player := g.playerByID(playerID)
		if player == nil {
			return ErrPlayerNotFound
		}
		if g.phase == PhaseFinished {
			return ErrGameOver
		}
		check = g.board.CheckTurn(player.Color)

		if !ready {
			if player.Ready {
				player.Ready = false
				player.clock.Start()
			}
			return nil
		}
		if !check.Legal() {
			player.Ready = false
			return fmt.Errorf("%s: %w", player.Color, ErrIllegalCommitment)
		}
		player.Ready = true
		player.clock.Stop()

		opponent := g.players[player.Color.Invert()]
		if opponent == nil || !opponent.Ready {
			return nil
		}
		resolved, err := g.resolve()
		if err != nil {
			return err
		}
		res = &resolved
		return nil
	})
	return check, res, err
}

// resolve runs the turn once. Both players must be ready.
func (g *Game) resolve() (Resolution, error) {
	if g.phase != PhaseCommitting {
		return Resolution{}, fmt.Errorf("resolve in phase %s: %w", g.phase, ErrInvariantViolation)
	}
	for _, color := range []Color{White, Black} {
		if p := g.players[color]; p == nil || !p.Ready {
			return Resolution{}, fmt.Errorf("resolve with %s not ready: %w", color, ErrInvariantViolation)
		}
	}

	g.phase = PhaseResolving
	res, err := Resolve(g.board)
	if err != nil {
		g.phase = PhaseCommitting
		logger.Error("resolution refused", zap.String("game", g.ID), zap.Error(err))
		return Resolution{}, err
	}

	g.board = res.Board
	g.history = append(g.history, newTurnRecord(res))
	for _, p := range g.players {
		p.Ready = false
	}
	g.phase = PhaseCommitting
	g.checkResult()
	if g.phase == PhaseCommitting {
		for _, p := range g.players {
			p.clock.Start()
		}
	}

	logger.Info("turn resolved",
		zap.String("game", g.ID),
		zap.Int("turn", res.Turn),
		zap.Int("fights", len(res.Fights)),
		zap.Ints("deaths", res.Deaths()))
	return res, nil
}

func (g *Game) checkResult() {
	whiteKing := g.board.HasKing(White)
	blackKing := g.board.HasKing(Black)
	switch {
	case whiteKing && blackKing:
		return
	case !whiteKing && !blackKing:
		g.result = &GameResult{Reason: "both kings fell"}
	case whiteKing:
		winner := White
		g.result = &GameResult{Winner: &winner, Reason: "king captured"}
	default:
		winner := Black
		g.result = &GameResult{Winner: &winner, Reason: "king captured"}
	}
	g.finish()
}

func (g *Game) finish() {
	g.phase = PhaseFinished
	for _, p := range g.players {
		p.clock.Stop()
	}
}

// Resign ends the game in the opponent's favour.
func (g *Game) Resign(playerID string) error {
	return g.update(func() error {
		player := g.playerByID(playerID)
		if player == nil {
			return ErrPlayerNotFound
		}
		if g.phase == PhaseFinished {
			return ErrGameOver
		}
		winner := player.Color.Invert()
		g.result = &GameResult{Winner: &winner, Reason: "resignation"}
		g.finish()
		return nil
	})
}

func (g *Game) GetState() GameState {
	return g.StateFor("")
}

// StateFor returns the state as seen by viewer; an empty color is a spectator.
func (g *Game) StateFor(viewer Color) GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateFor(viewer)
}

func (g *Game) stateFor(viewer Color) GameState {
	state := GameState{
		GameID:  g.ID,
		Version: g.version,
		Viewer:  viewer,
		Phase:   g.phase,
		Turn:    g.board.Turn,
		Pieces:  redact(g.board, viewer),
		History: append([]TurnRecord(nil), g.history...),
		Result:  g.result,
	}
	state.Players.White = g.players[White].client()
	state.Players.Black = g.players[Black].client()
	if viewer.Valid() {
		tc := g.board.CheckTurn(viewer)
		state.TurnCheck = &tc
	}
	if n := len(g.history); n > 0 {
		last := g.history[n-1]
		state.LastTurn = &last
	}
	return state
}

// redact copies the pieces, keeping only the commitments viewer made: moves on their
// own pieces and predictions on the enemy's.
func redact(board *Board, viewer Color) []*Piece {
	pieces := make([]*Piece, 0, len(board.Pieces))
	for _, p := range board.Pieces {
		c := p.clone()
		if c.Color != viewer {
			c.Move = nil
		}
		if !viewer.Valid() || c.Color == viewer {
			c.Prediction = nil
		}
		pieces = append(pieces, c)
	}
	return pieces
}

// Board returns a copy of the authoritative board.
func (g *Game) Board() *Board {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.Clone()
}

// update runs fn under the game lock and, if it succeeded, pushes fresh state to every
// connection after the lock is released.
func (g *Game) update(fn func() error) error {
	g.mu.Lock()
	turn := g.board.Turn
	if err := fn(); err != nil {
		g.mu.Unlock()
		return err
	}
	g.version++
	messages := g.outboxLocked(turn)
	g.mu.Unlock()

	g.connections.deliver(messages)
	return nil
}

// outboxLocked builds one state message per connection, preceded by the turn record if
// a resolution happened since turnBefore.
func (g *Game) outboxLocked(turnBefore int) []outbound {
	var resolution *ws.Message
	if g.board.Turn != turnBefore && len(g.history) > 0 {
		msg, err := ws.NewMessage(ws.MessageTypeResolution, g.history[len(g.history)-1])
		if err != nil {
			logger.Error("failed to marshal resolution", zap.String("game", g.ID), zap.Error(err))
		} else {
			resolution = &msg
		}
	}

	messages := []outbound{}
	for _, playerID := range g.connections.playerIDs() {
		var viewer Color
		if p := g.playerByID(playerID); p != nil {
			viewer = p.Color
		}
		if resolution != nil {
			messages = append(messages, outbound{playerID: playerID, msg: *resolution})
		}
		msg, err := ws.NewMessage(ws.MessageTypeGameState, g.stateFor(viewer))
		if err != nil {
			logger.Error("failed to marshal state", zap.String("game", g.ID), zap.Error(err))
			continue
		}
		messages = append(messages, outbound{playerID: playerID, msg: msg})
	}
	return messages
}

// RegisterConnection attaches a socket for a player or spectator and sends it the
// current state. A second socket for the same player is closed.
func (g *Game) RegisterConnection(playerID string, conn Conn) error {
	if !g.connections.add(playerID, conn) {
		logger.Info("rejecting duplicate connection", zap.String("game", g.ID), zap.String("player", playerID))
		rejectDuplicate(conn)
		return nil
	}
	logger.Info("registered connection",
		zap.String("game", g.ID), zap.String("player", playerID), zap.String("conn", connID(conn)))

	g.mu.Lock()
	var viewer Color
	if p := g.playerByID(playerID); p != nil {
		viewer = p.Color
	}
	msg, err := ws.NewMessage(ws.MessageTypeGameState, g.stateFor(viewer))
	g.mu.Unlock()
	if err != nil {
		return err
	}
	g.connections.deliver([]outbound{{playerID: playerID, msg: msg}})
	return nil
}

func (g *Game) UnregisterConnection(playerID string, conn Conn) {
	g.connections.remove(playerID, conn)
}

func (g *Game) ConnectionCount() int {
	return len(g.connections.playerIDs())
}

func (g *Game) Finished() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase == PhaseFinished
}

// IsUserError reports whether err is a refusal the client caused, as opposed to a defect.
func IsUserError(err error) bool {
	for _, target := range []error{
		ErrOutOfBounds, ErrIllegalCommitment, ErrGameFull, ErrGameOver, ErrPlayerNotFound,
		ErrUnknownPiece, ErrPieceDead, ErrNotYourPiece, ErrNotEnemyPiece, ErrPlayerReady,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
