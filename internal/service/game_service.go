package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/benbeisheim/predictchess-backend/internal/logger"
	"github.com/benbeisheim/predictchess-backend/internal/metrics"
	"github.com/benbeisheim/predictchess-backend/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type GameService struct {
	gameManager *GameManager
	publisher   ResultPublisher
	metrics     *metrics.Metrics
}

func NewGameService(gameManager *GameManager, publisher ResultPublisher, m *metrics.Metrics) *GameService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &GameService{
		gameManager: gameManager,
		publisher:   publisher,
		metrics:     m,
	}
}

func (gs *GameService) CreateGame() (string, error) {
	gameID := uuid.New().String()

	if err := gs.gameManager.CreateGame(gameID); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}
	return gameID, nil
}

func (gs *GameService) JoinGame(gameID string, playerID string) (model.Color, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return "", err
	}
	return game.AddPlayer(playerID)
}

// GetGameState returns the state as playerID may see it.
func (gs *GameService) GetGameState(gameID string, playerID string) (model.GameState, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.StateFor(game.ColorOf(playerID)), nil
}

func (gs *GameService) Commit(gameID string, playerID string, commit model.WSCommit) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Commit(playerID, commit)
}

func (gs *GameService) SetMove(gameID string, playerID string, commit model.WSCommit) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.SetMove(playerID, commit.PieceID, commit.Target)
}

func (gs *GameService) SetPrediction(gameID string, playerID string, commit model.WSCommit) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.SetPrediction(playerID, commit.PieceID, commit.Target)
}

func (gs *GameService) ResetTurn(gameID string, playerID string) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.ResetTurn(playerID)
}

// SetReady flips the player's ready flag. If that completes the handshake the turn is
// resolved here, counted, and published.
func (gs *GameService) SetReady(ctx context.Context, gameID string, playerID string, ready bool) (model.TurnCheck, *model.Resolution, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.TurnCheck{}, nil, err
	}

	check, res, err := game.SetReady(playerID, ready)
	switch {
	case errors.Is(err, model.ErrIllegalCommitment):
		gs.metrics.ReadyRefused.Inc()
		return check, nil, err
	case errors.Is(err, model.ErrInvariantViolation):
		gs.metrics.ResolveErrors.Inc()
		logger.Error("resolution invariant broken", zap.String("game", gameID), zap.Error(err))
		return check, nil, err
	case err != nil:
		return check, nil, err
	}
	if res == nil {
		return check, nil, nil
	}

	gs.metrics.TurnsResolved.Inc()
	for _, e := range res.Events {
		if e.Outcome == model.OutcomeDied {
			gs.metrics.PiecesKilled.WithLabelValues(metrics.FightKind(e.Halfway)).Inc()
		}
	}
	if err := gs.publisher.Publish(ctx, gameID, *res); err != nil {
		logger.Warn("failed to publish resolution", zap.String("game", gameID), zap.Int("turn", res.Turn), zap.Error(err))
	}
	return check, res, nil
}

func (gs *GameService) Resign(gameID string, playerID string) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Resign(playerID)
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) LeaveMatchmaking(playerID string) error {
	return gs.gameManager.LeaveMatchmaking(playerID)
}

func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan MatchFoundEvent) {
	gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string, ch chan MatchFoundEvent) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

// UnregisterConnection detaches a socket and forgets the game once it is over and
// nobody is watching.
func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID, conn)
	if game.Finished() && game.ConnectionCount() == 0 {
		logger.Info("removing finished game", zap.String("game", gameID))
		gs.gameManager.RemoveGame(gameID)
	}
}
