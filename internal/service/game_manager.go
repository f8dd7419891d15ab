// service/game_manager.go
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbeisheim/predictchess-backend/internal/logger"
	"github.com/benbeisheim/predictchess-backend/internal/metrics"
	"github.com/benbeisheim/predictchess-backend/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrGameExists     = errors.New("game already exists")
	ErrNotMatchmaking = errors.New("player not in matchmaking")
)

// MatchFoundEvent tells a queued player which game and seat matchmaking gave them.
type MatchFoundEvent struct {
	GameID string      `json:"gameId"`
	Color  model.Color `json:"color"`
}

type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan MatchFoundEvent
	metrics          *metrics.Metrics
	interval         time.Duration
	mu               sync.RWMutex
}

func NewGameManager(m *metrics.Metrics, interval time.Duration) *GameManager {
	if interval <= 0 {
		interval = time.Second
	}
	return &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan MatchFoundEvent),
		metrics:          m,
		interval:         interval,
	}
}

// Start runs the matchmaking loop until ctx is done.
func (gm *GameManager) Start(ctx context.Context) {
	go gm.processMatchmaking(ctx)
}

func (gm *GameManager) processMatchmaking(ctx context.Context) {
	ticker := time.NewTicker(gm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for gm.matchOnce() {
			}
		}
	}
}

// matchOnce pairs the two longest-waiting players into a new game. It reports whether
// a pair was made.
func (gm *GameManager) matchOnce() bool {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	first, second, ok := gm.queue.NextPair()
	gm.metrics.QueueSize.Set(float64(gm.queue.Size()))
	if !ok {
		return false
	}

	gameID := uuid.New().String()
	game := model.NewGame(gameID)
	firstColor, err := game.AddPlayer(first.PlayerID)
	if err != nil {
		logger.Error("failed to seat matched player", zap.String("player", first.PlayerID), zap.Error(err))
		return false
	}
	secondColor, err := game.AddPlayer(second.PlayerID)
	if err != nil {
		logger.Error("failed to seat matched player", zap.String("player", second.PlayerID), zap.Error(err))
		return false
	}
	gm.games[gameID] = game
	gm.metrics.ActiveGames.Set(float64(len(gm.games)))
	gm.metrics.MatchesCreated.Inc()

	logger.Info("match found",
		zap.String("game", gameID),
		zap.String("white", first.PlayerID),
		zap.String("black", second.PlayerID),
		zap.Duration("longestWait", time.Since(first.JoinedAt)))

	gm.notifyMatch(first.PlayerID, MatchFoundEvent{GameID: gameID, Color: firstColor})
	gm.notifyMatch(second.PlayerID, MatchFoundEvent{GameID: gameID, Color: secondColor})
	return true
}

// notifyMatch hands the event to the player's waiting channel, if any, and retires the
// channel. Callers hold gm.mu.
func (gm *GameManager) notifyMatch(playerID string, event MatchFoundEvent) {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		logger.Warn("matched player has no matchmaking channel", zap.String("player", playerID))
		return
	}
	delete(gm.matchingChannels, playerID)
	select {
	case ch <- event:
	default:
		logger.Warn("failed to deliver match to player", zap.String("player", playerID))
	}
	close(ch)
}

// RegisterMatchmakingChannel sets the channel the player's match is delivered on. The
// channel must be buffered; it is closed once the match is sent or it is replaced.
func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan MatchFoundEvent) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existing, ok := gm.matchingChannels[playerID]; ok {
		delete(gm.matchingChannels, playerID)
		close(existing)
	}
	gm.matchingChannels[playerID] = ch
}

// UnregisterMatchmakingChannel drops ch if it is still the player's channel. It does not
// close it; the registering side owns that.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan MatchFoundEvent) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if current, ok := gm.matchingChannels[playerID]; ok && current == ch {
		delete(gm.matchingChannels, playerID)
	}
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if err := gm.queue.AddPlayer(playerID); err != nil {
		return err
	}
	gm.metrics.QueueSize.Set(float64(gm.queue.Size()))
	return nil
}

func (gm *GameManager) LeaveMatchmaking(playerID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if !gm.queue.Remove(playerID) {
		return ErrNotMatchmaking
	}
	gm.metrics.QueueSize.Set(float64(gm.queue.Size()))
	return nil
}

func (gm *GameManager) CreateGame(gameID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return ErrGameExists
	}
	gm.games[gameID] = model.NewGame(gameID)
	gm.metrics.ActiveGames.Set(float64(len(gm.games)))
	return nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}
	return game, nil
}

// RemoveGame forgets a game, e.g. once it is finished and everyone left.
func (gm *GameManager) RemoveGame(gameID string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	delete(gm.games, gameID)
	gm.metrics.ActiveGames.Set(float64(len(gm.games)))
}
