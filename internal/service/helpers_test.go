package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbeisheim/predictchess-backend/internal/metrics"
	"github.com/benbeisheim/predictchess-backend/internal/model"
	"github.com/prometheus/client_golang/prometheus"
)

type recordingPublisher struct {
	mu        sync.Mutex
	published []model.Resolution
	fail      bool
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, res model.Resolution) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("redis down")
	}
	p.published = append(p.published, res)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func newTestService(t *testing.T, publisher ResultPublisher) (*GameService, *metrics.Metrics) {
	t.Helper()
	m := newTestMetrics()
	gm := NewGameManager(m, 10*time.Millisecond)
	return NewGameService(gm, publisher, m), m
}

// startGame creates a game with alice as white and bob as black.
func startGame(t *testing.T, gs *GameService) string {
	t.Helper()
	gameID, err := gs.CreateGame()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if color, err := gs.JoinGame(gameID, "alice"); err != nil || color != model.White {
		t.Fatalf("alice join: %q %v", color, err)
	}
	if color, err := gs.JoinGame(gameID, "bob"); err != nil || color != model.Black {
		t.Fatalf("bob join: %q %v", color, err)
	}
	return gameID
}

func pieceOn(t *testing.T, gs *GameService, gameID string, x, y int) *model.Piece {
	t.Helper()
	state, err := gs.GetGameState(gameID, "")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	for _, p := range state.Pieces {
		if p.Alive && p.Position == (model.Position{X: x, Y: y}) {
			return p
		}
	}
	t.Fatalf("no piece on (%d,%d)", x, y)
	return nil
}
