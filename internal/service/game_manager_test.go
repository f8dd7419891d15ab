package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbeisheim/predictchess-backend/internal/model"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMatchOncePairsQueuedPlayers(t *testing.T) {
	m := newTestMetrics()
	gm := NewGameManager(m, time.Second)

	chA := make(chan MatchFoundEvent, 1)
	chB := make(chan MatchFoundEvent, 1)
	gm.RegisterMatchmakingChannel("a", chA)
	gm.RegisterMatchmakingChannel("b", chB)
	for _, id := range []string{"a", "b", "c"} {
		if err := gm.JoinMatchmaking(id); err != nil {
			t.Fatalf("join %s: %v", id, err)
		}
	}
	if got := testutil.ToFloat64(m.QueueSize); got != 3 {
		t.Fatalf("expected queue size 3, got %v", got)
	}

	if !gm.matchOnce() {
		t.Fatalf("expected a match")
	}
	if gm.matchOnce() {
		t.Fatalf("one player left, no second match expected")
	}

	evA, evB := <-chA, <-chB
	if evA.GameID == "" || evA.GameID != evB.GameID {
		t.Fatalf("players should share a game, got %+v %+v", evA, evB)
	}
	if evA.Color != model.White || evB.Color != model.Black {
		t.Fatalf("first in queue plays white, got %s and %s", evA.Color, evB.Color)
	}
	if _, ok := <-chA; ok {
		t.Fatalf("channel should be closed after delivery")
	}

	game, err := gm.GetGame(evA.GameID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if !game.IsPlayerInGame("a") || !game.IsPlayerInGame("b") {
		t.Fatalf("both players should be seated")
	}

	if got := testutil.ToFloat64(m.MatchesCreated); got != 1 {
		t.Fatalf("expected 1 match, got %v", got)
	}
	if got := testutil.ToFloat64(m.ActiveGames); got != 1 {
		t.Fatalf("expected 1 active game, got %v", got)
	}
	if got := testutil.ToFloat64(m.QueueSize); got != 1 {
		t.Fatalf("expected queue size 1, got %v", got)
	}
}

func TestProcessMatchmakingLoop(t *testing.T) {
	gm := NewGameManager(newTestMetrics(), 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gm.Start(ctx)

	ch := make(chan MatchFoundEvent, 1)
	gm.RegisterMatchmakingChannel("a", ch)
	_ = gm.JoinMatchmaking("a")
	_ = gm.JoinMatchmaking("b")

	select {
	case ev := <-ch:
		if ev.GameID == "" {
			t.Fatalf("empty game id")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("matchmaking loop never paired the players")
	}
}

func TestMatchmakingChannelReplacement(t *testing.T) {
	gm := NewGameManager(newTestMetrics(), time.Second)
	old := make(chan MatchFoundEvent, 1)
	fresh := make(chan MatchFoundEvent, 1)

	gm.RegisterMatchmakingChannel("a", old)
	gm.RegisterMatchmakingChannel("a", fresh)
	if _, ok := <-old; ok {
		t.Fatalf("replaced channel should be closed")
	}

	gm.UnregisterMatchmakingChannel("a", old)
	_ = gm.JoinMatchmaking("a")
	_ = gm.JoinMatchmaking("b")
	gm.matchOnce()
	if _, ok := <-fresh; !ok {
		t.Fatalf("stale unregister must not drop the current channel")
	}
}

func TestLeaveMatchmaking(t *testing.T) {
	gm := NewGameManager(newTestMetrics(), time.Second)
	_ = gm.JoinMatchmaking("a")

	if err := gm.JoinMatchmaking("a"); !errors.Is(err, model.ErrAlreadyQueued) {
		t.Fatalf("expected ErrAlreadyQueued, got %v", err)
	}
	if err := gm.LeaveMatchmaking("a"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if err := gm.LeaveMatchmaking("a"); !errors.Is(err, ErrNotMatchmaking) {
		t.Fatalf("expected ErrNotMatchmaking, got %v", err)
	}
}

func TestCreateAndRemoveGame(t *testing.T) {
	m := newTestMetrics()
	gm := NewGameManager(m, time.Second)

	if err := gm.CreateGame("g1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := gm.CreateGame("g1"); !errors.Is(err, ErrGameExists) {
		t.Fatalf("expected ErrGameExists, got %v", err)
	}
	gm.RemoveGame("g1")
	if _, err := gm.GetGame("g1"); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
	if got := testutil.ToFloat64(m.ActiveGames); got != 0 {
		t.Fatalf("expected no active games, got %v", got)
	}
}
