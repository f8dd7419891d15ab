package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.TurnsResolved.Inc()
	m.PiecesKilled.WithLabelValues(FightKind(true)).Inc()
	m.PiecesKilled.WithLabelValues(FightKind(false)).Add(2)

	if got := testutil.ToFloat64(m.TurnsResolved); got != 1 {
		t.Fatalf("expected 1 turn, got %v", got)
	}
	if got := testutil.ToFloat64(m.PiecesKilled.WithLabelValues("square")); got != 2 {
		t.Fatalf("expected 2 square kills, got %v", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{"predictchess_turns_resolved_total", "predictchess_pieces_killed_total", "predictchess_active_games"} {
		if !names[want] {
			t.Fatalf("expected %s to be registered, got %v", want, names)
		}
	}
}

func TestFightKind(t *testing.T) {
	if FightKind(true) != "swap" || FightKind(false) != "square" {
		t.Fatalf("unexpected fight kinds")
	}
}
