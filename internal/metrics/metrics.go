package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "predictchess"

type Metrics struct {
	TurnsResolved  prometheus.Counter
	PiecesKilled   *prometheus.CounterVec
	ReadyRefused   prometheus.Counter
	ResolveErrors  prometheus.Counter
	ActiveGames    prometheus.Gauge
	QueueSize      prometheus.Gauge
	MatchesCreated prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TurnsResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_resolved_total",
			Help:      "Turns resolved across all games.",
		}),
		PiecesKilled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pieces_killed_total",
			Help:      "Pieces killed in fights, by fight kind.",
		}, []string{"fight"}),
		ReadyRefused: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ready_refused_total",
			Help:      "Ready attempts refused because the turn was illegal.",
		}),
		ResolveErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolve_errors_total",
			Help:      "Resolutions refused on a broken invariant.",
		}),
		ActiveGames: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_games",
			Help:      "Games currently held in memory.",
		}),
		QueueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "matchmaking_queue_size",
			Help:      "Players waiting in the matchmaking queue.",
		}),
		MatchesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_created_total",
			Help:      "Games created by matchmaking.",
		}),
	}
	reg.MustRegister(
		m.TurnsResolved,
		m.PiecesKilled,
		m.ReadyRefused,
		m.ResolveErrors,
		m.ActiveGames,
		m.QueueSize,
		m.MatchesCreated,
	)
	return m
}

// FightKind labels a death by how the fight started.
func FightKind(halfway bool) string {
	if halfway {
		return "swap"
	}
	return "square"
}
