package server

import (
	"github.com/lox/blackjack/internal/game"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the server's Prometheus collectors. Each server owns its
// registry so several can run in one process.
type Metrics struct {
	registry       *prometheus.Registry
	roundsTotal    *prometheus.CounterVec
	handsTotal     *prometheus.CounterVec
	actionsTotal   *prometheus.CounterVec
	timeoutsTotal  prometheus.Counter
	activeSessions prometheus.Gauge
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		roundsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "blackjack_rounds_total",
			Help: "Resolved rounds by net result for the player",
		}, []string{"outcome"}),
		handsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "blackjack_hands_total",
			Help: "Settled hands by outcome",
		}, []string{"outcome"}),
		actionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "blackjack_actions_total",
			Help: "Player decisions by action",
		}, []string{"action"}),
		timeoutsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "blackjack_decision_timeouts_total",
			Help: "Decisions taken automatically after the timeout",
		}),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "blackjack_active_sessions",
			Help: "Connected WebSocket sessions",
		}),
	}
}

// Registry returns the registry served on /metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// OnEvent counts table events.
func (m *Metrics) OnEvent(event game.GameEvent) {
	switch e := event.(type) {
	case game.PlayerActionEvent:
		m.actionsTotal.WithLabelValues(e.Action.String()).Inc()
		if e.Timeout {
			m.timeoutsTotal.Inc()
		}
	case game.RoundEndEvent:
		m.roundsTotal.WithLabelValues(roundOutcome(e.Net)).Inc()
		for _, r := range e.Results {
			m.handsTotal.WithLabelValues(r.Outcome.String()).Inc()
		}
	}
}

func roundOutcome(net int) string {
	switch {
	case net > 0:
		return "win"
	case net < 0:
		return "lose"
	}
	return "push"
}
