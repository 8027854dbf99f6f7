package battle

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	roomsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "battle_rooms_active",
		Help: "Battle rooms currently held in memory",
	})
	roomsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "battle_rooms_created_total",
		Help: "Battle rooms created",
	})
	transitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "battle_state_transitions_total",
		Help: "Session state transitions",
	}, []string{"from", "to"})
	aiCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "battle_ai_calls_total",
		Help: "Problem generation and judging calls by outcome",
	}, []string{"kind", "outcome"})
	aiLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "battle_ai_call_seconds",
		Help:    "Latency of problem generation and judging calls",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 45, 90},
	}, []string{"kind"})
	rewardsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "battle_rewards_total",
		Help: "XP award calls by source and outcome",
	}, []string{"source", "outcome"})
	droppedEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "battle_stale_events_total",
		Help: "Async completions dropped because their room or round moved on",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(roomsActive, roomsCreated, transitionsTotal, aiCalls, aiLatency, rewardsTotal, droppedEvents)
}

func observeAICall(kind string, start time.Time, err error) {
	aiLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	outcome := "ok"
	if err != nil {
		outcome = "fallback"
	}
	aiCalls.WithLabelValues(kind, outcome).Inc()
}
