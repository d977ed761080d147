// Package metrics exposes Prometheus instrumentation for the game server:
// hands dealt, actions applied, and table occupancy, the signals operators
// watch to tell a healthy cluster of tables from a stuck one.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HandsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poker_hands_started_total",
		Help: "Number of hands dealt, by table.",
	}, []string{"table_id"})

	HandsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poker_hands_completed_total",
		Help: "Number of hands that reached a winner, by table and resolution type.",
	}, []string{"table_id", "winner_type"})

	ActionsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poker_actions_applied_total",
		Help: "Number of player actions applied, by table and action kind.",
	}, []string{"table_id", "kind"})

	ActionErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poker_action_errors_total",
		Help: "Number of rejected actions, by error kind.",
	}, []string{"kind"})

	ActiveSeats = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "poker_active_seats",
		Help: "Current number of seats eligible to be dealt in (active, with chips), by table.",
	}, []string{"table_id"})

	MutatorWaitSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "poker_table_mutator_wait_seconds",
		Help:    "Time spent waiting to acquire a table's exclusive mutator.",
		Buckets: prometheus.DefBuckets,
	}, []string{"table_id"})
)
