package handlers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	turnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "action_stage_turns_total",
			Help: "Total number of processed turns by phase and outcome.",
		},
		[]string{"phase", "status"},
	)
	turnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "action_stage_turn_duration_seconds",
			Help:    "Histogram of turn processing durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"phase"},
	)
	resolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "action_stage_resolutions_total",
			Help: "Total number of resolved user messages by kind.",
		},
		[]string{"kind"}, // choice | ad_lib
	)
	menuSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "action_stage_menu_entries",
			Help:    "Histogram of generated menu sizes.",
			Buckets: prometheus.LinearBuckets(0, 1, 7),
		},
	)
)
