package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generatorRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "action_stage_generator_requests_total",
			Help: "Total number of requests to the text generator.",
		},
		[]string{"backend", "model", "status"},
	)
	generatorRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "action_stage_generator_request_duration_seconds",
			Help:    "Histogram of text generator request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "model"},
	)
	generatorPromptTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "action_stage_generator_prompt_tokens",
			Help:    "Histogram of prompt token counts sent to the generator.",
			Buckets: prometheus.LinearBuckets(250, 250, 20), // 250, 500, ..., 5000
		},
		[]string{"backend", "model"},
	)
)

const (
	statusSuccess = "success"
	statusError   = "error"
	statusEmpty   = "empty"
)

func observeRequest(backend, model, status string, started time.Time) {
	generatorRequestsTotal.WithLabelValues(backend, model, status).Inc()
	if status == statusSuccess {
		generatorRequestDuration.WithLabelValues(backend, model).Observe(time.Since(started).Seconds())
	}
}

func observePromptTokens(backend, model string, tokens int) {
	if tokens > 0 {
		generatorPromptTokens.WithLabelValues(backend, model).Observe(float64(tokens))
	}
}
