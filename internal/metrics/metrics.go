// Package metrics holds the prometheus collectors for the translation pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Planner attempt outcomes.
const (
	OutcomeSuccess      = "success"
	OutcomeConstructErr = "construct_error"
	OutcomePlanErr      = "plan_error"
)

var (
	PlannerAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nevora_planner_attempts_total",
			Help: "Planner attempts by planner and outcome.",
		},
		[]string{"planner", "outcome"},
	)
	Translations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nevora_translations_total",
			Help: "Translate calls by target, mode and status.",
		},
		[]string{"target", "mode", "status"},
	)
	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nevora_render_duration_seconds",
			Help:    "Time spent planning and rendering one translation.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"target"},
	)
)

// ObservePlanner counts one planner attempt.
func ObservePlanner(planner, outcome string) {
	PlannerAttempts.WithLabelValues(planner, outcome).Inc()
}

// ObserveTranslation counts one translate call and, on success, its latency.
func ObserveTranslation(target, mode, status string, started time.Time) {
	Translations.WithLabelValues(target, mode, status).Inc()
	if status == "ok" {
		RenderDuration.WithLabelValues(target).Observe(time.Since(started).Seconds())
	}
}
