// Package metrics exposes Prometheus instrumentation for the pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// JobsTotal counts finished pipeline jobs by outcome.
	JobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lumina_jobs_total",
		Help: "Finished pipeline jobs by outcome.",
	}, []string{"outcome"})

	// StageDuration observes per-stage latency.
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lumina_stage_duration_seconds",
		Help:    "Pipeline stage duration in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"stage"})

	// JobsInFlight gauges currently running pipelines.
	JobsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lumina_jobs_in_flight",
		Help: "Pipeline jobs currently running.",
	})
)

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
