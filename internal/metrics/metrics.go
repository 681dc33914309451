// Package metrics holds the process-wide Prometheus instruments.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for RecommendRequests.
const (
	OutcomeOK          = "ok"
	OutcomeBadRequest  = "bad_request"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

var (
	// Recommendation metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookrec_recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"mode", "outcome"},
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookrec_recommend_duration_seconds",
			Help:    "Duration of recommendation queries in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"mode"},
	)

	// Artifact metrics
	ArtifactRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookrec_artifact_rows",
			Help: "Number of catalog rows in the active artifact",
		},
	)

	ArtifactLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookrec_artifact_loaded",
			Help: "1 if an artifact is loaded, 0 otherwise",
		},
	)

	ArtifactLoadFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookrec_artifact_load_failures_total",
			Help: "Total number of failed artifact loads",
		},
		[]string{"kind"}, // "not_found", "corrupt", "fetch", "breaker_open"
	)

	// Build metrics
	BuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookrec_build_duration_seconds",
			Help:    "Duration of offline artifact builds in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
)

// RecordRecommend records one recommendation request.
func RecordRecommend(mode, outcome string, duration time.Duration) {
	if mode == "" {
		mode = "unknown"
	}
	RecommendRequests.WithLabelValues(mode, outcome).Inc()
	RecommendDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// SetArtifact publishes the active artifact size. rows < 0 marks no artifact.
func SetArtifact(rows int) {
	if rows < 0 {
		ArtifactLoaded.Set(0)
		ArtifactRows.Set(0)
		return
	}
	ArtifactLoaded.Set(1)
	ArtifactRows.Set(float64(rows))
}

// RecordArtifactLoadFailure counts a failed load by kind.
func RecordArtifactLoadFailure(kind string) {
	ArtifactLoadFailures.WithLabelValues(kind).Inc()
}

// RecordBuild records the duration of an offline build.
func RecordBuild(duration time.Duration) {
	BuildDuration.Observe(duration.Seconds())
}
