// Package metrics provides Prometheus metrics for the news pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stage statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

var (
	// StageTotal counts per-article stage executions.
	StageTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finnews",
			Name:      "stage_total",
			Help:      "Total number of per-article stage executions",
		},
		[]string{"stage", "status"},
	)

	// StageDuration measures stage duration.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "finnews",
			Name:      "stage_duration_seconds",
			Help:      "Duration of per-article stages in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	// BatchArticles observes how many articles each batch finished with.
	BatchArticles = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "finnews",
			Name:      "batch_articles",
			Help:      "Distribution of articles per batch by outcome",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"outcome"},
	)

	// SinkErrorsTotal counts failed writes to result sinks.
	SinkErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finnews",
			Name:      "sink_errors_total",
			Help:      "Total number of result sink errors",
		},
		[]string{"sink"},
	)
)

// RecordStage records one stage execution.
func RecordStage(stage, status string, duration float64) {
	StageTotal.WithLabelValues(stage, status).Inc()
	StageDuration.WithLabelValues(stage).Observe(duration)
}

// RecordBatch records the size of a finished batch.
func RecordBatch(processed, failed int) {
	BatchArticles.WithLabelValues("processed").Observe(float64(processed))
	BatchArticles.WithLabelValues("failed").Observe(float64(failed))
}

// RecordSinkError records a sink failure.
func RecordSinkError(sink string) {
	SinkErrorsTotal.WithLabelValues(sink).Inc()
}
