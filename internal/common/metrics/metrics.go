// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline stages used as label values.
const (
	StageSearch  = "search"
	StageFilter  = "filter"
	StageCompose = "compose"
	StageSend    = "send"
)

var (
	CustomersProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intel_customers_processed_total",
			Help: "Customers processed, by final outcome",
		},
		[]string{"outcome"},
	)

	StageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intel_stage_failures_total",
			Help: "Pipeline stage failures, by stage and error code",
		},
		[]string{"stage", "error_code"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intel_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)

	ResultsSelected = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intel_results_count",
			Help:    "Number of results entering and leaving the relevance filter",
			Buckets: prometheus.LinearBuckets(0, 2, 11),
		},
		[]string{"phase"},
	)

	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intel_emails_total",
			Help: "Email deliveries, by provider and status",
		},
		[]string{"provider", "status"},
	)

	CustomersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "intel_customers_active",
			Help: "Customers currently being processed",
		},
	)
)
