// Package metrics defines the Prometheus metrics exported by the review service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
)

// ReviewMetrics contains Prometheus metrics for review operations and anomaly signals.
type ReviewMetrics struct {
	OperationsTotal     *prometheus.CounterVec
	OperationDuration   *prometheus.HistogramVec
	AnomalySignalsTotal *prometheus.CounterVec
	SignalsDropped      prometheus.Counter
	InconsistentReviews prometheus.Gauge
}

// NewReviewMetrics creates and registers review metrics with the given registerer.
func NewReviewMetrics(registerer prometheus.Registerer) *ReviewMetrics {
	metrics := &ReviewMetrics{
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reviewguard_review_operations_total",
				Help: "Total number of review operations by outcome",
			},
			[]string{"operation", "outcome"}, // outcome: success or error kind
		),
		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reviewguard_review_operation_duration_seconds",
				Help:    "Duration of review operations including store calls",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"operation"},
		),
		AnomalySignalsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reviewguard_anomaly_signals_total",
				Help: "Total number of anomaly evaluations by condition and result",
			},
			[]string{"condition", "observed"},
		),
		SignalsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reviewguard_anomaly_signals_dropped_total",
			Help: "Signals that could not be delivered before their timeout",
		}),
		InconsistentReviews: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reviewguard_inconsistent_reviews",
			Help: "Reviews whose like counter differs from the size of their like-set",
		}),
	}

	registerer.MustRegister(
		metrics.OperationsTotal,
		metrics.OperationDuration,
		metrics.AnomalySignalsTotal,
		metrics.SignalsDropped,
		metrics.InconsistentReviews,
	)

	return metrics
}
