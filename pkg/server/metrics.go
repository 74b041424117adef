package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// analysesTotal counts completed analyses by resulting risk level.
	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riskanalyzer_analyses_total",
		Help: "Total analyses by resulting risk level",
	}, []string{"level"})

	// degradedSignalsTotal counts dimension signals that resolved with
	// no source succeeding.
	degradedSignalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riskanalyzer_degraded_signals_total",
		Help: "Total fully degraded dimension signals",
	}, []string{"dimension"})

	// analyzeDuration tracks per-text analysis latency.
	analyzeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "riskanalyzer_analyze_duration_seconds",
		Help:    "Analysis duration per text in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	// batchSize tracks batch request sizes.
	batchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "riskanalyzer_batch_size",
		Help:    "Number of texts per batch request",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
	})
)
