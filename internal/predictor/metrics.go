// Package predictor provides Prometheus metrics for regressor calls.
package predictor

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// PredictionsTotal tracks total regressor evaluations
	PredictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bucket_props_predictions_total",
			Help: "Total number of regressor evaluations",
		},
		[]string{"backend"},
	)

	// PredictionLatency tracks regressor evaluation latency
	PredictionLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bucket_props_prediction_latency_seconds",
			Help:    "Regressor evaluation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend"},
	)

	// PredictionErrorsTotal tracks regressor failures
	PredictionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bucket_props_prediction_errors_total",
			Help: "Total number of regressor call failures",
		},
		[]string{"backend", "error_type"},
	)
)
