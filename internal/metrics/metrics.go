// Package metrics provides the centralized Prometheus metrics registry for
// the forecaster.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Gill87/bucket-props/internal/predictor"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PropsProcessedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bucket_props",
		Name:      "props_processed_total",
		Help:      "Total number of props run through the pipeline",
	})
	PicksRecordedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bucket_props",
		Name:      "picks_recorded_total",
		Help:      "Total number of picks recorded, by side",
	}, []string{"pick"})
	PropsSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bucket_props",
		Name:      "props_skipped_total",
		Help:      "Total number of props skipped, by reason",
	}, []string{"reason"})
	CacheRefreshRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bucket_props",
		Name:      "cache_refresh_runs_total",
		Help:      "Total number of cache refresh runs",
	})
	CacheGamesAddedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bucket_props",
		Name:      "cache_games_added_total",
		Help:      "Total number of games merged into player caches",
	})
)

// Gauge metrics
var (
	DegradedConfidenceMode = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bucket_props",
		Name:      "degraded_confidence_mode",
		Help:      "1 when confidence runs without model error metadata, 0 otherwise",
	})
	LastRunPicks = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bucket_props",
		Name:      "last_run_picks",
		Help:      "Number of picks produced by the most recent pipeline run",
	})
	PlayerDirectorySize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bucket_props",
		Name:      "player_directory_size",
		Help:      "Number of players loaded into the name directory",
	})
)

// Histogram metrics
var (
	PipelineRunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bucket_props",
		Name:      "pipeline_run_duration_seconds",
		Help:      "Duration of full pipeline runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
	HistoryFetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bucket_props",
		Name:      "history_fetch_duration_seconds",
		Help:      "Duration of per-player history loads in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PropsProcessedTotal)
		registry.MustRegister(PicksRecordedTotal)
		registry.MustRegister(PropsSkippedTotal)
		registry.MustRegister(CacheRefreshRunsTotal)
		registry.MustRegister(CacheGamesAddedTotal)

		registry.MustRegister(DegradedConfidenceMode)
		registry.MustRegister(LastRunPicks)
		registry.MustRegister(PlayerDirectorySize)

		registry.MustRegister(PipelineRunDuration)
		registry.MustRegister(HistoryFetchDuration)

		// Regressor metrics
		registry.MustRegister(predictor.PredictionsTotal)
		registry.MustRegister(predictor.PredictionLatency)
		registry.MustRegister(predictor.PredictionErrorsTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordPick records a recorded pick by side.
func RecordPick(pick string) {
	PropsProcessedTotal.Inc()
	PicksRecordedTotal.WithLabelValues(pick).Inc()
}

// RecordSkip records a skipped prop by reason.
func RecordSkip(reason string) {
	PropsProcessedTotal.Inc()
	PropsSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordPipelineRun records the duration of a full pipeline run.
func RecordPipelineRun(durationSeconds float64, picks int) {
	PipelineRunDuration.Observe(durationSeconds)
	LastRunPicks.Set(float64(picks))
}

// RecordCacheRefresh records a cache refresh run.
func RecordCacheRefresh(gamesAdded int) {
	CacheRefreshRunsTotal.Inc()
	CacheGamesAddedTotal.Add(float64(gamesAdded))
}

// SetDegradedMode flags whether confidence scoring runs without model MAE.
func SetDegradedMode(degraded bool) {
	if degraded {
		DegradedConfidenceMode.Set(1)
	} else {
		DegradedConfidenceMode.Set(0)
	}
}
