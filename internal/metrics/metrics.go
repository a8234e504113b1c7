// Package metrics provides the centralized Prometheus metrics registry for fightprob.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PredictionsServedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fightprob",
		Name:      "predictions_served_total",
		Help:      "Total number of predictions served",
	})
	PredictionErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fightprob",
		Name:      "prediction_errors_total",
		Help:      "Total number of prediction failures by kind",
	}, []string{"kind"})
	CalibrationFitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fightprob",
		Name:      "calibration_fits_total",
		Help:      "Total number of calibration model fits by division",
	}, []string{"division"})
	ShinSolvesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fightprob",
		Name:      "shin_solves_total",
		Help:      "Total number of Shin de-vigorization solves",
	})
	BoutsReplayedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fightprob",
		Name:      "bouts_replayed_total",
		Help:      "Total number of resolved bouts replayed through the rating engine",
	})
	OddsQuotesIngestedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fightprob",
		Name:      "odds_quotes_ingested_total",
		Help:      "Total number of odds quotes ingested",
	})
)

// Gauge metrics
var (
	RatedFighters = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fightprob",
		Name:      "rated_fighters",
		Help:      "Number of fighter rating vectors currently held",
	})
	LastRefreshTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fightprob",
		Name:      "last_refresh_timestamp_seconds",
		Help:      "Unix timestamp of the last completed model refresh",
	})
	AgeCurvesLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fightprob",
		Name:      "age_curves_loaded",
		Help:      "Number of division age curves currently cached",
	})
)

// Histogram metrics
var (
	PredictionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fightprob",
		Name:      "prediction_latency_seconds",
		Help:      "Latency of end-to-end prediction requests in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	RefreshDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fightprob",
		Name:      "refresh_duration_seconds",
		Help:      "Duration of full model refresh runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PredictionsServedTotal)
		registry.MustRegister(PredictionErrorsTotal)
		registry.MustRegister(CalibrationFitsTotal)
		registry.MustRegister(ShinSolvesTotal)
		registry.MustRegister(BoutsReplayedTotal)
		registry.MustRegister(OddsQuotesIngestedTotal)

		registry.MustRegister(RatedFighters)
		registry.MustRegister(LastRefreshTimestamp)
		registry.MustRegister(AgeCurvesLoaded)

		registry.MustRegister(PredictionLatency)
		registry.MustRegister(RefreshDuration)
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

// RecordPredictionServed records a served prediction and its latency.
func RecordPredictionServed(durationSeconds float64) {
	PredictionsServedTotal.Inc()
	PredictionLatency.Observe(durationSeconds)
}

// RecordPredictionError records a prediction failure by kind.
func RecordPredictionError(kind string) {
	PredictionErrorsTotal.WithLabelValues(kind).Inc()
}

// RecordCalibrationFit records a calibration fit for a division.
func RecordCalibrationFit(division string) {
	CalibrationFitsTotal.WithLabelValues(division).Inc()
}

// RecordShinSolve records a Shin solve.
func RecordShinSolve() {
	ShinSolvesTotal.Inc()
}

// RecordRefresh records a completed refresh run.
func RecordRefresh(durationSeconds float64, completedAt float64) {
	RefreshDuration.Observe(durationSeconds)
	LastRefreshTimestamp.Set(completedAt)
}
