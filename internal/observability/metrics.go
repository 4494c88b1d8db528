// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	DrawsIngested     prometheus.Counter
	DrawsRejected     *prometheus.CounterVec
	LatestRoundStored prometheus.Gauge

	// Generator metrics
	CombinationsGenerated *prometheus.CounterVec
	GeneratorShortfalls   *prometheus.CounterVec

	// Backtest metrics
	BacktestRoundsComputed *prometheus.CounterVec
	BacktestRoundsServed   *prometheus.CounterVec
	BacktestCacheLookups   *prometheus.CounterVec
	BacktestDuration       *prometheus.HistogramVec

	// Optimizer metrics
	OptimizerTrials    *prometheus.CounterVec
	OptimizerBestScore *prometheus.GaugeVec
	OptimizerRuns      *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestDuration *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulIngestion    prometheus.Gauge
	LastSuccessfulOptimization prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "lotto_lab"
	}

	return &Metrics{
		// Ingestion metrics
		DrawsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "draws_ingested_total",
			Help:      "Total number of draws stored",
		}),
		DrawsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "draws_rejected_total",
			Help:      "Total number of draws rejected by reason",
		}, []string{"reason"}),
		LatestRoundStored: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "latest_round",
			Help:      "Highest round number in the draw store",
		}),

		// Generator metrics
		CombinationsGenerated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "combinations_total",
			Help:      "Total number of combinations generated by strategy",
		}, []string{"strategy"}),
		GeneratorShortfalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "shortfalls_total",
			Help:      "Total number of generation calls that exhausted their attempt budget",
		}, []string{"strategy"}),

		// Backtest metrics
		BacktestRoundsComputed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "rounds_computed_total",
			Help:      "Total number of backtest rounds computed by regime",
		}, []string{"regime"}),
		BacktestRoundsServed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "rounds_served_total",
			Help:      "Total number of backtest rounds served from cache by regime",
		}, []string{"regime"}),
		BacktestCacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "cache_lookups_total",
			Help:      "Total number of backtest cache lookups by result",
		}, []string{"result"}),
		BacktestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "duration_seconds",
			Help:      "Backtest execution duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}, []string{"regime"}),

		// Optimizer metrics
		OptimizerTrials: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "optimizer",
			Name:      "trials_total",
			Help:      "Total number of weight configurations evaluated by phase",
		}, []string{"phase"}),
		OptimizerBestScore: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "optimizer",
			Name:      "best_score",
			Help:      "Best objective score of the latest run by strategy and threshold",
		}, []string{"strategy", "threshold"}),
		OptimizerRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "optimizer",
			Name:      "runs_total",
			Help:      "Total number of optimizer runs by status",
		}, []string{"status"}),

		// HTTP metrics
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulIngestion: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_ingestion_timestamp",
			Help:      "Unix timestamp of last successful ingestion",
		}),
		LastSuccessfulOptimization: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_optimization_timestamp",
			Help:      "Unix timestamp of last successful optimizer run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordDrawsIngested adds stored draws and updates the latest round gauge.
func RecordDrawsIngested(count, latestRound int) {
	DefaultMetrics.DrawsIngested.Add(float64(count))
	DefaultMetrics.LatestRoundStored.Set(float64(latestRound))
}

// RecordDrawRejected records a draw dropped during ingestion.
func RecordDrawRejected(reason string) {
	DefaultMetrics.DrawsRejected.WithLabelValues(reason).Inc()
}

// RecordGeneration records a generation call.
func RecordGeneration(strategy string, produced int, shortfall bool) {
	DefaultMetrics.CombinationsGenerated.WithLabelValues(strategy).Add(float64(produced))
	if shortfall {
		DefaultMetrics.GeneratorShortfalls.WithLabelValues(strategy).Inc()
	}
}

// RecordBacktest records one backtest call.
func RecordBacktest(regime string, computed, served int, cacheHit bool, durationSeconds float64) {
	DefaultMetrics.BacktestRoundsComputed.WithLabelValues(regime).Add(float64(computed))
	DefaultMetrics.BacktestRoundsServed.WithLabelValues(regime).Add(float64(served))
	result := "miss"
	if cacheHit {
		result = "hit"
	}
	DefaultMetrics.BacktestCacheLookups.WithLabelValues(result).Inc()
	DefaultMetrics.BacktestDuration.WithLabelValues(regime).Observe(durationSeconds)
}

// RecordOptimizerTrial records one evaluated configuration.
func RecordOptimizerTrial(phase string) {
	DefaultMetrics.OptimizerTrials.WithLabelValues(phase).Inc()
}

// RecordOptimizerRun records a finished optimizer run.
func RecordOptimizerRun(strategy, threshold, status string, bestScore float64, unixSeconds int64) {
	DefaultMetrics.OptimizerRuns.WithLabelValues(status).Inc()
	if status == "success" {
		DefaultMetrics.OptimizerBestScore.WithLabelValues(strategy, threshold).Set(bestScore)
		DefaultMetrics.LastSuccessfulOptimization.Set(float64(unixSeconds))
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(route, method, status string, seconds float64) {
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(route, method, status).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordIngestionSuccess stamps the last successful ingestion time.
func RecordIngestionSuccess(unixSeconds int64) {
	DefaultMetrics.LastSuccessfulIngestion.Set(float64(unixSeconds))
}
