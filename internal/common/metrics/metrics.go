package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"match-workers/internal/models"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	MatchEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_evaluations_total",
			Help: "Match evaluations by resulting policy tier and mode",
		},
		[]string{"policy", "mode"},
	)

	MatchPartialResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "match_partial_results_total",
			Help: "Match results produced with at least one unresolved input",
		},
	)

	MatchCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_cache_lookups_total",
			Help: "Match cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	MatchBatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "match_batch_duration_seconds",
			Help:    "Duration of batch evaluations",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"subject_type"},
	)

	MatchBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_batch_size",
			Help:    "Number of counterparts per batch",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_notifications_total",
			Help: "Hot-match notifications by channel and status",
		},
		[]string{"channel", "status"},
	)
)

// ObserveMatches records tier and partial counters for a set of results.
func ObserveMatches(results ...models.MatchResult) {
	for _, r := range results {
		MatchEvaluations.WithLabelValues(string(r.Policy), string(r.Mode)).Inc()
		if r.Partial {
			MatchPartialResults.Inc()
		}
	}
}

// ObserveBatch records batch size and duration.
func ObserveBatch(subjectType string, size int, elapsed time.Duration) {
	MatchBatchSize.Observe(float64(size))
	MatchBatchDuration.WithLabelValues(subjectType).Observe(elapsed.Seconds())
}
