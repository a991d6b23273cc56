// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
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

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "screening_stage_duration_seconds",
			Help:    "Duration of a screening stage in seconds",
			Buckets: []float64{0.005, 0.05, 0.25, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"},
	)

	StageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screening_stage_failures_total",
			Help: "Total number of failed screening stages",
		},
		[]string{"stage", "error_code"},
	)

	ScreeningOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screening_outcomes_total",
			Help: "Total number of completed screenings by terminal stage",
		},
		[]string{"outcome"},
	)

	ClassifierCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "classifier_cache_hits_total",
			Help: "Classifier responses served from cache",
		},
	)

	ClassifierCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "classifier_cache_misses_total",
			Help: "Classifier calls that missed the cache",
		},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screening_notifications_total",
			Help: "Post-screening notifications by channel and status",
		},
		[]string{"channel", "status"},
	)
)
