// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_turns_total",
			Help: "Total number of turns handled, by route and user segment",
		},
		[]string{"route", "segment"},
	)

	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sales_turn_duration_seconds",
			Help:    "Duration of a full turn in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	ClassifierCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_classifier_calls_total",
			Help: "Classifier calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	FilterFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_filter_fallbacks_total",
			Help: "Number of times a filter fallback stage fired",
		},
		[]string{"stage"},
	)

	ConversationEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sales_conversation_entries",
			Help: "Current number of entries in the conversation log",
		},
	)

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
)
