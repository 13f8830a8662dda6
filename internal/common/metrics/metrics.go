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

	// CompletionAttempts counts every request sent to the completion backend.
	// outcome is one of ok, rate_limited, unavailable, network, empty.
	CompletionAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "completion_attempts_total",
			Help: "Completion backend requests by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	CompletionRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "completion_rate_limit_retries_total",
			Help: "Retries issued after a 429 from the completion backend",
		},
		[]string{"provider"},
	)

	StageOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_stage_outcomes_total",
			Help: "Pipeline stage invocations by result",
		},
		[]string{"stage", "outcome"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_stage_duration_seconds",
			Help:    "Pipeline stage latency including completion calls",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)

	SchemesDiscovered = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "schemes_discovered_count",
			Help:    "Number of schemes returned per discovery call",
			Buckets: []float64{0, 1, 5, 10, 20, 30, 50},
		},
		[]string{"mode"},
	)

	AnalyticsEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_events_total",
			Help: "Analytics events by result: recorded, dropped, failed",
		},
		[]string{"result"},
	)
)
