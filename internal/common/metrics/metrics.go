// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AgentRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_requests_total",
			Help: "Total number of questions handled, by outcome",
		},
		[]string{"outcome"},
	)

	AgentIntents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_intents_total",
			Help: "Classified intents by tag and classification source",
		},
		[]string{"intent", "source"},
	)

	AgentLLMCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_llm_calls_total",
			Help: "LLM calls by operation and result code",
		},
		[]string{"operation", "code"},
	)

	AgentRateLimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agent_rate_limit_rejections_total",
			Help: "LLM calls refused locally by the sliding-window limiter",
		},
	)

	AgentStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agent_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2, 4, 8, 15},
		},
		[]string{"stage"},
	)

	AgentQueryResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_query_results_total",
			Help: "Data accessor results by intent and success",
		},
		[]string{"intent", "success"},
	)

	AgentSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agent_sessions_active",
			Help: "Number of live chat sessions",
		},
	)
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
)
