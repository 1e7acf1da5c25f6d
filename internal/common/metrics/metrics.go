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

	SubmissionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studybuddy_submissions_created_total",
			Help: "Submissions persisted by the intake workflow",
		},
		[]string{"band"},
	)

	IntakeRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "studybuddy_intake_rejected_total",
			Help: "Intake attempts rejected by validation",
		},
	)

	GatewayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studybuddy_gateway_requests_total",
			Help: "Suggestion gateway calls by kind and outcome",
		},
		[]string{"kind", "outcome"}, // kind: suggest|chat, outcome: ok|fallback
	)

	GatewayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studybuddy_gateway_duration_seconds",
			Help:    "Latency of suggestion gateway calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studybuddy_notifications_total",
			Help: "Notification attempts by channel and status",
		},
		[]string{"channel", "status"},
	)

	ChatTurns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "studybuddy_chat_turns_total",
			Help: "Chat messages answered",
		},
	)

	AssignmentsUpdated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "studybuddy_assignments_updated_total",
			Help: "Counselor/status updates applied by admins",
		},
	)
)
