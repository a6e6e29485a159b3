// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the case tracker.
var (
	// Case lifecycle counters.
	CasesOpenedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cases_opened_total",
			Help: "Total number of cases opened",
		},
		[]string{"source"}, // direct, request
	)

	CasesFinalizedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cases_finalized_total",
			Help: "Total number of cases closed with a verdict",
		},
		[]string{"verdict"},
	)

	CaseStatusChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "case_status_changes_total",
			Help: "Total number of generic case status updates",
		},
		[]string{"status"},
	)

	CaseNumberRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "case_number_retries_total",
			Help: "Case number allocations retried after a uniqueness violation",
		},
	)

	// Intake.
	CaseRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "case_requests_total",
			Help: "Total case requests by decision",
		},
		[]string{"decision"}, // submitted, approved, rejected
	)

	// Access control and audit.
	AuthorizationDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authorization_denied_total",
			Help: "Operations rejected by the role gate",
		},
		[]string{"operation", "role"},
	)

	AuditEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_entries_total",
			Help: "Audit entries committed",
		},
		[]string{"action"},
	)

	// Gauges refreshed by the scheduler.
	CasesByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cases_by_status",
			Help: "Current number of cases in each status",
		},
		[]string{"status"},
	)

	PendingCaseRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pending_case_requests",
			Help: "Current number of case requests awaiting review",
		},
	)

	// HTTP.
	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Scheduler metrics.
	SchedulerJobsRunTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_jobs_run_total",
			Help: "Total scheduler job executions",
		},
		[]string{"job", "status"},
	)

	SchedulerNotificationsSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_notifications_sent_total",
			Help: "Total successful backlog digests sent",
		},
	)

	SchedulerNotificationsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_notifications_failed_total",
			Help: "Total failed notification attempts",
		},
		[]string{"reason"},
	)

	SchedulerStaleRequestsCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_stale_requests_count",
			Help: "Number of overdue case requests in the last digest",
		},
	)

	SchedulerLastRunTimestamp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scheduler_last_run_timestamp",
			Help: "Unix timestamp of last scheduler run",
		},
		[]string{"job"},
	)

	SchedulerJobDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scheduler_job_duration_seconds",
			Help:    "Time taken to execute a scheduler job",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
		},
		[]string{"job"},
	)
)

// Case opening sources.
const (
	SourceDirect  = "direct"
	SourceRequest = "request"
)

// RecordCaseOpened records a new case.
func RecordCaseOpened(source string) {
	CasesOpenedTotal.WithLabelValues(source).Inc()
}

// RecordCaseFinalized records a verdict.
func RecordCaseFinalized(verdict string) {
	CasesFinalizedTotal.WithLabelValues(verdict).Inc()
}

// RecordCaseStatusChange records a generic status update.
func RecordCaseStatusChange(status string) {
	CaseStatusChangesTotal.WithLabelValues(status).Inc()
}

// RecordCaseNumberRetry records a retried case number allocation.
func RecordCaseNumberRetry() {
	CaseNumberRetriesTotal.Inc()
}

// RecordCaseRequest records an intake event.
func RecordCaseRequest(decision string) {
	CaseRequestsTotal.WithLabelValues(decision).Inc()
}

// RecordAuthorizationDenied records a rejected caller.
func RecordAuthorizationDenied(operation, role string) {
	AuthorizationDeniedTotal.WithLabelValues(operation, role).Inc()
}

// RecordAuditEntry records a committed audit entry.
func RecordAuditEntry(action string) {
	AuditEntriesTotal.WithLabelValues(action).Inc()
}

// SetCasesByStatus sets the current count of cases in a status.
func SetCasesByStatus(status string, count int64) {
	CasesByStatus.WithLabelValues(status).Set(float64(count))
}

// SetPendingCaseRequests sets the review backlog size.
func SetPendingCaseRequests(count int64) {
	PendingCaseRequests.Set(float64(count))
}

// ObserveHTTPRequest observes one served request.
func ObserveHTTPRequest(method, route, status string, seconds float64) {
	HTTPRequestDurationSeconds.WithLabelValues(method, route, status).Observe(seconds)
}

// RecordSchedulerJobRun records a scheduler job execution.
func RecordSchedulerJobRun(job, status string) {
	SchedulerJobsRunTotal.WithLabelValues(job, status).Inc()
}

// RecordSchedulerNotificationSent records a successful digest.
func RecordSchedulerNotificationSent() {
	SchedulerNotificationsSentTotal.Inc()
}

// RecordSchedulerNotificationFailed records a failed notification attempt.
func RecordSchedulerNotificationFailed(reason string) {
	SchedulerNotificationsFailedTotal.WithLabelValues(reason).Inc()
}

// SetSchedulerStaleRequests sets the number of overdue requests in the last digest.
func SetSchedulerStaleRequests(count int) {
	SchedulerStaleRequestsCount.Set(float64(count))
}

// SetSchedulerLastRun sets the timestamp of the last run of job.
func SetSchedulerLastRun(job string) {
	SchedulerLastRunTimestamp.WithLabelValues(job).SetToCurrentTime()
}

// ObserveSchedulerJobDuration observes the duration of a scheduler job.
func ObserveSchedulerJobDuration(job string, seconds float64) {
	SchedulerJobDurationSeconds.WithLabelValues(job).Observe(seconds)
}
