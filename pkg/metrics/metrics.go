package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Slash-command outcomes, labeled by command and structured outcome.
	CommandOutcomeCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "command_outcome_count",
			Help: "Total number of slash-command invocations by outcome",
		},
		[]string{"command", "outcome"},
	)

	// Submission results after the cooldown/streak transaction.
	SubmissionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submission_count",
			Help: "Total number of proof submissions by result",
		},
		[]string{"result"}, // result: accepted, cooldown, not_found, conflict, error
	)

	// Reminder dispatch results from the sweep.
	ReminderDispatchCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_dispatch_count",
			Help: "Total number of reminder dispatch attempts by status",
		},
		[]string{"status"}, // status: sent, failed
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// DM delivery latency in the worker, labeled by delivery status.
	DMDeliveryLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dm_delivery_latency_ms",
			Help:    "Direct-message delivery latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"status"},
	)
)

// RecordCommandOutcome increments the command outcome counter.
func RecordCommandOutcome(command, outcome string) {
	CommandOutcomeCount.WithLabelValues(command, outcome).Inc()
}

// RecordSubmission increments the submission result counter.
func RecordSubmission(result string) {
	SubmissionCount.WithLabelValues(result).Inc()
}

// RecordReminderDispatch increments the reminder dispatch counter.
func RecordReminderDispatch(status string) {
	ReminderDispatchCount.WithLabelValues(status).Inc()
}

// ObserveDBQuery records the time elapsed since start for one database query.
// Safe to defer directly: the elapsed time is computed when the call runs, at
// function return, not when the defer statement is evaluated.
func ObserveDBQuery(operation, table string, start time.Time) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// RecordHTTPRequestDuration records an HTTP request duration.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordDMDeliveryLatency records a DM delivery attempt latency.
func RecordDMDeliveryLatency(status string, duration time.Duration) {
	DMDeliveryLatency.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}
