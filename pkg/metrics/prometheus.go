package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskdesk_logins_total",
			Help: "Total login attempts by outcome",
		},
		[]string{"outcome"},
	)

	PolicyDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskdesk_policy_denials_total",
			Help: "Total authorization denials by action",
		},
		[]string{"action"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskdesk_notifications_total",
			Help: "Total notifications created by type",
		},
		[]string{"type"},
	)

	AuditEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskdesk_audit_entries_total",
			Help: "Total audit log entries by action",
		},
		[]string{"action"},
	)

	EventsDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskdesk_events_dispatched_total",
			Help: "Total domain events dispatched by type",
		},
		[]string{"type"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskdesk_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
