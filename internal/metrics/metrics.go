// Package metrics holds the Prometheus collectors of the complaint engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransitionsTotal counts lifecycle operations by name and outcome
	// (ok, not_found, precondition, invalid_argument, conflict, internal).
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_transitions_total",
			Help: "Total number of complaint lifecycle operations",
		},
		[]string{"operation", "outcome"},
	)

	AutoEscalationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "complaint_auto_escalations_total",
			Help: "Total number of complaints escalated for missing their deadline",
		},
	)

	DuplicateCandidatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "complaint_duplicate_candidates_total",
			Help: "Total number of duplicate candidates returned by duplicate checks",
		},
	)

	NotificationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_notification_failures_total",
			Help: "Total number of complaint events that failed to publish",
		},
		[]string{"sink"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventhub_websocket_clients",
			Help: "Number of connected live-update clients",
		},
	)
)
