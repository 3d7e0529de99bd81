// Package metrics provides Prometheus metrics for the Command Deck engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal tracks inbound HTTP requests by route pattern and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deck",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of inbound HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	// HTTPRequestDuration tracks inbound HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "deck",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of inbound HTTP requests in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route"},
	)

	// GenerationRequestsTotal tracks calls to the external model API.
	GenerationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deck",
			Subsystem: "generation",
			Name:      "requests_total",
			Help:      "Total number of text generation calls by operation and outcome",
		},
		[]string{"operation", "status"},
	)

	// GenerationDuration tracks model call latency.
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "deck",
			Subsystem: "generation",
			Name:      "duration_seconds",
			Help:      "Duration of text generation calls in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"operation"},
	)

	// InviteRequestsTotal counts invite submissions by outcome (created, duplicate, invalid, failed).
	InviteRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deck",
			Subsystem: "invites",
			Name:      "requests_total",
			Help:      "Total number of invite requests by outcome",
		},
		[]string{"outcome"},
	)

	// QueueJobsProcessed tracks document generation jobs handled by the worker.
	QueueJobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deck",
			Subsystem: "queue",
			Name:      "jobs_processed_total",
			Help:      "Total number of document generation jobs processed",
		},
		[]string{"type", "status"},
	)
)
