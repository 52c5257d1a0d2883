package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for content API client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "content_requests_total",
		Help: "Total content API requests by endpoint route and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "content_request_duration_seconds",
		Help:    "Content API request duration in seconds by endpoint route",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "content_errors_total",
		Help: "Total content API errors by kind",
	}, []string{"kind"})

	sharedFetchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "content_singleflight_shared_total",
		Help: "Total cache misses served by another caller's in-flight request",
	})
)
