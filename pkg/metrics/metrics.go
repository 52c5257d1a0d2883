// Package metrics exposes the Prometheus metrics of the content client.
// The metrics themselves are defined in their respective packages (cache,
// client, hooks) via promauto to avoid circular dependencies.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registry every content metric is registered with.
var Registry = prometheus.DefaultRegisterer

// Gatherer serves the metrics registered with Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler returns the HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - content_cache_hits_total{layer} (Counter): Fresh entries served, layer is memory or redis
//   - content_cache_misses_total{layer} (Counter): Absent or stale lookups
//   - content_cache_entries{layer} (Gauge): Entries held by the memory store
//   - content_cache_clears_total{layer} (Counter): Full store clears
//   - content_cache_errors_total{operation} (Counter): Redis get/set/clear/decode failures
//
// Request Metrics (pkg/client):
//   - content_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - content_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - content_errors_total{kind} (Counter): Failures by kind (transport_<class>, format, application, caller)
//   - content_singleflight_shared_total (Counter): Misses served by another caller's request
//
// Hook Metrics (pkg/hooks):
//   - content_hook_settlements_total{hook, outcome} (Counter): success, error, superseded, closed
//   - content_analytics_reports_total (Counter): Analytics events submitted
//   - content_analytics_failures_total (Counter): Analytics events not delivered
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(content_cache_hits_total[5m])) /
//   (sum(rate(content_cache_hits_total[5m])) + sum(rate(content_cache_misses_total[5m])))
//
//   # Application Error Rate
//   rate(content_errors_total{kind="application"}[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(content_request_duration_seconds_bucket[5m]))
//
//   # Share of hook responses arriving too late to be used
//   sum(rate(content_hook_settlements_total{outcome="superseded"}[5m])) /
//   sum(rate(content_hook_settlements_total[5m]))
