package hooks

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	settlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "content_hook_settlements_total",
		Help: "Total hook request settlements by hook and outcome (success, error, superseded, closed)",
	}, []string{"hook", "outcome"})

	analyticsReportsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "content_analytics_reports_total",
		Help: "Total analytics events submitted",
	})

	analyticsFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "content_analytics_failures_total",
		Help: "Total analytics events that could not be delivered",
	})
)
