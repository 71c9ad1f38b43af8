// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storybook"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	AdminLoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_logins_total",
		Help:      "Admin login attempts by result.",
	}, []string{"result"})

	AdminWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_writes_total",
		Help:      "Records written through the admin surface by entity and action.",
	}, []string{"entity", "action"})

	OrphanedStories = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "orphaned_stories",
		Help:      "Stories whose age group or theme matches no stored record, as of the last report.",
	})
)

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
