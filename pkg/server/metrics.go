package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the server's Prometheus instruments.
type metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	runsTotal       *prometheus.CounterVec
}

// newMetrics builds and registers the instrument set on a private registry.
func newMetrics() (m *metrics) {
	m = &metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shortlist_http_requests_total",
			Help: "HTTP requests by method, route, and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shortlist_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shortlist_pipeline_runs_total",
			Help: "Pipeline runs by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
	m.registry.MustRegister(m.requestsTotal, m.requestDuration, m.runsTotal)
	return m
}

// middleware records request counts and latencies per route.
func (m *metrics) middleware() (handler gin.HandlerFunc) {
	handler = func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestsTotal.WithLabelValues(
			c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
	return handler
}

// recordRun counts one pipeline run outcome.
func (m *metrics) recordRun(kind string, failed bool) {
	outcome := "complete"
	if failed {
		outcome = "failed"
	}
	m.runsTotal.WithLabelValues(kind, outcome).Inc()
}

// handler exposes the scrape endpoint.
func (m *metrics) handler() (handler gin.HandlerFunc) {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	handler = gin.WrapH(h)
	return handler
}
