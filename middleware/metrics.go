package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the dashboard's Prometheus collectors.
type Metrics struct {
	Registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	exports         *prometheus.CounterVec
	upstream        *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
}

// NewMetrics registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buffcomply",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "buffcomply",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buffcomply",
			Name:      "exports_total",
			Help:      "Result exports by mode and format.",
		}, []string{"mode", "format"}),
		upstream: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buffcomply",
			Name:      "scraping_api_requests_total",
			Help:      "Calls to the scraping API by endpoint and status (0 when no response).",
		}, []string{"endpoint", "status"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "buffcomply",
			Name:      "scraping_api_request_duration_seconds",
			Help:      "Scraping API latency by endpoint.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"endpoint"}),
	}

	m.Registry.MustRegister(
		m.requests,
		m.requestDuration,
		m.exports,
		m.upstream,
		m.upstreamLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler counts requests per matched route.
func (m *Metrics) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		route := c.Route().Path
		m.requests.WithLabelValues(route, c.Method(), strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(route, c.Method()).Observe(time.Since(start).Seconds())
		return err
	}
}

func (m *Metrics) ObserveExport(mode, format string) {
	m.exports.WithLabelValues(mode, format).Inc()
}

// ObserveUpstream matches complyclient.ObserveFunc.
func (m *Metrics) ObserveUpstream(endpoint string, status int, elapsed time.Duration) {
	m.upstream.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	if elapsed > 0 {
		m.upstreamLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
	}
}
