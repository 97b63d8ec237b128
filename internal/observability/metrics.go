// Package observability exposes the service's prometheus metrics.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "llmonitor"

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
	cacheLookups  *prometheus.CounterVec
	feedback      *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed.",
			},
			[]string{"method", "route", "status"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds.",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "query_cache_lookups_total",
				Help:      "Query cache lookups by policy and result.",
			},
			[]string{"policy", "result"},
		),
		feedback: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "feedback_submissions_total",
				Help:      "Feedback submissions by outcome.",
			},
			[]string{"result"},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "feedback_notifications_total",
				Help:      "Feedback webhook deliveries by outcome.",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpLatency,
		m.cacheLookups,
		m.feedback,
		m.notifications,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Middleware records request counts and latency keyed by the matched route.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else if status < fiber.StatusBadRequest {
				status = fiber.StatusInternalServerError
			}
		}

		m.httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.httpLatency.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

func (m *Metrics) CacheHit(policy string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(policy, "hit").Inc()
}

func (m *Metrics) CacheMiss(policy string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(policy, "miss").Inc()
}

func (m *Metrics) FeedbackSubmitted(result string) {
	if m == nil {
		return
	}
	m.feedback.WithLabelValues(result).Inc()
}

func (m *Metrics) NotificationSent(result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(result).Inc()
}
