// Package observability exposes Prometheus metrics for the HTTP surface and
// the authentication lifecycle.
package observability

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	auth "github.com/goliatone/go-task-auth"
)

// Metrics contains the custom Prometheus metrics.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	AuthEventsTotal *prometheus.CounterVec
	GateRejections  *prometheus.CounterVec
}

// NewMetrics creates a private registry with the Go and process collectors
// plus the service metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskapi_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		AuthEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskapi_auth_events_total",
				Help: "Total number of authentication lifecycle events by type",
			},
			[]string{"event"},
		),
		GateRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskapi_auth_rejections_total",
				Help: "Total number of requests rejected by the authentication gate by reason",
			},
			[]string{"reason"},
		),
	}

	registry.MustRegister(m.RequestsTotal, m.AuthEventsTotal, m.GateRejections)
	return m
}

// Registry returns the registry backing the metrics
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Middleware counts every request once it has been handled
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}

		m.RequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		return err
	}
}

// ActivitySink counts authentication lifecycle events
func (m *Metrics) ActivitySink() auth.ActivitySink {
	return auth.ActivitySinkFunc(func(_ context.Context, event auth.ActivityEvent) error {
		m.AuthEventsTotal.WithLabelValues(string(event.EventType)).Inc()
		return nil
	})
}

// RejectHook counts gate rejections by reason
func (m *Metrics) RejectHook() func(c *fiber.Ctx, reason string, err error) {
	return func(_ *fiber.Ctx, reason string, _ error) {
		m.GateRejections.WithLabelValues(reason).Inc()
	}
}
