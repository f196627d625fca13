// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ireserve_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ireserve_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
	// ReservationsTotal counts reservation lifecycle outcomes by operation
	// (create, confirm, cancel) and result (ok, conflict, forbidden, ...).
	ReservationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ireserve_reservations_total",
		Help: "Reservation operations by outcome",
	}, []string{"op", "result"})
	AvailabilitySearches = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ireserve_availability_searches_total",
		Help: "Availability searches executed",
	})
	GateDenials = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ireserve_gate_denials_total",
		Help: "Requests turned away by the authorization gate",
	}, []string{"redirect"})
	EventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ireserve_events_published_total",
		Help: "Lifecycle events handed to the broker by result",
	}, []string{"type", "result"})
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal, HTTPRequestDuration, ReservationsTotal,
		AvailabilitySearches, GateDenials, EventsPublished)
}

// Middleware records request count and latency per route template.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok && !c.Response().Committed {
				status = he.Code
			}
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			labels := prometheus.Labels{"method": c.Request().Method, "path": path, "status": strconv.Itoa(status)}
			HTTPRequestsTotal.With(labels).Inc()
			HTTPRequestDuration.With(labels).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
