package server

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// allowOriginHeader stamps the allowed origin on every response
func allowOriginHeader(origin string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set(echo.HeaderAccessControlAllowOrigin, origin)
			return next(c)
		}
	}
}

// setupMetrics configures Prometheus metrics for requests and the store
func (s *Server) setupMetrics() {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	storeRecords := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "store_records",
			Help: "Number of records held by the store",
		},
		func() float64 { return float64(s.db.Stats().Records) },
	)

	storeWrites := prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "store_writes_total",
			Help: "Number of successful store file rewrites",
		},
		func() float64 { return float64(s.db.Stats().Writes) },
	)

	storeWriteFailures := prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "store_write_failures_total",
			Help: "Number of failed store file rewrites",
		},
		func() float64 { return float64(s.db.Stats().WriteFailures) },
	)

	registry.MustRegister(requestsTotal, requestDuration, storeRecords, storeWrites, storeWriteFailures)

	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				strconv.Itoa(status),
			).Inc()

			requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	})

	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))
}
