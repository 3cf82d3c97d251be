package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	ehrSyncCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ehr_sync_total",
			Help: "Referral EHR sync attempts by channel and result",
		},
		[]string{"channel", "result"},
	)
)

func init() {
	prometheus.MustRegister(requestCounter, requestDuration, ehrSyncCounter)
}

// RecordEHRSync counts an EHR sync attempt outcome for one channel.
func RecordEHRSync(channel string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	ehrSyncCounter.WithLabelValues(channel, result).Inc()
}

// Metrics records request count and latency per route.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := strconv.Itoa(c.Response().Status)
			// c.Path() is the route template, so label cardinality stays
			// bounded by the number of registered routes.
			path := c.Path()
			method := c.Request().Method

			requestCounter.WithLabelValues(method, path, status).Inc()
			requestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// MetricsHandler serves the prometheus scrape endpoint.
func MetricsHandler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
