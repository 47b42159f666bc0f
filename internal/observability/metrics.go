package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_api_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sales_api_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sales_api_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)

	RateLimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sales_api_rate_limit_rejections_total",
			Help: "Requests rejected by the rate limiter",
		},
	)

	ReportQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sales_report_query_duration_seconds",
			Help:    "Duration of report queries in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"report", "driver"},
	)

	ReportQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_report_query_errors_total",
			Help: "Total number of failed report queries",
		},
		[]string{"report", "driver"},
	)
)

func RecordRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordQuery(report, driver string, duration time.Duration, err error) {
	ReportQueryDuration.WithLabelValues(report, driver).Observe(duration.Seconds())
	if err != nil {
		ReportQueryErrors.WithLabelValues(report, driver).Inc()
	}
}
