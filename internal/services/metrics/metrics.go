package metrics

import (
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const divisor = 100

// Metrics holds Prometheus metric vectors for the weather-check service.
type Metrics struct {
	Registry *prometheus.Registry

	// HTTP server metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Domain metrics
	WeatherChecksTotal *prometheus.CounterVec
	WeatherErrorsTotal *prometheus.CounterVec
}

// NewMetrics constructs and registers all service metrics on a private registry.
func NewMetrics(serviceName string) *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: serviceName,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests received",
			},
			[]string{"method", "endpoint", "status_class"},
		),

		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: serviceName,
				Name:      "http_request_duration_seconds",
				Help:      "Histogram of HTTP request latencies",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		WeatherChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: serviceName,
				Name:      "weather_checks_total",
				Help:      "Total number of weather check requests",
			},
			[]string{"endpoint"},
		),

		WeatherErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: serviceName,
				Name:      "weather_check_errors_total",
				Help:      "Total number of failed weather check requests",
			},
			[]string{"endpoint", "error_type"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.WeatherChecksTotal,
		m.WeatherErrorsTotal,
		collectors.NewGoCollector(
			collectors.WithGoCollectorRuntimeMetrics(
				collectors.GoRuntimeMetricsRule{Matcher: regexp.MustCompile("/sched/latencies:seconds")},
			),
		),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler exposes the private registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// HTTPMiddleware returns a Gin middleware to instrument HTTP endpoints.
// Domain counters are only touched for routes listed in domainRoutes.
func (m *Metrics) HTTPMiddleware(domainRoutes ...string) gin.HandlerFunc {
	domain := make(map[string]struct{}, len(domainRoutes))
	for _, r := range domainRoutes {
		domain[r] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		d := time.Since(start)

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := c.Writer.Status()
		statusClass := getStatusClass(status)

		m.HTTPRequestsTotal.With(prometheus.Labels{
			"method":       c.Request.Method,
			"endpoint":     endpoint,
			"status_class": statusClass,
		}).Inc()
		m.HTTPRequestDuration.With(prometheus.Labels{
			"method":   c.Request.Method,
			"endpoint": endpoint,
		}).Observe(d.Seconds())

		if _, ok := domain[endpoint]; !ok {
			return
		}
		m.WeatherChecksTotal.WithLabelValues(endpoint).Inc()
		switch statusClass {
		case "5xx":
			m.WeatherErrorsTotal.WithLabelValues(endpoint, "server_error").Inc()
		case "4xx":
			m.WeatherErrorsTotal.WithLabelValues(endpoint, "client_error").Inc()
		}
	}
}

func getStatusClass(code int) string {
	return fmt.Sprintf("%dxx", code/divisor)
}
