package decorators

import (
	"context"
	"time"

	"github.com/drizzly-bear/weather-check/internal/models"
	"github.com/drizzly-bear/weather-check/internal/services/weather"
)

const (
	opGeolocation = "geolocation_resolve"
	opForecast    = "forecast_fetch"
)

type metricsCollector interface {
	ObserveLatency(operation string, duration time.Duration)
	IncrementCounter(metric string, labels ...string)
}

// MetricsGeolocation records latency and outcome of every geolocation call.
type MetricsGeolocation struct {
	next      weather.GeolocationProvider
	collector metricsCollector
}

func NewMetricsGeolocation(next weather.GeolocationProvider, collector metricsCollector) *MetricsGeolocation {
	return &MetricsGeolocation{next: next, collector: collector}
}

func (m *MetricsGeolocation) ResolveCoordinates(ctx context.Context, ip string) (models.Coordinates, error) {
	start := time.Now()
	coords, err := m.next.ResolveCoordinates(ctx, ip)
	m.collector.ObserveLatency(opGeolocation, time.Since(start))
	m.collector.IncrementCounter(opGeolocation, result(err))
	return coords, err
}

// MetricsForecast records latency and outcome of every forecast call.
type MetricsForecast struct {
	next      weather.WeatherProvider
	collector metricsCollector
}

func NewMetricsForecast(next weather.WeatherProvider, collector metricsCollector) *MetricsForecast {
	return &MetricsForecast{next: next, collector: collector}
}

func (m *MetricsForecast) FetchForecast(
	ctx context.Context,
	coords models.Coordinates,
) (models.ForecastPayload, error) {
	start := time.Now()
	payload, err := m.next.FetchForecast(ctx, coords)
	m.collector.ObserveLatency(opForecast, time.Since(start))
	m.collector.IncrementCounter(opForecast, result(err))
	return payload, err
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
