package weather_test

import (
	"context"
	"net/http"

	"github.com/stretchr/testify/mock"

	"github.com/drizzly-bear/weather-check/internal/models"
)

type mockHTTPClient struct {
	mock.Mock
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	resp, ok := args.Get(0).(*http.Response)
	if !ok {
		return nil, args.Error(1)
	}
	return resp, args.Error(1)
}

type mockGeolocation struct {
	mock.Mock
}

func (m *mockGeolocation) ResolveCoordinates(ctx context.Context, ip string) (models.Coordinates, error) {
	args := m.Called(ctx, ip)
	coords, ok := args.Get(0).(models.Coordinates)
	if !ok {
		return models.Coordinates{}, args.Error(1)
	}
	return coords, args.Error(1)
}

type mockForecast struct {
	mock.Mock
}

func (m *mockForecast) FetchForecast(ctx context.Context, coords models.Coordinates) (models.ForecastPayload, error) {
	args := m.Called(ctx, coords)
	payload, ok := args.Get(0).(models.ForecastPayload)
	if !ok {
		return nil, args.Error(1)
	}
	return payload, args.Error(1)
}
