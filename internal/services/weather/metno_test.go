package weather_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/drizzly-bear/weather-check/internal/models"
	"github.com/drizzly-bear/weather-check/internal/services/weather"
	"github.com/drizzly-bear/weather-check/pkg/logger"
)

const (
	metnoURL       = "https://api.met.no/weatherapi/locationforecast/2.0/compact"
	metnoUserAgent = "weather-check-tests/1.0"
	forecastBody   = `{"type":"Feature","geometry":{"type":"Point","coordinates":[-0.12,51.5,15]},` +
		`"properties":{"timeseries":[{"time":"2026-10-19T12:00:00Z","data":{"instant":{"details":{"air_temperature":12.3}}}}]}}`
)

func Test_MetNo_FetchForecast_Success(t *testing.T) {
	m := &mockHTTPClient{}

	m.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.Method == http.MethodGet &&
			req.URL.Host == "api.met.no" &&
			req.URL.Path == "/weatherapi/locationforecast/2.0/compact" &&
			req.URL.RawQuery == "lat=51.5&lon=-0.12" &&
			req.Header.Get("User-Agent") == metnoUserAgent
	})).Return(jsonResponse(http.StatusOK, forecastBody), nil).Once()

	t.Cleanup(func() {
		m.AssertExpectations(t)
	})

	l, err := logger.NewLogger("", "metno_test_success")
	require.NoError(t, err)

	client := weather.NewClientMetNo(metnoURL, metnoUserAgent, m, l)

	payload, err := client.FetchForecast(context.Background(), models.Coordinates{Latitude: 51.5, Longitude: -0.12})
	require.NoError(t, err)
	assert.Equal(t, forecastBody, string(payload))
}

func Test_MetNo_FetchForecast_CoordinateFormatting(t *testing.T) {
	testCases := []struct {
		coords models.Coordinates
		query  string
	}{
		{coords: models.Coordinates{Latitude: 37.4, Longitude: -122.1}, query: "lat=37.4&lon=-122.1"},
		{coords: models.Coordinates{Latitude: 0, Longitude: 10}, query: "lat=0&lon=10"},
		{coords: models.Coordinates{Latitude: 59.9133, Longitude: 10.7389}, query: "lat=59.9133&lon=10.7389"},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			m := &mockHTTPClient{}
			m.On("Do", mock.MatchedBy(func(req *http.Request) bool {
				return req.URL.RawQuery == tc.query
			})).Return(jsonResponse(http.StatusOK, `{}`), nil).Once()

			t.Cleanup(func() {
				m.AssertExpectations(t)
			})

			l, err := logger.NewLogger("", "metno_test_formatting")
			require.NoError(t, err)

			_, err = weather.NewClientMetNo(metnoURL, "", m, l).FetchForecast(context.Background(), tc.coords)
			require.NoError(t, err)
		})
	}
}

func Test_MetNo_FetchForecast_Failures(t *testing.T) {
	testCases := []struct {
		name   string
		resp   *http.Response
		doErr  error
		errMsg string
	}{
		{
			name:   "server error",
			resp:   jsonResponse(http.StatusInternalServerError, `{}`),
			errMsg: "unexpected status",
		},
		{
			name:   "forbidden without user agent",
			resp:   jsonResponse(http.StatusForbidden, `Forbidden`),
			errMsg: "unexpected status",
		},
		{
			name:   "array body",
			resp:   jsonResponse(http.StatusOK, `[1, 2, 3]`),
			errMsg: "malformed payload",
		},
		{
			name:   "null body",
			resp:   jsonResponse(http.StatusOK, `null`),
			errMsg: "malformed payload",
		},
		{
			name:   "truncated body",
			resp:   jsonResponse(http.StatusOK, `{"type": "Feat`),
			errMsg: "malformed payload",
		},
		{
			name:   "body over size limit",
			resp:   jsonResponse(http.StatusOK, `{"pad":"`+strings.Repeat("x", 8<<20)+`"}`),
			errMsg: "malformed payload",
		},
		{
			name:   "transport error",
			doErr:  context.DeadlineExceeded,
			errMsg: "deadline exceeded",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := &mockHTTPClient{}
			if tc.doErr != nil {
				m.On("Do", mock.Anything).Return(nil, tc.doErr).Once()
			} else {
				m.On("Do", mock.Anything).Return(tc.resp, nil).Once()
			}

			t.Cleanup(func() {
				m.AssertExpectations(t)
			})

			l, err := logger.NewLogger("", "metno_test_failures")
			require.NoError(t, err)

			client := weather.NewClientMetNo(metnoURL, metnoUserAgent, m, l)

			payload, err := client.FetchForecast(context.Background(), models.Coordinates{Latitude: 1, Longitude: 2})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
			assert.Nil(t, payload)
			if tc.doErr != nil {
				assert.True(t, errors.Is(err, tc.doErr))
			}
		})
	}
}
