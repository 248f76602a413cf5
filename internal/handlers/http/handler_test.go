package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	handler "github.com/drizzly-bear/weather-check/internal/handlers/http"
	"github.com/drizzly-bear/weather-check/internal/models"
	"github.com/drizzly-bear/weather-check/internal/services/weather"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Lookup(ctx context.Context, req models.WeatherRequest) (models.ForecastPayload, error) {
	args := m.Called(ctx, req)
	payload, ok := args.Get(0).(models.ForecastPayload)
	if !ok {
		return nil, args.Error(1)
	}
	return payload, args.Error(1)
}

func serve(t *testing.T, m *mockService, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req

	handler.NewHandler(m, zerolog.Nop()).CheckWeather(c)
	return rec
}

func jsonRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, "/weather-check/", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCheckWeather_Success(t *testing.T) {
	m := &mockService{}
	payload := models.ForecastPayload(`{"type":"Feature","properties":{"timeseries":[]}}`)

	m.On("Lookup", mock.Anything, mock.MatchedBy(func(r models.WeatherRequest) bool {
		lat, latOK := r.Latitude.Value()
		lon, lonOK := r.Longitude.Value()
		return r.UserIP == nil && latOK && lonOK && lat == 51.5 && lon == -0.12
	})).Return(payload, nil).Once()

	t.Cleanup(func() {
		m.AssertExpectations(t)
	})

	rec := serve(t, m, jsonRequest(t, `{"latitude": 51.5, "longitude": -0.12}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, string(payload), rec.Body.String())
}

func TestCheckWeather_FormBody(t *testing.T) {
	m := &mockService{}

	m.On("Lookup", mock.Anything, mock.MatchedBy(func(r models.WeatherRequest) bool {
		return r.UserIP != nil && *r.UserIP == "8.8.8.8"
	})).Return(models.ForecastPayload(`{}`), nil).Once()

	t.Cleanup(func() {
		m.AssertExpectations(t)
	})

	form := url.Values{}
	form.Set("user_ip", "8.8.8.8")
	req, err := http.NewRequest(http.MethodPost, "/weather-check/", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := serve(t, m, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
}

func TestCheckWeather_EmptyBodyReachesValidation(t *testing.T) {
	m := &mockService{}

	m.On("Lookup", mock.Anything, models.WeatherRequest{}).
		Return(nil, &weather.ValidationError{
			Field:   weather.NonFieldErrors,
			Message: "You must provide either the user's IP address or the lat & long coordinates.",
		}).Once()

	t.Cleanup(func() {
		m.AssertExpectations(t)
	})

	rec := serve(t, m, jsonRequest(t, ``))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t,
		`{"non_field_errors":["You must provide either the user's IP address or the lat & long coordinates."]}`,
		rec.Body.String())
}

func TestCheckWeather_ErrorMapping(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "field validation",
			err:        &weather.ValidationError{Field: "latitude", Message: "A valid number is required."},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"latitude":["A valid number is required."]}`,
		},
		{
			name:       "geolocation unavailable",
			err:        &weather.UpstreamUnavailableError{Provider: weather.ProviderGeolocation, Err: errors.New("503")},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"detail":"Location tracker API services are unavailable at the moment."}`,
		},
		{
			name:       "forecast unavailable",
			err:        &weather.UpstreamUnavailableError{Provider: weather.ProviderForecast, Err: errors.New("500")},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"detail":"Weather tracker API services are unavailable at the moment."}`,
		},
		{
			name:       "unexpected",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"detail":"internal server error"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := &mockService{}
			m.On("Lookup", mock.Anything, mock.Anything).Return(nil, tc.err).Once()

			t.Cleanup(func() {
				m.AssertExpectations(t)
			})

			rec := serve(t, m, jsonRequest(t, `{"user_ip": "8.8.8.8"}`))

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.JSONEq(t, tc.wantBody, rec.Body.String())
		})
	}
}

func TestCheckWeather_BindErrors(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		wantBody string
	}{
		{
			name:     "user_ip not a string",
			body:     `{"user_ip": 8}`,
			wantBody: `{"user_ip":["Not a valid string."]}`,
		},
		{
			name: "broken json",
			body: `{"user_ip": "8.8.8.8"`,
		},
		{
			name: "not json",
			body: `user_ip=8.8.8.8`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := &mockService{}

			t.Cleanup(func() {
				m.AssertNumberOfCalls(t, "Lookup", 0)
			})

			rec := serve(t, m, jsonRequest(t, tc.body))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			if tc.wantBody != "" {
				assert.JSONEq(t, tc.wantBody, rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), `"detail"`)
			}
		})
	}
}
