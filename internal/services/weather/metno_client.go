package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/drizzly-bear/weather-check/internal/models"
)

// maxForecastSize caps how much of a forecast body is read (compact documents are ~100KB).
const maxForecastSize = 8 << 20

// ClientMetNo fetches compact forecasts from the MET Norway locationforecast API.
type ClientMetNo struct {
	apiURL    string
	userAgent string
	client    HTTPClient
	logger    zerolog.Logger
}

func NewClientMetNo(apiURL, userAgent string, httpClient HTTPClient, logger zerolog.Logger) *ClientMetNo {
	return &ClientMetNo{apiURL: apiURL, userAgent: userAgent, client: httpClient, logger: logger}
}

// FetchForecast calls GET {apiURL}?lat=..&lon=.. and returns the body untouched.
// The body must be a JSON object.
func (s *ClientMetNo) FetchForecast(ctx context.Context, coords models.Coordinates) (models.ForecastPayload, error) {
	start := time.Now()
	lat := formatCoordinate(coords.Latitude)
	lon := formatCoordinate(coords.Longitude)

	u, err := url.Parse(s.apiURL)
	if err != nil {
		s.logger.Error().
			Ctx(ctx).
			Err(err).
			Str("url", s.apiURL).
			Msg("failed to parse forecast url")
		return nil, err
	}
	q := u.Query()
	q.Set("lat", lat)
	q.Set("lon", lon)
	u.RawQuery = q.Encode()

	s.logger.Debug().
		Ctx(ctx).
		Str("lat", lat).
		Str("lon", lon).
		Str("url", u.String()).
		Msg("starting MET Norway request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		s.logger.Error().
			Ctx(ctx).
			Err(err).
			Str("url", u.String()).
			Msg("failed to create HTTP request")
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error().
			Ctx(ctx).
			Err(err).
			Str("url", u.String()).
			Msg("error sending HTTP request to MET Norway")
		return nil, fmt.Errorf("metno request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			s.logger.Error().
				Err(cerr).
				Msg("failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		s.logger.Error().
			Ctx(ctx).
			Str("lat", lat).
			Str("lon", lon).
			Str("status", resp.Status).
			Msg("MET Norway API returned non-200 status")
		return nil, fmt.Errorf("metno: %w %s", errUnexpectedStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxForecastSize))
	if err != nil {
		s.logger.Error().
			Ctx(ctx).
			Err(err).
			Msg("failed to read MET Norway response")
		return nil, fmt.Errorf("metno read: %w", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil || doc == nil {
		s.logger.Error().
			Ctx(ctx).
			Err(err).
			Int("bytes", len(body)).
			Msg("MET Norway response is not a JSON object")
		return nil, fmt.Errorf("metno: %w", errMalformedPayload)
	}

	s.logger.Info().
		Ctx(ctx).
		Str("lat", lat).
		Str("lon", lon).
		Int("bytes", len(body)).
		Dur("duration_ms", time.Since(start)).
		Msg("successfully fetched forecast")

	return models.ForecastPayload(body), nil
}

// formatCoordinate renders the shortest representation that round-trips (51.5, -0.12).
func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
