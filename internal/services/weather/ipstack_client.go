package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/drizzly-bear/weather-check/internal/models"
	httplog "github.com/drizzly-bear/weather-check/internal/services/logger"
)

// ipstack answers 200 even for failed lookups and reports them in an error envelope.
type ipstackResponse struct {
	Success *bool `json:"success"`
	Error   *struct {
		Code int    `json:"code"`
		Type string `json:"type"`
		Info string `json:"info"`
	} `json:"error"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// ClientIPStack resolves IP addresses to coordinates with the ipstack API.
type ClientIPStack struct {
	apiKey string
	apiURL string
	client HTTPClient
	logger zerolog.Logger
}

func NewClientIPStack(apiKey, apiURL string, httpClient HTTPClient, logger zerolog.Logger) *ClientIPStack {
	return &ClientIPStack{
		apiKey: apiKey,
		apiURL: strings.TrimRight(apiURL, "/"),
		client: httpClient,
		logger: logger,
	}
}

// ResolveCoordinates calls GET {apiURL}/{ip}?access_key=... and returns the
// reported location. Anything but a 200 carrying both coordinates is an error.
func (s *ClientIPStack) ResolveCoordinates(ctx context.Context, ip string) (models.Coordinates, error) {
	start := time.Now()

	u, err := url.Parse(s.apiURL + "/" + url.PathEscape(ip))
	if err != nil {
		s.logger.Error().
			Ctx(ctx).
			Err(err).
			Str("ip", ip).
			Msg("failed to build ipstack url")
		return models.Coordinates{}, err
	}
	q := u.Query()
	q.Set("access_key", s.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		s.logger.Error().
			Ctx(ctx).
			Err(err).
			Str("ip", ip).
			Msg("failed to create HTTP request")
		return models.Coordinates{}, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		// net/http puts the full request URL, access_key included, in the error.
		err = httplog.RedactError(err)
		s.logger.Error().
			Ctx(ctx).
			Err(err).
			Str("ip", ip).
			Msg("error sending HTTP request to ipstack")
		return models.Coordinates{}, fmt.Errorf("ipstack request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			s.logger.Error().
				Err(cerr).
				Str("ip", ip).
				Msg("failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		s.logger.Error().
			Ctx(ctx).
			Str("ip", ip).
			Str("status", resp.Status).
			Msg("ipstack API returned non-200 status")
		return models.Coordinates{}, fmt.Errorf("ipstack: %w %s", errUnexpectedStatus, resp.Status)
	}

	var raw ipstackResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		s.logger.Error().
			Ctx(ctx).
			Err(err).
			Str("ip", ip).
			Msg("failed to decode ipstack response")
		return models.Coordinates{}, fmt.Errorf("ipstack: %w: %w", errMalformedPayload, err)
	}

	if raw.Success != nil && !*raw.Success {
		ev := s.logger.Error().Ctx(ctx).Str("ip", ip)
		if raw.Error != nil {
			ev = ev.Int("code", raw.Error.Code).Str("type", raw.Error.Type)
		}
		ev.Msg("ipstack reported a failed lookup")
		return models.Coordinates{}, fmt.Errorf("ipstack: lookup failed: %w", errMalformedPayload)
	}

	if raw.Latitude == nil || raw.Longitude == nil {
		s.logger.Error().
			Ctx(ctx).
			Str("ip", ip).
			Msg("ipstack response has no coordinates")
		return models.Coordinates{}, fmt.Errorf("ipstack: missing coordinates: %w", errMalformedPayload)
	}

	coords := models.Coordinates{Latitude: *raw.Latitude, Longitude: *raw.Longitude}

	s.logger.Info().
		Ctx(ctx).
		Str("ip", ip).
		Float64("lat", coords.Latitude).
		Float64("lon", coords.Longitude).
		Dur("duration_ms", time.Since(start)).
		Msg("successfully resolved coordinates")

	return coords, nil
}
