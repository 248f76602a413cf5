package weather

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/drizzly-bear/weather-check/internal/models"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// GeolocationProvider resolves an IP address to coordinates.
type GeolocationProvider interface {
	ResolveCoordinates(ctx context.Context, ip string) (models.Coordinates, error)
}

// WeatherProvider fetches the forecast document for a location.
type WeatherProvider interface {
	FetchForecast(ctx context.Context, coords models.Coordinates) (models.ForecastPayload, error)
}

type Service struct {
	logger   zerolog.Logger
	geo      GeolocationProvider
	forecast WeatherProvider
}

func NewService(logger zerolog.Logger, geo GeolocationProvider, forecast WeatherProvider) *Service {
	return &Service{logger: logger, geo: geo, forecast: forecast}
}

// Lookup validates req, resolves coordinates from the IP when one is given
// (the IP wins over explicit coordinates) and returns the forecast unchanged.
func (s *Service) Lookup(ctx context.Context, req models.WeatherRequest) (models.ForecastPayload, error) {
	ip, coords, err := validate(req)
	if err != nil {
		s.logger.Info().
			Ctx(ctx).
			Err(err).
			Msg("weather check rejected")
		return nil, err
	}

	if ip != "" {
		s.logger.Debug().
			Ctx(ctx).
			Str("user_ip", ip).
			Msg("resolving coordinates from ip")

		coords, err = s.geo.ResolveCoordinates(ctx, ip)
		if err != nil {
			return nil, upstreamUnavailable(ProviderGeolocation, err)
		}
	}

	payload, err := s.forecast.FetchForecast(ctx, coords)
	if err != nil {
		return nil, upstreamUnavailable(ProviderForecast, err)
	}

	s.logger.Info().
		Ctx(ctx).
		Float64("lat", coords.Latitude).
		Float64("lon", coords.Longitude).
		Bool("from_ip", ip != "").
		Msg("weather check served")

	return payload, nil
}

func validate(req models.WeatherRequest) (string, models.Coordinates, error) {
	var ip string
	if req.UserIP != nil {
		ip = strings.TrimSpace(*req.UserIP)
		if utf8.RuneCountInString(ip) > MaxUserIPLength {
			return "", models.Coordinates{}, newValidationError("user_ip", msgUserIPTooLong)
		}
	}

	if req.Latitude.Present() && !req.Latitude.Valid() {
		return "", models.Coordinates{}, newValidationError("latitude", msgInvalidNumber)
	}
	if req.Longitude.Present() && !req.Longitude.Valid() {
		return "", models.Coordinates{}, newValidationError("longitude", msgInvalidNumber)
	}

	if ip != "" {
		return ip, models.Coordinates{}, nil
	}

	lat, latOK := req.Latitude.Value()
	lon, lonOK := req.Longitude.Value()
	if !latOK || !lonOK {
		return "", models.Coordinates{}, newValidationError(NonFieldErrors, msgMissingInput)
	}

	return "", models.Coordinates{Latitude: lat, Longitude: lon}, nil
}
