package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/drizzly-bear/weather-check/internal/models"
	"github.com/drizzly-bear/weather-check/internal/services/weather"
)

const (
	timeoutDuration = 10 * time.Second

	contentTypeJSON = "application/json; charset=utf-8"
)

type weatherLookupService interface {
	Lookup(ctx context.Context, req models.WeatherRequest) (models.ForecastPayload, error)
}

type Handler struct {
	service weatherLookupService
	logger  zerolog.Logger
	timeout time.Duration
}

func NewHandler(svc weatherLookupService, logger zerolog.Logger) *Handler {
	return &Handler{service: svc, logger: logger, timeout: timeoutDuration}
}

// WithTimeout overrides the per-request deadline used for upstream calls.
func (h *Handler) WithTimeout(d time.Duration) *Handler {
	if d > 0 {
		h.timeout = d
	}
	return h
}

// CheckWeather
// @Summary Get the forecast for a user
// @Description Resolves the caller's location from user_ip (preferred) or from
// @Description latitude/longitude and returns the MET Norway compact forecast unchanged.
// @Tags weather
// @Accept json
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param request body models.WeatherRequest true "IP address or coordinates"
// @Success 200 {object} object "MET Norway locationforecast document"
// @Failure 400 {object} map[string][]string
// @Failure 503 {object} map[string]string
// @Router /weather-check/ [post]
func (h *Handler) CheckWeather(c *gin.Context) {
	var req models.WeatherRequest
	if err := c.ShouldBind(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Info().
			Ctx(c.Request.Context()).
			Err(err).
			Msg("failed to bind weather check request")
		c.JSON(http.StatusBadRequest, bindErrorBody(err))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	payload, err := h.service.Lookup(ctx, req)
	if err != nil {
		var ve *weather.ValidationError
		var ue *weather.UpstreamUnavailableError
		switch {
		case errors.As(err, &ve):
			c.JSON(http.StatusBadRequest, gin.H{ve.Field: []string{ve.Message}})
		case errors.As(err, &ue):
			c.JSON(http.StatusServiceUnavailable, gin.H{"detail": ue.Detail()})
		default:
			h.logger.Error().
				Ctx(c.Request.Context()).
				Err(err).
				Msg("weather check failed")
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
		}
		return
	}

	c.Data(http.StatusOK, contentTypeJSON, payload)
}

func bindErrorBody(err error) gin.H {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field == "user_ip" {
		return gin.H{"user_ip": []string{"Not a valid string."}}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return gin.H{"detail": "JSON parse error - " + err.Error()}
	}

	return gin.H{"detail": "Malformed request body."}
}
