package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerfiles "github.com/swaggo/files"
	swagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/drizzly-bear/weather-check/docs"
	"github.com/drizzly-bear/weather-check/internal/config"
	http2 "github.com/drizzly-bear/weather-check/internal/handlers/http"
	loggerT "github.com/drizzly-bear/weather-check/internal/services/logger"
	metricsSvc "github.com/drizzly-bear/weather-check/internal/services/metrics"
	serviceWeather "github.com/drizzly-bear/weather-check/internal/services/weather"
	"github.com/drizzly-bear/weather-check/internal/services/weather/decorators"
	fLogger "github.com/drizzly-bear/weather-check/pkg/logger"
)

const (
	weatherCheckRoute        = "/weather-check/"
	weatherCheckRouteNoSlash = "/weather-check"
)

// ServiceContainer holds initialized dependencies for the HTTP server.
type ServiceContainer struct {
	Router     *gin.Engine
	Srv        *http.Server
	fileLogger *zap.Logger
}

// App ties together config, logger, and metrics for startup/shutdown.
type App struct {
	cfg config.Config
	l   zerolog.Logger
	m   *metricsSvc.Metrics
}

// New prepares a new App with given config, zerolog logger, and metrics.
func New(cfg config.Config, logger zerolog.Logger, met *metricsSvc.Metrics) *App {
	return &App{
		cfg: cfg,
		l:   logger,
		m:   met,
	}
}

// Start initializes services, serves HTTP and blocks until ctx is done.
func (a *App) Start(ctx context.Context) error {
	srvContainer := a.init()

	errCh := make(chan error, 1)
	go func() {
		a.l.Info().
			Str("address", a.cfg.ServerAddress()).
			Msg("starting weather-check HTTP server")
		if err := srvContainer.Srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		a.l.Info().Msg("shutdown signal received, stopping weather-check service")
	case err := <-errCh:
		if err != nil {
			a.l.Error().Err(err).Msg("HTTP server failed")
			a.syncFileLogger(srvContainer.fileLogger)
			return err
		}
	}

	if err := a.Shutdown(srvContainer); err != nil {
		a.l.Error().Err(err).Msg("failed to shutdown application")
		return err
	}
	a.l.Info().Msg("application shutdown successfully")
	return nil
}

// Shutdown drains the HTTP server and syncs the outbound request log.
func (a *App) Shutdown(srvContainer ServiceContainer) error {
	a.l.Info().Msg("stopping weather-check service…")
	defer a.syncFileLogger(srvContainer.fileLogger)

	ctx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(a.cfg.Server.ReadTimeout)*time.Second)
	defer cancel()

	if err := srvContainer.Srv.Shutdown(ctx); err != nil {
		a.l.Error().Err(err).Msg("forced shutdown due to error")
		return err
	}
	a.l.Info().Msg("shutdown complete")
	return nil
}

func (a *App) syncFileLogger(logger *zap.Logger) {
	if err := logger.Sync(); err != nil {
		a.l.Error().Err(err).Msg("failed to sync file logger")
	} else {
		a.l.Info().Msg("file logger synced successfully")
	}
}

// init builds providers, the lookup service and the router without serving.
func (a *App) init() ServiceContainer {
	a.l.Info().
		Str("geolocation_url", a.cfg.Geolocation.URL).
		Str("forecast_url", a.cfg.Forecast.URL).
		Int("upstream_timeout_s", a.cfg.Upstream.Timeout).
		Msg("initializing weather-check service")

	fileLogger, err := fLogger.NewFileLogger(a.cfg.HTTPLogsPath)
	if err != nil {
		a.l.Error().Err(err).Msg("failed to create file logger, outbound requests will not be logged")
		fileLogger = zap.NewNop()
	}

	// HTTP client logging
	httpLogClient := &http.Client{
		Transport: loggerT.NewRoundTripper(fileLogger),
		Timeout:   time.Duration(a.cfg.Upstream.Timeout) * time.Second,
	}

	collector := metricsSvc.NewPromCollector(a.m.Registry, a.cfg.ServiceName)

	geo := decorators.NewMetricsGeolocation(
		serviceWeather.NewClientIPStack(a.cfg.Geolocation.APIKey, a.cfg.Geolocation.URL, httpLogClient, a.l),
		collector,
	)
	forecast := decorators.NewMetricsForecast(
		serviceWeather.NewClientMetNo(a.cfg.Forecast.URL, a.cfg.Forecast.UserAgent, httpLogClient, a.l),
		collector,
	)
	weatherService := serviceWeather.NewService(a.l, geo, forecast)

	if a.cfg.Server.Mode != "" {
		gin.SetMode(a.cfg.Server.Mode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(a.l))
	router.Use(a.m.HTTPMiddleware(weatherCheckRoute, weatherCheckRouteNoSlash))

	weatherHandler := http2.NewHandler(weatherService, a.l).
		WithTimeout(time.Duration(a.cfg.Upstream.Timeout) * time.Second)
	router.POST(weatherCheckRoute, weatherHandler.CheckWeather)
	router.POST(weatherCheckRouteNoSlash, weatherHandler.CheckWeather)

	router.GET("/metrics", gin.WrapH(a.m.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/swagger/*any", swagger.WrapHandler(swaggerfiles.Handler))

	httpServer := &http.Server{
		Addr:        a.cfg.ServerAddress(),
		Handler:     router,
		ReadTimeout: time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
	}

	return ServiceContainer{
		Router:     router,
		Srv:        httpServer,
		fileLogger: fileLogger,
	}
}
