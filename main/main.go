package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/drizzly-bear/weather-check/internal/app"
	"github.com/drizzly-bear/weather-check/internal/config"
	metricsSvc "github.com/drizzly-bear/weather-check/internal/services/metrics"
	"github.com/drizzly-bear/weather-check/pkg/logger"
)

// @title Drizzly Bear Weather Check API
// @version 1.0
// @description Returns the weather forecast for an IP address or a pair of coordinates.
// @BasePath /
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		log.Panicf("failed to load configuration: %v", err)
	}

	l, err := logger.NewLogger(cfg.LogsPath, cfg.ServiceName)
	if err != nil {
		log.Panicf("failed to initialize logger: %v", err)
	}

	m := metricsSvc.NewMetrics(cfg.ServiceName)

	application := app.New(*cfg, l, m)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Start(ctx); err != nil {
		l.Error().Err(err).Msg("application failed to run")
		stop()
		log.Panicf("Application failed to run: %v", err)
	}
}
