package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cityweather/reporter/internal/cli"
	"github.com/cityweather/reporter/internal/config"
	"github.com/cityweather/reporter/internal/logging"
	"github.com/cityweather/reporter/internal/repository/postgres"
	"github.com/cityweather/reporter/internal/service"
)

func main() {
	cfg, err := config.Load("warn")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating the logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// An unreachable database must not hold up the prompt
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	repo, closeRepo := postgres.Open(openCtx, cfg.DatabaseURL, logger)
	cancel()
	defer closeRepo()

	weatherSvc := service.NewWeatherService(cfg.OpenWeatherBaseURL, cfg.OpenWeatherAPIKey, cfg.RequestTimeout, logger)
	defer weatherSvc.Close()

	reportSvc := service.NewReportService(weatherSvc, repo, logger)

	session := cli.NewSession(reportSvc, os.Stdin, os.Stdout, logger)
	err = session.Run(ctx)

	// Flush history writes before the pool closes
	reportSvc.WaitBackground()

	if err != nil {
		logger.Error("session ended with error", zap.Error(err))
		os.Exit(1)
	}
}
