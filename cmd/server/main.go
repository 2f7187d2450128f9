package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/cityweather/reporter/internal/config"
	"github.com/cityweather/reporter/internal/delivery/http"
	"github.com/cityweather/reporter/internal/logging"
	"github.com/cityweather/reporter/internal/repository/postgres"
	"github.com/cityweather/reporter/internal/service"
)

func main() {
	// Configuration
	cfg, err := config.Load("info")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating the logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	// Database connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, closeRepo := postgres.Open(ctx, cfg.DatabaseURL, log)
	defer closeRepo()

	// Dependency Injection: Services
	weatherSvc := service.NewWeatherService(cfg.OpenWeatherBaseURL, cfg.OpenWeatherAPIKey, cfg.RequestTimeout, log)
	defer weatherSvc.Close()
	reportSvc := service.NewReportService(weatherSvc, repo, log)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "Weather Reporter API v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		ErrorHandler: http.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	// Routes
	http.SetupRoutes(app, reportSvc)

	go func() {
		log.Info("server starting", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Warn("server forced to shutdown", zap.Error(err))
	}
	reportSvc.WaitBackground()
	log.Info("server exited gracefully")
}
