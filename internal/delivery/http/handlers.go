package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/cityweather/reporter/internal/domain"
	"github.com/cityweather/reporter/internal/report"
)

// WeatherReporter is the lookup surface the handlers depend on
type WeatherReporter interface {
	Lookup(ctx context.Context, city string) (domain.WeatherReport, error)
	History(ctx context.Context, city string, window time.Duration) ([]domain.WeatherReport, error)
	Health(ctx context.Context) error
}

// Handler contains all HTTP handlers
type Handler struct {
	reporter WeatherReporter
}

// NewHandler creates a new handler
func NewHandler(reporter WeatherReporter) *Handler {
	return &Handler{reporter: reporter}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	storage := "ok"
	if err := h.reporter.Health(c.UserContext()); err != nil {
		storage = "unavailable"
	}

	return c.JSON(fiber.Map{
		"status":  "ok",
		"storage": storage,
		"service": "weather-reporter",
		"version": "1.0.0",
	})
}

// GetWeather returns the current report for the city query parameter
func (h *Handler) GetWeather(c *fiber.Ctx) error {
	weather, err := h.reporter.Lookup(c.UserContext(), c.Query("city"))
	if err != nil {
		return fiber.NewError(statusFor(err), report.Message(err))
	}

	return c.JSON(domain.WeatherResponse{
		Data:    domain.NewWeatherView(weather),
		Success: true,
	})
}

// GetHistory returns stored reports within a time range
func (h *Handler) GetHistory(c *fiber.Ctx) error {
	hours := c.QueryInt("hours", 24)
	if hours < 1 || hours > 720 { // max 30 days
		hours = 24
	}

	data, err := h.reporter.History(c.UserContext(), c.Query("city"), time.Duration(hours)*time.Hour)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch weather history")
	}

	views := make([]domain.WeatherView, 0, len(data))
	for _, w := range data {
		views = append(views, domain.NewWeatherView(w))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    views,
		"count":   len(views),
	})
}

// statusFor maps a lookup failure to the HTTP status returned to callers
func statusFor(err error) int {
	var e *domain.LookupError
	if !errors.As(err, &e) {
		return fiber.StatusInternalServerError
	}

	switch e.Kind {
	case domain.KindEmptyCity:
		return fiber.StatusBadRequest
	case domain.KindCityNotFound:
		return fiber.StatusNotFound
	case domain.KindUnauthorized, domain.KindUnexpectedStatus, domain.KindMissingData, domain.KindInvalidData, domain.KindRequest:
		return fiber.StatusBadGateway
	case domain.KindConnection:
		return fiber.StatusServiceUnavailable
	case domain.KindTimeout:
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders errors as the JSON error envelope
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
