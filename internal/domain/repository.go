package domain

import (
	"context"
	"time"
)

// ReportRepository defines the interface for report history persistence
type ReportRepository interface {
	// SaveReport persists a successful lookup
	SaveReport(ctx context.Context, report WeatherReport) error

	// GetHistory retrieves reports observed between from and to, newest first.
	// An empty city matches every city.
	GetHistory(ctx context.Context, city string, from, to time.Time) ([]WeatherReport, error)

	// Health checks storage connectivity
	Health(ctx context.Context) error
}
