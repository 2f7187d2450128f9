package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/cityweather/reporter/internal/domain"
)

const schema = `
	CREATE TABLE IF NOT EXISTS weather_reports (
		id              TEXT PRIMARY KEY,
		city            TEXT NOT NULL,
		temperature_k   DOUBLE PRECISION NOT NULL,
		feels_like_k    DOUBLE PRECISION NOT NULL,
		humidity        INTEGER NOT NULL,
		pressure        INTEGER NOT NULL,
		wind_speed      DOUBLE PRECISION NOT NULL,
		description     TEXT NOT NULL,
		visibility      INTEGER,
		cloudiness      INTEGER NOT NULL,
		rain_1h         DOUBLE PRECISION NOT NULL DEFAULT 0,
		snow_1h         DOUBLE PRECISION NOT NULL DEFAULT 0,
		timezone_offset INTEGER NOT NULL,
		sunrise         BIGINT NOT NULL,
		sunset          BIGINT NOT NULL,
		observed_at     TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS weather_reports_city_observed_at_idx
		ON weather_reports (lower(city), observed_at DESC);
`

// PostgresRepository implements domain.ReportRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Migrate creates the report table if it does not exist
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: failed to apply schema: %w", err)
	}
	return nil
}

// SaveReport persists a weather report to PostgreSQL
func (r *PostgresRepository) SaveReport(ctx context.Context, report domain.WeatherReport) error {
	query := `
		INSERT INTO weather_reports (
			id, city, temperature_k, feels_like_k, humidity, pressure, wind_speed,
			description, visibility, cloudiness, rain_1h, snow_1h,
			timezone_offset, sunrise, sunset, observed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		report.ID, report.City, report.TemperatureK, report.FeelsLikeK, report.Humidity, report.Pressure,
		report.WindSpeed, report.Description, report.Visibility, report.Cloudiness, report.Rain1h,
		report.Snow1h, report.TimezoneOffset, report.Sunrise, report.Sunset, report.ObservedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save weather report: %w", err)
	}

	return nil
}

// GetHistory retrieves report history from PostgreSQL
func (r *PostgresRepository) GetHistory(ctx context.Context, city string, from, to time.Time) ([]domain.WeatherReport, error) {
	query := `
		SELECT id, city, temperature_k, feels_like_k, humidity, pressure, wind_speed,
			   description, visibility, cloudiness, rain_1h, snow_1h,
			   timezone_offset, sunrise, sunset, observed_at
		FROM weather_reports
		WHERE observed_at BETWEEN $1 AND $2
		  AND ($3 = '' OR lower(city) = lower($3))
		ORDER BY observed_at DESC
		LIMIT 100
	`

	rows, err := r.pool.Query(ctx, query, from, to, city)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query weather reports: %w", err)
	}
	defer rows.Close()

	var results []domain.WeatherReport
	for rows.Next() {
		var w domain.WeatherReport
		err := rows.Scan(
			&w.ID, &w.City, &w.TemperatureK, &w.FeelsLikeK, &w.Humidity, &w.Pressure, &w.WindSpeed,
			&w.Description, &w.Visibility, &w.Cloudiness, &w.Rain1h, &w.Snow1h,
			&w.TimezoneOffset, &w.Sunrise, &w.Sunset, &w.ObservedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan weather report row: %w", err)
		}
		results = append(results, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read weather report rows: %w", err)
	}

	return results, nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
