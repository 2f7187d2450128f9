package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/cityweather/reporter/internal/domain"
)

// WeatherFetcher performs one upstream lookup for a city
type WeatherFetcher interface {
	CurrentWeather(ctx context.Context, city string) (domain.WeatherReport, error)
}

// ReportService validates lookups and records successful ones
type ReportService struct {
	weather WeatherFetcher
	repo    ReportRepository
	logger  *zap.Logger

	wgBg sync.WaitGroup // tracks background saves for graceful shutdown
}

// NewReportService creates a new report service
func NewReportService(weather WeatherFetcher, repo ReportRepository, logger *zap.Logger) *ReportService {
	return &ReportService{
		weather: weather,
		repo:    repo,
		logger:  logger,
	}
}

// WaitBackground blocks until all background save goroutines complete.
// Call during shutdown to avoid dropped writes.
func (s *ReportService) WaitBackground() {
	s.wgBg.Wait()
}

// Lookup returns the current report for city or a *domain.LookupError.
// No failure escapes as a panic.
func (s *ReportService) Lookup(ctx context.Context, city string) (report domain.WeatherReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("recovered from panic during lookup", zap.Any("panic", r))
			report = domain.WeatherReport{}
			err = &domain.LookupError{Kind: domain.KindUnexpected, City: city, Err: fmt.Errorf("%v", r)}
		}
	}()

	city = strings.TrimSpace(city)
	if city == "" {
		return domain.WeatherReport{}, &domain.LookupError{Kind: domain.KindEmptyCity}
	}

	report, err = s.weather.CurrentWeather(ctx, city)
	if err != nil {
		s.logger.Info("weather lookup failed", zap.String("city", city), zap.Error(err))
		return domain.WeatherReport{}, asLookupError(city, err)
	}

	report.ID = uuid.NewString()
	s.logger.Info("weather fetched", zap.String("city", city), zap.String("reportId", report.ID))

	// Persist asynchronously (tracked for graceful shutdown)
	s.wgBg.Add(1)
	go func(r domain.WeatherReport) {
		defer s.wgBg.Done()
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.SaveReport(bgCtx, r); err != nil {
			s.logger.Warn("failed to save weather report", zap.String("reportId", r.ID), zap.Error(err))
		}
	}(report)

	return report, nil
}

// History returns stored reports for city within the last window
func (s *ReportService) History(ctx context.Context, city string, window time.Duration) ([]domain.WeatherReport, error) {
	to := time.Now()
	from := to.Add(-window)
	return s.repo.GetHistory(ctx, strings.TrimSpace(city), from, to)
}

// Health checks the history store
func (s *ReportService) Health(ctx context.Context) error {
	return s.repo.Health(ctx)
}

// asLookupError keeps every failure inside the tagged error type
func asLookupError(city string, err error) *domain.LookupError {
	var lookupErr *domain.LookupError
	if errors.As(err, &lookupErr) {
		return lookupErr
	}
	return &domain.LookupError{Kind: domain.KindUnexpected, City: city, Err: err}
}
