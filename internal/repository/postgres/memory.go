package postgres

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cityweather/reporter/internal/domain"
)

// historyLimit matches the row limit of the PostgreSQL history query
const historyLimit = 100

// MemoryRepository implements domain.ReportRepository in process memory.
// Used when no database is configured; history is lost on exit.
type MemoryRepository struct {
	mu      sync.RWMutex
	reports []domain.WeatherReport
}

// NewMemoryRepository creates a new in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// SaveReport stores a copy of the report
func (r *MemoryRepository) SaveReport(ctx context.Context, report domain.WeatherReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.reports {
		if existing.ID == report.ID {
			return nil
		}
	}
	r.reports = append(r.reports, report)
	return nil
}

// GetHistory returns matching reports, newest first
func (r *MemoryRepository) GetHistory(ctx context.Context, city string, from, to time.Time) ([]domain.WeatherReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []domain.WeatherReport
	for _, w := range r.reports {
		if city != "" && !strings.EqualFold(w.City, city) {
			continue
		}
		if w.ObservedAt.Before(from) || w.ObservedAt.After(to) {
			continue
		}
		results = append(results, w)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].ObservedAt.After(results[j].ObservedAt)
	})
	if len(results) > historyLimit {
		results = results[:historyLimit]
	}

	return results, nil
}

// Health always returns nil in memory mode
func (r *MemoryRepository) Health(ctx context.Context) error {
	return nil
}
