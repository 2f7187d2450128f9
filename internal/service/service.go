package service

import (
	"github.com/cityweather/reporter/internal/domain"
)

// ReportRepository is re-exported from domain for convenience
type ReportRepository = domain.ReportRepository
