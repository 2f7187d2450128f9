package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cityweather/reporter/internal/domain"
)

// Open returns a PostgreSQL repository for databaseURL, falling back to memory
// when the URL is empty or the database is unreachable. The returned func
// releases the connection pool.
func Open(ctx context.Context, databaseURL string, logger *zap.Logger) (domain.ReportRepository, func()) {
	if databaseURL == "" {
		logger.Info("no database configured, keeping report history in memory")
		return NewMemoryRepository(), func() {}
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Warn("could not create database pool, keeping report history in memory", zap.Error(err))
		return NewMemoryRepository(), func() {}
	}

	repo := NewPostgresRepository(pool)
	if err := repo.Health(ctx); err != nil {
		pool.Close()
		logger.Warn("could not reach database, keeping report history in memory", zap.Error(err))
		return NewMemoryRepository(), func() {}
	}
	if err := repo.Migrate(ctx); err != nil {
		pool.Close()
		logger.Warn("could not apply schema, keeping report history in memory", zap.Error(err))
		return NewMemoryRepository(), func() {}
	}

	logger.Info("connected to PostgreSQL")
	return repo, pool.Close
}
