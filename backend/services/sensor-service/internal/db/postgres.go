package db

import (
	"context"
	"database/sql"
	"time"

	libdb "airwatch/backend/libs/db"
	"airwatch/backend/services/sensor-service/internal/repository"
)

// NewPostgres opens the reading database and makes sure the schema exists.
func NewPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	sqlDB, err := libdb.NewPostgresDB(dsn, libdb.PoolOptions{
		MaxOpenConns: 20,
		MaxIdleConns: 5,
		ConnLifetime: 30 * time.Minute,
	})
	if err != nil {
		return nil, err
	}

	if err := repository.NewReadingRepository(sqlDB).EnsureSchema(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return sqlDB, nil
}
