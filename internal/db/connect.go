package db

import (
	"context"
	"fmt"
	"time"

	"byte_battle/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pool and pings it. An empty dsn yields a nil pool, which
// callers treat as "no database configured".
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		logger.Component("db").Warn("DATABASE_URL not set; running without database")
		return nil, nil
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create database pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Component("db").Info("database connected", "max_conns", pool.Config().MaxConns)
	return pool, nil
}
