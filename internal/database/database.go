package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	connectMaxRetries = 50
	connectRetryDelay = 3 * time.Second
	connectTimeout    = 5 * time.Second
)

// Config содержит настройки пула соединений PostgreSQL.
type Config struct {
	DSN         string
	MaxConns    int
	IdleTimeout time.Duration
}

// Connect создает пул соединений pgxpool с повторными попытками: при старте
// в docker-compose база может подняться позже сервиса.
func Connect(cfg Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга DSN: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.IdleTimeout > 0 {
		poolConfig.MaxConnIdleTime = cfg.IdleTimeout
	}

	var pool *pgxpool.Pool
	for i := 0; i < connectMaxRetries; i++ {
		attempt := i + 1
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)

		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			err = pool.Ping(ctx)
			if err == nil {
				cancel()
				logger.Info("Connected to PostgreSQL", zap.Int("attempt", attempt))
				return pool, nil
			}
			pool.Close()
		}
		cancel()

		logger.Warn("PostgreSQL connection attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", connectMaxRetries),
			zap.Error(err),
		)
		if i < connectMaxRetries-1 {
			time.Sleep(connectRetryDelay)
		}
	}
	return nil, fmt.Errorf("не удалось подключиться к БД после %d попыток: %w", connectMaxRetries, err)
}
