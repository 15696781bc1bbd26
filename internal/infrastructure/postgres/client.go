package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/internal/config"
	appLogger "github.com/fastygo/taskboard/pkg/logger"
)

// NewPool creates and validates a pgx connection pool. cfg.URL is filled by config.Load.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pgxCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		pgxCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		pgxCfg.MinConns = min(int32(cfg.MaxIdleConns), pgxCfg.MaxConns)
	}
	if cfg.MaxConnLifetime > 0 {
		pgxCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.LogQueries {
		pgxCfg.ConnConfig.Tracer = QueryTracer(logger)
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	logger.Info("connected to postgres",
		zap.String("host", pgxCfg.ConnConfig.Host),
		zap.String("db", pgxCfg.ConnConfig.Database),
		zap.Int32("max_conns", pgxCfg.MaxConns),
		zap.Bool("log_queries", cfg.LogQueries))
	return pool, nil
}

// QueryTracer logs every statement at debug level, tagged with the request and user ids
// carried by the query context.
func QueryTracer(logger *zap.Logger) *tracelog.TraceLog {
	return &tracelog.TraceLog{
		Logger: tracelog.LoggerFunc(func(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
			fields := make([]zap.Field, 0, len(data))
			for k, v := range data {
				fields = append(fields, zap.Any(k, v))
			}
			log := appLogger.FromContext(ctx, logger)
			switch level {
			case tracelog.LogLevelError:
				log.Error(msg, fields...)
			case tracelog.LogLevelWarn:
				log.Warn(msg, fields...)
			case tracelog.LogLevelInfo:
				log.Info(msg, fields...)
			default:
				log.Debug(msg, fields...)
			}
		}),
		LogLevel: tracelog.LogLevelDebug,
	}
}
