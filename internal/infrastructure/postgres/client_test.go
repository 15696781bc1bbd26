package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/taskboard/internal/config"
	appLogger "github.com/fastygo/taskboard/pkg/logger"
)

func TestQueryTracerMapsLevelsAndContext(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	tracer := QueryTracer(zap.New(core))

	ctx := appLogger.ContextWithRequestID(context.Background(), "req-9")
	tracer.Logger.Log(ctx, tracelog.LogLevelError, "Query", map[string]any{"sql": "SELECT 1"})
	tracer.Logger.Log(context.Background(), tracelog.LogLevelTrace, "Exec", nil)

	require.Equal(t, 2, logs.Len())
	first := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, first.Level)
	assert.Equal(t, "SELECT 1", first.ContextMap()["sql"])
	assert.Equal(t, "req-9", first.ContextMap()["request_id"])
	assert.Equal(t, zapcore.DebugLevel, logs.All()[1].Level)
}

func TestNewPoolRejectsBadURL(t *testing.T) {
	_, err := NewPool(context.Background(), config.DatabaseConfig{URL: "postgres://u@localhost:badport/db"}, nil)
	assert.ErrorContains(t, err, "parse database url")
}

func TestRunMigrationsDisabled(t *testing.T) {
	cfg := &config.Config{Migrations: config.MigrationsConfig{Enabled: false}}
	assert.NoError(t, RunMigrations(cfg, nil))
}
