package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Check tests one dependency; a nil error means healthy.
type Check func(ctx context.Context) error

type namedCheck struct {
	name  string
	check Check
}

// Monitor periodically checks the registered dependencies and keeps the last result.
type Monitor struct {
	checks []namedCheck

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	timeout  time.Duration
	cron     *cron.Cron
	logger   *zap.Logger
}

func New(interval time.Duration, logger *zap.Logger) *Monitor {
	if interval < time.Second {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		interval: interval,
		timeout:  3 * time.Second,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger,
	}
}

// Register adds a named check. It must be called before Start.
func (m *Monitor) Register(name string, check Check) {
	m.checks = append(m.checks, namedCheck{name: name, check: check})
}

// Postgres pings a pgx pool.
func Postgres(pool *pgxpool.Pool) Check {
	return func(ctx context.Context) error {
		return pool.Ping(ctx)
	}
}

// Redis pings a go-redis client.
func Redis(client *redislib.Client) Check {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

// Start runs a first check synchronously and then schedules one per interval.
func (m *Monitor) Start() error {
	m.Refresh(context.Background())

	schedule := fmt.Sprintf("@every %ds", int(m.interval.Seconds()))
	if _, err := m.cron.AddFunc(schedule, func() {
		m.Refresh(context.Background())
	}); err != nil {
		return err
	}
	m.cron.Start()
	m.logger.Info("health monitor started", zap.Duration("interval", m.interval), zap.Int("checks", len(m.checks)))
	return nil
}

// Stop waits for a running check to finish or ctx to expire.
func (m *Monitor) Stop(ctx context.Context) {
	stopCtx := m.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
}

// IsOnline reports whether every dependency passed its last check.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ok := range m.status.Services {
		if !ok {
			return false
		}
	}
	return true
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.clone()
}

// Refresh checks all dependencies in parallel and stores the result.
func (m *Monitor) Refresh(ctx context.Context) Status {
	results := make([]bool, len(m.checks))

	var g errgroup.Group
	for i, c := range m.checks {
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
			defer cancel()
			if err := c.check(checkCtx); err != nil {
				m.logger.Warn("dependency check failed", zap.String("service", c.name), zap.Error(err))
				return nil
			}
			results[i] = true
			return nil
		})
	}
	_ = g.Wait()

	status := Status{
		Services:  make(map[string]bool, len(m.checks)),
		LastCheck: time.Now().UTC(),
	}
	for i, c := range m.checks {
		status.Services[c.name] = results[i]
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
	return status.clone()
}
