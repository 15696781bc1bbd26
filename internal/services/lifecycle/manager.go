package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ShutdownFunc describes a graceful shutdown callback.
type ShutdownFunc func(ctx context.Context) error

// Stage orders shutdown. Lower stages stop first; hooks sharing a stage stop concurrently.
type Stage int

const (
	// StageIngress stops accepting traffic.
	StageIngress Stage = iota
	// StageWorkers stops background jobs such as the health monitor.
	StageWorkers
	// StageStorage closes connection pools.
	StageStorage
)

func (s Stage) String() string {
	switch s {
	case StageIngress:
		return "ingress"
	case StageWorkers:
		return "workers"
	case StageStorage:
		return "storage"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

type hook struct {
	stage Stage
	name  string
	fn    ShutdownFunc
}

// Manager coordinates graceful shutdown hooks and reacts to OS signals.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu    sync.Mutex
	hooks []hook
	done  bool
}

// New creates a lifecycle manager with the desired timeout.
func New(timeout time.Duration, logger *zap.Logger) *Manager {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		timeout: timeout,
		logger:  logger,
	}
}

// Register adds a shutdown hook to stage.
func (m *Manager) Register(stage Stage, name string, fn ShutdownFunc) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook{stage: stage, name: name, fn: fn})
}

// Shutdown runs the registered hooks stage by stage within the configured timeout.
// A failing hook does not stop the others; all failures are joined. Only the first call
// does any work.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		return nil
	}
	m.done = true

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var result error
	for _, stage := range m.stages() {
		result = errors.Join(result, m.stop(ctx, stage))
	}
	return result
}

func (m *Manager) stages() []Stage {
	seen := make(map[Stage]bool)
	var out []Stage
	for _, h := range m.hooks {
		if !seen[h.stage] {
			seen[h.stage] = true
			out = append(out, h.stage)
		}
	}
	slices.Sort(out)
	return out
}

func (m *Manager) stop(ctx context.Context, stage Stage) error {
	var (
		g    errgroup.Group
		errs []error
		mu   sync.Mutex
	)
	for _, h := range m.hooks {
		if h.stage != stage {
			continue
		}
		g.Go(func() error {
			started := time.Now()
			if err := h.fn(ctx); err != nil {
				m.logger.Error("shutdown hook failed",
					zap.Stringer("stage", stage),
					zap.String("component", h.name),
					zap.Error(err))
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", h.name, err))
				mu.Unlock()
				return nil
			}
			m.logger.Info("component stopped",
				zap.Stringer("stage", stage),
				zap.String("component", h.name),
				zap.Duration("took", time.Since(started)))
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Listen waits in the background for one of signals (SIGINT and SIGTERM when none are
// given) and then invokes cancel.
func (m *Manager) Listen(cancel context.CancelFunc, signals ...os.Signal) {
	if cancel == nil {
		return
	}
	if len(signals) == 0 {
		signals = []os.Signal{syscall.SIGTERM, syscall.SIGINT}
	}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, signals...)

	go func() {
		defer signal.Stop(sigCh)
		sig := <-sigCh
		m.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()
}
