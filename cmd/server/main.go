package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/taskboard/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/taskboard/internal/infrastructure/redis"
	"github.com/fastygo/taskboard/internal/metrics"
	"github.com/fastygo/taskboard/internal/middleware"
	"github.com/fastygo/taskboard/internal/router"
	"github.com/fastygo/taskboard/internal/services/lifecycle"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/repository/memory"
	"github.com/fastygo/taskboard/repository/postgres"
	redisRepo "github.com/fastygo/taskboard/repository/redis"
	"github.com/fastygo/taskboard/usecase"
	authUC "github.com/fastygo/taskboard/usecase/auth"
	boardUC "github.com/fastygo/taskboard/usecase/board"
	commentUC "github.com/fastygo/taskboard/usecase/comment"
	profileUC "github.com/fastygo/taskboard/usecase/profile"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

type repositories struct {
	users    repository.UserRepository
	tokens   repository.TokenRepository
	boards   repository.BoardRepository
	tasks    repository.TaskRepository
	comments repository.CommentRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
		Service:     cfg.AppName,
		Environment: cfg.Environment,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	mon := monitor.New(cfg.Monitor.Interval, zapLogger)

	var repos repositories
	if !cfg.UsesPostgres() {
		zapLogger.Warn("using in-memory storage; data is lost on restart")
		store := memory.New()
		repos = repositories{
			users:    store.Users(),
			tokens:   store.Tokens(),
			boards:   store.Boards(),
			tasks:    store.Tasks(),
			comments: store.Comments(),
		}
	} else {
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}

		pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register(lifecycle.StageStorage, "postgres", func(ctx context.Context) error {
			pool.Close()
			return nil
		})
		mon.Register("postgresql", monitor.Postgres(pool))

		repos = repositories{
			users:    postgres.NewUserRepository(pool),
			tokens:   postgres.NewTokenRepository(pool),
			boards:   postgres.NewBoardRepository(pool),
			tasks:    postgres.NewTaskRepository(pool),
			comments: postgres.NewCommentRepository(pool),
		}

		if cfg.Redis.URL != "" {
			redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
			if err != nil {
				zapLogger.Fatal("redis connection failed", zap.Error(err))
			}
			manager.Register(lifecycle.StageStorage, "redis", func(ctx context.Context) error {
				return redisClient.Close()
			})
			mon.Register("redis", monitor.Redis(redisClient))
			repos.tokens = redisRepo.NewTokenCache(repos.tokens, redisClient, cfg.Auth.TokenCacheTTL, zapLogger)
		}
	}

	if err := mon.Start(); err != nil {
		zapLogger.Fatal("monitor start failed", zap.Error(err))
	}
	manager.Register(lifecycle.StageWorkers, "monitor", func(ctx context.Context) error {
		mon.Stop(ctx)
		return nil
	})

	policy := domain.TaskPolicy{OwnerActsAsMember: cfg.Access.OwnerActsAsMember}
	resolver := usecase.NewResolver(repos.users, repos.comments)

	authUseCase := authUC.New(repos.users, repos.tokens, cfg.Auth.BcryptCost, zapLogger)
	profileUseCase := profileUC.New(repos.users, zapLogger)
	boardUseCase := boardUC.New(repos.boards, repos.tasks, resolver, zapLogger)
	taskUseCase := taskUC.New(repos.tasks, repos.boards, repos.users, resolver, policy, zapLogger)
	commentUseCase := commentUC.New(repos.comments, repos.tasks, repos.boards, resolver, policy, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	var httpMetrics *metrics.Metrics
	if cfg.HTTP.EnableMetrics {
		httpMetrics = metrics.New(cfg.AppName)
	}

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Profile: apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Board:   apiHandler.NewBoardHandler(boardUseCase, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Comment: apiHandler.NewCommentHandler(commentUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	tokenAuth := middleware.NewTokenAuth(authUseCase, ctxAdapter, httpMetrics, zapLogger)
	r := router.New(handlers, tokenAuth, router.Options{
		Metrics:     httpMetrics,
		EnablePprof: cfg.HTTP.EnablePprof,
	})

	server := &fasthttp.Server{
		Handler:      router.Handler(r, httpMetrics),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage", cfg.Storage.Driver))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register(lifecycle.StageIngress, "http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
