package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/command-deck/engine/internal/generation"
	"github.com/command-deck/engine/internal/queue/tasks"
	"github.com/command-deck/engine/internal/repository"
	"github.com/command-deck/engine/internal/services"
	"github.com/command-deck/engine/pkg/config"
	"github.com/command-deck/engine/pkg/database"
	"github.com/command-deck/engine/pkg/logger"
)

func main() {
	cfg := config.MustLoad()
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}
	_ = rdb.Close()

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		},
		asynq.Config{
			Concurrency: cfg.AsynqConcurrency,
			Queues: map[string]int{
				tasks.QueueDocuments: 6,
				"default":            3,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, t *asynq.Task, err error) {
				logger.L().Error("task failed", zap.String("type", t.Type()), zap.Error(err))
			}),
		},
	)

	// Initialize DB and repositories for task handlers
	ctx := context.Background()
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL, logger.Named("gorm"), database.Options{})
	if err != nil {
		logger.L().Fatal("failed to open database", zap.Error(err))
	}

	gen, err := generation.NewClient(generation.Config{
		APIKey:  cfg.AIAPIKey,
		BaseURL: cfg.AIBaseURL,
		Model:   cfg.AIModel,
		Timeout: cfg.AITimeout,
	}, log.Named("generation"))
	if err != nil {
		logger.L().Fatal("generation client misconfigured", zap.Error(err))
	}

	projectRepo := repository.NewProjectRepository(db)
	blueprintRepo := repository.NewBlueprintRepository(db)
	docRepo := repository.NewDocumentRepository(db)

	// the worker only generates; it never enqueues
	docSvc := services.NewDocumentService(projectRepo, blueprintRepo, docRepo, gen, nil)

	mux := asynq.NewServeMux()
	tasks.NewDocumentTaskHandler(docSvc).Register(mux)

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("asynq worker starting", zap.Int("concurrency", cfg.AsynqConcurrency))
		if err := srv.Run(mux); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.L().Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.L().Error("worker stopped with error", zap.Error(err))
	}

	// Allow in-flight tasks to finish gracefully
	srv.Shutdown()
}
