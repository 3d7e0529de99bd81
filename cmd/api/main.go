package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/command-deck/engine/internal/api"
	"github.com/command-deck/engine/internal/api/handlers"
	mw "github.com/command-deck/engine/internal/api/middleware"
	"github.com/command-deck/engine/internal/auth"
	"github.com/command-deck/engine/internal/generation"
	"github.com/command-deck/engine/internal/queue/tasks"
	"github.com/command-deck/engine/internal/repository"
	"github.com/command-deck/engine/internal/services"
	"github.com/command-deck/engine/pkg/config"
	"github.com/command-deck/engine/pkg/database"
	"github.com/command-deck/engine/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	// Initialize logger
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("Starting Command Deck engine",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
	)

	// Connect to database
	ctx := context.Background()
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL, log.Named("gorm"), database.Options{
		Verbose: cfg.AppEnv == "development",
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer rdb.Close()

	queue := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer queue.Close()

	gen, err := generation.NewClient(generation.Config{
		APIKey:  cfg.AIAPIKey,
		BaseURL: cfg.AIBaseURL,
		Model:   cfg.AIModel,
		Timeout: cfg.AITimeout,
	}, log.Named("generation"))
	if err != nil {
		log.Fatal("generation client misconfigured", zap.Error(err))
	}

	broker := auth.NewBroker(16)
	defer broker.Close()
	go logAuthEvents(broker, log.Named("auth"))

	sessions := auth.NewSessions([]byte(cfg.JWTSecret), auth.DefaultSessionTTL)

	router := api.NewRouter(buildDependencies(cfg, db, rdb, queue, gen, broker, sessions, log))

	// Create HTTP server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// generation calls can take as long as the model timeout
		WriteTimeout: cfg.AITimeout + 30*time.Second,
		IdleTimeout:  90 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
}

func buildDependencies(
	cfg *config.Config,
	db *gorm.DB,
	rdb *redis.Client,
	queue *asynq.Client,
	gen generation.Generator,
	broker *auth.Broker,
	sessions *auth.Sessions,
	log *zap.Logger,
) api.Dependencies {
	// Repositories
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewAuthTokenRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	blueprintRepo := repository.NewBlueprintRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	sessionRepo := repository.NewDesignSessionRepository(db)
	docRepo := repository.NewDocumentRepository(db)

	// Services
	authSvc := services.NewAuthService(userRepo, tokenRepo, sessions, broker,
		services.NewLogMailer(log.Named("mailer")), services.AuthConfig{SiteURL: cfg.SiteURL})
	profileSvc := services.NewProfileService(profileRepo, broker)
	projectSvc := services.NewProjectService(projectRepo, blueprintRepo, auditRepo, sessionRepo)
	timelineSvc := services.NewTimelineService(projectRepo, blueprintRepo, auditRepo)
	docSvc := services.NewDocumentService(projectRepo, blueprintRepo, docRepo, gen, tasks.NewEnqueuer(queue))
	shellSvc := services.NewShellService(profileRepo, projectRepo, docRepo)

	limiter := mw.NewRateLimiter(10, 20)
	go sweepLimiter(limiter)

	return api.Dependencies{
		Sessions:      sessions,
		Profiles:      profileSvc,
		RateLimiter:   limiter,
		SiteURL:       cfg.SiteURL,
		TrustProxy:    cfg.TrustProxy,

		HealthHandler: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"database": func(ctx context.Context) error { return database.Ping(ctx, db) },
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}),
		AuthHandler:      handlers.NewAuthHandler(authSvc, cfg.SiteURL),
		InviteHandler:    handlers.NewInviteHandler(services.NewInviteService(inviteRepo)),
		AIHandler:        handlers.NewAIHandler(gen),
		ProjectsHandler:  handlers.NewProjectsHandler(projectSvc, timelineSvc),
		DocumentsHandler: handlers.NewDocumentsHandler(docSvc),
		ProfileHandler:   handlers.NewProfileHandler(profileSvc, shellSvc),
	}
}

// logAuthEvents records every auth state change until the broker closes.
func logAuthEvents(broker *auth.Broker, log *zap.Logger) {
	events, unsubscribe := broker.Subscribe()
	defer unsubscribe()
	for e := range events {
		log.Info("auth event", zap.String("type", string(e.Type)), zap.String("user_id", e.UserID.String()), zap.Time("at", e.At))
	}
}

func sweepLimiter(l *mw.RateLimiter) {
	t := time.NewTicker(5 * time.Minute)
	defer t.Stop()
	for range t.C {
		l.Sweep()
	}
}
