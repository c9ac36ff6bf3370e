package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/fleetops/fleet-console/internal/app"
	"github.com/fleetops/fleet-console/internal/auth"
	"github.com/fleetops/fleet-console/internal/lov"
	"github.com/fleetops/fleet-console/internal/observability"
	"github.com/fleetops/fleet-console/internal/platform/cache"
	"github.com/fleetops/fleet-console/internal/rbac"
	"github.com/fleetops/fleet-console/internal/shared"
	"github.com/fleetops/fleet-console/internal/view"
	"github.com/fleetops/fleet-console/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisOpts := cfg.RedisOptions()
	redisClient := cache.New(redisOpts)
	if err := cache.Ping(ctx, redisClient); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	rbacMiddleware := rbac.Middleware{Logger: logger}

	authHandler := auth.NewHandler(logger, auth.NewService(), sessionManager)

	jobClient, err := jobs.NewClient(redisOpts.AsynqOpts())
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	apiMetrics := lov.NewAPIMetrics(metrics.Registerer())
	lovClient := lov.NewClient(lov.ClientConfig{
		BaseURL: cfg.LOVAPIURL,
		Token:   cfg.LOVAPIToken,
		Timeout: cfg.LOVAPITimeout,
		Metrics: apiMetrics,
	})
	lovService := lov.NewService(lovClient, lov.ServiceConfig{
		Cache:  lov.NewListCache(redisClient, cfg.LOVCacheTTL, apiMetrics),
		Guard:  lov.NewSaveGuard(redisClient, cfg.LOVSaveLockTTL),
		Warmup: jobClient,
		Logger: logger,
	})
	lovHandler := lov.NewHandler(logger, lovService, templates, csrfManager, rbacMiddleware)

	inspector := asynq.NewInspector(redisOpts.AsynqOpts())
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Templates:      templates,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		AuthHandler:    authHandler,
		LOVHandler:     lovHandler,
		JobHandler:     jobHandler,
		RBACMiddleware: rbacMiddleware,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
