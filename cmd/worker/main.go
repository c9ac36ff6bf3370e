package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fleetops/fleet-console/internal/app"
	jobmetrics "github.com/fleetops/fleet-console/internal/jobs"
	"github.com/fleetops/fleet-console/internal/lov"
	"github.com/fleetops/fleet-console/internal/platform/cache"
	"github.com/fleetops/fleet-console/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := cache.Ping(ctx, redisClient); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	apiMetrics := lov.NewAPIMetrics(prometheus.DefaultRegisterer)
	lovClient := lov.NewClient(lov.ClientConfig{
		BaseURL: cfg.LOVAPIURL,
		Token:   cfg.LOVAPIToken,
		Timeout: cfg.LOVAPITimeout,
		Metrics: apiMetrics,
	})
	lovService := lov.NewService(lovClient, lov.ServiceConfig{
		Cache:  lov.NewListCache(redisClient, cfg.LOVCacheTTL, apiMetrics),
		Logger: logger,
	})

	warmupJob := jobs.NewLOVWarmupJob(lovService, cfg.LOVWarmupOrgs, logger, jobmetrics.NewMetrics(nil))

	var cron []jobs.CronRegistration
	if len(cfg.LOVWarmupOrgs) > 0 && cfg.LOVWarmupCron != "" {
		warmupTask, err := jobs.NewLOVCacheWarmupTask()
		if err != nil {
			logger.Error("build warmup task", slog.Any("error", err))
			os.Exit(1)
		}
		cron = append(cron, jobs.CronRegistration{Spec: cfg.LOVWarmupCron, Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   redisOpts.AsynqOpts(),
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLOVCacheWarmup, Handler: warmupJob.Handle},
		},
		Cron: cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
