package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campusvote/halalan/internal/app/worker"
	"github.com/campusvote/halalan/internal/platform/clock"
	"github.com/campusvote/halalan/internal/platform/config"
	"github.com/campusvote/halalan/internal/platform/health"
	"github.com/campusvote/halalan/internal/platform/ids"
	"github.com/campusvote/halalan/internal/platform/logger"
	"github.com/campusvote/halalan/internal/platform/storage/postgres"
	redisstore "github.com/campusvote/halalan/internal/platform/storage/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("worker: load config", "error", err)
	}

	db, err := postgres.Open(ctx, cfg.PostgresDSN())
	if err != nil {
		logger.Fatal("worker: open postgres", "error", err)
	}

	redisClient, err := redisstore.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("worker: connect redis", "error", err)
	}
	defer redisClient.Close()

	processor := worker.NewTaskProcessor(
		postgres.NewNotificationRepository(db),
		postgres.NewProfileRepository(db),
		redisstore.NewTaskQueue(redisClient, cfg.TaskQueueKey),
		clock.SystemClock{},
		ids.DefaultGenerator(),
		cfg.WorkerMaxAttempts,
	)

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("worker: get sql.DB", "error", err)
	}
	checker := health.NewChecker(sqlDB, redisClient)

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /readyz", checker.ReadyHandler())

	metricsServer := &http.Server{
		Addr:              cfg.WorkerMetricsAddress,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("worker: metrics listening", "address", cfg.WorkerMetricsAddress)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker: metrics server failed", "error", err)
		}
	}()

	logger.Info("worker: consuming tasks", "queue", cfg.TaskQueueKey)
	if err := processor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker: consume loop stopped", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("worker: metrics shutdown", "error", err)
	}
	logger.Info("worker: stopped")
}
