package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"classroom/internal/app"
	"classroom/internal/config"
	"classroom/internal/logging"
	"classroom/internal/metrics"
	"classroom/internal/queue"
)

// Worker consumes change events and re-warms the dashboard summary cache.
// It only sees the API's data with STORE_BACKEND=postgres and
// QUEUE_BACKEND=redis.
func main() {
	cfg := config.Load()
	log := logging.Must(cfg.Env, "worker")
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.QueueBackend != config.BackendRedis || cfg.StoreBackend != config.BackendPostgres {
		log.Warn("worker is not sharing state with the api",
			zap.String("store", cfg.StoreBackend),
			zap.String("queue", cfg.QueueBackend),
		)
	}

	deps, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("init failed", zap.Error(err))
	}
	defer deps.Close()

	messages, err := deps.Queue.Consume(ctx)
	if err != nil {
		log.Fatal("queue consume init failed", zap.Error(err))
	}

	log.Info("worker started, waiting for change events")
	for msg := range messages {
		evt, err := queue.DecodeChange(msg)
		if err != nil {
			metrics.ChangeEvent(msg.Type, err)
			log.Warn("dropping malformed event", zap.String("type", msg.Type), zap.Error(err))
			continue
		}

		start := time.Now()
		_, err = deps.Service.RefreshDashboard(ctx)
		metrics.ChangeEvent(evt.Type, err)
		if err != nil {
			log.Error("dashboard refresh failed", zap.String("event_id", evt.ID), zap.Error(err))
			continue
		}
		log.Debug("dashboard refreshed",
			zap.String("event_id", evt.ID),
			zap.String("type", evt.Type),
			zap.String("op", evt.Op),
			zap.Int("entity_id", evt.EntityID),
			zap.Duration("took", time.Since(start)),
		)
	}

	log.Info("worker stopped")
}
