// Package app wires the configured backends into a school service. It is
// shared by the API server and the worker.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"classroom/internal/cache"
	"classroom/internal/config"
	"classroom/internal/queue"
	"classroom/internal/school"
	"classroom/internal/store"
)

// App holds the constructed backends. Redis is nil unless some backend needs it.
type App struct {
	Service *school.Service
	Queue   queue.Queue
	Redis   *store.Redis

	closers []func() error
}

// New builds the store, cache and queue selected by cfg.
func New(ctx context.Context, cfg config.App, log *zap.Logger) (*App, error) {
	a := &App{}

	if cfg.CacheBackend == config.BackendRedis || cfg.QueueBackend == config.BackendRedis {
		a.Redis = store.NewRedis(cfg.RedisAddr)
		a.closers = append(a.closers, a.Redis.Close)
		if err := a.Redis.Ping(ctx); err != nil {
			log.Warn("redis not reachable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
	}

	var st school.Store
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := store.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if err := db.Migrate(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		st = store.NewPostgres(db)
	case config.BackendMemory:
		st = store.NewMemory()
	default:
		a.Close()
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	var summary cache.Summary
	switch cfg.CacheBackend {
	case config.BackendRedis:
		summary = cache.NewRedis(a.Redis.Client, cache.DefaultKey, cfg.DashboardCacheTTL)
	default:
		summary = cache.NewMemory(cfg.DashboardCacheTTL)
	}

	switch cfg.QueueBackend {
	case config.BackendRedis:
		a.Queue = queue.NewRedisQueue(a.Redis.Client, queue.DefaultKey)
	default:
		a.Queue = queue.NewInMemory(64)
	}

	a.Service = school.New(school.Deps{
		Store:       st,
		Events:      a.Queue,
		Cache:       summary,
		Logger:      log,
		Parallelism: cfg.QuickMarkParallelism,
	})
	log.Info("backends ready",
		zap.String("store", cfg.StoreBackend),
		zap.String("cache", cfg.CacheBackend),
		zap.String("queue", cfg.QueueBackend),
	)
	return a, nil
}

// Close releases connections in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}
