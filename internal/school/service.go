// Package school coordinates the entity store with the grade and attendance
// aggregators. Reads always fetch full collections; every mutation
// invalidates the dashboard summary and publishes a change event.
package school

import (
	"context"
	"time"

	"go.uber.org/zap"

	"classroom/internal/cache"
	"classroom/internal/metrics"
	"classroom/internal/model"
	"classroom/internal/queue"
)

// Deps are the collaborators of a Service. Only Store is required.
type Deps struct {
	Store  Store
	Events queue.Publisher
	Cache  cache.Summary
	Logger *zap.Logger

	// Parallelism bounds the concurrent writes of a quick-mark batch.
	Parallelism int
	// Now supplies the date used for defaults such as a grade's submitted date.
	Now func() time.Time
}

// Service implements the student management operations.
type Service struct {
	store       Store
	events      queue.Publisher
	cache       cache.Summary
	log         *zap.Logger
	parallelism int
	now         func() time.Time
}

// New creates a service. Missing optional dependencies fall back to no-ops.
func New(d Deps) *Service {
	s := &Service{
		store:       d.Store,
		events:      d.Events,
		cache:       d.Cache,
		log:         d.Logger,
		parallelism: d.Parallelism,
		now:         d.Now,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.parallelism <= 0 {
		s.parallelism = 8
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Ping checks the store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) today() model.Date {
	return model.DateOf(s.now())
}

// changed runs after a successful mutation. Failures here never fail the
// mutation itself; the summary is recomputed on the next miss.
func (s *Service) changed(ctx context.Context, typ, op string, id int) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn("dashboard cache invalidate failed", zap.String("event", typ), zap.Error(err))
		}
	}
	if s.events == nil {
		return
	}
	evt := queue.NewChangeEvent(typ, op, id)
	if err := queue.PublishChange(ctx, s.events, evt); err != nil {
		s.log.Warn("change event publish failed",
			zap.String("event", typ),
			zap.String("op", op),
			zap.Int("entity_id", id),
			zap.Error(err),
		)
	}
}

// wrote records a store write and logs it when it failed for a reason other
// than bad input.
func (s *Service) wrote(entity, op string, id int, err error) {
	metrics.StoreWrite(entity, op, err)
	if err == nil || isClientError(err) {
		return
	}
	s.log.Error("store write failed",
		zap.String("entity", entity),
		zap.String("op", op),
		zap.Int("id", id),
		zap.Error(err),
	)
}
