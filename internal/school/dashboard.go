package school

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"classroom/internal/gradebook"
	"classroom/internal/metrics"
	"classroom/internal/model"
)

// Dashboard returns the cached summary, computing and caching it on a miss.
// A cache failure degrades to computing from the store.
func (s *Service) Dashboard(ctx context.Context) (gradebook.Summary, error) {
	if s.cache != nil {
		sum, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.log.Warn("dashboard cache read failed", zap.Error(err))
		}
		metrics.DashboardCache(ok)
		if ok {
			return sum, nil
		}
	}
	return s.RefreshDashboard(ctx)
}

// RefreshDashboard recomputes the summary from full collections and stores it
// in the cache. The cache generation is read before listing, so a summary
// computed across a concurrent write is not cached.
func (s *Service) RefreshDashboard(ctx context.Context) (gradebook.Summary, error) {
	var (
		gen    uint64
		genErr error
	)
	if s.cache != nil {
		if gen, genErr = s.cache.Generation(ctx); genErr != nil {
			s.log.Warn("dashboard cache generation read failed", zap.Error(genErr))
		}
	}

	var (
		students   []model.Student
		classes    []model.ClassSection
		attendance []model.AttendanceRecord
		grades     []model.Grade
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		students, err = s.store.ListStudents(gctx)
		return err
	})
	g.Go(func() (err error) {
		classes, err = s.store.ListClasses(gctx)
		return err
	})
	g.Go(func() (err error) {
		attendance, err = s.store.ListAttendance(gctx)
		return err
	})
	g.Go(func() (err error) {
		grades, err = s.store.ListGrades(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return gradebook.Summary{}, err
	}

	sum := gradebook.Summarize(students, classes, attendance, grades)
	if s.cache != nil && genErr == nil {
		stored, err := s.cache.Set(ctx, gen, sum)
		switch {
		case err != nil:
			s.log.Warn("dashboard cache write failed", zap.Error(err))
		case !stored:
			s.log.Debug("dashboard changed during refresh; not caching")
		}
	}
	return sum, nil
}
