package school

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"classroom/internal/gradebook"
	"classroom/internal/metrics"
	"classroom/internal/model"
	"classroom/internal/queue"
)

func (s *Service) ListAttendance(ctx context.Context) ([]model.AttendanceRecord, error) {
	return s.store.ListAttendance(ctx)
}

func (s *Service) GetAttendance(ctx context.Context, id int) (model.AttendanceRecord, error) {
	return s.store.GetAttendance(ctx, id)
}

// RecordAttendance stores the status for the record's (student, class, date)
// key, updating the existing record when there is one. An excused status
// without a reason gets the default reason.
func (s *Service) RecordAttendance(ctx context.Context, a model.AttendanceRecord) (saved model.AttendanceRecord, created bool, err error) {
	a = a.Normalize()
	if err := a.Validate(); err != nil {
		return model.AttendanceRecord{}, false, err
	}
	saved, created, err = s.store.UpsertAttendance(ctx, a)
	s.wrote("attendance", "upsert", saved.ID, err)
	if err != nil {
		return model.AttendanceRecord{}, false, err
	}
	op := queue.OpUpdate
	if created {
		op = queue.OpCreate
	}
	s.changed(ctx, queue.AttendanceChanged, op, saved.ID)
	return saved, created, nil
}

func (s *Service) DeleteAttendance(ctx context.Context, id int) error {
	err := s.store.DeleteAttendance(ctx, id)
	s.wrote("attendance", queue.OpDelete, id, err)
	if err != nil {
		return err
	}
	s.changed(ctx, queue.AttendanceChanged, queue.OpDelete, id)
	return nil
}

// BatchResult is the outcome of a quick-mark batch.
type BatchResult struct {
	Marked   []model.AttendanceRecord `json:"marked"`
	Failures []model.BatchFailure     `json:"failures"`
}

// QuickMarkAll records status for every student enrolled in the class on
// date. Writes are independent: a failed write does not stop or undo the
// others. When any write fails the result lists both sides and the error is a
// *model.BatchError.
func (s *Service) QuickMarkAll(ctx context.Context, classID int, date model.Date, status model.AttendanceStatus) (BatchResult, error) {
	var v model.Validator
	v.Check(!date.IsZero(), "date", "this field is required")
	v.Check(status.Valid(), "status", "must be one of present, absent, tardy, excused")
	if err := v.Err(); err != nil {
		return BatchResult{}, err
	}

	class, err := s.store.GetClass(ctx, classID)
	if err != nil {
		return BatchResult{}, err
	}
	students, err := s.store.ListStudents(ctx)
	if err != nil {
		return BatchResult{}, err
	}
	records := gradebook.QuickMarkAll(class, date, status, students)

	saved := make([]model.AttendanceRecord, len(records))
	errs := make([]error, len(records))
	// Each write records its own error so one failure does not cancel the rest.
	var g errgroup.Group
	g.SetLimit(s.parallelism)
	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			saved[i], _, errs[i] = s.store.UpsertAttendance(ctx, rec)
			s.wrote("attendance", "upsert", rec.StudentID, errs[i])
			return nil
		})
	}
	g.Wait()

	res := BatchResult{Marked: []model.AttendanceRecord{}, Failures: []model.BatchFailure{}}
	for i, rec := range records {
		if errs[i] != nil {
			res.Failures = append(res.Failures, model.BatchFailure{StudentID: rec.StudentID, Error: errs[i].Error(), Err: errs[i]})
			continue
		}
		res.Marked = append(res.Marked, saved[i])
	}

	if len(res.Marked) > 0 {
		s.changed(ctx, queue.AttendanceChanged, queue.OpBatch, classID)
	}
	if len(res.Failures) == 0 {
		return res, nil
	}
	metrics.QuickMarkFailures(len(res.Failures))
	s.log.Warn("quick mark partially failed",
		zap.Int("class_id", classID),
		zap.Stringer("date", date),
		zap.Int("attempted", len(records)),
		zap.Int("failed", len(res.Failures)),
	)
	return res, &model.BatchError{Attempted: len(records), Failures: res.Failures}
}

// ClassMonth builds the attendance grid of the class for month's calendar month.
func (s *Service) ClassMonth(ctx context.Context, classID int, month model.Date) (gradebook.MonthGrid, error) {
	class, err := s.store.GetClass(ctx, classID)
	if err != nil {
		return gradebook.MonthGrid{}, err
	}
	students, err := s.store.ListStudents(ctx)
	if err != nil {
		return gradebook.MonthGrid{}, err
	}
	records, err := s.store.ListAttendance(ctx)
	if err != nil {
		return gradebook.MonthGrid{}, err
	}
	return gradebook.ClassMonth(class, students, month, records), nil
}

// AttendanceStats returns the student's counts in the class for month.
func (s *Service) AttendanceStats(ctx context.Context, classID, studentID int, month model.Date) (gradebook.Stats, error) {
	if _, err := s.store.GetClass(ctx, classID); err != nil {
		return gradebook.Stats{}, err
	}
	if _, err := s.store.GetStudent(ctx, studentID); err != nil {
		return gradebook.Stats{}, asRef(err, "student_id", "student", studentID)
	}
	records, err := s.store.ListAttendance(ctx)
	if err != nil {
		return gradebook.Stats{}, err
	}
	return gradebook.MonthlyStats(studentID, classID, month, records), nil
}
