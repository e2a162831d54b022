package school

import (
	"context"

	"go.uber.org/zap"

	"classroom/internal/model"
	"classroom/internal/queue"
	"classroom/internal/spreadsheet"
)

// ImportFailure reports a roster row that was not imported.
type ImportFailure struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ImportResult is the outcome of a roster import.
type ImportResult struct {
	Created  []model.Student `json:"created"`
	Failures []ImportFailure `json:"failures"`
}

// ImportRoster creates a student per roster row and, when classID is
// positive, enrolls each one in the class. Rows are independent: a bad row is
// reported and the rest are still imported.
func (s *Service) ImportRoster(ctx context.Context, classID int, rows []spreadsheet.RosterRow) (ImportResult, error) {
	if classID > 0 {
		if _, err := s.store.GetClass(ctx, classID); err != nil {
			return ImportResult{}, err
		}
	}

	res := ImportResult{Created: []model.Student{}, Failures: []ImportFailure{}}
	fail := func(row int, err error) {
		res.Failures = append(res.Failures, ImportFailure{Row: row, Error: err.Error()})
	}
	for _, row := range rows {
		if row.Err != nil {
			fail(row.Row, row.Err)
			continue
		}
		st := trimStudent(row.Student)
		if st.EnrollmentDate.IsZero() {
			st.EnrollmentDate = s.today()
		}
		if err := st.Validate(); err != nil {
			fail(row.Row, err)
			continue
		}
		created, err := s.store.CreateStudent(ctx, st)
		s.wrote("student", queue.OpCreate, created.ID, err)
		if err != nil {
			fail(row.Row, err)
			continue
		}
		if classID > 0 {
			err := s.store.Enroll(ctx, classID, created.ID)
			s.wrote("membership", queue.OpCreate, classID, err)
			if err != nil {
				fail(row.Row, err)
			}
		}
		res.Created = append(res.Created, created)
	}

	if len(res.Created) > 0 {
		s.changed(ctx, queue.StudentChanged, queue.OpBatch, classID)
	}
	if len(res.Failures) > 0 {
		s.log.Info("roster import skipped rows",
			zap.Int("class_id", classID),
			zap.Int("created", len(res.Created)),
			zap.Int("failed", len(res.Failures)),
		)
	}
	return res, nil
}
