package school

import (
	"context"
	"strings"

	"classroom/internal/gradebook"
	"classroom/internal/model"
	"classroom/internal/queue"
)

// ListAssignments returns every assignment, or only those of classID when it
// is positive.
func (s *Service) ListAssignments(ctx context.Context, classID int) ([]model.Assignment, error) {
	if classID > 0 {
		if _, err := s.store.GetClass(ctx, classID); err != nil {
			return nil, err
		}
	}
	all, err := s.store.ListAssignments(ctx)
	if err != nil {
		return nil, err
	}
	if classID <= 0 {
		return all, nil
	}
	return gradebook.AssignmentsOf(classID, all), nil
}

func (s *Service) GetAssignment(ctx context.Context, id int) (model.Assignment, error) {
	return s.store.GetAssignment(ctx, id)
}

// CreateAssignment stores the assignment. A zero weight defaults to 1.
func (s *Service) CreateAssignment(ctx context.Context, a model.Assignment) (model.Assignment, error) {
	a = normalizeAssignment(a)
	if err := a.Validate(); err != nil {
		return model.Assignment{}, err
	}
	created, err := s.store.CreateAssignment(ctx, a)
	s.wrote("assignment", queue.OpCreate, created.ID, err)
	if err != nil {
		return model.Assignment{}, err
	}
	s.changed(ctx, queue.AssignmentChanged, queue.OpCreate, created.ID)
	return created, nil
}

func (s *Service) UpdateAssignment(ctx context.Context, a model.Assignment) (model.Assignment, error) {
	a = normalizeAssignment(a)
	if err := a.Validate(); err != nil {
		return model.Assignment{}, err
	}
	updated, err := s.store.UpdateAssignment(ctx, a)
	s.wrote("assignment", queue.OpUpdate, a.ID, err)
	if err != nil {
		return model.Assignment{}, err
	}
	s.changed(ctx, queue.AssignmentChanged, queue.OpUpdate, a.ID)
	return updated, nil
}

// DeleteAssignment removes the assignment and its grades.
func (s *Service) DeleteAssignment(ctx context.Context, id int) error {
	err := s.store.DeleteAssignment(ctx, id)
	s.wrote("assignment", queue.OpDelete, id, err)
	if err != nil {
		return err
	}
	s.changed(ctx, queue.AssignmentChanged, queue.OpDelete, id)
	return nil
}

func normalizeAssignment(a model.Assignment) model.Assignment {
	a.Name = strings.TrimSpace(a.Name)
	if a.Weight == 0 {
		a.Weight = 1
	}
	return a
}

func (s *Service) ListGrades(ctx context.Context) ([]model.Grade, error) {
	return s.store.ListGrades(ctx)
}

func (s *Service) GetGrade(ctx context.Context, id int) (model.Grade, error) {
	return s.store.GetGrade(ctx, id)
}

// SaveGrade records the score for the grade's (student, assignment) key,
// updating the existing grade when there is one. created reports whether a
// new record was stored. A missing submitted date defaults to today.
func (s *Service) SaveGrade(ctx context.Context, g model.Grade) (saved model.Grade, created bool, err error) {
	if err := g.Validate(); err != nil {
		return model.Grade{}, false, err
	}
	if g.SubmittedDate.IsZero() {
		g.SubmittedDate = s.today()
	}
	saved, created, err = s.store.UpsertGrade(ctx, g)
	s.wrote("grade", "upsert", saved.ID, err)
	if err != nil {
		return model.Grade{}, false, err
	}
	op := queue.OpUpdate
	if created {
		op = queue.OpCreate
	}
	s.changed(ctx, queue.GradeChanged, op, saved.ID)
	return saved, created, nil
}

// UpdateGrade rewrites an existing grade by id. Moving it onto a key that
// already has a grade is a conflict.
func (s *Service) UpdateGrade(ctx context.Context, g model.Grade) (model.Grade, error) {
	if err := g.Validate(); err != nil {
		return model.Grade{}, err
	}
	if g.SubmittedDate.IsZero() {
		g.SubmittedDate = s.today()
	}
	updated, err := s.store.UpdateGrade(ctx, g)
	s.wrote("grade", queue.OpUpdate, g.ID, err)
	if err != nil {
		return model.Grade{}, err
	}
	s.changed(ctx, queue.GradeChanged, queue.OpUpdate, g.ID)
	return updated, nil
}

func (s *Service) DeleteGrade(ctx context.Context, id int) error {
	err := s.store.DeleteGrade(ctx, id)
	s.wrote("grade", queue.OpDelete, id, err)
	if err != nil {
		return err
	}
	s.changed(ctx, queue.GradeChanged, queue.OpDelete, id)
	return nil
}

// Gradebook builds the grade grid for a class from freshly read collections.
func (s *Service) Gradebook(ctx context.Context, classID int) (gradebook.Gradebook, error) {
	class, err := s.store.GetClass(ctx, classID)
	if err != nil {
		return gradebook.Gradebook{}, err
	}
	students, err := s.store.ListStudents(ctx)
	if err != nil {
		return gradebook.Gradebook{}, err
	}
	assignments, err := s.store.ListAssignments(ctx)
	if err != nil {
		return gradebook.Gradebook{}, err
	}
	grades, err := s.store.ListGrades(ctx)
	if err != nil {
		return gradebook.Gradebook{}, err
	}
	return gradebook.ClassGradebook(class, students, assignments, grades), nil
}
