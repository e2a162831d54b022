package school

import (
	"context"
	"strings"

	"classroom/internal/gradebook"
	"classroom/internal/model"
	"classroom/internal/queue"
)

// ListStudents returns every student, filtered by query when it is not blank.
func (s *Service) ListStudents(ctx context.Context, query string) ([]model.Student, error) {
	students, err := s.store.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	return gradebook.FilterStudents(students, query), nil
}

func (s *Service) GetStudent(ctx context.Context, id int) (model.Student, error) {
	return s.store.GetStudent(ctx, id)
}

// StudentClasses returns the classes the student is enrolled in.
func (s *Service) StudentClasses(ctx context.Context, id int) ([]model.ClassSection, error) {
	if _, err := s.store.GetStudent(ctx, id); err != nil {
		return nil, err
	}
	classes, err := s.store.ListClasses(ctx)
	if err != nil {
		return nil, err
	}
	return gradebook.ClassesOf(id, classes), nil
}

func (s *Service) CreateStudent(ctx context.Context, st model.Student) (model.Student, error) {
	st = trimStudent(st)
	if st.EnrollmentDate.IsZero() {
		st.EnrollmentDate = s.today()
	}
	if err := st.Validate(); err != nil {
		return model.Student{}, err
	}
	created, err := s.store.CreateStudent(ctx, st)
	s.wrote("student", queue.OpCreate, created.ID, err)
	if err != nil {
		return model.Student{}, err
	}
	s.changed(ctx, queue.StudentChanged, queue.OpCreate, created.ID)
	return created, nil
}

func (s *Service) UpdateStudent(ctx context.Context, st model.Student) (model.Student, error) {
	st = trimStudent(st)
	if err := st.Validate(); err != nil {
		return model.Student{}, err
	}
	updated, err := s.store.UpdateStudent(ctx, st)
	s.wrote("student", queue.OpUpdate, st.ID, err)
	if err != nil {
		return model.Student{}, err
	}
	s.changed(ctx, queue.StudentChanged, queue.OpUpdate, st.ID)
	return updated, nil
}

// SetStudentPhoto stores the URL of an uploaded photo on the student.
func (s *Service) SetStudentPhoto(ctx context.Context, id int, url string) (model.Student, error) {
	st, err := s.store.GetStudent(ctx, id)
	if err != nil {
		return model.Student{}, err
	}
	st.PhotoURL = url
	updated, err := s.store.UpdateStudent(ctx, st)
	s.wrote("student", queue.OpUpdate, id, err)
	if err != nil {
		return model.Student{}, err
	}
	s.changed(ctx, queue.StudentChanged, queue.OpUpdate, id)
	return updated, nil
}

// DeleteStudent removes the student along with its grades, attendance and
// memberships.
func (s *Service) DeleteStudent(ctx context.Context, id int) error {
	err := s.store.DeleteStudent(ctx, id)
	s.wrote("student", queue.OpDelete, id, err)
	if err != nil {
		return err
	}
	s.changed(ctx, queue.StudentChanged, queue.OpDelete, id)
	return nil
}

func trimStudent(st model.Student) model.Student {
	st.FirstName = strings.TrimSpace(st.FirstName)
	st.LastName = strings.TrimSpace(st.LastName)
	st.Email = strings.TrimSpace(st.Email)
	st.StudentID = strings.TrimSpace(st.StudentID)
	return st
}
