package school

import (
	"context"
	"sort"

	"classroom/internal/gradebook"
	"classroom/internal/model"
	"classroom/internal/queue"
)

func (s *Service) ListClasses(ctx context.Context) ([]model.ClassSection, error) {
	return s.store.ListClasses(ctx)
}

func (s *Service) GetClass(ctx context.Context, id int) (model.ClassSection, error) {
	return s.store.GetClass(ctx, id)
}

// CreateClass stores the class with its initial membership. Unknown student
// ids are rejected.
func (s *Service) CreateClass(ctx context.Context, c model.ClassSection) (model.ClassSection, error) {
	if err := c.Validate(); err != nil {
		return model.ClassSection{}, err
	}
	c.StudentIDs = uniqueIDs(c.StudentIDs)
	if c.StudentIDs == nil {
		c.StudentIDs = []int{}
	}
	created, err := s.store.CreateClass(ctx, c)
	s.wrote("class", queue.OpCreate, created.ID, err)
	if err != nil {
		return model.ClassSection{}, err
	}
	s.changed(ctx, queue.ClassChanged, queue.OpCreate, created.ID)
	return created, nil
}

// UpdateClass replaces the class fields. A nil StudentIDs keeps the current
// membership; any other value, including an empty list, replaces it.
func (s *Service) UpdateClass(ctx context.Context, c model.ClassSection) (model.ClassSection, error) {
	if err := c.Validate(); err != nil {
		return model.ClassSection{}, err
	}
	c.StudentIDs = uniqueIDs(c.StudentIDs)
	updated, err := s.store.UpdateClass(ctx, c)
	s.wrote("class", queue.OpUpdate, c.ID, err)
	if err != nil {
		return model.ClassSection{}, err
	}
	s.changed(ctx, queue.ClassChanged, queue.OpUpdate, c.ID)
	return updated, nil
}

// DeleteClass removes the class with its memberships, attendance, assignments
// and their grades.
func (s *Service) DeleteClass(ctx context.Context, id int) error {
	err := s.store.DeleteClass(ctx, id)
	s.wrote("class", queue.OpDelete, id, err)
	if err != nil {
		return err
	}
	s.changed(ctx, queue.ClassChanged, queue.OpDelete, id)
	return nil
}

// ClassStudents returns the students enrolled in the class.
func (s *Service) ClassStudents(ctx context.Context, classID int) ([]model.Student, error) {
	class, err := s.store.GetClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	students, err := s.store.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	return gradebook.StudentsOf(class, students), nil
}

// Enroll adds an existing student to the class. Enrolling twice is a no-op.
func (s *Service) Enroll(ctx context.Context, classID, studentID int) (model.ClassSection, error) {
	if _, err := s.store.GetStudent(ctx, studentID); err != nil {
		return model.ClassSection{}, asRef(err, "student_id", "student", studentID)
	}
	err := s.store.Enroll(ctx, classID, studentID)
	s.wrote("membership", queue.OpCreate, classID, err)
	if err != nil {
		return model.ClassSection{}, err
	}
	s.changed(ctx, queue.ClassChanged, queue.OpUpdate, classID)
	return s.store.GetClass(ctx, classID)
}

// Unenroll removes the student from the class. Grades and attendance already
// recorded are kept.
func (s *Service) Unenroll(ctx context.Context, classID, studentID int) error {
	if _, err := s.store.GetClass(ctx, classID); err != nil {
		return err
	}
	err := s.store.Unenroll(ctx, classID, studentID)
	s.wrote("membership", queue.OpDelete, classID, err)
	if err != nil {
		return err
	}
	s.changed(ctx, queue.ClassChanged, queue.OpUpdate, classID)
	return nil
}

// uniqueIDs returns ids ascending without duplicates. nil stays nil.
func uniqueIDs(ids []int) []int {
	if ids == nil {
		return nil
	}
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
