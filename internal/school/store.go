package school

import (
	"context"

	"classroom/internal/model"
)

// StudentStore persists students. Deleting a student removes its grades,
// attendance records and class memberships.
type StudentStore interface {
	ListStudents(ctx context.Context) ([]model.Student, error)
	GetStudent(ctx context.Context, id int) (model.Student, error)
	CreateStudent(ctx context.Context, st model.Student) (model.Student, error)
	UpdateStudent(ctx context.Context, st model.Student) (model.Student, error)
	DeleteStudent(ctx context.Context, id int) error
}

// ClassStore persists class sections and their membership relation.
// UpdateClass keeps the membership when StudentIDs is nil.
type ClassStore interface {
	ListClasses(ctx context.Context) ([]model.ClassSection, error)
	GetClass(ctx context.Context, id int) (model.ClassSection, error)
	CreateClass(ctx context.Context, c model.ClassSection) (model.ClassSection, error)
	UpdateClass(ctx context.Context, c model.ClassSection) (model.ClassSection, error)
	DeleteClass(ctx context.Context, id int) error
	Enroll(ctx context.Context, classID, studentID int) error
	Unenroll(ctx context.Context, classID, studentID int) error
}

type AssignmentStore interface {
	ListAssignments(ctx context.Context) ([]model.Assignment, error)
	GetAssignment(ctx context.Context, id int) (model.Assignment, error)
	CreateAssignment(ctx context.Context, a model.Assignment) (model.Assignment, error)
	UpdateAssignment(ctx context.Context, a model.Assignment) (model.Assignment, error)
	DeleteAssignment(ctx context.Context, id int) error
}

// GradeStore persists grades, at most one per (student, assignment).
type GradeStore interface {
	ListGrades(ctx context.Context) ([]model.Grade, error)
	GetGrade(ctx context.Context, id int) (model.Grade, error)
	CreateGrade(ctx context.Context, g model.Grade) (model.Grade, error)
	UpdateGrade(ctx context.Context, g model.Grade) (model.Grade, error)
	UpsertGrade(ctx context.Context, g model.Grade) (model.Grade, bool, error)
	DeleteGrade(ctx context.Context, id int) error
}

// AttendanceStore persists attendance, at most one record per
// (student, class, date).
type AttendanceStore interface {
	ListAttendance(ctx context.Context) ([]model.AttendanceRecord, error)
	GetAttendance(ctx context.Context, id int) (model.AttendanceRecord, error)
	CreateAttendance(ctx context.Context, a model.AttendanceRecord) (model.AttendanceRecord, error)
	UpdateAttendance(ctx context.Context, a model.AttendanceRecord) (model.AttendanceRecord, error)
	UpsertAttendance(ctx context.Context, a model.AttendanceRecord) (model.AttendanceRecord, bool, error)
	DeleteAttendance(ctx context.Context, id int) error
}

// Store is the full entity store the service runs on.
type Store interface {
	StudentStore
	ClassStore
	AssignmentStore
	GradeStore
	AttendanceStore
	Ping(ctx context.Context) error
}
