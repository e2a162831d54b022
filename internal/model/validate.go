package model

import (
	"net/mail"
	"strings"
)

// Validate checks the fields a student must carry before it is stored.
func (s Student) Validate() error {
	var v Validator
	v.Check(strings.TrimSpace(s.FirstName) != "", "first_name", "this field is required")
	v.Check(strings.TrimSpace(s.LastName) != "", "last_name", "this field is required")
	if s.Email == "" {
		v.Check(false, "email", "this field is required")
	} else {
		_, err := mail.ParseAddress(s.Email)
		v.Check(err == nil, "email", "must be a valid email address")
	}
	v.Check(s.GradeLevel.Valid(), "grade_level", "must be one of 9th, 10th, 11th, 12th")
	v.Check(strings.TrimSpace(s.StudentID) != "", "student_id", "this field is required")
	return v.Err()
}

func (c ClassSection) Validate() error {
	var v Validator
	v.Check(strings.TrimSpace(c.Name) != "", "name", "this field is required")
	v.Check(c.Subject.Valid(), "subject", "unknown subject")
	return v.Err()
}

// Validate enforces pointsPossible > 0 so percentages stay defined.
func (a Assignment) Validate() error {
	var v Validator
	v.Check(strings.TrimSpace(a.Name) != "", "name", "this field is required")
	v.Check(a.Category.Valid(), "category", "must be one of homework, quiz, test, project, participation")
	v.Check(a.PointsPossible > 0, "points_possible", "must be greater than 0")
	v.Check(a.Weight >= 0, "weight", "must not be negative")
	v.Check(a.ClassID > 0, "class_id", "this field is required")
	return v.Err()
}

// Validate only checks the key; the score range is not enforced at write time.
func (g Grade) Validate() error {
	var v Validator
	v.Check(g.StudentID > 0, "student_id", "this field is required")
	v.Check(g.AssignmentID > 0, "assignment_id", "this field is required")
	return v.Err()
}

func (a AttendanceRecord) Validate() error {
	var v Validator
	v.Check(a.StudentID > 0, "student_id", "this field is required")
	v.Check(a.ClassID > 0, "class_id", "this field is required")
	v.Check(!a.Date.IsZero(), "date", "this field is required")
	v.Check(a.Status.Valid(), "status", "must be one of present, absent, tardy, excused")
	return v.Err()
}

// Normalize fills defaults derived from the status.
func (a AttendanceRecord) Normalize() AttendanceRecord {
	if a.Status == StatusExcused && strings.TrimSpace(a.Reason) == "" {
		a.Reason = DefaultExcuseReason
	}
	return a
}
