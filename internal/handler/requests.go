package handler

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"classroom/internal/model"
)

var registerOnce sync.Once

// RegisterValidators teaches gin's validator the domain enums and makes field
// errors report JSON names. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("grade_level", func(fl validator.FieldLevel) bool {
			return model.GradeLevel(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("subject", func(fl validator.FieldLevel) bool {
			return model.Subject(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			return model.Category(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
			return model.AttendanceStatus(fl.Field().String()).Valid()
		})
	})
}

func bindingFields(errs validator.ValidationErrors) []model.FieldError {
	out := make([]model.FieldError, 0, len(errs))
	for _, fe := range errs {
		out = append(out, model.FieldError{Field: fe.Field(), Error: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "grade_level":
		return "must be one of 9th, 10th, 11th, 12th"
	case "subject":
		return "unknown subject"
	case "category":
		return "must be one of homework, quiz, test, project, participation"
	case "attendance_status":
		return "must be one of present, absent, tardy, excused"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

type tokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type studentRequest struct {
	FirstName      string           `json:"first_name" binding:"required"`
	LastName       string           `json:"last_name" binding:"required"`
	Email          string           `json:"email" binding:"required,email"`
	DateOfBirth    model.Date       `json:"date_of_birth"`
	EnrollmentDate model.Date       `json:"enrollment_date"`
	GradeLevel     model.GradeLevel `json:"grade_level" binding:"required,grade_level"`
	StudentID      string           `json:"student_id" binding:"required"`
}

func (r studentRequest) toModel(id int) model.Student {
	return model.Student{
		ID:             id,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Email:          r.Email,
		DateOfBirth:    r.DateOfBirth,
		EnrollmentDate: r.EnrollmentDate,
		GradeLevel:     r.GradeLevel,
		StudentID:      r.StudentID,
	}
}

// classRequest leaves StudentIDs nil when the field is absent so an update
// keeps the current membership.
type classRequest struct {
	Name       string        `json:"name" binding:"required"`
	Subject    model.Subject `json:"subject" binding:"required,subject"`
	Section    string        `json:"section"`
	Schedule   string        `json:"schedule"`
	Room       string        `json:"room"`
	StudentIDs []int         `json:"student_ids" binding:"omitempty,dive,gt=0"`
}

func (r classRequest) toModel(id int) model.ClassSection {
	return model.ClassSection{
		ID:         id,
		Name:       r.Name,
		Subject:    r.Subject,
		Section:    r.Section,
		Schedule:   r.Schedule,
		Room:       r.Room,
		StudentIDs: r.StudentIDs,
	}
}

type enrollRequest struct {
	StudentID int `json:"student_id" binding:"required,gt=0"`
}

type assignmentRequest struct {
	Name           string         `json:"name" binding:"required"`
	Category       model.Category `json:"category" binding:"required,category"`
	PointsPossible float64        `json:"points_possible" binding:"gt=0"`
	DueDate        model.Date     `json:"due_date"`
	Weight         float64        `json:"weight" binding:"gte=0"`
	ClassID        int            `json:"class_id" binding:"required,gt=0"`
}

func (r assignmentRequest) toModel(id int) model.Assignment {
	return model.Assignment{
		ID:             id,
		Name:           r.Name,
		Category:       r.Category,
		PointsPossible: r.PointsPossible,
		DueDate:        r.DueDate,
		Weight:         r.Weight,
		ClassID:        r.ClassID,
	}
}

// gradeRequest takes Score as a pointer so a missing or null score is
// rejected instead of being stored as 0.
type gradeRequest struct {
	StudentID     int        `json:"student_id" binding:"required,gt=0"`
	AssignmentID  int        `json:"assignment_id" binding:"required,gt=0"`
	Score         *float64   `json:"score" binding:"required"`
	SubmittedDate model.Date `json:"submitted_date"`
	Comments      string     `json:"comments"`
}

func (r gradeRequest) toModel(id int) model.Grade {
	return model.Grade{
		ID:            id,
		StudentID:     r.StudentID,
		AssignmentID:  r.AssignmentID,
		Score:         *r.Score,
		SubmittedDate: r.SubmittedDate,
		Comments:      r.Comments,
	}
}

type attendanceRequest struct {
	StudentID int                    `json:"student_id" binding:"required,gt=0"`
	ClassID   int                    `json:"class_id" binding:"required,gt=0"`
	Date      model.Date             `json:"date"`
	Status    model.AttendanceStatus `json:"status" binding:"required,attendance_status"`
	Reason    string                 `json:"reason"`
}

func (r attendanceRequest) toModel() model.AttendanceRecord {
	return model.AttendanceRecord{
		StudentID: r.StudentID,
		ClassID:   r.ClassID,
		Date:      r.Date,
		Status:    r.Status,
		Reason:    r.Reason,
	}
}

type quickMarkRequest struct {
	Date   model.Date             `json:"date"`
	Status model.AttendanceStatus `json:"status" binding:"required,attendance_status"`
}

type photoRequest struct {
	Data string `json:"data" binding:"required"`
}
