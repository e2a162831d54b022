package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when an update, delete or lookup references a missing ID.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a create collides with an existing composite key.
	ErrConflict = errors.New("record already exists")
)

// FieldError is used to indicate an error with a specific field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError carries the fields that failed validation.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError builds a ValidationError from field errors.
func NewValidationError(flds ...FieldError) error {
	return &ValidationError{Fields: flds}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Error)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator collects field errors.
type Validator struct {
	fields []FieldError
}

// Check records msg for field when ok is false.
func (v *Validator) Check(ok bool, field, msg string) {
	if !ok {
		v.fields = append(v.fields, FieldError{Field: field, Error: msg})
	}
}

// Err returns a *ValidationError if any check failed.
func (v *Validator) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

// BatchFailure describes one failed write within a batch.
type BatchFailure struct {
	StudentID int    `json:"student_id"`
	Error     string `json:"error"`
	Err       error  `json:"-"`
}

// BatchError reports a partially failed multi-record write. The writes that
// succeeded are not rolled back.
type BatchError struct {
	Attempted int
	Failures  []BatchFailure
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%d of %d writes failed", len(e.Failures), e.Attempted)
}

// Unwrap exposes the individual failures to errors.Is/As.
func (e *BatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errs
}
