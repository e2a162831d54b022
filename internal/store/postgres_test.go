package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classroom/internal/model"
)

// openPostgres connects to TEST_DATABASE_URL and truncates every table.
func openPostgres(t *testing.T) *Postgres {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := NewDB(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(ctx))
	_, err = db.Client.ExecContext(ctx, `TRUNCATE students, class_sections, class_memberships, assignments, grades, attendance_records RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return NewPostgres(db)
}

func TestPostgres_Roundtrip(t *testing.T) {
	p := openPostgres(t)
	ctx := context.Background()

	ada, err := p.CreateStudent(ctx, model.Student{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@school.test",
		DateOfBirth: model.MustDate("2008-12-10"), GradeLevel: model.GradeLevel10th, StudentID: "S-1",
	})
	require.NoError(t, err)

	class, err := p.CreateClass(ctx, model.ClassSection{Name: "Algebra", Subject: model.SubjectMathematics, StudentIDs: []int{ada.ID}})
	require.NoError(t, err)
	assert.Equal(t, []int{ada.ID}, class.StudentIDs)

	got, err := p.GetStudent(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, ada, got)

	quiz, err := p.CreateAssignment(ctx, model.Assignment{Name: "Quiz", Category: model.CategoryQuiz, PointsPossible: 20, Weight: 1, ClassID: class.ID})
	require.NoError(t, err)

	g1, created, err := p.UpsertGrade(ctx, model.Grade{StudentID: ada.ID, AssignmentID: quiz.ID, Score: 15})
	require.NoError(t, err)
	assert.True(t, created)
	g2, created, err := p.UpsertGrade(ctx, model.Grade{StudentID: ada.ID, AssignmentID: quiz.ID, Score: 18})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, g1.ID, g2.ID)

	_, err = p.CreateGrade(ctx, model.Grade{StudentID: ada.ID, AssignmentID: quiz.ID, Score: 1})
	assert.ErrorIs(t, err, model.ErrConflict)

	_, err = p.CreateAssignment(ctx, model.Assignment{Name: "Orphan", Category: model.CategoryTest, PointsPossible: 10, ClassID: 999})
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "class_id", verr.Fields[0].Field)

	require.NoError(t, p.DeleteClass(ctx, class.ID))
	grades, err := p.ListGrades(ctx)
	require.NoError(t, err)
	assert.Empty(t, grades)

	assert.ErrorIs(t, p.DeleteClass(ctx, class.ID), model.ErrNotFound)
	_, err = p.GetClass(ctx, class.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
