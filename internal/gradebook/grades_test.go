package gradebook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classroom/internal/model"
)

func TestLetterGrade(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		max   float64
		want  Letter
	}{
		{name: "exact A boundary", score: 90, max: 100, want: LetterA},
		{name: "just below A", score: 89.9, max: 100, want: LetterB},
		{name: "zero", score: 0, max: 100, want: LetterF},
		{name: "perfect", score: 100, max: 100, want: LetterA},
		{name: "exact B boundary", score: 80, max: 100, want: LetterB},
		{name: "exact C boundary", score: 70, max: 100, want: LetterC},
		{name: "exact D boundary", score: 60, max: 100, want: LetterD},
		{name: "just below D", score: 59.99, max: 100, want: LetterF},
		{name: "other scale", score: 18, max: 20, want: LetterA},
		{name: "other scale B", score: 17, max: 20, want: LetterB},
		{name: "extra credit", score: 110, max: 100, want: LetterA},
		{name: "no max", score: 50, max: 0, want: LetterF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LetterGrade(tt.score, tt.max))
		})
	}
}

func TestLetterGrade_NonDecreasing(t *testing.T) {
	rank := map[Letter]int{LetterF: 0, LetterD: 1, LetterC: 2, LetterB: 3, LetterA: 4}
	for _, max := range []float64{1, 7, 20, 50, 100, 250} {
		prev := LetterF
		for i := 0; i <= 1200; i++ {
			score := float64(i) / 1000 * max
			got := LetterGrade(score, max)
			require.GreaterOrEqual(t, rank[got], rank[prev], "score %v of %v", score, max)
			prev = got
		}
	}
}

func TestGradeFor(t *testing.T) {
	grades := []model.Grade{
		{ID: 1, StudentID: 1, AssignmentID: 10, Score: 70},
		{ID: 2, StudentID: 1, AssignmentID: 11, Score: 80},
		{ID: 3, StudentID: 1, AssignmentID: 10, Score: 99}, // duplicate key, first wins
	}

	g, ok := GradeFor(1, 10, grades)
	require.True(t, ok)
	assert.Equal(t, 1, g.ID)

	_, ok = GradeFor(2, 10, grades)
	assert.False(t, ok)
}

func TestStudentAverage(t *testing.T) {
	assignments := []model.Assignment{
		{ID: 10, PointsPossible: 100},
		{ID: 11, PointsPossible: 20},
		{ID: 12, PointsPossible: 100},
	}
	grades := []model.Grade{
		{StudentID: 1, AssignmentID: 10, Score: 90},
		{StudentID: 1, AssignmentID: 11, Score: 15},
		{StudentID: 3, AssignmentID: 12, Score: 0},
	}

	t.Run("mean of raw scores", func(t *testing.T) {
		avg, ok := StudentAverage(1, assignments, grades)
		require.True(t, ok)
		assert.InDelta(t, 52.5, avg, 1e-9)
	})

	t.Run("no grades is absent", func(t *testing.T) {
		avg, ok := StudentAverage(2, assignments, grades)
		assert.False(t, ok)
		assert.Zero(t, avg)
	})

	t.Run("zero score counts", func(t *testing.T) {
		avg, ok := StudentAverage(3, assignments, grades)
		require.True(t, ok)
		assert.Zero(t, avg)
	})

	t.Run("no assignments", func(t *testing.T) {
		_, ok := StudentAverage(1, nil, grades)
		assert.False(t, ok)
	})
}

func TestCell(t *testing.T) {
	a := model.Assignment{ID: 10, PointsPossible: 100}

	t.Run("recorded", func(t *testing.T) {
		cell := Cell(&model.Grade{ID: 4, StudentID: 1, AssignmentID: 10, Score: 85}, a)
		assert.True(t, cell.Recorded)
		assert.Equal(t, "85/100", cell.Display)
		assert.Equal(t, LetterB, cell.Letter)
		assert.Equal(t, 4, cell.GradeID)
	})

	t.Run("missing grade is a placeholder", func(t *testing.T) {
		cell := Cell(nil, a)
		assert.False(t, cell.Recorded)
		assert.Equal(t, Placeholder, cell.Display)
		assert.Empty(t, cell.Letter)
		assert.NotContains(t, cell.Display, "0")
	})

	t.Run("zero score is not a placeholder", func(t *testing.T) {
		cell := Cell(&model.Grade{StudentID: 1, AssignmentID: 10, Score: 0}, a)
		assert.True(t, cell.Recorded)
		assert.Equal(t, "0/100", cell.Display)
		assert.Equal(t, LetterF, cell.Letter)
	})

	t.Run("fractional score", func(t *testing.T) {
		cell := Cell(&model.Grade{Score: 17.5}, model.Assignment{ID: 2, PointsPossible: 20})
		assert.Equal(t, "17.5/20", cell.Display)
	})
}

func TestClassGradebook(t *testing.T) {
	class := model.ClassSection{ID: 1, StudentIDs: []int{1, 2}}
	students := []model.Student{{ID: 1, FirstName: "A"}, {ID: 2, FirstName: "B"}, {ID: 3, FirstName: "C"}}
	assignments := []model.Assignment{
		{ID: 10, ClassID: 1, PointsPossible: 100},
		{ID: 11, ClassID: 2, PointsPossible: 100},
	}
	grades := []model.Grade{{ID: 1, StudentID: 1, AssignmentID: 10, Score: 85}}

	gb := ClassGradebook(class, students, assignments, grades)
	require.Len(t, gb.Assignments, 1)
	require.Len(t, gb.Rows, 2)

	a := gb.Rows[0]
	assert.Equal(t, 1, a.Student.ID)
	assert.Equal(t, "85/100", a.Cells[0].Display)
	assert.Equal(t, LetterB, a.Cells[0].Letter)
	assert.Equal(t, "85.0", a.Average)
	assert.True(t, a.HasAvg)

	b := gb.Rows[1]
	assert.Equal(t, Placeholder, b.Cells[0].Display)
	assert.Empty(t, b.Cells[0].Letter)
	assert.Equal(t, Placeholder, b.Average)
	assert.False(t, b.HasAvg)
}
