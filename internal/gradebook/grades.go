package gradebook

import (
	"strconv"

	"classroom/internal/model"
)

// Letter is a letter grade band.
type Letter string

const (
	LetterA Letter = "A"
	LetterB Letter = "B"
	LetterC Letter = "C"
	LetterD Letter = "D"
	LetterF Letter = "F"
)

// Placeholder is rendered for an assignment without a recorded grade.
const Placeholder = "—"

var bands = []struct {
	min    float64
	letter Letter
}{
	{90, LetterA},
	{80, LetterB},
	{70, LetterC},
	{60, LetterD},
}

// Percentage returns score as a percentage of maxScore, or 0 when maxScore is
// not positive.
func Percentage(score, maxScore float64) float64 {
	if maxScore <= 0 {
		return 0
	}
	return score * 100 / maxScore
}

// LetterGrade maps score out of maxScore to a letter band. Lower bounds are
// inclusive: exactly 90% is an A.
func LetterGrade(score, maxScore float64) Letter {
	pct := Percentage(score, maxScore)
	for _, b := range bands {
		if pct >= b.min {
			return b.letter
		}
	}
	return LetterF
}

// GradeFor returns the first grade recorded for the student on the assignment.
func GradeFor(studentID, assignmentID int, grades []model.Grade) (model.Grade, bool) {
	for _, g := range grades {
		if g.StudentID == studentID && g.AssignmentID == assignmentID {
			return g, true
		}
	}
	return model.Grade{}, false
}

// StudentAverage is the unweighted mean of the raw scores the student has on
// the given assignments. ok is false when none of them has a grade.
func StudentAverage(studentID int, assignments []model.Assignment, grades []model.Grade) (avg float64, ok bool) {
	var sum float64
	var n int
	for _, a := range assignments {
		g, found := GradeFor(studentID, a.ID, grades)
		if !found {
			continue
		}
		sum += g.Score
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// GradeCell is what a gradebook shows for one student and assignment.
type GradeCell struct {
	AssignmentID int     `json:"assignment_id"`
	GradeID      int     `json:"grade_id,omitempty"`
	Recorded     bool    `json:"recorded"`
	Score        float64 `json:"score"`
	MaxScore     float64 `json:"max_score"`
	Display      string  `json:"display"`
	Letter       Letter  `json:"letter,omitempty"`
}

// Cell renders a grade cell. A nil grade is a neutral placeholder, never a
// zero score or an F.
func Cell(grade *model.Grade, assignment model.Assignment) GradeCell {
	cell := GradeCell{
		AssignmentID: assignment.ID,
		MaxScore:     assignment.PointsPossible,
		Display:      Placeholder,
	}
	if grade == nil {
		return cell
	}
	cell.GradeID = grade.ID
	cell.Recorded = true
	cell.Score = grade.Score
	cell.Display = formatNumber(grade.Score) + "/" + formatNumber(assignment.PointsPossible)
	cell.Letter = LetterGrade(grade.Score, assignment.PointsPossible)
	return cell
}

// GradebookRow is one student's line in a class gradebook.
type GradebookRow struct {
	Student model.Student `json:"student"`
	Cells   []GradeCell   `json:"cells"`
	Average string        `json:"average"`
	HasAvg  bool          `json:"has_average"`
}

// Gradebook is the grid of enrolled students against class assignments.
type Gradebook struct {
	Class       model.ClassSection `json:"class"`
	Assignments []model.Assignment `json:"assignments"`
	Rows        []GradebookRow     `json:"rows"`
}

// ClassGradebook builds the gradebook grid for class.
func ClassGradebook(class model.ClassSection, students []model.Student, assignments []model.Assignment, grades []model.Grade) Gradebook {
	classAssignments := AssignmentsOf(class.ID, assignments)
	enrolled := StudentsOf(class, students)

	rows := make([]GradebookRow, 0, len(enrolled))
	for _, st := range enrolled {
		row := GradebookRow{Student: st, Cells: make([]GradeCell, 0, len(classAssignments)), Average: Placeholder}
		for _, a := range classAssignments {
			if g, ok := GradeFor(st.ID, a.ID, grades); ok {
				row.Cells = append(row.Cells, Cell(&g, a))
			} else {
				row.Cells = append(row.Cells, Cell(nil, a))
			}
		}
		if avg, ok := StudentAverage(st.ID, classAssignments, grades); ok {
			row.Average = strconv.FormatFloat(avg, 'f', 1, 64)
			row.HasAvg = true
		}
		rows = append(rows, row)
	}
	return Gradebook{Class: class, Assignments: classAssignments, Rows: rows}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
