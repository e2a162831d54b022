package gradebook

import (
	"strconv"

	"classroom/internal/model"
)

// gpaScale converts a 0-100 mean score to a 4.0 scale.
const gpaScale = 4.0

// Summary is the landing overview across all students and classes.
type Summary struct {
	TotalStudents     int    `json:"total_students"`
	TotalClasses      int    `json:"total_classes"`
	AverageAttendance int    `json:"average_attendance"`
	AverageGPA        string `json:"average_gpa"`
}

// Summarize computes the dashboard summary. AverageGPA assumes every score is
// already on a 0-100 scale; that is not checked.
func Summarize(students []model.Student, classes []model.ClassSection, attendance []model.AttendanceRecord, grades []model.Grade) Summary {
	present := 0
	for _, r := range attendance {
		if r.Status == model.StatusPresent {
			present++
		}
	}

	var mean float64
	if len(grades) > 0 {
		var total float64
		for _, g := range grades {
			total += g.Score
		}
		mean = total / float64(len(grades))
	}

	return Summary{
		TotalStudents:     len(students),
		TotalClasses:      len(classes),
		AverageAttendance: RatePercent(present, len(attendance)),
		AverageGPA:        strconv.FormatFloat(mean/100*gpaScale, 'f', 1, 64),
	}
}
