package model

import "strings"

// GradeLevel is the grade band a student is enrolled in.
type GradeLevel string

const (
	GradeLevel9th  GradeLevel = "9th"
	GradeLevel10th GradeLevel = "10th"
	GradeLevel11th GradeLevel = "11th"
	GradeLevel12th GradeLevel = "12th"
)

// Valid reports whether the grade level is supported.
func (g GradeLevel) Valid() bool {
	switch g {
	case GradeLevel9th, GradeLevel10th, GradeLevel11th, GradeLevel12th:
		return true
	default:
		return false
	}
}

// Subject of a class section.
type Subject string

const (
	SubjectMathematics     Subject = "Mathematics"
	SubjectPhysics         Subject = "Physics"
	SubjectChemistry       Subject = "Chemistry"
	SubjectBiology         Subject = "Biology"
	SubjectEnglish         Subject = "English"
	SubjectHistory         Subject = "History"
	SubjectGeography       Subject = "Geography"
	SubjectComputerScience Subject = "Computer Science"
)

func (s Subject) Valid() bool {
	switch s {
	case SubjectMathematics, SubjectPhysics, SubjectChemistry, SubjectBiology,
		SubjectEnglish, SubjectHistory, SubjectGeography, SubjectComputerScience:
		return true
	default:
		return false
	}
}

// Category of an assignment.
type Category string

const (
	CategoryHomework      Category = "homework"
	CategoryQuiz          Category = "quiz"
	CategoryTest          Category = "test"
	CategoryProject       Category = "project"
	CategoryParticipation Category = "participation"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryHomework, CategoryQuiz, CategoryTest, CategoryProject, CategoryParticipation:
		return true
	default:
		return false
	}
}

// AttendanceStatus is the outcome recorded for a student on a class day.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
	StatusTardy   AttendanceStatus = "tardy"
	StatusExcused AttendanceStatus = "excused"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusTardy, StatusExcused:
		return true
	default:
		return false
	}
}

// DefaultExcuseReason is recorded when an excused status arrives without a reason.
const DefaultExcuseReason = "Teacher approved"

// Student represents an enrolled student.
type Student struct {
	ID             int        `json:"id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	DateOfBirth    Date       `json:"date_of_birth"`
	EnrollmentDate Date       `json:"enrollment_date"`
	GradeLevel     GradeLevel `json:"grade_level"`
	StudentID      string     `json:"student_id"` // external label, not the identity
	PhotoURL       string     `json:"photo_url,omitempty"`
}

// Name is the display name stored alongside the record.
func (s Student) Name() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// ClassSection is a taught class. StudentIDs is the read view of the
// membership relation and is kept ascending and free of duplicates.
type ClassSection struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Subject    Subject `json:"subject"`
	Section    string  `json:"section"`
	Schedule   string  `json:"schedule"`
	Room       string  `json:"room"`
	StudentIDs []int   `json:"student_ids"`
}

// HasStudent reports whether the student is a member of the class.
func (c ClassSection) HasStudent(studentID int) bool {
	for _, id := range c.StudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// Assignment is graded work belonging to exactly one class.
type Assignment struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	Category       Category `json:"category"`
	PointsPossible float64  `json:"points_possible"`
	DueDate        Date     `json:"due_date"`
	Weight         float64  `json:"weight"`
	ClassID        int      `json:"class_id"`
}

// Grade is a student's score on an assignment.
type Grade struct {
	ID            int     `json:"id"`
	StudentID     int     `json:"student_id"`
	AssignmentID  int     `json:"assignment_id"`
	Score         float64 `json:"score"`
	SubmittedDate Date    `json:"submitted_date"`
	Comments      string  `json:"comments"`
}

// Key returns the composite key that identifies the grade logically.
func (g Grade) Key() GradeKey {
	return GradeKey{StudentID: g.StudentID, AssignmentID: g.AssignmentID}
}

// GradeKey allows at most one grade per student and assignment.
type GradeKey struct {
	StudentID    int
	AssignmentID int
}

// AttendanceRecord is the status of a student in a class on a given day.
type AttendanceRecord struct {
	ID        int              `json:"id"`
	StudentID int              `json:"student_id"`
	ClassID   int              `json:"class_id"`
	Date      Date             `json:"date"`
	Status    AttendanceStatus `json:"status"`
	Reason    string           `json:"reason"`
}

func (a AttendanceRecord) Key() AttendanceKey {
	return AttendanceKey{StudentID: a.StudentID, ClassID: a.ClassID, Date: a.Date}
}

// AttendanceKey allows at most one record per student, class and day.
type AttendanceKey struct {
	StudentID int
	ClassID   int
	Date      Date
}
