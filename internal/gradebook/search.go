package gradebook

import (
	"strings"

	"classroom/internal/model"
)

// FilterStudents keeps students whose first name, last name, email or
// external student id contains query, case-insensitively. An empty query
// keeps everyone.
func FilterStudents(students []model.Student, query string) []model.Student {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return students
	}
	out := make([]model.Student, 0)
	for _, st := range students {
		if containsFold(st.FirstName, q) || containsFold(st.LastName, q) ||
			containsFold(st.Email, q) || containsFold(st.StudentID, q) {
			out = append(out, st)
		}
	}
	return out
}

func containsFold(s, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(s), lowerQuery)
}
