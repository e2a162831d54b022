// Package gradebook computes derived values from already-fetched entity
// collections. Nothing in it performs I/O.
package gradebook

import "classroom/internal/model"

// StudentsOf returns the students enrolled in class, in the order they appear
// in all. It never returns nil.
func StudentsOf(class model.ClassSection, all []model.Student) []model.Student {
	out := make([]model.Student, 0, len(class.StudentIDs))
	if len(class.StudentIDs) == 0 {
		return out
	}
	ids := make(map[int]struct{}, len(class.StudentIDs))
	for _, id := range class.StudentIDs {
		ids[id] = struct{}{}
	}
	for _, st := range all {
		if _, ok := ids[st.ID]; ok {
			out = append(out, st)
		}
	}
	return out
}

// AssignmentsOf returns the assignments that belong to classID.
func AssignmentsOf(classID int, all []model.Assignment) []model.Assignment {
	out := make([]model.Assignment, 0)
	for _, a := range all {
		if a.ClassID == classID {
			out = append(out, a)
		}
	}
	return out
}

// ClassesOf returns the classes the student is a member of.
func ClassesOf(studentID int, all []model.ClassSection) []model.ClassSection {
	out := make([]model.ClassSection, 0)
	for _, c := range all {
		if c.HasStudent(studentID) {
			out = append(out, c)
		}
	}
	return out
}
