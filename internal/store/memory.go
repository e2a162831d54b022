package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"classroom/internal/model"
)

type membership struct {
	ClassID   int
	StudentID int
}

// Memory is an in-process entity store. Grades and attendance records are
// indexed by their composite keys so a second record for the same key cannot
// exist. One instance is shared for the lifetime of the process; Reset is for
// test setup.
type Memory struct {
	mu sync.RWMutex

	students    map[int]model.Student
	classes     map[int]model.ClassSection
	members     map[membership]struct{}
	assignments map[int]model.Assignment

	grades    map[int]model.Grade
	gradeKeys map[model.GradeKey]int

	attendance     map[int]model.AttendanceRecord
	attendanceKeys map[model.AttendanceKey]int
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	m := &Memory{}
	m.reset()
	return m
}

// Reset drops every record.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
}

func (m *Memory) reset() {
	m.students = make(map[int]model.Student)
	m.classes = make(map[int]model.ClassSection)
	m.members = make(map[membership]struct{})
	m.assignments = make(map[int]model.Assignment)
	m.grades = make(map[int]model.Grade)
	m.gradeKeys = make(map[model.GradeKey]int)
	m.attendance = make(map[int]model.AttendanceRecord)
	m.attendanceKeys = make(map[model.AttendanceKey]int)
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error { return nil }

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// nextID is the smallest integer greater than any existing id.
func nextID[T any](table map[int]T) int {
	max := 0
	for id := range table {
		if id > max {
			max = id
		}
	}
	return max + 1
}

func sortedValues[T any](table map[int]T) []T {
	ids := make([]int, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, table[id])
	}
	return out
}

func notFound(entity string, id int) error {
	return fmt.Errorf("%s %d: %w", entity, id, model.ErrNotFound)
}

// -------- Students --------

func (m *Memory) ListStudents(context.Context) ([]model.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedValues(m.students), nil
}

func (m *Memory) GetStudent(_ context.Context, id int) (model.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.students[id]
	if !ok {
		return model.Student{}, notFound("student", id)
	}
	return st, nil
}

func (m *Memory) CreateStudent(_ context.Context, st model.Student) (model.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st.ID = nextID(m.students)
	m.students[st.ID] = st
	return st, nil
}

func (m *Memory) UpdateStudent(_ context.Context, st model.Student) (model.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.students[st.ID]; !ok {
		return model.Student{}, notFound("student", st.ID)
	}
	m.students[st.ID] = st
	return st, nil
}

// DeleteStudent removes the student with its grades, attendance and memberships.
func (m *Memory) DeleteStudent(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.students[id]; !ok {
		return notFound("student", id)
	}
	delete(m.students, id)
	for key := range m.members {
		if key.StudentID == id {
			delete(m.members, key)
		}
	}
	for gid, g := range m.grades {
		if g.StudentID == id {
			m.deleteGrade(gid)
		}
	}
	for aid, a := range m.attendance {
		if a.StudentID == id {
			m.deleteAttendance(aid)
		}
	}
	return nil
}

// -------- Classes & membership --------

func (m *Memory) withMembers(c model.ClassSection) model.ClassSection {
	ids := make([]int, 0)
	for key := range m.members {
		if key.ClassID == c.ID {
			ids = append(ids, key.StudentID)
		}
	}
	sort.Ints(ids)
	c.StudentIDs = ids
	return c
}

func (m *Memory) ListClasses(context.Context) ([]model.ClassSection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	classes := sortedValues(m.classes)
	for i := range classes {
		classes[i] = m.withMembers(classes[i])
	}
	return classes, nil
}

func (m *Memory) GetClass(_ context.Context, id int) (model.ClassSection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.classes[id]
	if !ok {
		return model.ClassSection{}, notFound("class", id)
	}
	return m.withMembers(c), nil
}

// checkStudents verifies every id references an existing student.
func (m *Memory) checkStudents(ids []int) error {
	var v model.Validator
	for _, id := range ids {
		_, ok := m.students[id]
		v.Check(ok, "student_ids", fmt.Sprintf("unknown student %d", id))
	}
	return v.Err()
}

func (m *Memory) setMembers(classID int, ids []int) {
	for key := range m.members {
		if key.ClassID == classID {
			delete(m.members, key)
		}
	}
	for _, id := range ids {
		m.members[membership{ClassID: classID, StudentID: id}] = struct{}{}
	}
}

// CreateClass stores the class and its membership set.
func (m *Memory) CreateClass(_ context.Context, c model.ClassSection) (model.ClassSection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkStudents(c.StudentIDs); err != nil {
		return model.ClassSection{}, err
	}
	c.ID = nextID(m.classes)
	ids := c.StudentIDs
	c.StudentIDs = nil
	m.classes[c.ID] = c
	m.setMembers(c.ID, ids)
	return m.withMembers(c), nil
}

// UpdateClass replaces the class fields. A nil StudentIDs keeps the current
// membership; a non-nil one replaces it.
func (m *Memory) UpdateClass(_ context.Context, c model.ClassSection) (model.ClassSection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.classes[c.ID]; !ok {
		return model.ClassSection{}, notFound("class", c.ID)
	}
	if err := m.checkStudents(c.StudentIDs); err != nil {
		return model.ClassSection{}, err
	}
	ids := c.StudentIDs
	c.StudentIDs = nil
	m.classes[c.ID] = c
	if ids != nil {
		m.setMembers(c.ID, ids)
	}
	return m.withMembers(c), nil
}

// DeleteClass removes the class, its memberships, its attendance, its
// assignments and their grades.
func (m *Memory) DeleteClass(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.classes[id]; !ok {
		return notFound("class", id)
	}
	delete(m.classes, id)
	m.setMembers(id, nil)
	for aid, a := range m.attendance {
		if a.ClassID == id {
			m.deleteAttendance(aid)
		}
	}
	for aid, a := range m.assignments {
		if a.ClassID == id {
			m.deleteAssignment(aid)
		}
	}
	return nil
}

// Enroll adds the student to the class. Enrolling twice is a no-op.
func (m *Memory) Enroll(_ context.Context, classID, studentID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.classes[classID]; !ok {
		return notFound("class", classID)
	}
	if err := m.checkStudents([]int{studentID}); err != nil {
		return err
	}
	m.members[membership{ClassID: classID, StudentID: studentID}] = struct{}{}
	return nil
}

func (m *Memory) Unenroll(_ context.Context, classID, studentID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := membership{ClassID: classID, StudentID: studentID}
	if _, ok := m.members[key]; !ok {
		return fmt.Errorf("student %d in class %d: %w", studentID, classID, model.ErrNotFound)
	}
	delete(m.members, key)
	return nil
}

// -------- Assignments --------

func (m *Memory) ListAssignments(context.Context) ([]model.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedValues(m.assignments), nil
}

func (m *Memory) GetAssignment(_ context.Context, id int) (model.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assignments[id]
	if !ok {
		return model.Assignment{}, notFound("assignment", id)
	}
	return a, nil
}

func (m *Memory) checkClass(id int) error {
	if _, ok := m.classes[id]; !ok {
		return model.NewValidationError(model.FieldError{Field: "class_id", Error: fmt.Sprintf("unknown class %d", id)})
	}
	return nil
}

func (m *Memory) CreateAssignment(_ context.Context, a model.Assignment) (model.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkClass(a.ClassID); err != nil {
		return model.Assignment{}, err
	}
	a.ID = nextID(m.assignments)
	m.assignments[a.ID] = a
	return a, nil
}

func (m *Memory) UpdateAssignment(_ context.Context, a model.Assignment) (model.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assignments[a.ID]; !ok {
		return model.Assignment{}, notFound("assignment", a.ID)
	}
	if err := m.checkClass(a.ClassID); err != nil {
		return model.Assignment{}, err
	}
	m.assignments[a.ID] = a
	return a, nil
}

// DeleteAssignment removes the assignment and its grades.
func (m *Memory) DeleteAssignment(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assignments[id]; !ok {
		return notFound("assignment", id)
	}
	m.deleteAssignment(id)
	return nil
}

func (m *Memory) deleteAssignment(id int) {
	delete(m.assignments, id)
	for gid, g := range m.grades {
		if g.AssignmentID == id {
			m.deleteGrade(gid)
		}
	}
}

// -------- Grades --------

func (m *Memory) ListGrades(context.Context) ([]model.Grade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedValues(m.grades), nil
}

func (m *Memory) GetGrade(_ context.Context, id int) (model.Grade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.grades[id]
	if !ok {
		return model.Grade{}, notFound("grade", id)
	}
	return g, nil
}

func (m *Memory) checkGradeRefs(g model.Grade) error {
	var v model.Validator
	_, ok := m.students[g.StudentID]
	v.Check(ok, "student_id", fmt.Sprintf("unknown student %d", g.StudentID))
	_, ok = m.assignments[g.AssignmentID]
	v.Check(ok, "assignment_id", fmt.Sprintf("unknown assignment %d", g.AssignmentID))
	return v.Err()
}

// CreateGrade fails with ErrConflict when the student already has a grade for
// the assignment.
func (m *Memory) CreateGrade(_ context.Context, g model.Grade) (model.Grade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkGradeRefs(g); err != nil {
		return model.Grade{}, err
	}
	if _, exists := m.gradeKeys[g.Key()]; exists {
		return model.Grade{}, fmt.Errorf("grade for student %d on assignment %d: %w", g.StudentID, g.AssignmentID, model.ErrConflict)
	}
	g.ID = nextID(m.grades)
	m.putGrade(g)
	return g, nil
}

func (m *Memory) UpdateGrade(_ context.Context, g model.Grade) (model.Grade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.grades[g.ID]
	if !ok {
		return model.Grade{}, notFound("grade", g.ID)
	}
	if err := m.checkGradeRefs(g); err != nil {
		return model.Grade{}, err
	}
	if owner, exists := m.gradeKeys[g.Key()]; exists && owner != g.ID {
		return model.Grade{}, fmt.Errorf("grade for student %d on assignment %d: %w", g.StudentID, g.AssignmentID, model.ErrConflict)
	}
	delete(m.gradeKeys, old.Key())
	m.putGrade(g)
	return g, nil
}

// UpsertGrade updates the grade stored under g's key or creates it.
func (m *Memory) UpsertGrade(_ context.Context, g model.Grade) (model.Grade, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkGradeRefs(g); err != nil {
		return model.Grade{}, false, err
	}
	if id, exists := m.gradeKeys[g.Key()]; exists {
		g.ID = id
		m.putGrade(g)
		return g, false, nil
	}
	g.ID = nextID(m.grades)
	m.putGrade(g)
	return g, true, nil
}

func (m *Memory) DeleteGrade(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.grades[id]; !ok {
		return notFound("grade", id)
	}
	m.deleteGrade(id)
	return nil
}

func (m *Memory) putGrade(g model.Grade) {
	m.grades[g.ID] = g
	m.gradeKeys[g.Key()] = g.ID
}

func (m *Memory) deleteGrade(id int) {
	if g, ok := m.grades[id]; ok {
		delete(m.gradeKeys, g.Key())
		delete(m.grades, id)
	}
}

// -------- Attendance --------

func (m *Memory) ListAttendance(context.Context) ([]model.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedValues(m.attendance), nil
}

func (m *Memory) GetAttendance(_ context.Context, id int) (model.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attendance[id]
	if !ok {
		return model.AttendanceRecord{}, notFound("attendance record", id)
	}
	return a, nil
}

func (m *Memory) checkAttendanceRefs(a model.AttendanceRecord) error {
	var v model.Validator
	_, ok := m.students[a.StudentID]
	v.Check(ok, "student_id", fmt.Sprintf("unknown student %d", a.StudentID))
	_, ok = m.classes[a.ClassID]
	v.Check(ok, "class_id", fmt.Sprintf("unknown class %d", a.ClassID))
	return v.Err()
}

func (m *Memory) CreateAttendance(_ context.Context, a model.AttendanceRecord) (model.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkAttendanceRefs(a); err != nil {
		return model.AttendanceRecord{}, err
	}
	if _, exists := m.attendanceKeys[a.Key()]; exists {
		return model.AttendanceRecord{}, fmt.Errorf("attendance for student %d in class %d on %s: %w", a.StudentID, a.ClassID, a.Date, model.ErrConflict)
	}
	a.ID = nextID(m.attendance)
	m.putAttendance(a)
	return a, nil
}

func (m *Memory) UpdateAttendance(_ context.Context, a model.AttendanceRecord) (model.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.attendance[a.ID]
	if !ok {
		return model.AttendanceRecord{}, notFound("attendance record", a.ID)
	}
	if err := m.checkAttendanceRefs(a); err != nil {
		return model.AttendanceRecord{}, err
	}
	if owner, exists := m.attendanceKeys[a.Key()]; exists && owner != a.ID {
		return model.AttendanceRecord{}, fmt.Errorf("attendance for student %d in class %d on %s: %w", a.StudentID, a.ClassID, a.Date, model.ErrConflict)
	}
	delete(m.attendanceKeys, old.Key())
	m.putAttendance(a)
	return a, nil
}

// UpsertAttendance updates the record stored under a's key or creates it.
func (m *Memory) UpsertAttendance(_ context.Context, a model.AttendanceRecord) (model.AttendanceRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkAttendanceRefs(a); err != nil {
		return model.AttendanceRecord{}, false, err
	}
	if id, exists := m.attendanceKeys[a.Key()]; exists {
		a.ID = id
		m.putAttendance(a)
		return a, false, nil
	}
	a.ID = nextID(m.attendance)
	m.putAttendance(a)
	return a, true, nil
}

func (m *Memory) DeleteAttendance(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.attendance[id]; !ok {
		return notFound("attendance record", id)
	}
	m.deleteAttendance(id)
	return nil
}

func (m *Memory) putAttendance(a model.AttendanceRecord) {
	m.attendance[a.ID] = a
	m.attendanceKeys[a.Key()] = a.ID
}

func (m *Memory) deleteAttendance(id int) {
	if a, ok := m.attendance[id]; ok {
		delete(m.attendanceKeys, a.Key())
		delete(m.attendance, id)
	}
}
