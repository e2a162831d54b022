package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"classroom/internal/model"
)

// Postgres persists entities in Postgres. Cascading deletes are carried by
// the ON DELETE CASCADE foreign keys of the schema.
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates a store on an open connection pool.
func NewPostgres(db *DB) *Postgres {
	return &Postgres{db: db.Client}
}

// Ping checks connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Postgres) Close() error { return p.db.Close() }

type scanner interface {
	Scan(dest ...any) error
}

func wrapNotFound(err error, entity string, id int) error {
	err = translate(err, "")
	if errors.Is(err, model.ErrNotFound) {
		return notFound(entity, id)
	}
	return err
}

// mustAffect turns a zero-row update or delete into ErrNotFound.
func mustAffect(res sql.Result, entity string, id int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(entity, id)
	}
	return nil
}

// -------- Students --------

const studentColumns = `id, first_name, last_name, email, date_of_birth, enrollment_date, grade_level, student_id, photo_url`

func scanStudent(row scanner) (model.Student, error) {
	var st model.Student
	err := row.Scan(&st.ID, &st.FirstName, &st.LastName, &st.Email, &st.DateOfBirth, &st.EnrollmentDate, &st.GradeLevel, &st.StudentID, &st.PhotoURL)
	return st, err
}

func (p *Postgres) ListStudents(ctx context.Context) ([]model.Student, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+studentColumns+` FROM students ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := []model.Student{}
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

func (p *Postgres) GetStudent(ctx context.Context, id int) (model.Student, error) {
	st, err := scanStudent(p.db.QueryRowContext(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id))
	if err != nil {
		return model.Student{}, wrapNotFound(err, "student", id)
	}
	return st, nil
}

func (p *Postgres) CreateStudent(ctx context.Context, st model.Student) (model.Student, error) {
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO students (name, first_name, last_name, email, date_of_birth, enrollment_date, grade_level, student_id, photo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, st.Name(), st.FirstName, st.LastName, st.Email, st.DateOfBirth, st.EnrollmentDate, st.GradeLevel, st.StudentID, st.PhotoURL).Scan(&st.ID)
	if err != nil {
		return model.Student{}, translate(err, "")
	}
	return st, nil
}

func (p *Postgres) UpdateStudent(ctx context.Context, st model.Student) (model.Student, error) {
	res, err := p.db.ExecContext(ctx, `
		UPDATE students
		SET name = $2, first_name = $3, last_name = $4, email = $5, date_of_birth = $6,
			enrollment_date = $7, grade_level = $8, student_id = $9, photo_url = $10
		WHERE id = $1
	`, st.ID, st.Name(), st.FirstName, st.LastName, st.Email, st.DateOfBirth, st.EnrollmentDate, st.GradeLevel, st.StudentID, st.PhotoURL)
	if err != nil {
		return model.Student{}, translate(err, "")
	}
	if err := mustAffect(res, "student", st.ID); err != nil {
		return model.Student{}, err
	}
	return st, nil
}

func (p *Postgres) DeleteStudent(ctx context.Context, id int) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return mustAffect(res, "student", id)
}

// -------- Classes & membership --------

const classColumns = `id, name, subject, section, schedule, room`

func scanClass(row scanner) (model.ClassSection, error) {
	var c model.ClassSection
	err := row.Scan(&c.ID, &c.Name, &c.Subject, &c.Section, &c.Schedule, &c.Room)
	return c, err
}

// memberIDs loads the membership relation grouped by class.
func (p *Postgres) memberIDs(ctx context.Context, q interface {
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
}, classID int) (map[int][]int, error) {
	query := `SELECT class_id, student_id FROM class_memberships`
	args := []any{}
	if classID > 0 {
		query += ` WHERE class_id = $1`
		args = append(args, classID)
	}
	query += ` ORDER BY class_id, student_id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int][]int)
	for rows.Next() {
		var cid, sid int
		if err := rows.Scan(&cid, &sid); err != nil {
			return nil, err
		}
		out[cid] = append(out[cid], sid)
	}
	return out, rows.Err()
}

func idsOrEmpty(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}

func (p *Postgres) ListClasses(ctx context.Context) ([]model.ClassSection, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+classColumns+` FROM class_sections ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := []model.ClassSection{}
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	members, err := p.memberIDs(ctx, p.db, 0)
	if err != nil {
		return nil, err
	}
	for i := range classes {
		classes[i].StudentIDs = idsOrEmpty(members[classes[i].ID])
	}
	return classes, nil
}

func (p *Postgres) GetClass(ctx context.Context, id int) (model.ClassSection, error) {
	c, err := scanClass(p.db.QueryRowContext(ctx, `SELECT `+classColumns+` FROM class_sections WHERE id = $1`, id))
	if err != nil {
		return model.ClassSection{}, wrapNotFound(err, "class", id)
	}
	members, err := p.memberIDs(ctx, p.db, id)
	if err != nil {
		return model.ClassSection{}, err
	}
	c.StudentIDs = idsOrEmpty(members[id])
	return c, nil
}

// replaceMembers swaps the class's membership set inside tx.
func replaceMembers(ctx context.Context, tx *sql.Tx, classID int, ids []int) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM class_memberships WHERE class_id = $1`, classID); err != nil {
		return err
	}
	for _, sid := range ids {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO class_memberships (class_id, student_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, classID, sid)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return model.NewValidationError(model.FieldError{Field: "student_ids", Error: fmt.Sprintf("unknown student %d", sid)})
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Postgres) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (p *Postgres) CreateClass(ctx context.Context, c model.ClassSection) (model.ClassSection, error) {
	err := p.inTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO class_sections (name, subject, section, schedule, room)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, c.Name, c.Subject, c.Section, c.Schedule, c.Room).Scan(&c.ID)
		if err != nil {
			return err
		}
		return replaceMembers(ctx, tx, c.ID, c.StudentIDs)
	})
	if err != nil {
		return model.ClassSection{}, translate(err, "student_ids")
	}
	return p.GetClass(ctx, c.ID)
}

// UpdateClass replaces the class fields; a non-nil StudentIDs replaces the
// membership set as well.
func (p *Postgres) UpdateClass(ctx context.Context, c model.ClassSection) (model.ClassSection, error) {
	err := p.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE class_sections
			SET name = $2, subject = $3, section = $4, schedule = $5, room = $6
			WHERE id = $1
		`, c.ID, c.Name, c.Subject, c.Section, c.Schedule, c.Room)
		if err != nil {
			return err
		}
		if err := mustAffect(res, "class", c.ID); err != nil {
			return err
		}
		if c.StudentIDs == nil {
			return nil
		}
		return replaceMembers(ctx, tx, c.ID, c.StudentIDs)
	})
	if err != nil {
		return model.ClassSection{}, translate(err, "student_ids")
	}
	return p.GetClass(ctx, c.ID)
}

func (p *Postgres) DeleteClass(ctx context.Context, id int) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM class_sections WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return mustAffect(res, "class", id)
}

func (p *Postgres) Enroll(ctx context.Context, classID, studentID int) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO class_memberships (class_id, student_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, classID, studentID)
	if err != nil {
		err = translate(err, "student_id")
		var verr *model.ValidationError
		if errors.As(err, &verr) && len(verr.Fields) > 0 && verr.Fields[0].Field == "class_id" {
			return notFound("class", classID)
		}
		return err
	}
	return nil
}

func (p *Postgres) Unenroll(ctx context.Context, classID, studentID int) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM class_memberships WHERE class_id = $1 AND student_id = $2`, classID, studentID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("student %d in class %d: %w", studentID, classID, model.ErrNotFound)
	}
	return nil
}

// -------- Assignments --------

const assignmentColumns = `id, name, category, points_possible, due_date, weight, class_id`

func scanAssignment(row scanner) (model.Assignment, error) {
	var a model.Assignment
	err := row.Scan(&a.ID, &a.Name, &a.Category, &a.PointsPossible, &a.DueDate, &a.Weight, &a.ClassID)
	return a, err
}

func (p *Postgres) ListAssignments(ctx context.Context) ([]model.Assignment, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+assignmentColumns+` FROM assignments ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Assignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (p *Postgres) GetAssignment(ctx context.Context, id int) (model.Assignment, error) {
	a, err := scanAssignment(p.db.QueryRowContext(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id))
	if err != nil {
		return model.Assignment{}, wrapNotFound(err, "assignment", id)
	}
	return a, nil
}

func (p *Postgres) CreateAssignment(ctx context.Context, a model.Assignment) (model.Assignment, error) {
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO assignments (name, category, points_possible, due_date, weight, class_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, a.Name, a.Category, a.PointsPossible, a.DueDate, a.Weight, a.ClassID).Scan(&a.ID)
	if err != nil {
		return model.Assignment{}, translate(err, "class_id")
	}
	return a, nil
}

func (p *Postgres) UpdateAssignment(ctx context.Context, a model.Assignment) (model.Assignment, error) {
	res, err := p.db.ExecContext(ctx, `
		UPDATE assignments
		SET name = $2, category = $3, points_possible = $4, due_date = $5, weight = $6, class_id = $7
		WHERE id = $1
	`, a.ID, a.Name, a.Category, a.PointsPossible, a.DueDate, a.Weight, a.ClassID)
	if err != nil {
		return model.Assignment{}, translate(err, "class_id")
	}
	if err := mustAffect(res, "assignment", a.ID); err != nil {
		return model.Assignment{}, err
	}
	return a, nil
}

func (p *Postgres) DeleteAssignment(ctx context.Context, id int) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return mustAffect(res, "assignment", id)
}

// -------- Grades --------

const gradeColumns = `id, student_id, assignment_id, score, submitted_date, comments`

func scanGrade(row scanner) (model.Grade, error) {
	var g model.Grade
	err := row.Scan(&g.ID, &g.StudentID, &g.AssignmentID, &g.Score, &g.SubmittedDate, &g.Comments)
	return g, err
}

func (p *Postgres) ListGrades(ctx context.Context) ([]model.Grade, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+gradeColumns+` FROM grades ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Grade{}
	for rows.Next() {
		g, err := scanGrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (p *Postgres) GetGrade(ctx context.Context, id int) (model.Grade, error) {
	g, err := scanGrade(p.db.QueryRowContext(ctx, `SELECT `+gradeColumns+` FROM grades WHERE id = $1`, id))
	if err != nil {
		return model.Grade{}, wrapNotFound(err, "grade", id)
	}
	return g, nil
}

func (p *Postgres) CreateGrade(ctx context.Context, g model.Grade) (model.Grade, error) {
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO grades (student_id, assignment_id, score, submitted_date, comments)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, g.StudentID, g.AssignmentID, g.Score, g.SubmittedDate, g.Comments).Scan(&g.ID)
	if err != nil {
		return model.Grade{}, translate(err, "assignment_id")
	}
	return g, nil
}

func (p *Postgres) UpdateGrade(ctx context.Context, g model.Grade) (model.Grade, error) {
	res, err := p.db.ExecContext(ctx, `
		UPDATE grades
		SET student_id = $2, assignment_id = $3, score = $4, submitted_date = $5, comments = $6
		WHERE id = $1
	`, g.ID, g.StudentID, g.AssignmentID, g.Score, g.SubmittedDate, g.Comments)
	if err != nil {
		return model.Grade{}, translate(err, "assignment_id")
	}
	if err := mustAffect(res, "grade", g.ID); err != nil {
		return model.Grade{}, err
	}
	return g, nil
}

// UpsertGrade relies on the (student_id, assignment_id) unique constraint.
// xmax is zero only for freshly inserted rows.
func (p *Postgres) UpsertGrade(ctx context.Context, g model.Grade) (model.Grade, bool, error) {
	var created bool
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO grades (student_id, assignment_id, score, submitted_date, comments)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (student_id, assignment_id) DO UPDATE SET
			score = EXCLUDED.score,
			submitted_date = EXCLUDED.submitted_date,
			comments = EXCLUDED.comments
		RETURNING id, (xmax = 0)
	`, g.StudentID, g.AssignmentID, g.Score, g.SubmittedDate, g.Comments).Scan(&g.ID, &created)
	if err != nil {
		return model.Grade{}, false, translate(err, "assignment_id")
	}
	return g, created, nil
}

func (p *Postgres) DeleteGrade(ctx context.Context, id int) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM grades WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return mustAffect(res, "grade", id)
}

// -------- Attendance --------

const attendanceColumns = `id, student_id, class_id, date, status, reason`

func scanAttendance(row scanner) (model.AttendanceRecord, error) {
	var a model.AttendanceRecord
	err := row.Scan(&a.ID, &a.StudentID, &a.ClassID, &a.Date, &a.Status, &a.Reason)
	return a, err
}

func (p *Postgres) ListAttendance(ctx context.Context) ([]model.AttendanceRecord, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+attendanceColumns+` FROM attendance_records ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.AttendanceRecord{}
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (p *Postgres) GetAttendance(ctx context.Context, id int) (model.AttendanceRecord, error) {
	a, err := scanAttendance(p.db.QueryRowContext(ctx, `SELECT `+attendanceColumns+` FROM attendance_records WHERE id = $1`, id))
	if err != nil {
		return model.AttendanceRecord{}, wrapNotFound(err, "attendance record", id)
	}
	return a, nil
}

func (p *Postgres) CreateAttendance(ctx context.Context, a model.AttendanceRecord) (model.AttendanceRecord, error) {
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO attendance_records (student_id, class_id, date, status, reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, a.StudentID, a.ClassID, a.Date, a.Status, a.Reason).Scan(&a.ID)
	if err != nil {
		return model.AttendanceRecord{}, translate(err, "class_id")
	}
	return a, nil
}

func (p *Postgres) UpdateAttendance(ctx context.Context, a model.AttendanceRecord) (model.AttendanceRecord, error) {
	res, err := p.db.ExecContext(ctx, `
		UPDATE attendance_records
		SET student_id = $2, class_id = $3, date = $4, status = $5, reason = $6
		WHERE id = $1
	`, a.ID, a.StudentID, a.ClassID, a.Date, a.Status, a.Reason)
	if err != nil {
		return model.AttendanceRecord{}, translate(err, "class_id")
	}
	if err := mustAffect(res, "attendance record", a.ID); err != nil {
		return model.AttendanceRecord{}, err
	}
	return a, nil
}

// UpsertAttendance relies on the (student_id, class_id, date) unique constraint.
func (p *Postgres) UpsertAttendance(ctx context.Context, a model.AttendanceRecord) (model.AttendanceRecord, bool, error) {
	var created bool
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO attendance_records (student_id, class_id, date, status, reason)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (student_id, class_id, date) DO UPDATE SET
			status = EXCLUDED.status,
			reason = EXCLUDED.reason
		RETURNING id, (xmax = 0)
	`, a.StudentID, a.ClassID, a.Date, a.Status, a.Reason).Scan(&a.ID, &created)
	if err != nil {
		return model.AttendanceRecord{}, false, translate(err, "class_id")
	}
	return a, created, nil
}

func (p *Postgres) DeleteAttendance(ctx context.Context, id int) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM attendance_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return mustAffect(res, "attendance record", id)
}
