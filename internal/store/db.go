package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"classroom/internal/model"
)

// Postgres error codes mapped onto the model error taxonomy.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// DB wraps sql.DB for Postgres using pgx.
type DB struct {
	Client *sql.DB
}

// NewDB opens a Postgres connection pool and pings it.
func NewDB(ctx context.Context, connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &DB{Client: db}, nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS students (
	id              INTEGER GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	name            TEXT NOT NULL DEFAULT '',
	first_name      TEXT NOT NULL,
	last_name       TEXT NOT NULL,
	email           TEXT NOT NULL,
	date_of_birth   DATE,
	enrollment_date DATE,
	grade_level     TEXT NOT NULL,
	student_id      TEXT NOT NULL,
	photo_url       TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS class_sections (
	id       INTEGER GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	name     TEXT NOT NULL,
	subject  TEXT NOT NULL,
	section  TEXT NOT NULL DEFAULT '',
	schedule TEXT NOT NULL DEFAULT '',
	room     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS class_memberships (
	class_id   INTEGER NOT NULL REFERENCES class_sections(id) ON DELETE CASCADE,
	student_id INTEGER NOT NULL REFERENCES students(id) ON DELETE CASCADE,
	PRIMARY KEY (class_id, student_id)
);

CREATE TABLE IF NOT EXISTS assignments (
	id              INTEGER GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	name            TEXT NOT NULL,
	category        TEXT NOT NULL,
	points_possible DOUBLE PRECISION NOT NULL CHECK (points_possible > 0),
	due_date        DATE,
	weight          DOUBLE PRECISION NOT NULL DEFAULT 1,
	class_id        INTEGER NOT NULL REFERENCES class_sections(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS grades (
	id             INTEGER GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	student_id     INTEGER NOT NULL REFERENCES students(id) ON DELETE CASCADE,
	assignment_id  INTEGER NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
	score          DOUBLE PRECISION NOT NULL,
	submitted_date DATE,
	comments       TEXT NOT NULL DEFAULT '',
	UNIQUE (student_id, assignment_id)
);

CREATE TABLE IF NOT EXISTS attendance_records (
	id         INTEGER GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	student_id INTEGER NOT NULL REFERENCES students(id) ON DELETE CASCADE,
	class_id   INTEGER NOT NULL REFERENCES class_sections(id) ON DELETE CASCADE,
	date       DATE NOT NULL,
	status     TEXT NOT NULL,
	reason     TEXT NOT NULL DEFAULT '',
	UNIQUE (student_id, class_id, date)
);

CREATE INDEX IF NOT EXISTS idx_attendance_class_date ON attendance_records(class_id, date);
CREATE INDEX IF NOT EXISTS idx_assignments_class ON assignments(class_id);
`

// Migrate creates the schema if it does not exist.
func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.Client.ExecContext(ctx, schema)
	return err
}

// translate maps driver errors onto model errors. field names the column a
// foreign key violation is reported against.
func translate(err error, field string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, model.ErrConflict)
		case pgForeignKeyViolation:
			return model.NewValidationError(model.FieldError{Field: fkField(pgErr, field), Error: "references a missing record"})
		}
	}
	return err
}

// fkField picks the offending column from the constraint name Postgres
// generates (<table>_<column>_fkey), falling back to field.
func fkField(pgErr *pgconn.PgError, field string) string {
	for _, col := range []string{"student_id", "class_id", "assignment_id"} {
		if strings.Contains(pgErr.ConstraintName, col) {
			return col
		}
	}
	return field
}
