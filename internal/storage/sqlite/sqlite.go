// Package sqlite provides the default storage.Storage implementation,
// backed by a single SQLite database file through database/sql.
//
// The file (and its parent directory) is created on first use and the
// students table is created if absent; existing data is never touched.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

// AUTOINCREMENT (rather than a bare INTEGER PRIMARY KEY) keeps uuids
// strictly increasing and never reissues the id of a deleted row.
const schema = `
	CREATE TABLE IF NOT EXISTS students (
		uuid     INTEGER PRIMARY KEY AUTOINCREMENT,
		class    INTEGER NOT NULL,
		name     TEXT    NOT NULL UNIQUE,
		sex      TEXT    NOT NULL,
		age      INTEGER NOT NULL,
		siblings INTEGER NOT NULL,
		gpa      REAL    NOT NULL
	)
`

const columns = "uuid, class, name, sex, age, siblings, gpa"

// SQLite implements storage.Storage.
// *sql.DB is a pool: each concurrent request is served on its own
// connection, never a shared cursor.
type SQLite struct {
	Db *sql.DB
}

var _ storage.Storage = (*SQLite)(nil)

// New opens the database at cfg.Path and ensures the students table exists.
func New(cfg config.Storage) (*SQLite, error) {
	if dir := filepath.Dir(cfg.Path); cfg.Path != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.New: create directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL",
		cfg.Path, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if cfg.Path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// CreateStudent inserts a new row and returns its uuid.
// Values are bound by name, so the column list and the payload can never
// drift out of positional order.
func (s *SQLite) CreateStudent(ctx context.Context, fields types.StudentFields) (int64, error) {
	if err := storage.ValidateFields(fields); err != nil {
		return 0, err
	}

	stmt, err := s.Db.PrepareContext(ctx, `
		INSERT INTO students (class, name, sex, age, siblings, gpa)
		VALUES (:class, :name, :sex, :age, :siblings, :gpa)
	`)
	if err != nil {
		return 0, storage.Wrap("CreateStudent: prepare", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, namedArgs(fields)...)
	if err != nil {
		return 0, classify("CreateStudent: exec", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, storage.Wrap("CreateStudent: last insert id", err)
	}

	return lastID, nil
}

// GetStudentByID fetches exactly one row by uuid.
func (s *SQLite) GetStudentByID(ctx context.Context, id int64) (types.Student, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT "+columns+" FROM students WHERE uuid = :uuid LIMIT 1",
	)
	if err != nil {
		return types.Student{}, storage.Wrap("GetStudentByID: prepare", err)
	}
	defer stmt.Close()

	student, err := scanStudent(stmt.QueryRowContext(ctx, sql.Named("uuid", id)))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, fmt.Errorf("no student with uuid %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return types.Student{}, storage.Wrap("GetStudentByID: scan", err)
	}

	return student, nil
}

// GetStudents returns all rows in storage-native order.
func (s *SQLite) GetStudents(ctx context.Context) ([]types.Student, error) {
	rows, err := s.Db.QueryContext(ctx, "SELECT "+columns+" FROM students")
	if err != nil {
		return nil, storage.Wrap("GetStudents: query", err)
	}
	defer rows.Close()

	students := make([]types.Student, 0)

	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, storage.Wrap("GetStudents: scan row", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, storage.Wrap("GetStudents: rows iteration", err)
	}

	return students, nil
}

// UpdateStudentByID overwrites every data column of the row. The uuid is
// only ever used in the WHERE clause.
func (s *SQLite) UpdateStudentByID(ctx context.Context, id int64, fields types.StudentFields) (bool, error) {
	if err := storage.ValidateFields(fields); err != nil {
		return false, err
	}

	stmt, err := s.Db.PrepareContext(ctx, `
		UPDATE students
		SET class = :class, name = :name, sex = :sex,
		    age = :age, siblings = :siblings, gpa = :gpa
		WHERE uuid = :uuid
	`)
	if err != nil {
		return false, storage.Wrap("UpdateStudentByID: prepare", err)
	}
	defer stmt.Close()

	args := append(namedArgs(fields), sql.Named("uuid", id))
	result, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return false, classify("UpdateStudentByID: exec", err)
	}

	return affected("UpdateStudentByID", result)
}

// DeleteStudentByID removes the row with the given uuid.
func (s *SQLite) DeleteStudentByID(ctx context.Context, id int64) (bool, error) {
	result, err := s.Db.ExecContext(ctx,
		"DELETE FROM students WHERE uuid = :uuid", sql.Named("uuid", id))
	if err != nil {
		return false, storage.Wrap("DeleteStudentByID: exec", err)
	}

	return affected("DeleteStudentByID", result)
}

func (s *SQLite) Ping(ctx context.Context) error {
	return storage.Wrap("Ping", s.Db.PingContext(ctx))
}

func (s *SQLite) Close() error {
	return s.Db.Close()
}

func namedArgs(f types.StudentFields) []any {
	return []any{
		sql.Named("class", *f.Class),
		sql.Named("name", *f.Name),
		sql.Named("sex", *f.Sex),
		sql.Named("age", *f.Age),
		sql.Named("siblings", *f.Siblings),
		sql.Named("gpa", *f.GPA),
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStudent(row scanner) (types.Student, error) {
	var st types.Student
	err := row.Scan(&st.UUID, &st.Class, &st.Name, &st.Sex, &st.Age, &st.Siblings, &st.GPA)
	return st, err
}

func affected(op string, result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, storage.Wrap(op+": rows affected", err)
	}
	return n > 0, nil
}

// classify maps a unique-name violation to storage.ErrConflict and
// everything else to a storage.Error.
func classify(op string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%s: %w", op, storage.ErrConflict)
	}
	return storage.Wrap(op, err)
}
