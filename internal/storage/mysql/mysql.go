// Package mysql is a storage.Storage backend for MySQL/MariaDB, selected
// with storage.driver: mysql.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

// errDupEntry is ER_DUP_ENTRY.
const errDupEntry = 1062

const schema = "CREATE TABLE IF NOT EXISTS `students` (" +
	"`uuid` BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY, " +
	"`class` INT NOT NULL, " +
	"`name` VARCHAR(255) NOT NULL UNIQUE, " +
	"`sex` VARCHAR(64) NOT NULL, " +
	"`age` INT NOT NULL, " +
	"`siblings` INT NOT NULL, " +
	"`gpa` DOUBLE NOT NULL" +
	")"

const columns = "`uuid`, `class`, `name`, `sex`, `age`, `siblings`, `gpa`"

type MySQL struct {
	conn *sql.DB
}

var _ storage.Storage = (*MySQL)(nil)

// New connects to cfg.DSN and ensures the students table exists.
func New(cfg config.Storage) (*MySQL, error) {
	dsn, err := prepareDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mysql.New: %w", err)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql.New: open db: %w", err)
	}

	db.SetConnMaxLifetime(time.Minute * 3)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql.New: ping: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql.New: create table: %w", err)
	}

	return &MySQL{conn: db}, nil
}

// prepareDSN forces clientFoundRows so that RowsAffected counts matched
// rows: an UPDATE that rewrites identical values must still report true.
func prepareDSN(dsn string) (string, error) {
	c, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	c.ClientFoundRows = true
	return c.FormatDSN(), nil
}

func (m *MySQL) CreateStudent(ctx context.Context, fields types.StudentFields) (int64, error) {
	if err := storage.ValidateFields(fields); err != nil {
		return 0, err
	}

	cols, args := assignments(fields)
	result, err := m.conn.ExecContext(ctx,
		"INSERT INTO `students` SET "+cols, args...)
	if err != nil {
		return 0, classify("CreateStudent: exec", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, storage.Wrap("CreateStudent: last insert id", err)
	}
	return lastID, nil
}

func (m *MySQL) GetStudentByID(ctx context.Context, id int64) (types.Student, error) {
	var st types.Student
	err := m.conn.QueryRowContext(ctx,
		"SELECT "+columns+" FROM `students` WHERE `uuid` = ? LIMIT 1", id,
	).Scan(&st.UUID, &st.Class, &st.Name, &st.Sex, &st.Age, &st.Siblings, &st.GPA)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, fmt.Errorf("no student with uuid %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return types.Student{}, storage.Wrap("GetStudentByID: scan", err)
	}
	return st, nil
}

func (m *MySQL) GetStudents(ctx context.Context) ([]types.Student, error) {
	rows, err := m.conn.QueryContext(ctx, "SELECT "+columns+" FROM `students`")
	if err != nil {
		return nil, storage.Wrap("GetStudents: query", err)
	}
	defer rows.Close()

	students := make([]types.Student, 0)
	for rows.Next() {
		var st types.Student
		if err := rows.Scan(&st.UUID, &st.Class, &st.Name, &st.Sex, &st.Age, &st.Siblings, &st.GPA); err != nil {
			return nil, storage.Wrap("GetStudents: scan row", err)
		}
		students = append(students, st)
	}

	if err := rows.Err(); err != nil {
		return nil, storage.Wrap("GetStudents: rows iteration", err)
	}
	return students, nil
}

func (m *MySQL) UpdateStudentByID(ctx context.Context, id int64, fields types.StudentFields) (bool, error) {
	if err := storage.ValidateFields(fields); err != nil {
		return false, err
	}

	cols, args := assignments(fields)
	result, err := m.conn.ExecContext(ctx,
		"UPDATE `students` SET "+cols+" WHERE `uuid` = ?", append(args, id)...)
	if err != nil {
		return false, classify("UpdateStudentByID: exec", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, storage.Wrap("UpdateStudentByID: rows affected", err)
	}
	return n > 0, nil
}

func (m *MySQL) DeleteStudentByID(ctx context.Context, id int64) (bool, error) {
	result, err := m.conn.ExecContext(ctx, "DELETE FROM `students` WHERE `uuid` = ?", id)
	if err != nil {
		return false, storage.Wrap("DeleteStudentByID: exec", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, storage.Wrap("DeleteStudentByID: rows affected", err)
	}
	return n > 0, nil
}

func (m *MySQL) Ping(ctx context.Context) error {
	return storage.Wrap("Ping", m.conn.PingContext(ctx))
}

func (m *MySQL) Close() error {
	return m.conn.Close()
}

// assignments renders "`col` = ?, ..." with each placeholder's value next
// to its column name. The driver has no named parameters.
func assignments(f types.StudentFields) (string, []any) {
	pairs := []struct {
		col string
		val any
	}{
		{"class", *f.Class},
		{"name", *f.Name},
		{"sex", *f.Sex},
		{"age", *f.Age},
		{"siblings", *f.Siblings},
		{"gpa", *f.GPA},
	}

	var sb []byte
	args := make([]any, 0, len(pairs))
	for i, p := range pairs {
		if i > 0 {
			sb = append(sb, ", "...)
		}
		sb = fmt.Appendf(sb, "`%s` = ?", p.col)
		args = append(args, p.val)
	}
	return string(sb), args
}

func classify(op string, err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == errDupEntry {
		return fmt.Errorf("%s: %w", op, storage.ErrConflict)
	}
	return storage.Wrap(op, err)
}
