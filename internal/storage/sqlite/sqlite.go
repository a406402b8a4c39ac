// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// Importing the driver package registers the "sqlite3" driver with
// database/sql via its init(); it is also referenced directly to
// recognise UNIQUE-constraint violations by their typed error.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dkrylov/students-backend/internal/storage"
	"github.com/dkrylov/students-backend/internal/types"

	"github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql;
// a single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at the given path, creates the students
// table if it does not already exist, and returns a ready-to-use *SQLite.
//
// The unique_number column carries a UNIQUE constraint. The pre-check in
// CreateStudent is only an optimisation: two concurrent creates can both
// pass it, and then the constraint is what actually keeps the invariant.
func New(storagePath string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			first_name    TEXT,
			last_name     TEXT,
			patronymic    TEXT,
			birth_date    TEXT,
			group_name    TEXT,
			unique_number TEXT NOT NULL UNIQUE
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// Close releases the underlying connection pool. Called once at shutdown.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// ListStudents returns all student rows as a slice.
// The ordering is whatever the store yields (in practice insertion
// order); callers must not rely on it.
func (s *SQLite) ListStudents() ([]types.Student, error) {
	// Explicitly list columns — SELECT * would silently break Scan's
	// ordering if a column is ever added.
	rows, err := s.Db.Query(`
		SELECT id, first_name, last_name, patronymic, birth_date, group_name, unique_number
		FROM students
	`)
	if err != nil {
		return nil, fmt.Errorf("ListStudents: query: %w", err)
	}
	defer rows.Close()

	// Pre-allocate an empty (non-nil) slice so an empty table encodes to
	// [] in JSON rather than null.
	students := make([]types.Student, 0)

	for rows.Next() {
		var student types.Student
		if err := rows.Scan(
			&student.ID,
			&student.FirstName,
			&student.LastName,
			&student.Patronymic,
			&student.BirthDate,
			&student.GroupName,
			&student.UniqueNumber,
		); err != nil {
			return nil, fmt.Errorf("ListStudents: scan row: %w", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListStudents: rows iteration: %w", err)
	}

	return students, nil
}

// GetStudentByUniqueNumber fetches exactly one row matched by the
// business key. Matching is case-sensitive and exact.
func (s *SQLite) GetStudentByUniqueNumber(uniqueNumber string) (types.Student, error) {
	var student types.Student

	err := s.Db.QueryRow(`
		SELECT id, first_name, last_name, patronymic, birth_date, group_name, unique_number
		FROM students WHERE unique_number = ? LIMIT 1
	`, uniqueNumber).Scan(
		&student.ID,
		&student.FirstName,
		&student.LastName,
		&student.Patronymic,
		&student.BirthDate,
		&student.GroupName,
		&student.UniqueNumber,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, storage.ErrStudentNotFound
		}
		return types.Student{}, fmt.Errorf("GetStudentByUniqueNumber: scan: %w", err)
	}

	return student, nil
}

// CreateStudent inserts a new row and writes the generated primary key
// back into student.ID.
//
// The uniqueness invariant is enforced twice: a COUNT pre-check gives a
// clean error on the common path, and the UNIQUE constraint on
// unique_number catches the race where two creates pass the pre-check
// concurrently. Both surface as storage.ErrDuplicateUniqueNumber.
func (s *SQLite) CreateStudent(student *types.Student) error {
	exists, err := s.UniqueNumberExists(student.UniqueNumber)
	if err != nil {
		return fmt.Errorf("CreateStudent: uniqueness probe: %w", err)
	}
	if exists {
		return storage.ErrDuplicateUniqueNumber
	}

	stmt, err := s.Db.Prepare(`
		INSERT INTO students (first_name, last_name, patronymic, birth_date, group_name, unique_number)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("CreateStudent: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(
		student.FirstName,
		student.LastName,
		student.Patronymic,
		student.BirthDate,
		student.GroupName,
		student.UniqueNumber,
	)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return storage.ErrDuplicateUniqueNumber
		}
		return fmt.Errorf("CreateStudent: exec: %w", err)
	}

	// A reported successful insert without a retrievable id is a failure,
	// not something to ignore: the caller needs the new identity.
	lastID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("CreateStudent: last insert id: %w", err)
	}
	student.ID = lastID

	return nil
}

// UpdateStudentByUniqueNumber applies a partial update: the SET clause is
// built only from the non-nil fields of upd, so fields the client left
// out stay untouched in storage.
func (s *SQLite) UpdateStudentByUniqueNumber(uniqueNumber string, upd types.StudentUpdate) error {
	if uniqueNumber == "" {
		return storage.ErrStudentNotFound
	}

	// Accumulate (column, value) pairs for present fields only. An empty
	// set would produce "UPDATE students SET WHERE ..." — malformed SQL —
	// so it is rejected before any statement is built.
	assignments := make([]string, 0, 5)
	args := make([]any, 0, 6)

	add := func(column string, value *string) {
		if value != nil {
			assignments = append(assignments, column+" = ?")
			args = append(args, *value)
		}
	}
	add("first_name", upd.FirstName)
	add("last_name", upd.LastName)
	add("patronymic", upd.Patronymic)
	add("birth_date", upd.BirthDate)
	add("group_name", upd.GroupName)

	if len(assignments) == 0 {
		return storage.ErrNoFieldsToUpdate
	}

	query := "UPDATE students SET " + strings.Join(assignments, ", ") +
		" WHERE unique_number = ?"
	args = append(args, uniqueNumber)

	result, err := s.Db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("UpdateStudentByUniqueNumber: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateStudentByUniqueNumber: rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrStudentNotFound
	}

	return nil
}

// DeleteStudentByUniqueNumber removes the row matching the business key.
// Zero affected rows is reported as not-found so callers can tell a
// no-op from a real delete.
func (s *SQLite) DeleteStudentByUniqueNumber(uniqueNumber string) error {
	stmt, err := s.Db.Prepare("DELETE FROM students WHERE unique_number = ?")
	if err != nil {
		return fmt.Errorf("DeleteStudentByUniqueNumber: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(uniqueNumber)
	if err != nil {
		return fmt.Errorf("DeleteStudentByUniqueNumber: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteStudentByUniqueNumber: rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrStudentNotFound
	}

	return nil
}

// UniqueNumberExists answers the uniqueness probe with a COUNT query.
func (s *SQLite) UniqueNumberExists(uniqueNumber string) (bool, error) {
	var count int
	err := s.Db.QueryRow(
		"SELECT COUNT(*) FROM students WHERE unique_number = ?",
		uniqueNumber,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("UniqueNumberExists: query: %w", err)
	}
	return count > 0, nil
}

// isUniqueConstraintErr reports whether err is the driver's signal for a
// UNIQUE constraint violation.
func isUniqueConstraintErr(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
