// Package storage defines the Storage interface — a contract that any
// database backend must satisfy to work with this application.
//
// WHY AN INTERFACE?
// ─────────────────
// Handlers and the service layer should not know or care which database
// they are talking to. By depending only on this interface:
//
//   - Switching databases = implement the interface for the new DB,
//     change one line in main.go. Zero handler changes.
//
//   - Writing tests = pass a fake that satisfies the interface.
//     No real database needed for unit tests.
//
// The sentinel errors below follow the sql.ErrNoRows convention: every
// implementation returns (or wraps) them for the corresponding outcome,
// and callers classify failures with errors.Is rather than by matching
// message strings.
package storage

import (
	"errors"

	"github.com/dkrylov/students-backend/internal/types"
)

var (
	// ErrStudentNotFound is returned when a lookup, update, or delete
	// matches no stored record.
	ErrStudentNotFound = errors.New("student not found")

	// ErrDuplicateUniqueNumber is returned when a create collides with an
	// already-stored unique number.
	ErrDuplicateUniqueNumber = errors.New("unique number already exists")

	// ErrNoFieldsToUpdate is returned when an update carries no fields;
	// issuing an UPDATE with an empty SET clause is malformed SQL, so the
	// request is rejected before any statement is built.
	ErrNoFieldsToUpdate = errors.New("no fields to update")
)

// Storage is the database contract. Any concrete type that implements
// all of these methods satisfies the interface implicitly.
type Storage interface {
	// ListStudents returns every student in the database.
	// Returns an empty slice (not nil) if there are no students.
	ListStudents() ([]types.Student, error)

	// GetStudentByUniqueNumber fetches the single student carrying the
	// given business key, or ErrStudentNotFound.
	GetStudentByUniqueNumber(uniqueNumber string) (types.Student, error)

	// CreateStudent inserts a new record and writes the generated primary
	// key back into student.ID. Returns ErrDuplicateUniqueNumber if the
	// unique number is already taken.
	CreateStudent(student *types.Student) error

	// UpdateStudentByUniqueNumber applies a partial update: only the
	// non-nil fields of upd are written. Returns ErrNoFieldsToUpdate when
	// upd is empty and ErrStudentNotFound when no row matches.
	UpdateStudentByUniqueNumber(uniqueNumber string, upd types.StudentUpdate) error

	// DeleteStudentByUniqueNumber removes the matching record, or returns
	// ErrStudentNotFound if there is none. Deletion is deliberately not
	// idempotent-silent: callers can tell a no-op from a real delete.
	DeleteStudentByUniqueNumber(uniqueNumber string) error

	// UniqueNumberExists reports whether any stored record carries the
	// given business key. Used by create as a fast pre-check and by the
	// unique-number generator's retry loop.
	UniqueNumberExists(uniqueNumber string) (bool, error)
}
