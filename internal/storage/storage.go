// Package storage defines the Storage interface that every database
// backend satisfies, together with the error kinds those backends report.
//
// Handlers depend only on this package. Switching backends means
// implementing the interface and changing the constructor call in main.
package storage

import (
	"context"

	"github.com/aanand-mishra/student-records/internal/types"
)

// Storage is the record store contract.
type Storage interface {
	// CreateStudent validates fields, inserts a new row and returns its
	// generated uuid. Returns a *ValidationError for a missing field and an
	// error matching ErrConflict when the name is already taken.
	CreateStudent(ctx context.Context, fields types.StudentFields) (int64, error)

	// GetStudentByID returns the student with the given uuid, or an error
	// matching ErrNotFound.
	GetStudentByID(ctx context.Context, id int64) (types.Student, error)

	// GetStudents returns every student in storage-native order.
	// Returns an empty slice (not nil) if there are none.
	GetStudents(ctx context.Context) ([]types.Student, error)

	// UpdateStudentByID overwrites all six fields of an existing student.
	// Reports false with a nil error when no row has that uuid.
	UpdateStudentByID(ctx context.Context, id int64, fields types.StudentFields) (bool, error)

	// DeleteStudentByID removes a student permanently.
	// Reports false with a nil error when no row has that uuid.
	DeleteStudentByID(ctx context.Context, id int64) (bool, error)

	// Ping checks that the backing engine is reachable.
	Ping(ctx context.Context) error

	Close() error
}
