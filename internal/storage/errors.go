package storage

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by single-record reads for an unknown uuid.
	ErrNotFound = errors.New("student not found")

	// ErrConflict is returned when a write would duplicate a unique name.
	ErrConflict = errors.New("a student with this name already exists")
)

// Error wraps a fault raised by the underlying engine.
// Its text is meant for logs, never for clients.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap returns nil for a nil err, otherwise an *Error for op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// ValidationError lists the payload fields that were missing.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("field %s is required", f))
	}
	return strings.Join(msgs, ", ")
}
