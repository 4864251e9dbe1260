package repository

import "errors"

var (
	// ErrNotFound is returned when a record does not exist or is not owned
	// by the caller. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned on a uniqueness violation.
	ErrDuplicate = errors.New("record already exists")

	// ErrInvalidInput is returned when a request references records the
	// caller does not own or omits required fields.
	ErrInvalidInput = errors.New("invalid input")
)
