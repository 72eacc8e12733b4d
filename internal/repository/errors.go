package repository

import "errors"

var (
	// ErrNotFound is returned when no stored project has the requested id.
	ErrNotFound = errors.New("project not found")

	// ErrInvalidInput is returned when a project violates a column constraint.
	ErrInvalidInput = errors.New("invalid project")
)
