package database

import "errors"

var (
	// ErrSchemaAbsent is returned when the database file or its tables do not exist.
	// Run a load first.
	ErrSchemaAbsent = errors.New("restaurant database not found; run a load first")

	// ErrNotFound is returned when a lookup matches no restaurant.
	ErrNotFound = errors.New("restaurant not found")

	// ErrReadOnly is returned when Load is called on a database opened read-only.
	ErrReadOnly = errors.New("database is opened read-only")
)
