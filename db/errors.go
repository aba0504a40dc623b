package db

import (
	"errors"
	"fmt"

	"github.com/ncruces/go-sqlite3"
	"gorm.io/gorm"
)

var (
	// ErrNotFound reports a lookup miss. It is an outcome, not a failure.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists reports a duplicate primary key or unique value.
	ErrAlreadyExists = errors.New("already exists")
	// ErrConstraintViolation reports a missing foreign key or another
	// violated table constraint.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrIOFailure reports a filesystem create, copy or remove failure.
	ErrIOFailure = errors.New("io failure")
	// ErrMigrationFailure reports a schema migration that could not be
	// planned or applied. It is fatal for startup.
	ErrMigrationFailure = errors.New("migration failure")
)

// MigrationError describes why a migration run failed.
type MigrationError struct {
	Version     int64
	Description string
	Err         error
}

func (e *MigrationError) Error() string {
	if e.Version == 0 {
		return fmt.Sprintf("migration failure: %v", e.Err)
	}
	return fmt.Sprintf("migration failure at version %d (%s): %v", e.Version, e.Description, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

func (e *MigrationError) Is(target error) bool { return target == ErrMigrationFailure }

// IOError wraps a filesystem failure with the path it happened on.
func IOError(op, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %v", ErrIOFailure, op, path, err)
}

// classify maps driver and gorm errors onto the store's sentinels.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	var sqliteErr *sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode() {
		case sqlite3.CONSTRAINT_PRIMARYKEY, sqlite3.CONSTRAINT_UNIQUE:
			return fmt.Errorf("%s: %w: %v", op, ErrAlreadyExists, err)
		}
		if sqliteErr.Code() == sqlite3.CONSTRAINT {
			return fmt.Errorf("%s: %w: %v", op, ErrConstraintViolation, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
