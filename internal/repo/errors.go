// Package repo implements the data persistence layer for the sound catalog,
// backed by GORM. This file centralizes the typed errors surfaced by store
// operations so that callers can distinguish "nothing to do" from a data
// integrity problem without parsing driver messages.
package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

var (
	// ErrDuplicateFilename is returned by CreateSound when a sound with the
	// same filename already exists, enabled or disabled.
	ErrDuplicateFilename = errors.New("sound filename already exists")

	// ErrForeignKey is returned by history writes that reference a user or
	// sound that does not exist.
	ErrForeignKey = errors.New("referenced user or sound does not exist")

	// ErrMissingLookup is returned when a lookup is invoked without any key.
	ErrMissingLookup = errors.New("at least one lookup key is required")
)

// isUniqueViolation reports whether err is a unique-constraint failure.
// The pure-Go SQLite driver does not always translate to
// gorm.ErrDuplicatedKey, so the driver message is checked as a fallback.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyViolation reports whether err is a FK-constraint failure.
func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
