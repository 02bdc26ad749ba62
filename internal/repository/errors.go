package repository

import (
	"errors"

	"github.com/rangerisrael/pet-portal-sub000/internal/db"
)

// ErrNotFound is returned when a row does not exist or is soft-deleted.
// Handlers map it to 404.
var ErrNotFound = errors.New("not found")

// IsDuplicate reports a unique-constraint conflict, mapped to 409.
func IsDuplicate(err error) bool {
	return db.IsUniqueViolation(err)
}
