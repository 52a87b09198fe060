// Package repository defines error values that are reused across multiple
// repositories. These sentinel values let higher layers such as handlers
// distinguish between failure scenarios: ErrForbidden means the current user
// does not own the resource they are mutating, ErrHasDependents and
// ErrReferencedByResource mean a delete is blocked by foreign references, and
// the uniqueness sentinels surface duplicate-key violations as descriptive
// errors instead of raw driver messages.
package repository

import (
	"errors"
	"strings"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because of
// conflicting state. Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrHasDependents is returned when a geography node cannot be deleted while
// it still has child nodes.
var ErrHasDependents = errors.New("node has dependent children")

// ErrReferencedByResource is returned when a delete is blocked because a
// property, user location, or payment still references the row.
var ErrReferencedByResource = errors.New("referenced by another resource")

// ErrInconsistentHierarchy is returned by chain validation when a supplied
// province/district/sector/cell combination does not form a valid ancestry.
var ErrInconsistentHierarchy = errors.New("inconsistent geography hierarchy")

// ErrEmailExists is returned when a registration reuses an existing email.
var ErrEmailExists = errors.New("email already exists")

// ErrNameExists is returned when a unique name column rejects an insert
// (geography node names and property type names are unique store-wide).
var ErrNameExists = errors.New("name already exists")

// ErrProfileExists is returned when a user already has the profile or
// location row they are trying to create (1:1 invariant).
var ErrProfileExists = errors.New("profile already exists")

// isDuplicateKey reports whether err is a MySQL duplicate-entry error (1062).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Error 1062")
}
