// Package storage defines the Storage interface: the contract every
// RegistrationStore backend satisfies.
//
// Handlers and the registration service depend only on this interface,
// so the slice-backed store and the SQLite store are interchangeable and
// tests can run the same table against both.
//
// Stores perform no validation. Required fields, the subject catalog and
// the photo are checked by the caller before Submit or Replace is called.
package storage

import (
	"errors"

	"github.com/aanand-mishra/student-registration/internal/types"
)

// ErrNotFound is returned by Replace when no committed record has the id.
var ErrNotFound = errors.New("student not found")

// Storage is the RegistrationStore contract. Implementations must be safe
// for concurrent use.
type Storage interface {
	// Submit mints a fresh id, appends {draft, id} to the collection and
	// returns the id. Insertion order is preserved.
	Submit(draft types.Draft) (string, error)

	// Delete removes the record with the id. An absent id is a no-op and
	// returns nil.
	Delete(id string) error

	// List returns every committed record in insertion order. The slice is
	// owned by the caller; later store mutations are not visible through it.
	List() ([]types.StudentRecord, error)

	// BeginEdit returns the fields of a committed record so a form can be
	// re-populated from it. The record stays in the collection. ok is false
	// when the id is absent.
	BeginEdit(id string) (draft types.Draft, ok bool, err error)

	// Replace overwrites the fields of a committed record in place, keeping
	// its id and position. Returns ErrNotFound for an absent id.
	Replace(id string, draft types.Draft) (types.StudentRecord, error)

	// Len returns the number of committed records.
	Len() (int, error)
}

// IDFunc mints record ids. Backends default to NewID.
type IDFunc func() string
