// Package registration sits between the handlers and the store. It owns
// the checks the store deliberately skips (required fields, subject
// catalog, photo present) and the policy for what a submit after an edit
// does.
package registration

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aanand-mishra/student-registration/internal/storage"
	"github.com/aanand-mishra/student-registration/internal/types"
	"github.com/aanand-mishra/student-registration/internal/validation"
)

// EditMode decides what Submit does with a draft that came from an edit.
type EditMode string

const (
	// EditDuplicate always commits a new record with a new id, leaving the
	// edited record untouched.
	EditDuplicate EditMode = "duplicate"

	// EditReplace overwrites the edited record in place, keeping its id.
	EditReplace EditMode = "replace"
)

// ParseEditMode accepts "duplicate", "replace" or "" (duplicate).
func ParseEditMode(s string) (EditMode, error) {
	switch EditMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", EditDuplicate:
		return EditDuplicate, nil
	case EditReplace:
		return EditReplace, nil
	}
	return "", fmt.Errorf("unknown edit mode %q: want %q or %q", s, EditDuplicate, EditReplace)
}

// Service validates drafts and commits them to a store.
type Service struct {
	store    storage.Storage
	validate *validation.Validator
	editMode EditMode
	log      *slog.Logger
}

// NewService wires a service. A nil logger falls back to slog.Default.
func NewService(store storage.Storage, v *validation.Validator, mode EditMode, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, validate: v, editMode: mode, log: log}
}

// EditMode returns the configured edit policy.
func (svc *Service) EditMode() EditMode {
	return svc.editMode
}

// Validate trims the draft's text fields and runs every rule. The cleaned
// draft is returned even when validation fails.
func (svc *Service) Validate(d types.Draft) (types.Draft, error) {
	d = Clean(d)
	return d, svc.validate.Draft(d)
}

// Submit validates d and commits it. editingID is the id the draft was
// loaded from by an edit, or "" for a fresh draft. The returned id is the
// committed record's id, which is new unless the service is in replace
// mode and the edited record still exists.
func (svc *Service) Submit(d types.Draft, editingID string) (string, error) {
	d, err := svc.Validate(d)
	if err != nil {
		return "", err
	}

	if editingID != "" && svc.editMode == EditReplace {
		rec, err := svc.store.Replace(editingID, d)
		switch {
		case err == nil:
			svc.log.Info("student replaced", slog.String("id", rec.ID))
			return rec.ID, nil
		case errors.Is(err, storage.ErrNotFound):
			// deleted while being edited: commit as new
			svc.log.Debug("edited student no longer exists, creating", slog.String("id", editingID))
		default:
			return "", fmt.Errorf("registration.Submit: replace: %w", err)
		}
	}

	id, err := svc.store.Submit(d)
	if err != nil {
		return "", fmt.Errorf("registration.Submit: %w", err)
	}
	svc.log.Info("student registered", slog.String("token", id))
	return id, nil
}

// Replace validates d and overwrites the record with the id, regardless
// of the edit mode. storage.ErrNotFound is returned for an absent id.
func (svc *Service) Replace(id string, d types.Draft) (types.StudentRecord, error) {
	d, err := svc.Validate(d)
	if err != nil {
		return types.StudentRecord{}, err
	}
	return svc.store.Replace(id, d)
}

// Delete removes a record. An absent id is not an error.
func (svc *Service) Delete(id string) error {
	return svc.store.Delete(id)
}

// List returns the committed records in insertion order.
func (svc *Service) List() ([]types.StudentRecord, error) {
	return svc.store.List()
}

// BeginEdit returns the fields of a committed record for re-populating
// the form.
func (svc *Service) BeginEdit(id string) (types.Draft, bool, error) {
	return svc.store.BeginEdit(id)
}

// Photo returns the photo of a committed record, or "" if the id is
// absent.
func (svc *Service) Photo(id string) (string, error) {
	d, ok, err := svc.store.BeginEdit(id)
	if err != nil || !ok {
		return "", err
	}
	return d.Photo, nil
}

// Clean trims surrounding whitespace from the free-text fields.
func Clean(d types.Draft) types.Draft {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)
	d.Phone = strings.TrimSpace(d.Phone)
	return d
}
