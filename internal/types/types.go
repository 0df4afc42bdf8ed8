// Package types holds the shared data structures used across the
// application. Keeping them in one place prevents import cycles:
// handlers, storage, workflow and validation all import types without
// depending on each other.
package types

// Gender is the value picked with the two gender checkboxes on the form.
// The zero value means nothing has been checked yet.
type Gender string

const (
	GenderUnset  Gender = ""
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Genders lists the values a user can pick, in form order.
var Genders = []Gender{GenderMale, GenderFemale}

// Valid reports whether g is one of the known genders or unset.
func (g Gender) Valid() bool {
	switch g {
	case GenderUnset, GenderMale, GenderFemale:
		return true
	}
	return false
}

// Subject is one entry of the fixed subject catalog.
type Subject string

// Subjects is the catalog offered by the subject select, in display order.
var Subjects = []Subject{
	"Mathematics",
	"Physics",
	"Chemistry",
	"Biology",
	"Computer Science",
	"English",
	"History",
	"Geography",
}

// Valid reports whether s belongs to the catalog.
func (s Subject) Valid() bool {
	for _, known := range Subjects {
		if s == known {
			return true
		}
	}
	return false
}

// Draft is a student record without its id: the in-progress form data
// before it is committed, or the fields fed back into the form by an edit.
//
// The validate tags are checked by the registration service before the
// draft ever reaches a store. Stores never validate.
type Draft struct {
	Name    string  `json:"name"    validate:"required"`
	Email   string  `json:"email"   validate:"required,email"`
	Phone   string  `json:"phone"   validate:"required"`
	Photo   string  `json:"photo"   validate:"required,datauri,startswith=data:image/"`
	Gender  Gender  `json:"gender"  validate:"gender"`
	Subject Subject `json:"subject" validate:"required,subject"`
}

// StudentRecord is a committed record. The embedded Draft is flattened by
// encoding/json, so a record encodes as {...draft, "id": ...}.
type StudentRecord struct {
	ID string `json:"id"`
	Draft
}

// Fields returns the record's draft, i.e. everything except the id.
func (r StudentRecord) Fields() Draft {
	return r.Draft
}
