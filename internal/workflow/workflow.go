// Package workflow is the registration-to-dashboard state machine written
// as a reducer: Reduce(state, action) returns the next state and never
// touches the input, a store, or anything that renders.
//
// Store calls happen outside the reducer. The caller performs them and
// dispatches their outcome (Submitted carries the minted id, EditStarted
// carries the fields read by BeginEdit), so every transition stays a pure
// function that can be tested on its own.
package workflow

import (
	"maps"

	"github.com/aanand-mishra/student-registration/internal/types"
)

// View is which screen is showing.
type View int

const (
	Editing View = iota
	Dashboard
)

func (v View) String() string {
	switch v {
	case Editing:
		return "editing"
	case Dashboard:
		return "dashboard"
	}
	return "unknown"
}

// Form field names, as used by FieldChanged and in State.Errors.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldPhone   = "phone"
	FieldPhoto   = "photo"
	FieldGender  = "gender"
	FieldSubject = "subject"
)

// State is the whole view state of one user.
type State struct {
	View  View
	Draft types.Draft

	// EditingID is the id whose fields were loaded into Draft by the Edit
	// action. It is empty for a fresh draft.
	EditingID string

	// PhotoPending is set while a selected file is being read. The draft
	// cannot be submitted until the read completes or fails.
	PhotoPending bool

	// Token is the id minted by the most recent submit.
	Token       string
	ShowSuccess bool

	// PreviewPhoto is the data URI shown in the preview modal, if any.
	PreviewPhoto string

	// Errors maps a field name to the message shown next to it.
	Errors map[string]string
}

// Initial is the state of a user who has just arrived: an empty form.
func Initial() State {
	return State{View: Editing}
}

// CanSubmit reports whether the draft may be handed to the registration
// service. A pending photo read, or no photo at all, blocks submission.
func CanSubmit(s State) bool {
	return s.View == Editing && !s.PhotoPending && s.Draft.Photo != ""
}

// Action is implemented by every event the reducer understands.
type Action interface {
	action()
}

type (
	// FieldChanged sets one text or select field of the draft.
	FieldChanged struct {
		Field string
		Value string
	}

	// GenderToggled mirrors a gender checkbox. Checking one sets the
	// gender; unchecking leaves it as it was.
	GenderToggled struct {
		Gender  types.Gender
		Checked bool
	}

	// PhotoSelected marks the start of a file read.
	PhotoSelected struct{}

	// PhotoLoaded carries the finished read.
	PhotoLoaded struct {
		DataURI string
	}

	// PhotoFailed reports a read or decode failure.
	PhotoFailed struct {
		Reason string
	}

	// SubmitRejected carries validation failures for inline display.
	SubmitRejected struct {
		Errors map[string]string
	}

	// Submitted carries the id the store minted for the committed draft.
	Submitted struct {
		ID string
	}

	// AddNewRequested is the dashboard's "Add New Student" button.
	AddNewRequested struct{}

	// EditStarted carries the fields of the record chosen for editing.
	EditStarted struct {
		ID    string
		Draft types.Draft
	}

	PreviewOpened struct {
		Photo string
	}

	PreviewClosed struct{}

	SuccessDismissed struct{}
)

func (FieldChanged) action()     {}
func (GenderToggled) action()    {}
func (PhotoSelected) action()    {}
func (PhotoLoaded) action()      {}
func (PhotoFailed) action()      {}
func (SubmitRejected) action()   {}
func (Submitted) action()        {}
func (AddNewRequested) action()  {}
func (EditStarted) action()      {}
func (PreviewOpened) action()    {}
func (PreviewClosed) action()    {}
func (SuccessDismissed) action() {}

// Reduce returns the state that follows s after a. Unknown actions, and
// actions that make no sense in the current view, return s unchanged.
func Reduce(s State, a Action) State {
	// s is a copy; only the Errors map is shared with the caller.
	switch a := a.(type) {
	case FieldChanged:
		if s.View != Editing {
			return s
		}
		switch a.Field {
		case FieldName:
			s.Draft.Name = a.Value
		case FieldEmail:
			s.Draft.Email = a.Value
		case FieldPhone:
			s.Draft.Phone = a.Value
		case FieldSubject:
			s.Draft.Subject = types.Subject(a.Value)
		case FieldGender:
			s.Draft.Gender = types.Gender(a.Value)
		default:
			return s
		}
		s.Errors = without(s.Errors, a.Field)

	case GenderToggled:
		if s.View != Editing || !a.Checked {
			return s
		}
		s.Draft.Gender = a.Gender
		s.Errors = without(s.Errors, FieldGender)

	case PhotoSelected:
		if s.View != Editing {
			return s
		}
		s.PhotoPending = true
		s.Draft.Photo = ""
		s.Errors = without(s.Errors, FieldPhoto)

	case PhotoLoaded:
		if !s.PhotoPending {
			return s
		}
		s.PhotoPending = false
		s.Draft.Photo = a.DataURI

	case PhotoFailed:
		if !s.PhotoPending {
			return s
		}
		s.PhotoPending = false
		s.Draft.Photo = ""
		s.Errors = with(s.Errors, FieldPhoto, a.Reason)

	case SubmitRejected:
		if s.View != Editing {
			return s
		}
		s.Errors = maps.Clone(a.Errors)

	case Submitted:
		if s.View != Editing {
			return s
		}
		s.View = Dashboard
		s.Draft = types.Draft{}
		s.EditingID = ""
		s.PhotoPending = false
		s.Errors = nil
		s.Token = a.ID
		s.ShowSuccess = true

	case AddNewRequested:
		if s.View != Dashboard {
			return s
		}
		s.View = Editing
		s.Draft = types.Draft{}
		s.EditingID = ""
		s.Errors = nil
		s.ShowSuccess = false

	case EditStarted:
		if s.View != Dashboard {
			return s
		}
		s.View = Editing
		s.Draft = a.Draft
		s.EditingID = a.ID
		s.Errors = nil
		s.ShowSuccess = false
		s.PreviewPhoto = ""

	case PreviewOpened:
		if s.View != Dashboard {
			return s
		}
		s.PreviewPhoto = a.Photo

	case PreviewClosed:
		s.PreviewPhoto = ""

	case SuccessDismissed:
		s.ShowSuccess = false
	}
	return s
}

func with(m map[string]string, k, v string) map[string]string {
	out := make(map[string]string, len(m)+1)
	maps.Copy(out, m)
	out[k] = v
	return out
}

func without(m map[string]string, k string) map[string]string {
	if _, ok := m[k]; !ok {
		return m
	}
	out := maps.Clone(m)
	delete(out, k)
	return out
}
