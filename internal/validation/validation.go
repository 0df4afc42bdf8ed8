// Package validation wraps go-playground/validator with English
// translations so every failing field comes back as a short message that
// the form can show inline next to the offending input.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/aanand-mishra/student-registration/internal/types"
)

var (
	subjectTag  = "subject"
	subjectText = "choose a subject from the list"

	genderTag  = "gender"
	genderText = "gender must be male or female"

	datauriTag    = "datauri"
	startswithTag = "startswith"
	datauriText   = "select an image file"

	requiredTag  = "required"
	requiredText = "this field is required"

	emailTag  = "email"
	emailText = "enter a valid email address"
)

// FieldError is a validation failure on a single field, keyed by its JSON
// name.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// Error is returned when a draft fails validation. Fields is never empty.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Error)
	}
	return strings.Join(msgs, ", ")
}

// Map returns the field errors keyed by field name.
func (e *Error) Map() map[string]string {
	m := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		m[f.Field] = f.Error
	}
	return m
}

// NewError builds an *Error from field/message pairs.
func NewError(flds ...FieldError) error {
	return &Error{Fields: flds}
}

// AsError unwraps err into an *Error.
func AsError(err error) (*Error, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// Validator validates drafts. It is safe for concurrent use.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New returns a Validator with the custom tags and English messages
// registered. An error here means a tag or translation could not be
// registered, which is a programming error rather than bad input.
func New() (*Validator, error) {
	english := en.New()
	uni := ut.New(english, english)
	translator, found := uni.GetTranslator("en")
	if !found {
		return nil, errors.New("validation.New: no en translator")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		return nil, fmt.Errorf("validation.New: default translations: %w", err)
	}

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := validate.RegisterValidation(subjectTag, func(fl validator.FieldLevel) bool {
		return types.Subject(fl.Field().String()).Valid()
	}); err != nil {
		return nil, fmt.Errorf("validation.New: register %s: %w", subjectTag, err)
	}
	if err := validate.RegisterValidation(genderTag, func(fl validator.FieldLevel) bool {
		return types.Gender(fl.Field().String()).Valid()
	}); err != nil {
		return nil, fmt.Errorf("validation.New: register %s: %w", genderTag, err)
	}

	translations := []struct {
		tag, text string
		override  bool
	}{
		{subjectTag, subjectText, false},
		{genderTag, genderText, false},
		{datauriTag, datauriText, true},
		{startswithTag, datauriText, true},
		{requiredTag, requiredText, true},
		{emailTag, emailText, true},
	}
	for _, tr := range translations {
		if err := registerTranslation(validate, translator, tr.tag, tr.text, tr.override); err != nil {
			return nil, fmt.Errorf("validation.New: translate %s: %w", tr.tag, err)
		}
	}

	return &Validator{validate: validate, translator: translator}, nil
}

// MustNew is New for program startup: it panics instead of returning an
// error.
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Draft checks every rule on d. It returns nil or an *Error listing the
// failing fields in struct order.
func (v *Validator) Draft(d types.Draft) error {
	err := v.validate.Struct(d)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	flds := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		flds = append(flds, FieldError{Field: fe.Field(), Error: fe.Translate(v.translator)})
	}
	return &Error{Fields: flds}
}

// registerTranslation registers text as the message for tag.
func registerTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override bool) error {
	return validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}
