package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-registration/internal/types"
	"github.com/aanand-mishra/student-registration/internal/validation"
)

func validDraft() types.Draft {
	return types.Draft{
		Name:    "Ana",
		Email:   "a@x.com",
		Phone:   "555",
		Photo:   "data:image/png;base64,AAA=",
		Gender:  types.GenderFemale,
		Subject: "Physics",
	}
}

func newValidator(t *testing.T) *validation.Validator {
	t.Helper()
	v, err := validation.New()
	require.NoError(t, err)
	return v
}

func TestMustNew(t *testing.T) {
	assert.NotPanics(t, func() { validation.MustNew() })
}

func TestDraftValid(t *testing.T) {
	v := newValidator(t)
	assert.NoError(t, v.Draft(validDraft()))

	unset := validDraft()
	unset.Gender = types.GenderUnset
	assert.NoError(t, v.Draft(unset), "gender is optional")
}

func TestDraftFieldErrors(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name   string
		modify func(*types.Draft)
		field  string
		msg    string
	}{
		{"missing name", func(d *types.Draft) { d.Name = "" }, "name", "this field is required"},
		{"missing phone", func(d *types.Draft) { d.Phone = "" }, "phone", "this field is required"},
		{"bad email", func(d *types.Draft) { d.Email = "not-an-email" }, "email", "enter a valid email address"},
		{"no photo", func(d *types.Draft) { d.Photo = "" }, "photo", "this field is required"},
		{"photo not a data uri", func(d *types.Draft) { d.Photo = "http://x/y.png" }, "photo", "select an image file"},
		{"photo not an image", func(d *types.Draft) { d.Photo = "data:text/plain;base64,aGVsbG8=" }, "photo", "select an image file"},
		{"unknown subject", func(d *types.Draft) { d.Subject = "Alchemy" }, "subject", "choose a subject from the list"},
		{"no subject", func(d *types.Draft) { d.Subject = "" }, "subject", "this field is required"},
		{"bad gender", func(d *types.Draft) { d.Gender = "other" }, "gender", "gender must be male or female"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.modify(&d)

			err := v.Draft(d)
			verr, ok := validation.AsError(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, map[string]string{tt.field: tt.msg}, verr.Map())
		})
	}
}

func TestDraftReportsEveryField(t *testing.T) {
	err := newValidator(t).Draft(types.Draft{})
	verr, ok := validation.AsError(err)
	require.True(t, ok)

	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.Equal(t, []string{"name", "email", "phone", "photo", "subject"}, fields)
	assert.Contains(t, verr.Error(), "name: this field is required")
}
