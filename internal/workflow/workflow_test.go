package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aanand-mishra/student-registration/internal/types"
	"github.com/aanand-mishra/student-registration/internal/workflow"
)

func reduceAll(s workflow.State, actions ...workflow.Action) workflow.State {
	for _, a := range actions {
		s = workflow.Reduce(s, a)
	}
	return s
}

func filledDraft() types.Draft {
	return types.Draft{
		Name:    "Ana",
		Email:   "a@x.com",
		Phone:   "555",
		Photo:   "data:image/png;base64,AAA=",
		Gender:  types.GenderFemale,
		Subject: "Physics",
	}
}

func TestInitialIsEmptyForm(t *testing.T) {
	s := workflow.Initial()
	assert.Equal(t, workflow.Editing, s.View)
	assert.Equal(t, types.Draft{}, s.Draft)
	assert.False(t, workflow.CanSubmit(s))
}

func TestFieldChanged(t *testing.T) {
	s := reduceAll(workflow.Initial(),
		workflow.FieldChanged{Field: workflow.FieldName, Value: "Ana"},
		workflow.FieldChanged{Field: workflow.FieldEmail, Value: "a@x.com"},
		workflow.FieldChanged{Field: workflow.FieldPhone, Value: "555"},
		workflow.FieldChanged{Field: workflow.FieldSubject, Value: "Physics"},
		workflow.FieldChanged{Field: "unknown", Value: "ignored"},
	)

	assert.Equal(t, "Ana", s.Draft.Name)
	assert.Equal(t, "a@x.com", s.Draft.Email)
	assert.Equal(t, "555", s.Draft.Phone)
	assert.Equal(t, types.Subject("Physics"), s.Draft.Subject)
}

func TestFieldChangedClearsItsError(t *testing.T) {
	s := workflow.Reduce(workflow.Initial(), workflow.SubmitRejected{Errors: map[string]string{
		"name":  "this field is required",
		"email": "this field is required",
	}})

	s = workflow.Reduce(s, workflow.FieldChanged{Field: workflow.FieldName, Value: "Ana"})
	assert.Equal(t, map[string]string{"email": "this field is required"}, s.Errors)
}

func TestGenderToggledLastCheckedWins(t *testing.T) {
	s := reduceAll(workflow.Initial(),
		workflow.GenderToggled{Gender: types.GenderMale, Checked: true},
		workflow.GenderToggled{Gender: types.GenderFemale, Checked: true},
	)
	assert.Equal(t, types.GenderFemale, s.Draft.Gender)

	s = workflow.Reduce(s, workflow.GenderToggled{Gender: types.GenderFemale, Checked: false})
	assert.Equal(t, types.GenderFemale, s.Draft.Gender, "unchecking leaves the gender")
}

func TestPhotoReadBlocksSubmitUntilLoaded(t *testing.T) {
	s := workflow.Initial()
	s.Draft = filledDraft()
	assert.True(t, workflow.CanSubmit(s))

	s = workflow.Reduce(s, workflow.PhotoSelected{})
	assert.True(t, s.PhotoPending)
	assert.Empty(t, s.Draft.Photo)
	assert.False(t, workflow.CanSubmit(s))

	s = workflow.Reduce(s, workflow.PhotoLoaded{DataURI: "data:image/gif;base64,R0lG"})
	assert.False(t, s.PhotoPending)
	assert.Equal(t, "data:image/gif;base64,R0lG", s.Draft.Photo)
	assert.True(t, workflow.CanSubmit(s))
}

func TestPhotoFailedLeavesPhotoEmpty(t *testing.T) {
	s := workflow.Initial()
	s.Draft = filledDraft()

	s = reduceAll(s,
		workflow.PhotoSelected{},
		workflow.PhotoFailed{Reason: "the selected file is not an image"},
	)
	assert.False(t, s.PhotoPending)
	assert.Empty(t, s.Draft.Photo)
	assert.Equal(t, "the selected file is not an image", s.Errors[workflow.FieldPhoto])
	assert.False(t, workflow.CanSubmit(s))

	// retry
	s = reduceAll(s,
		workflow.PhotoSelected{},
		workflow.PhotoLoaded{DataURI: "data:image/png;base64,AAA="},
	)
	assert.NotContains(t, s.Errors, workflow.FieldPhoto)
	assert.True(t, workflow.CanSubmit(s))
}

func TestPhotoLoadedWithoutSelectionIgnored(t *testing.T) {
	s := workflow.Reduce(workflow.Initial(), workflow.PhotoLoaded{DataURI: "data:image/png;base64,AAA="})
	assert.Empty(t, s.Draft.Photo)
}

func TestSubmittedMovesToDashboard(t *testing.T) {
	s := workflow.Initial()
	s.Draft = filledDraft()

	s = workflow.Reduce(s, workflow.Submitted{ID: "token-1"})
	assert.Equal(t, workflow.Dashboard, s.View)
	assert.Equal(t, types.Draft{}, s.Draft)
	assert.Equal(t, "token-1", s.Token)
	assert.True(t, s.ShowSuccess)

	s = workflow.Reduce(s, workflow.SuccessDismissed{})
	assert.False(t, s.ShowSuccess)
	assert.Equal(t, "token-1", s.Token)
}

func TestSubmittedOutsideEditingIgnored(t *testing.T) {
	s := workflow.State{View: workflow.Dashboard, Token: "old"}
	next := workflow.Reduce(s, workflow.Submitted{ID: "new"})
	assert.Equal(t, s, next)
}

func TestAddNewStartsEmpty(t *testing.T) {
	s := workflow.State{View: workflow.Dashboard, EditingID: "stale", Draft: filledDraft()}
	s = workflow.Reduce(s, workflow.AddNewRequested{})

	assert.Equal(t, workflow.Editing, s.View)
	assert.Equal(t, types.Draft{}, s.Draft)
	assert.Empty(t, s.EditingID)
}

func TestEditPrefillsDraft(t *testing.T) {
	s := workflow.State{View: workflow.Dashboard, PreviewPhoto: "data:image/png;base64,AAA="}
	s = workflow.Reduce(s, workflow.EditStarted{ID: "id-1", Draft: filledDraft()})

	assert.Equal(t, workflow.Editing, s.View)
	assert.Equal(t, filledDraft(), s.Draft)
	assert.Equal(t, "id-1", s.EditingID)
	assert.Empty(t, s.PreviewPhoto)
	assert.True(t, workflow.CanSubmit(s), "edited draft keeps its photo")

	s = workflow.Reduce(s, workflow.Submitted{ID: "id-2"})
	assert.Empty(t, s.EditingID)
}

func TestPreview(t *testing.T) {
	s := workflow.State{View: workflow.Dashboard}
	s = workflow.Reduce(s, workflow.PreviewOpened{Photo: "data:image/png;base64,AAA="})
	assert.Equal(t, "data:image/png;base64,AAA=", s.PreviewPhoto)

	s = workflow.Reduce(s, workflow.PreviewClosed{})
	assert.Empty(t, s.PreviewPhoto)

	form := workflow.Reduce(workflow.Initial(), workflow.PreviewOpened{Photo: "x"})
	assert.Empty(t, form.PreviewPhoto, "no preview from the form view")
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	errs := map[string]string{"name": "this field is required"}
	s := workflow.Reduce(workflow.Initial(), workflow.SubmitRejected{Errors: errs})

	errs["phone"] = "added later"
	assert.NotContains(t, s.Errors, "phone")

	before := s
	_ = workflow.Reduce(s, workflow.FieldChanged{Field: workflow.FieldName, Value: "Ana"})
	_ = workflow.Reduce(s, workflow.PhotoSelected{})
	_ = workflow.Reduce(s, workflow.PhotoFailed{Reason: "x"})
	assert.Equal(t, before, s)
	assert.Equal(t, map[string]string{"name": "this field is required"}, s.Errors)
}

func TestViewString(t *testing.T) {
	assert.Equal(t, "editing", workflow.Editing.String())
	assert.Equal(t, "dashboard", workflow.Dashboard.String())
}
