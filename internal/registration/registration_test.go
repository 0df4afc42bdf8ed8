package registration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-registration/internal/registration"
	"github.com/aanand-mishra/student-registration/internal/storage"
	"github.com/aanand-mishra/student-registration/internal/storage/memory"
	"github.com/aanand-mishra/student-registration/internal/storage/storagetest"
	"github.com/aanand-mishra/student-registration/internal/types"
	"github.com/aanand-mishra/student-registration/internal/validation"
)

func newService(t *testing.T, mode registration.EditMode) (*registration.Service, *memory.Memory) {
	t.Helper()
	store := memory.New(memory.WithIDFunc(storagetest.SequentialIDs()))
	return registration.NewService(store, validation.MustNew(), mode, nil), store
}

func TestParseEditMode(t *testing.T) {
	for in, want := range map[string]registration.EditMode{
		"":          registration.EditDuplicate,
		"duplicate": registration.EditDuplicate,
		" Replace ": registration.EditReplace,
		"replace":   registration.EditReplace,
	} {
		got, err := registration.ParseEditMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := registration.ParseEditMode("upsert")
	assert.Error(t, err)
}

func TestSubmitScenario(t *testing.T) {
	svc, _ := newService(t, registration.EditDuplicate)
	ana := types.Draft{
		Name:    "Ana",
		Email:   "a@x.com",
		Phone:   "555",
		Gender:  types.GenderFemale,
		Subject: "Physics",
		Photo:   "data:image/png;base64,AAA=",
	}

	id, err := svc.Submit(ana, "")
	require.NoError(t, err)

	list, err := svc.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.Equal(t, ana, list[0].Fields())
}

func TestSubmitInvalidNeverReachesStore(t *testing.T) {
	svc, store := newService(t, registration.EditDuplicate)

	d := storagetest.Draft("ana")
	d.Photo = ""

	_, err := svc.Submit(d, "")
	verr, ok := validation.AsError(err)
	require.True(t, ok)
	assert.Contains(t, verr.Map(), "photo")

	n, err := store.Len()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSubmitTrimsText(t *testing.T) {
	svc, _ := newService(t, registration.EditDuplicate)
	d := storagetest.Draft("ana")
	d.Name = "  Ana  "
	d.Email = " ana@example.com "

	id, err := svc.Submit(d, "")
	require.NoError(t, err)

	got, ok, err := svc.BeginEdit(id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Ana", got.Name)
	assert.Equal(t, "ana@example.com", got.Email)
}

func TestEditDuplicateMode(t *testing.T) {
	svc, _ := newService(t, registration.EditDuplicate)

	id, err := svc.Submit(storagetest.Draft("ana"), "")
	require.NoError(t, err)

	draft, ok, err := svc.BeginEdit(id)
	require.NoError(t, err)
	require.True(t, ok)

	id2, err := svc.Submit(draft, id)
	require.NoError(t, err)
	assert.NotEqual(t, id, id2)

	list, err := svc.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, list[0].Fields(), list[1].Fields())
}

func TestEditReplaceMode(t *testing.T) {
	svc, _ := newService(t, registration.EditReplace)

	id, err := svc.Submit(storagetest.Draft("ana"), "")
	require.NoError(t, err)
	_, err = svc.Submit(storagetest.Draft("bob"), "")
	require.NoError(t, err)

	draft, ok, err := svc.BeginEdit(id)
	require.NoError(t, err)
	require.True(t, ok)
	draft.Phone = "777"

	got, err := svc.Submit(draft, id)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	list, err := svc.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, id, list[0].ID)
	assert.Equal(t, "777", list[0].Phone)
}

func TestEditReplaceModeAfterDelete(t *testing.T) {
	svc, _ := newService(t, registration.EditReplace)

	id, err := svc.Submit(storagetest.Draft("ana"), "")
	require.NoError(t, err)
	draft, _, err := svc.BeginEdit(id)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(id))

	id2, err := svc.Submit(draft, id)
	require.NoError(t, err)
	assert.NotEqual(t, id, id2)

	list, err := svc.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id2, list[0].ID)
}

func TestReplace(t *testing.T) {
	svc, _ := newService(t, registration.EditDuplicate)

	_, err := svc.Replace("missing", storagetest.Draft("x"))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	id, err := svc.Submit(storagetest.Draft("ana"), "")
	require.NoError(t, err)

	bad := storagetest.Draft("ana")
	bad.Email = "nope"
	_, err = svc.Replace(id, bad)
	_, ok := validation.AsError(err)
	assert.True(t, ok)

	rec, err := svc.Replace(id, storagetest.Draft("anna"))
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "anna", rec.Name)
}

func TestPhoto(t *testing.T) {
	svc, _ := newService(t, registration.EditDuplicate)

	id, err := svc.Submit(storagetest.Draft("ana"), "")
	require.NoError(t, err)

	uri, err := svc.Photo(id)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAA=", uri)

	uri, err = svc.Photo("missing")
	require.NoError(t, err)
	assert.Empty(t, uri)
}
