// Package storagetest holds the behaviour every storage.Storage backend
// must show. Backend packages call Run from their own tests.
package storagetest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-registration/internal/storage"
	"github.com/aanand-mishra/student-registration/internal/types"
)

// Factory returns an empty store using newID to mint ids. A nil newID
// means the backend default.
type Factory func(t *testing.T, newID storage.IDFunc) storage.Storage

// Draft returns a valid draft whose fields are derived from name.
func Draft(name string) types.Draft {
	return types.Draft{
		Name:    name,
		Email:   name + "@example.com",
		Phone:   "555",
		Photo:   "data:image/png;base64,AAA=",
		Gender:  types.GenderFemale,
		Subject: "Physics",
	}
}

// SequentialIDs returns an IDFunc yielding id-1, id-2, ...
func SequentialIDs() storage.IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// Run exercises the contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("SubmitSingle", func(t *testing.T) {
		s := newStore(t, nil)
		ana := types.Draft{
			Name:    "Ana",
			Email:   "a@x.com",
			Phone:   "555",
			Gender:  types.GenderFemale,
			Subject: "Physics",
			Photo:   "data:image/png;base64,AAA=",
		}

		id, err := s.Submit(ana)
		require.NoError(t, err)
		assert.NotEmpty(t, id)

		list, err := s.List()
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, id, list[0].ID)
		assert.Equal(t, ana, list[0].Fields())
	})

	t.Run("SubmitManyDistinctIDsInOrder", func(t *testing.T) {
		s := newStore(t, nil)

		const n = 25
		seen := make(map[string]bool, n)
		ids := make([]string, 0, n)
		for i := 0; i < n; i++ {
			id, err := s.Submit(Draft(fmt.Sprintf("student%d", i)))
			require.NoError(t, err)
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
			ids = append(ids, id)
		}

		list, err := s.List()
		require.NoError(t, err)
		require.Len(t, list, n)
		for i, rec := range list {
			assert.Equal(t, ids[i], rec.ID)
			assert.Equal(t, fmt.Sprintf("student%d", i), rec.Name)
		}

		count, err := s.Len()
		require.NoError(t, err)
		assert.Equal(t, n, count)
	})

	t.Run("DeletePresent", func(t *testing.T) {
		s := newStore(t, SequentialIDs())
		for _, name := range []string{"a", "b", "c"} {
			_, err := s.Submit(Draft(name))
			require.NoError(t, err)
		}

		require.NoError(t, s.Delete("id-2"))

		list, err := s.List()
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "id-1", list[0].ID)
		assert.Equal(t, "id-3", list[1].ID)
	})

	t.Run("DeleteAbsentIsNoop", func(t *testing.T) {
		s := newStore(t, nil)
		for _, name := range []string{"a", "b", "c"} {
			_, err := s.Submit(Draft(name))
			require.NoError(t, err)
		}
		before, err := s.List()
		require.NoError(t, err)

		require.NoError(t, s.Delete("no-such-id"))

		after, err := s.List()
		require.NoError(t, err)
		assert.Len(t, after, 3)
		assert.Equal(t, before, after)
	})

	t.Run("ListIsSnapshot", func(t *testing.T) {
		s := newStore(t, SequentialIDs())
		_, err := s.Submit(Draft("a"))
		require.NoError(t, err)
		_, err = s.Submit(Draft("b"))
		require.NoError(t, err)

		snapshot, err := s.List()
		require.NoError(t, err)

		require.NoError(t, s.Delete("id-1"))
		_, err = s.Submit(Draft("c"))
		require.NoError(t, err)
		_, err = s.Replace("id-2", Draft("changed"))
		require.NoError(t, err)

		require.Len(t, snapshot, 2)
		assert.Equal(t, "id-1", snapshot[0].ID)
		assert.Equal(t, "a", snapshot[0].Name)
		assert.Equal(t, "b", snapshot[1].Name)

		// and the other way round
		snapshot[0].Name = "mutated"
		list, err := s.List()
		require.NoError(t, err)
		assert.Equal(t, "changed", list[0].Name)
	})

	t.Run("BeginEditKeepsRecord", func(t *testing.T) {
		s := newStore(t, nil)
		orig := Draft("ana")
		id, err := s.Submit(orig)
		require.NoError(t, err)

		draft, ok, err := s.BeginEdit(id)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, orig, draft)

		// Re-submitting the unmodified draft duplicates the record.
		id2, err := s.Submit(draft)
		require.NoError(t, err)
		assert.NotEqual(t, id, id2)

		list, err := s.List()
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, id, list[0].ID)
		assert.Equal(t, orig, list[0].Fields())
		assert.Equal(t, id2, list[1].ID)
		assert.Equal(t, orig, list[1].Fields())
	})

	t.Run("BeginEditAbsent", func(t *testing.T) {
		s := newStore(t, nil)
		draft, ok, err := s.BeginEdit("missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, types.Draft{}, draft)
	})

	t.Run("ReplaceKeepsIDAndPosition", func(t *testing.T) {
		s := newStore(t, SequentialIDs())
		for _, name := range []string{"a", "b", "c"} {
			_, err := s.Submit(Draft(name))
			require.NoError(t, err)
		}

		rec, err := s.Replace("id-2", Draft("bee"))
		require.NoError(t, err)
		assert.Equal(t, "id-2", rec.ID)
		assert.Equal(t, "bee", rec.Name)

		list, err := s.List()
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []string{"a", "bee", "c"}, []string{list[0].Name, list[1].Name, list[2].Name})
		assert.Equal(t, "id-2", list[1].ID)
	})

	t.Run("ReplaceAbsent", func(t *testing.T) {
		s := newStore(t, nil)
		_, err := s.Replace("missing", Draft("x"))
		assert.ErrorIs(t, err, storage.ErrNotFound)

		n, err := s.Len()
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("EmptyListIsNotNil", func(t *testing.T) {
		s := newStore(t, nil)
		list, err := s.List()
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})
}
