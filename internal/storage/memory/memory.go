// Package memory provides the default storage.Storage implementation: an
// ordered slice of records guarded by a read/write mutex.
//
// All state lives in the process. Nothing is written anywhere, and
// everything is lost when the process exits.
package memory

import (
	"sync"

	"github.com/aanand-mishra/student-registration/internal/storage"
	"github.com/aanand-mishra/student-registration/internal/types"
)

// Memory is the slice-backed store. The zero value is not usable; call New.
type Memory struct {
	mu      sync.RWMutex
	records []types.StudentRecord
	newID   storage.IDFunc
}

var _ storage.Storage = (*Memory)(nil)

// Option configures a Memory store.
type Option func(*Memory)

// WithIDFunc replaces the id generator. Tests use it to get predictable ids.
func WithIDFunc(fn storage.IDFunc) Option {
	return func(m *Memory) { m.newID = fn }
}

// New returns an empty store.
func New(opts ...Option) *Memory {
	m := &Memory{
		records: make([]types.StudentRecord, 0),
		newID:   storage.NewID,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ─────────────────────────────────────────────────────────────────────────────
// Submit appends the draft as a new record and returns its id.
//
// LOCKING:
// ────────
// Writers (Submit, Delete, Replace) take the write lock; readers (List,
// BeginEdit, Len) take the read lock, so any number of page renders can
// list at once while a submit waits for them. The id is minted before the
// lock is taken: the generator does not touch the slice.
// ─────────────────────────────────────────────────────────────────────────────
func (m *Memory) Submit(draft types.Draft) (string, error) {
	id := m.newID()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, types.StudentRecord{ID: id, Draft: draft})
	return id, nil
}

// Delete removes the record with id, keeping the others in order. An
// absent id leaves the slice untouched.
func (m *Memory) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.indexOf(id); i >= 0 {
		m.records = append(m.records[:i], m.records[i+1:]...)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// List copies the records out so callers never share the backing array.
//
// Returning m.records directly would hand out the slice the store keeps
// appending to and shifting on Delete; a caller ranging over it while
// another request deletes would see records move under its feet. The
// copy is a snapshot. StudentRecord holds only strings, so copying the
// structs copies everything.
// ─────────────────────────────────────────────────────────────────────────────
func (m *Memory) List() ([]types.StudentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.StudentRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

// BeginEdit returns the fields of the record with id. The record itself
// stays in the store.
func (m *Memory) BeginEdit(id string) (types.Draft, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.indexOf(id)
	if i < 0 {
		return types.Draft{}, false, nil
	}
	return m.records[i].Fields(), true, nil
}

// Replace overwrites the fields of the record with id in place, so it
// keeps both its id and its position.
func (m *Memory) Replace(id string, draft types.Draft) (types.StudentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return types.StudentRecord{}, storage.ErrNotFound
	}
	m.records[i].Draft = draft
	return m.records[i], nil
}

func (m *Memory) Len() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}

// indexOf must be called with mu held.
func (m *Memory) indexOf(id string) int {
	for i, rec := range m.records {
		if rec.ID == id {
			return i
		}
	}
	return -1
}
