// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// The database is always an in-memory one: every store opens a private
// shared-cache memory database named after a random UUID, so nothing is
// written to disk and the data disappears with the process (or Close).
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/student-registration/internal/storage"
	"github.com/aanand-mishra/student-registration/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the database/sql implementation of storage.Storage.
type SQLite struct {
	Db    *sql.DB
	newID storage.IDFunc
}

var _ storage.Storage = (*SQLite)(nil)

// Option configures a SQLite store.
type Option func(*SQLite)

// WithIDFunc replaces the id generator.
func WithIDFunc(fn storage.IDFunc) Option {
	return func(s *SQLite) { s.newID = fn }
}

// New opens a fresh in-memory database, creates the students table and
// returns a ready-to-use *SQLite.
func New(opts ...Option) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", storage.NewID())

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// A memory database lives only as long as one of its connections does.
	// Pin a single connection and never let it expire.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// seq keeps insertion order; id is the opaque token handed to callers.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			seq     INTEGER PRIMARY KEY AUTOINCREMENT,
			id      TEXT    NOT NULL UNIQUE,
			name    TEXT    NOT NULL,
			email   TEXT    NOT NULL,
			phone   TEXT    NOT NULL,
			photo   TEXT    NOT NULL,
			gender  TEXT    NOT NULL,
			subject TEXT    NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	s := &SQLite{Db: db, newID: storage.NewID}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the connection, which also drops the database.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// Submit inserts a new row with a freshly minted id.
//
// TWO KINDS OF ID:
// ────────────────
// seq is SQLite's own AUTOINCREMENT key. It only ever grows, so ORDER BY
// seq is registration order even after rows in the middle are deleted.
// id is the random token shown to the user; it says nothing about order
// and is never reused.
//
// The values go through ? placeholders, so a name like
// "'); DROP TABLE students; --" is stored as text, not run as SQL.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) Submit(draft types.Draft) (string, error) {
	stmt, err := s.Db.Prepare(
		"INSERT INTO students (id, name, email, phone, photo, gender, subject) VALUES (?, ?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return "", fmt.Errorf("Submit: prepare: %w", err)
	}
	defer stmt.Close()

	// Gender and Subject are string types; the driver wants plain strings.
	id := s.newID()
	_, err = stmt.Exec(id, draft.Name, draft.Email, draft.Phone, draft.Photo,
		string(draft.Gender), string(draft.Subject))
	if err != nil {
		return "", fmt.Errorf("Submit: exec: %w", err)
	}

	return id, nil
}

// Delete removes a row by id. Deleting an absent id affects no rows and is
// not an error.
func (s *SQLite) Delete(id string) error {
	stmt, err := s.Db.Prepare("DELETE FROM students WHERE id = ?")
	if err != nil {
		return fmt.Errorf("Delete: prepare: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.Exec(id); err != nil {
		return fmt.Errorf("Delete: exec: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// List returns all rows ordered by insertion.
//
// rows.Next() advances the cursor and must be followed by rows.Err():
// Next returns false both at the end of the result set and on a failed
// read, and only Err tells the two apart.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) List() ([]types.StudentRecord, error) {
	stmt, err := s.Db.Prepare(
		"SELECT id, name, email, phone, photo, gender, subject FROM students ORDER BY seq",
	)
	if err != nil {
		return nil, fmt.Errorf("List: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.Query()
	if err != nil {
		return nil, fmt.Errorf("List: query: %w", err)
	}
	defer rows.Close()

	// Non-nil so the JSON API encodes [] rather than null.
	records := make([]types.StudentRecord, 0)

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows iteration: %w", err)
	}

	return records, nil
}

// BeginEdit fetches the fields of one row.
func (s *SQLite) BeginEdit(id string) (types.Draft, bool, error) {
	rec, err := s.get(id)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Draft{}, false, nil
	}
	if err != nil {
		return types.Draft{}, false, fmt.Errorf("BeginEdit: %w", err)
	}
	return rec.Fields(), true, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Replace updates every field of a row except id and seq.
//
// Because seq is untouched the row keeps its place in List. An UPDATE
// that matches nothing is not an error in SQL, so RowsAffected is what
// turns an absent id into storage.ErrNotFound.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) Replace(id string, draft types.Draft) (types.StudentRecord, error) {
	stmt, err := s.Db.Prepare(
		"UPDATE students SET name = ?, email = ?, phone = ?, photo = ?, gender = ?, subject = ? WHERE id = ?",
	)
	if err != nil {
		return types.StudentRecord{}, fmt.Errorf("Replace: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(draft.Name, draft.Email, draft.Phone, draft.Photo,
		string(draft.Gender), string(draft.Subject), id)
	if err != nil {
		return types.StudentRecord{}, fmt.Errorf("Replace: exec: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return types.StudentRecord{}, fmt.Errorf("Replace: rows affected: %w", err)
	}
	if n == 0 {
		return types.StudentRecord{}, storage.ErrNotFound
	}

	return types.StudentRecord{ID: id, Draft: draft}, nil
}

// Len counts the rows.
func (s *SQLite) Len() (int, error) {
	var n int
	if err := s.Db.QueryRow("SELECT COUNT(*) FROM students").Scan(&n); err != nil {
		return 0, fmt.Errorf("Len: scan: %w", err)
	}
	return n, nil
}

func (s *SQLite) get(id string) (types.StudentRecord, error) {
	stmt, err := s.Db.Prepare(
		"SELECT id, name, email, phone, photo, gender, subject FROM students WHERE id = ? LIMIT 1",
	)
	if err != nil {
		return types.StudentRecord{}, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	return scanRecord(stmt.QueryRow(id))
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRecord reads the seven SELECT columns in order. sql.ErrNoRows is
// returned unwrapped so callers can compare against it.
func scanRecord(row scanner) (types.StudentRecord, error) {
	var (
		rec     types.StudentRecord
		gender  string
		subject string
	)
	err := row.Scan(
		&rec.ID,
		&rec.Name,
		&rec.Email,
		&rec.Phone,
		&rec.Photo,
		&gender,
		&subject,
	)
	if err != nil {
		return types.StudentRecord{}, err
	}
	rec.Gender = types.Gender(gender)
	rec.Subject = types.Subject(subject)
	return rec, nil
}
