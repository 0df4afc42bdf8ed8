package storage

import "github.com/google/uuid"

// NewID returns a random UUID v4 string. Collisions are treated as
// impossible; no retry is attempted.
func NewID() string {
	return uuid.NewString()
}
