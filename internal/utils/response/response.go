// Package response provides helpers for writing consistent JSON HTTP
// responses.
//
// Success responses may be any JSON shape (an id, a record, a list).
// Error responses always look like:
//
//	{ "status": "error", "error": "email: enter a valid email address",
//	  "fields": { "email": "enter a valid email address" } }
//
// fields is present only for validation failures.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/aanand-mishra/student-registration/internal/validation"
)

// Response is the standard envelope returned for error cases.
type Response struct {
	Status string            `json:"status"`
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes data as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any error into the standard shape.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ValidationError turns per-field failures into the standard shape, with
// the individual messages keyed by field name.
func ValidationError(verr *validation.Error) Response {
	return Response{
		Status: StatusError,
		Error:  verr.Error(),
		Fields: verr.Map(),
	}
}
