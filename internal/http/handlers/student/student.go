// Package student contains the JSON API handlers for the student resource.
//
// Every handler is built by a factory that receives its dependencies and
// returns the http.HandlerFunc the router needs:
//
//	router.HandleFunc("POST /api/students", student.New(svc))
package student

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-registration/internal/storage"
	"github.com/aanand-mishra/student-registration/internal/types"
	"github.com/aanand-mishra/student-registration/internal/utils/response"
	"github.com/aanand-mishra/student-registration/internal/validation"
)

// Registrar is the part of registration.Service the handlers use.
type Registrar interface {
	Submit(d types.Draft, editingID string) (string, error)
	Replace(id string, d types.Draft) (types.StudentRecord, error)
	Delete(id string) error
	List() ([]types.StudentRecord, error)
	BeginEdit(id string) (types.Draft, bool, error)
}

// New handles POST /api/students.
//
// Request body:
//
//	{ "name": "Ana", "email": "a@x.com", "phone": "555", "gender": "female",
//	  "subject": "Physics", "photo": "data:image/png;base64,..." }
//
// Responds 201 with { "id": "<uuid>" }, the token minted for the record.
func New(svc Registrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		draft, ok := decodeDraft(w, r)
		if !ok {
			return
		}

		id, err := svc.Submit(draft, "")
		if err != nil {
			writeError(w, err)
			return
		}

		slog.Info("student created", slog.String("id", id))
		response.WriteJSON(w, http.StatusCreated, map[string]string{"id": id})
	}
}

// GetByID handles GET /api/students/{id}. It returns the record's fields
// without the id, ready to pre-fill a form.
func GetByID(svc Registrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("getting a student", slog.String("id", id))

		draft, ok, err := svc.BeginEdit(id)
		if err != nil {
			slog.Error("error getting student",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}
		if !ok {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(storage.ErrNotFound))
			return
		}

		response.WriteJSON(w, http.StatusOK, draft)
	}
}

// GetList handles GET /api/students. Records come back in registration
// order; an empty collection is [] rather than null.
func GetList(svc Registrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		students, err := svc.List()
		if err != nil {
			slog.Error("error getting students", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}
		if students == nil {
			students = []types.StudentRecord{}
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// Update handles PUT /api/students/{id}: an edit keyed by the existing id.
// The record keeps its id and its position in the list.
func Update(svc Registrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("updating a student", slog.String("id", id))

		draft, ok := decodeDraft(w, r)
		if !ok {
			return
		}

		updated, err := svc.Replace(id, draft)
		if err != nil {
			writeError(w, err)
			return
		}

		slog.Info("student updated", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// Delete handles DELETE /api/students/{id}. Deleting an id that is not in
// the collection succeeds the same way.
func Delete(svc Registrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("deleting a student", slog.String("id", id))

		if err := svc.Delete(id); err != nil {
			slog.Error("error deleting student",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// Subjects handles GET /api/subjects.
func Subjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, types.Subjects)
	}
}

func decodeDraft(w http.ResponseWriter, r *http.Request) (types.Draft, bool) {
	var draft types.Draft

	err := json.NewDecoder(r.Body).Decode(&draft)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return types.Draft{}, false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return types.Draft{}, false
	}
	return draft, true
}

// writeError maps service errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	if verr, ok := validation.AsError(err); ok {
		response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(verr))
		return
	}
	if errors.Is(err, storage.ErrNotFound) {
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
		return
	}
	slog.Error("request failed", slog.String("error", err.Error()))
	response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
}
