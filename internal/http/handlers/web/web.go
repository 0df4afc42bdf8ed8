// Package web serves the server-rendered registration form and dashboard.
//
// Each browser gets its own workflow.State (see package session). A POST
// performs whatever store call it needs through the registration service,
// dispatches the outcome to the reducer, and redirects back to "/", which
// renders whichever view the state is in.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/aanand-mishra/student-registration/internal/http/session"
	"github.com/aanand-mishra/student-registration/internal/photo"
	"github.com/aanand-mishra/student-registration/internal/registration"
	"github.com/aanand-mishra/student-registration/internal/types"
	"github.com/aanand-mishra/student-registration/internal/validation"
	"github.com/aanand-mishra/student-registration/internal/workflow"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	// photoURL lets html/template emit a data URI in src; anything that is
	// not an image data URI is dropped.
	"photoURL": func(s string) template.URL {
		if !strings.HasPrefix(s, "data:image/") {
			return ""
		}
		return template.URL(s)
	},
	"genderChecked": func(d types.Draft, g types.Gender) bool { return d.Gender == g },
}

// Handler holds the dependencies of the HTML pages.
type Handler struct {
	svc           *registration.Service
	sessions      *session.Manager
	maxPhotoBytes int64
	tmpl          *template.Template
}

// NewHandler parses the embedded templates.
func NewHandler(svc *registration.Service, sessions *session.Manager, maxPhotoBytes int64) (*Handler, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Handler{
		svc:           svc,
		sessions:      sessions,
		maxPhotoBytes: maxPhotoBytes,
		tmpl:          tmpl,
	}, nil
}

// Register adds the page routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("POST /register", h.Submit)
	mux.HandleFunc("POST /students/new", h.AddNew)
	mux.HandleFunc("POST /students/{id}/edit", h.Edit)
	mux.HandleFunc("POST /students/{id}/delete", h.Delete)
	mux.HandleFunc("POST /students/{id}/preview", h.Preview)
	mux.HandleFunc("POST /preview/close", h.ClosePreview)
	mux.HandleFunc("POST /success/dismiss", h.DismissSuccess)
}

type page struct {
	State    workflow.State
	Students []types.StudentRecord
	Subjects []types.Subject
	Genders  []types.Gender

	// ReplacesOnSubmit is set while editing in replace mode, where the
	// submit overwrites the record instead of adding a copy.
	ReplacesOnSubmit bool
}

// Index renders the form or the dashboard. A browser without a session
// sees the empty form; the session is only created by its first POST.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	state := workflow.Initial()
	if key, ok := h.sessions.Lookup(r); ok {
		state = h.sessions.State(key)
	}

	p := page{
		State:            state,
		Subjects:         types.Subjects,
		Genders:          types.Genders,
		ReplacesOnSubmit: state.EditingID != "" && h.svc.EditMode() == registration.EditReplace,
	}
	if state.View == workflow.Dashboard {
		students, err := h.svc.List()
		if err != nil {
			h.fail(w, "listing students", err)
			return
		}
		p.Students = students
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, "index.html", p); err != nil {
		slog.Error("render failed", slog.String("error", err.Error()))
	}
}

// Submit handles the registration form. The text fields are kept even
// when the photo cannot be read, so a failed read only costs the user the
// file: the form comes back filled in, with the reason next to the photo.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	key := h.sessions.Key(w, r)

	sub, err := h.readSubmission(w, r)
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		sub.photoSent, sub.photoErr = true, photo.ErrTooLarge
	case err != nil:
		slog.Info("unreadable registration form", slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	actions := []workflow.Action{
		workflow.FieldChanged{Field: workflow.FieldName, Value: sub.fields.Get(workflow.FieldName)},
		workflow.FieldChanged{Field: workflow.FieldEmail, Value: sub.fields.Get(workflow.FieldEmail)},
		workflow.FieldChanged{Field: workflow.FieldPhone, Value: sub.fields.Get(workflow.FieldPhone)},
		workflow.FieldChanged{Field: workflow.FieldSubject, Value: sub.fields.Get(workflow.FieldSubject)},
	}
	for _, g := range sub.fields[workflow.FieldGender] {
		actions = append(actions, workflow.GenderToggled{Gender: types.Gender(g), Checked: true})
	}
	state := h.sessions.Dispatch(key, actions...)

	if sub.photoSent {
		h.sessions.Dispatch(key, workflow.PhotoSelected{})
		if sub.photoErr != nil {
			slog.Info("photo rejected",
				slog.String("file", sub.filename),
				slog.String("error", sub.photoErr.Error()))
			h.sessions.Dispatch(key, workflow.PhotoFailed{Reason: photoReason(sub.photoErr)})
			h.home(w, r)
			return
		}
		state = h.sessions.Dispatch(key, workflow.PhotoLoaded{DataURI: sub.photoURI})
	}

	if state.View != workflow.Editing || state.PhotoPending {
		h.home(w, r)
		return
	}

	id, err := h.svc.Submit(state.Draft, state.EditingID)
	if err != nil {
		if verr, ok := validation.AsError(err); ok {
			h.sessions.Dispatch(key, workflow.SubmitRejected{Errors: verr.Map()})
			h.home(w, r)
			return
		}
		h.fail(w, "submitting student", err)
		return
	}

	h.sessions.Dispatch(key, workflow.Submitted{ID: id})
	h.home(w, r)
}

// maxFieldBytes caps a single text field of the form.
const maxFieldBytes = 64 << 10

var errFieldTooLarge = errors.New("form field is too large")

// submission is what readSubmission got out of the request body.
type submission struct {
	fields url.Values

	photoSent bool
	filename  string
	photoURI  string
	photoErr  error
}

// readSubmission streams the form part by part instead of buffering it
// with ParseMultipartForm. Fields read before a failure are returned along
// with the error, and a photo that cannot be converted is reported in
// photoErr rather than as an error.
func (h *Handler) readSubmission(w http.ResponseWriter, r *http.Request) (submission, error) {
	sub := submission{fields: url.Values{}}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxPhotoBytes+1<<20)

	mr, err := r.MultipartReader()
	if errors.Is(err, http.ErrNotMultipart) {
		if err := r.ParseForm(); err != nil {
			return sub, err
		}
		sub.fields = r.PostForm
		return sub, nil
	}
	if err != nil {
		return sub, err
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return sub, nil
		}
		if err != nil {
			return sub, err
		}

		switch {
		case part.FileName() == "":
			// A file input left empty arrives as a part without a file name.
			if part.FormName() == workflow.FieldPhoto {
				break
			}
			value, err := io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
			if err != nil {
				part.Close()
				return sub, err
			}
			if len(value) > maxFieldBytes {
				part.Close()
				return sub, fmt.Errorf("%s: %w", part.FormName(), errFieldTooLarge)
			}
			sub.fields.Add(part.FormName(), string(value))
		case part.FormName() == workflow.FieldPhoto:
			sub.photoSent = true
			sub.filename = part.FileName()
			sub.photoURI, sub.photoErr = photo.ToDataURI(part, h.maxPhotoBytes)
		}

		// Close drains the rest of the part. An oversized body surfaces
		// as a MaxBytesError from the next NextPart.
		part.Close()
	}
}

// AddNew is the dashboard's "Add New Student" button.
func (h *Handler) AddNew(w http.ResponseWriter, r *http.Request) {
	h.sessions.Dispatch(h.sessions.Key(w, r), workflow.AddNewRequested{})
	h.home(w, r)
}

// Edit loads a record into the form. An id that is no longer in the
// collection leaves the dashboard as it is.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	key := h.sessions.Key(w, r)
	id := r.PathValue("id")

	draft, ok, err := h.svc.BeginEdit(id)
	if err != nil {
		h.fail(w, "loading student", err)
		return
	}
	if ok {
		slog.Info("editing student", slog.String("id", id))
		h.sessions.Dispatch(key, workflow.EditStarted{ID: id, Draft: draft})
	}
	h.home(w, r)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	h.sessions.Key(w, r)
	id := r.PathValue("id")

	if err := h.svc.Delete(id); err != nil {
		h.fail(w, "deleting student", err)
		return
	}
	slog.Info("student deleted", slog.String("id", id))
	h.home(w, r)
}

// Preview opens the photo modal for a record.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	key := h.sessions.Key(w, r)

	uri, err := h.svc.Photo(r.PathValue("id"))
	if err != nil {
		h.fail(w, "loading photo", err)
		return
	}
	if uri != "" {
		h.sessions.Dispatch(key, workflow.PreviewOpened{Photo: uri})
	}
	h.home(w, r)
}

func (h *Handler) ClosePreview(w http.ResponseWriter, r *http.Request) {
	h.sessions.Dispatch(h.sessions.Key(w, r), workflow.PreviewClosed{})
	h.home(w, r)
}

func (h *Handler) DismissSuccess(w http.ResponseWriter, r *http.Request) {
	h.sessions.Dispatch(h.sessions.Key(w, r), workflow.SuccessDismissed{})
	h.home(w, r)
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	slog.Error(op, slog.String("error", err.Error()))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func photoReason(err error) string {
	switch {
	case errors.Is(err, photo.ErrTooLarge):
		return "the photo is too large"
	case errors.Is(err, photo.ErrNotImage):
		return "the selected file is not an image"
	case errors.Is(err, photo.ErrEmpty):
		return "the selected file is empty"
	}
	return "the photo could not be read, try again"
}
