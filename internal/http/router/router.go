// Package router assembles the route table: the JSON API under /api and
// the HTML pages everywhere else.
package router

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"

	"github.com/aanand-mishra/student-registration/internal/http/handlers/student"
	"github.com/aanand-mishra/student-registration/internal/http/handlers/web"
	"github.com/aanand-mishra/student-registration/internal/http/session"
	"github.com/aanand-mishra/student-registration/internal/registration"
)

// Options carries what the routes need beyond the service.
type Options struct {
	MaxPhotoBytes  int64
	AllowedOrigins []string
	Logger         *slog.Logger
}

// New returns the application handler.
//
// Route table:
//
//	POST   /api/students        register a student, returns its token
//	GET    /api/students        list students in registration order
//	GET    /api/students/{id}   fields of one student (for editing)
//	PUT    /api/students/{id}   replace a student's fields in place
//	DELETE /api/students/{id}   delete a student (absent id is fine)
//	POST   /api/photos          convert an image upload to a data URI
//	GET    /api/subjects        subject catalog
//	GET    /                    form or dashboard, per session
func New(svc *registration.Service, sessions *session.Manager, opts Options) (http.Handler, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	api := http.NewServeMux()
	api.HandleFunc("POST /api/students", student.New(svc))
	api.HandleFunc("GET /api/students", student.GetList(svc))
	api.HandleFunc("GET /api/students/{id}", student.GetByID(svc))
	api.HandleFunc("PUT /api/students/{id}", student.Update(svc))
	api.HandleFunc("DELETE /api/students/{id}", student.Delete(svc))
	api.HandleFunc("POST /api/photos", student.UploadPhoto(opts.MaxPhotoBytes))
	api.HandleFunc("GET /api/subjects", student.Subjects())

	pages, err := web.NewHandler(svc, sessions, opts.MaxPhotoBytes)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", cors(api, opts.AllowedOrigins))
	pages.Register(mux)

	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{opts.Logger}),
	)
	return recovery(mux), nil
}

func cors(h http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		return h
	}
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(h)
}

// recoveryLogger adapts slog to handlers.RecoveryHandlerLogger.
type recoveryLogger struct {
	log *slog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.log.Error("panic recovered", slog.Any("panic", v))
}
