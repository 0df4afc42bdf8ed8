package student

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-registration/internal/photo"
	"github.com/aanand-mishra/student-registration/internal/utils/response"
)

// PhotoField is the multipart field carrying the image file.
const PhotoField = "photo"

// UploadPhoto handles POST /api/photos. It converts the uploaded image to
// a data URI that clients put in the "photo" field of a student:
//
//	{ "photo": "data:image/jpeg;base64,..." }
func UploadPhoto(maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Leave room for the multipart envelope around the file itself.
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)

		file, _, err := r.FormFile(PhotoField)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.WriteJSON(w, http.StatusRequestEntityTooLarge, response.GeneralError(photo.ErrTooLarge))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("no photo uploaded")))
			return
		}
		defer file.Close()

		uri, err := photo.ToDataURI(file, maxBytes)
		switch {
		case errors.Is(err, photo.ErrTooLarge):
			response.WriteJSON(w, http.StatusRequestEntityTooLarge, response.GeneralError(err))
			return
		case err != nil:
			slog.Info("photo rejected", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string]string{"photo": uri})
	}
}
