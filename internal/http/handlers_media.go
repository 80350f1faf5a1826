package httpapp

import (
	"errors"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/devsocial/devsocial/internal/media"
)

// handleUpload godoc
//
//	@Summary		Upload media
//	@Description	Accepts jpeg, png, gif, webp, mp4 and webm up to 20 MiB.
//	@Tags			Media
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file	formData	file	true	"Media file"
//	@Success		200		{object}	media.Upload
//	@Failure		400		{object}	map[string]string	"File type not allowed"
//	@Router			/api/upload [post]
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAuth(w, r); !ok {
		return
	}
	if s.media == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("uploads are disabled"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, media.MaxUploadSize+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.fail(w, r, media.ErrTooLarge, "")
			return
		}
		writeError(w, http.StatusBadRequest, errors.New("multipart field file is required"))
		return
	}
	defer file.Close()

	up, err := s.media.Save(file, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, up)
}

// handleServeUpload godoc
//
//	@Summary	Fetch uploaded media
//	@Tags		Media
//	@Param		name	path	string	true	"Stored file name"
//	@Success	200
//	@Failure	404	{object}	map[string]string
//	@Router		/api/uploads/{name} [get]
func (s *Server) handleServeUpload(w http.ResponseWriter, r *http.Request) {
	if s.media == nil {
		notFound(w)
		return
	}
	path, err := s.media.Path(mux.Vars(r)["name"])
	if err != nil {
		notFound(w)
		return
	}
	if _, err := os.Stat(path); err != nil {
		notFound(w)
		return
	}
	http.ServeFile(w, r, path)
}
