package handler

import (
	"io"
	"net/http"

	"github.com/jobsphere/job-board/internal/media"
	"github.com/jobsphere/job-board/internal/middleware"
	"github.com/jobsphere/job-board/internal/server"

	"github.com/gorilla/mux"
)

// UploadMediaHandler accepts a multipart upload and stores the blob.
// Clients reference the returned id when attaching resumes or documents.
func UploadMediaHandler(svr server.Server, mediaRepo *media.Repository) http.HandlerFunc {
	return middleware.UserAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			maxBytes := svr.GetConfig().MaxUploadBytes
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			if err := r.ParseMultipartForm(maxBytes); err != nil {
				svr.JSON(w, http.StatusRequestEntityTooLarge, map[string]string{"status": "error", "message": "file too large"})
				return
			}
			file, header, err := r.FormFile("file")
			if err != nil {
				svr.JSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "missing file"})
				return
			}
			defer file.Close()
			data, err := io.ReadAll(file)
			if err != nil {
				svr.Log(err, "unable to read uploaded file")
				svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
				return
			}
			contentType := header.Header.Get("Content-Type")
			if contentType == "" {
				contentType = http.DetectContentType(data)
			}
			mediaID, err := mediaRepo.SaveMedia(media.Media{
				Bytes:     data,
				MediaType: contentType,
				FileName:  header.Filename,
			})
			if err != nil {
				svr.Log(err, "unable to save media")
				svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
				return
			}
			svr.JSON(w, http.StatusCreated, map[string]string{"status": "ok", "id": mediaID})
		})
}

func RetrieveMediaHandler(svr server.Server, mediaRepo *media.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		m, err := mediaRepo.MediaByID(vars["id"])
		if err != nil {
			svr.JSON(w, http.StatusNotFound, map[string]string{"status": "error", "message": "media not found"})
			return
		}
		svr.MEDIA(w, http.StatusOK, m.Bytes, m.MediaType)
	}
}
