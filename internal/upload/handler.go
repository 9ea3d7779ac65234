package upload

import (
	"net/http"

	"github.com/edulane/survey-backend/internal/config"
)

// maxUploadBytes caps reference-material uploads at 20 MiB.
const maxUploadBytes = 20 << 20

type Handler struct {
	storage *Storage
}

func NewHandler(storage *Storage) *Handler {
	return &Handler{storage: storage}
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		log.WithError(err).Warn("Invalid multipart upload")
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	info, err := h.storage.Save(header.Filename, file)
	if err != nil {
		log.WithError(err).Error("Failed to store upload")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.WithField("filename", info.Filename).WithField("size", info.Size).Info("File uploaded")
	config.JSON(w, http.StatusOK, info)
}
