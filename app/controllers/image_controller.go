package controllers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"socialfeed/app/apperror"
	"socialfeed/app/logger"
	"socialfeed/app/storage"
)

// ImageController serves stored post images
type ImageController struct {
	store  storage.Store
	logger *logger.Logger
}

// NewImageController creates a new ImageController
func NewImageController(store storage.Store, logger *logger.Logger) *ImageController {
	return &ImageController{store: store, logger: logger}
}

// Show handles GET /images/{name}
func (ic *ImageController) Show(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	rc, err := ic.store.Open(r.Context(), name)
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
		sendError(w, r, ic.logger, apperror.NewNotFound("Image not found", err))
		return
	}
	if err != nil {
		sendError(w, r, ic.logger, err)
		return
	}
	defer rc.Close()

	rs, ok := rc.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(rc)
		if err != nil {
			sendError(w, r, ic.logger, err)
			return
		}
		rs = bytes.NewReader(data)
	}

	contentType, err := storage.ServedType(rs)
	if err != nil {
		sendError(w, r, ic.logger, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, name, time.Time{}, rs)
}
