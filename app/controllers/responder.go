package controllers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"socialfeed/app/apperror"
	"socialfeed/app/logger"
)

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// sendError writes err as {message, error}. Internal errors are logged with
// their cause and reach the client as a generic message.
func sendError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	appErr := apperror.From(err)
	if appErr.Type == apperror.InternalError {
		log.Error("HTTP request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err.Error())
	}
	apperror.Write(w, appErr)
}

// decodeJSON decodes the request body into v; malformed bodies are a 400.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperror.NewBadRequest("Invalid JSON body", err)
	}
	return nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func requestTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
