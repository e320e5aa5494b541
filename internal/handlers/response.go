package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/secretapp/internal/logging"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

const (
	msgInternalError    = "Internal server error"
	msgInvalidBody      = "Invalid request body"
	msgNotAuthenticated = "Authentication required"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeInternalError logs err with the request path and answers 500.
func writeInternalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logInternal(r, msg, err)
	writeError(w, http.StatusInternalServerError, msgInternalError)
}

func logInternal(r *http.Request, msg string, err error) {
	logging.Error(msg, map[string]interface{}{
		"error":  err.Error(),
		"method": r.Method,
		"path":   r.URL.Path,
	})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(r.PathValue(name)))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
