package handlers

import (
	"errors"
	"net/http"

	"github.com/HammerMeetNail/secretapp/internal/models"
	"github.com/HammerMeetNail/secretapp/internal/services"
)

const (
	msgOneSecretOnly  = "You can only have one secret message."
	msgSecretEmpty    = "Secret message cannot be empty"
	msgSecretTooLong  = "Secret message is too long"
	msgSecretNotFound = "Secret not found"
)

type SecretHandler struct {
	secretService services.SecretServiceInterface
}

func NewSecretHandler(secretService services.SecretServiceInterface) *SecretHandler {
	return &SecretHandler{secretService: secretService}
}

type SecretRequest struct {
	Message string `json:"message"`
}

type SecretResponse struct {
	Secret *models.Secret `json:"secret"`
}

type SecretListResponse struct {
	Secrets []models.Secret `json:"secrets"`
}

func (h *SecretHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}

	secrets, err := h.secretService.ListByUser(r.Context(), user.ID)
	if err != nil {
		writeInternalError(w, r, "Error listing secrets", err)
		return
	}
	if secrets == nil {
		secrets = []models.Secret{}
	}

	writeJSON(w, http.StatusOK, SecretListResponse{Secrets: secrets})
}

func (h *SecretHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}

	var req SecretRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	secret, err := h.secretService.Create(r.Context(), user.ID, req.Message)
	if err != nil {
		h.writeSecretError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, SecretResponse{Secret: secret})
}

func (h *SecretHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}

	secretID, ok := parseUUIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid secret ID")
		return
	}

	var req SecretRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	secret, err := h.secretService.Update(r.Context(), user.ID, secretID, req.Message)
	if err != nil {
		h.writeSecretError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, SecretResponse{Secret: secret})
}

func (h *SecretHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}

	secretID, ok := parseUUIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid secret ID")
		return
	}

	if err := h.secretService.Delete(r.Context(), user.ID, secretID); err != nil {
		h.writeSecretError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Secret deleted"})
}

func (h *SecretHandler) writeSecretError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrSecretExists):
		writeError(w, http.StatusConflict, msgOneSecretOnly)
	case errors.Is(err, services.ErrSecretEmpty):
		writeError(w, http.StatusBadRequest, msgSecretEmpty)
	case errors.Is(err, services.ErrSecretTooLong):
		writeError(w, http.StatusBadRequest, msgSecretTooLong)
	case errors.Is(err, services.ErrSecretNotFound):
		writeError(w, http.StatusNotFound, msgSecretNotFound)
	default:
		writeInternalError(w, r, "Error handling secret", err)
	}
}
