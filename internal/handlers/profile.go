package handlers

import (
	"errors"
	"net/http"

	"github.com/HammerMeetNail/secretapp/internal/models"
	"github.com/HammerMeetNail/secretapp/internal/services"
)

const (
	msgProfileEmpty = "Please enter at least a display name or bio."
	msgProfileSaved = "Profile updated successfully!"
)

type ProfileHandler struct {
	profileService services.ProfileServiceInterface
}

func NewProfileHandler(profileService services.ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

type ProfileResponse struct {
	Email   string          `json:"email"`
	Profile *models.Profile `json:"profile"`
	Exists  bool            `json:"exists"`
	Message string          `json:"message,omitempty"`
}

// Get returns the caller's profile, or empty fields when none exists yet.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}

	profile, err := h.profileService.Get(r.Context(), user.ID)
	if errors.Is(err, services.ErrProfileNotFound) {
		writeJSON(w, http.StatusOK, ProfileResponse{
			Email:   user.Email,
			Profile: &models.Profile{UserID: user.ID},
		})
		return
	}
	if err != nil {
		writeInternalError(w, r, "Error loading profile", err)
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{Email: user.Email, Profile: profile, Exists: true})
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}

	var req models.UpsertProfileParams
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	profile, err := h.profileService.Upsert(r.Context(), user.ID, req)
	switch {
	case errors.Is(err, services.ErrProfileEmpty):
		writeError(w, http.StatusBadRequest, msgProfileEmpty)
		return
	case errors.Is(err, services.ErrProfileTooLong):
		writeError(w, http.StatusBadRequest, "Display name or bio is too long")
		return
	case err != nil:
		writeInternalError(w, r, "Error saving profile", err)
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{
		Email:   user.Email,
		Profile: profile,
		Exists:  true,
		Message: msgProfileSaved,
	})
}
