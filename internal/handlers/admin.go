package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/secretapp/internal/logging"
	"github.com/HammerMeetNail/secretapp/internal/services"
)

// AdminHandler serves operations that require a service-role token.
type AdminHandler struct {
	userService services.UserServiceInterface
	authService services.AuthServiceInterface
}

func NewAdminHandler(userService services.UserServiceInterface, authService services.AuthServiceInterface) *AdminHandler {
	return &AdminHandler{userService: userService, authService: authService}
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	err := deleteUserAccount(r.Context(), h.userService, h.authService, userID)
	if errors.Is(err, services.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		writeInternalError(w, r, "Error deleting user", err)
		return
	}

	subject, _ := GetServiceSubjectFromContext(r.Context())
	logging.Info("User deleted by service role", map[string]interface{}{
		"user_id": userID.String(),
		"subject": subject,
	})
	writeJSON(w, http.StatusOK, MessageResponse{Message: "User deleted"})
}

func deleteUserAccount(ctx context.Context, users services.UserServiceInterface, auth services.AuthServiceInterface, userID uuid.UUID) error {
	if err := auth.DeleteAllUserSessions(ctx, userID); err != nil {
		logging.Warn("Error clearing sessions before account deletion", map[string]interface{}{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
	}
	return users.Delete(ctx, userID)
}
