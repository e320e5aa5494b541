package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/HammerMeetNail/secretapp/internal/logging"
	"github.com/HammerMeetNail/secretapp/internal/models"
	"github.com/HammerMeetNail/secretapp/internal/services"
)

const (
	sessionCookieName = "session_token"

	msgInvalidCredentials = "Invalid credentials"
	msgEmailTaken         = "Email already registered"
	msgInvalidEmail       = "Invalid email address"
	msgPasswordTooShort   = "Password must be at least 8 characters"
	msgPasswordTooLong    = "Password must be at most 72 bytes"
)

type AuthHandler struct {
	userService  services.UserServiceInterface
	authService  services.AuthServiceInterface
	secure       bool // Use secure cookies (HTTPS only)
	cookieMaxAge int
}

func NewAuthHandler(userService services.UserServiceInterface, authService services.AuthServiceInterface, secure bool, sessionDuration time.Duration) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		authService:  authService,
		secure:       secure,
		cookieMaxAge: int(sessionDuration.Seconds()),
	}
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User    *models.User `json:"user,omitempty"`
	Message string       `json:"message,omitempty"`
}

// authFailure is a sign-in/sign-up outcome the caller should render. err is
// set only for unexpected failures that need logging.
type authFailure struct {
	status  int
	message string
	err     error
}

func (h *AuthHandler) signUp(ctx context.Context, email, password string) (*models.User, string, *authFailure) {
	if err := services.ValidateEmail(email); err != nil {
		return nil, "", &authFailure{status: http.StatusBadRequest, message: msgInvalidEmail}
	}
	switch err := services.ValidatePassword(password); {
	case errors.Is(err, services.ErrPasswordTooShort):
		return nil, "", &authFailure{status: http.StatusBadRequest, message: msgPasswordTooShort}
	case errors.Is(err, services.ErrPasswordTooLong):
		return nil, "", &authFailure{status: http.StatusBadRequest, message: msgPasswordTooLong}
	}

	passwordHash, err := h.authService.HashPassword(password)
	if err != nil {
		return nil, "", &authFailure{status: http.StatusInternalServerError, message: msgInternalError, err: err}
	}

	user, err := h.userService.Create(ctx, models.CreateUserParams{
		Email:        email,
		PasswordHash: passwordHash,
	})
	if errors.Is(err, services.ErrEmailAlreadyExists) {
		return nil, "", &authFailure{status: http.StatusConflict, message: msgEmailTaken}
	}
	if err != nil {
		return nil, "", &authFailure{status: http.StatusInternalServerError, message: msgInternalError, err: err}
	}

	token, err := h.authService.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, "", &authFailure{status: http.StatusInternalServerError, message: msgInternalError, err: err}
	}

	return user, token, nil
}

func (h *AuthHandler) signIn(ctx context.Context, email, password string) (*models.User, string, *authFailure) {
	user, err := h.authService.SignInWithPassword(ctx, email, password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		return nil, "", &authFailure{status: http.StatusUnauthorized, message: msgInvalidCredentials}
	}
	if err != nil {
		return nil, "", &authFailure{status: http.StatusInternalServerError, message: msgInternalError, err: err}
	}

	token, err := h.authService.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, "", &authFailure{status: http.StatusInternalServerError, message: msgInternalError, err: err}
	}

	return user, token, nil
}

func (h *AuthHandler) writeFailure(w http.ResponseWriter, r *http.Request, f *authFailure) {
	if f.err != nil {
		writeInternalError(w, r, "auth request failed", f.err)
		return
	}
	writeError(w, f.status, f.message)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	user, token, failure := h.signUp(r.Context(), req.Email, req.Password)
	if failure != nil {
		h.writeFailure(w, r, failure)
		return
	}

	logging.Info("User registered", map[string]interface{}{"user_id": user.ID.String()})
	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, AuthResponse{User: user})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	user, token, failure := h.signIn(r.Context(), req.Email, req.Password)
	if failure != nil {
		h.writeFailure(w, r, failure)
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, AuthResponse{User: user})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.endSession(r)
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, AuthResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{User: user})
}

// DeleteAccount removes the signed-in user's account with the server's own
// privileges and ends the session.
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}

	if err := deleteUserAccount(r.Context(), h.userService, h.authService, user.ID); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeInternalError(w, r, "Error deleting account", err)
		return
	}

	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, AuthResponse{Message: "Account deleted"})
}

func (h *AuthHandler) endSession(r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return
	}
	if err := h.authService.DeleteSession(r.Context(), cookie.Value); err != nil {
		logging.Warn("Error deleting session", map[string]interface{}{"error": err.Error()})
	}
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   h.cookieMaxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
	})
}
