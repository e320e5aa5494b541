package handlers

import (
	"errors"
	"net/http"

	"github.com/HammerMeetNail/secretapp/internal/models"
	"github.com/HammerMeetNail/secretapp/internal/services"
)

type FriendHandler struct {
	friendService services.FriendServiceInterface
}

func NewFriendHandler(friendService services.FriendServiceInterface) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

type FriendRequestResponse struct {
	Request *models.FriendEdge `json:"request,omitempty"`
	View    *models.FriendView `json:"view,omitempty"`
}

// View returns the caller's friends page snapshot.
func (h *FriendHandler) View(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}

	view, err := h.friendService.LoadView(r.Context(), user.ID)
	if err != nil {
		writeInternalError(w, r, "Error loading friends", err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}

	var req models.SendFriendRequestParams
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	edge, err := h.friendService.SendRequest(r.Context(), user.ID, req.FriendID)
	switch {
	case errors.Is(err, services.ErrCannotFriendSelf):
		writeError(w, http.StatusBadRequest, "Cannot send friend request to yourself")
		return
	case errors.Is(err, services.ErrFriendTargetNotFound):
		writeError(w, http.StatusNotFound, "User not found")
		return
	case errors.Is(err, services.ErrFriendRequestExists):
		writeError(w, http.StatusConflict, "Friend request already exists")
		return
	case err != nil:
		writeInternalError(w, r, "Error sending friend request", err)
		return
	}

	h.writeWithView(w, r, http.StatusCreated, edge)
}

func (h *FriendHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}

	requesterID, ok := parseUUIDParam(r, "requesterId")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid requester ID")
		return
	}

	edge, err := h.friendService.AcceptRequest(r.Context(), user.ID, requesterID)
	switch {
	case errors.Is(err, services.ErrFriendRequestNotFound):
		writeError(w, http.StatusNotFound, "Friend request not found")
		return
	case errors.Is(err, services.ErrCannotFriendSelf):
		writeError(w, http.StatusBadRequest, "Cannot accept your own request")
		return
	case err != nil:
		writeInternalError(w, r, "Error accepting friend request", err)
		return
	}

	h.writeWithView(w, r, http.StatusOK, edge)
}

// writeWithView answers with the edge plus a reloaded friend view. A failed
// reload still reports the write as successful.
func (h *FriendHandler) writeWithView(w http.ResponseWriter, r *http.Request, status int, edge *models.FriendEdge) {
	user := GetUserFromContext(r.Context())
	view, err := h.friendService.LoadView(r.Context(), user.ID)
	if err != nil {
		logInternal(r, "Error reloading friends", err)
		view = nil
	}
	writeJSON(w, status, FriendRequestResponse{Request: edge, View: view})
}

// Secret reads a friend's secret message. Non-friends get 403 with the
// unauthorized placeholder message.
func (h *FriendHandler) Secret(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}

	friendID, ok := parseUUIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	result, err := h.friendService.FetchSecretMessage(r.Context(), user.ID, friendID)
	if errors.Is(err, services.ErrNotFriend) {
		writeError(w, http.StatusForbidden, models.SecretUnauthorizedMessage)
		return
	}
	if err != nil {
		writeInternalError(w, r, "Error fetching friend secret", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
