package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/secretapp/internal/models"
	"github.com/HammerMeetNail/secretapp/internal/services"
)

func TestFriendHandler_View(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	other := uuid.New()

	svc := &mockFriendService{
		LoadViewFunc: func(ctx context.Context, userID uuid.UUID) (*models.FriendView, error) {
			return &models.FriendView{
				Candidates: []models.Candidate{{UserID: other, Label: "Sam", State: models.CandidateAddable}},
			}, nil
		},
	}
	rr := httptest.NewRecorder()
	NewFriendHandler(svc).View(rr, withUser(httptest.NewRequest(http.MethodGet, "/api/friends", nil), user))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var view models.FriendView
	if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(view.Candidates) != 1 || view.Candidates[0].UserID != other {
		t.Errorf("unexpected view %+v", view)
	}
}

func TestFriendHandler_View_Error(t *testing.T) {
	svc := &mockFriendService{
		LoadViewFunc: func(ctx context.Context, userID uuid.UUID) (*models.FriendView, error) {
			return nil, errors.New("db down")
		},
	}
	rr := httptest.NewRecorder()
	NewFriendHandler(svc).View(rr, withUser(httptest.NewRequest(http.MethodGet, "/api/friends", nil), &models.User{ID: uuid.New()}))

	assertErrorResponse(t, rr, http.StatusInternalServerError, msgInternalError)
}

func TestFriendHandler_SendRequest(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	target := uuid.New()

	t.Run("success includes reloaded view", func(t *testing.T) {
		var reloaded bool
		svc := &mockFriendService{
			LoadViewFunc: func(ctx context.Context, userID uuid.UUID) (*models.FriendView, error) {
				reloaded = true
				return &models.FriendView{}, nil
			},
		}
		req := withUser(jsonRequest(t, http.MethodPost, "/api/friends/requests", models.SendFriendRequestParams{FriendID: target}), user)
		rr := httptest.NewRecorder()
		NewFriendHandler(svc).SendRequest(rr, req)

		if rr.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d", rr.Code)
		}
		var response FriendRequestResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if response.Request == nil || response.Request.FriendID != target || response.Request.Status != models.FriendStatusPending {
			t.Errorf("unexpected request %+v", response.Request)
		}
		if !reloaded || response.View == nil {
			t.Error("expected reloaded view in response")
		}
	})

	t.Run("view reload failure still succeeds", func(t *testing.T) {
		svc := &mockFriendService{
			LoadViewFunc: func(ctx context.Context, userID uuid.UUID) (*models.FriendView, error) {
				return nil, errors.New("db down")
			},
		}
		req := withUser(jsonRequest(t, http.MethodPost, "/api/friends/requests", models.SendFriendRequestParams{FriendID: target}), user)
		rr := httptest.NewRecorder()
		NewFriendHandler(svc).SendRequest(rr, req)

		if rr.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d", rr.Code)
		}
	})

	errorCases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"self", services.ErrCannotFriendSelf, http.StatusBadRequest, "Cannot send friend request to yourself"},
		{"unknown target", services.ErrFriendTargetNotFound, http.StatusNotFound, "User not found"},
		{"duplicate", services.ErrFriendRequestExists, http.StatusConflict, "Friend request already exists"},
		{"store failure", errors.New("db down"), http.StatusInternalServerError, msgInternalError},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockFriendService{
				SendRequestFunc: func(ctx context.Context, userID, friendID uuid.UUID) (*models.FriendEdge, error) {
					return nil, tc.err
				},
			}
			req := withUser(jsonRequest(t, http.MethodPost, "/api/friends/requests", models.SendFriendRequestParams{FriendID: target}), user)
			rr := httptest.NewRecorder()
			NewFriendHandler(svc).SendRequest(rr, req)

			assertErrorResponse(t, rr, tc.status, tc.message)
		})
	}
}

func TestFriendHandler_AcceptRequest(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	requester := uuid.New()

	t.Run("success", func(t *testing.T) {
		var got uuid.UUID
		svc := &mockFriendService{
			AcceptRequestFunc: func(ctx context.Context, userID, requesterID uuid.UUID) (*models.FriendEdge, error) {
				got = requesterID
				return &models.FriendEdge{UserID: userID, FriendID: requesterID, Status: models.FriendStatusAccepted}, nil
			},
		}
		req := withUser(httptest.NewRequest(http.MethodPost, "/api/friends/requests/"+requester.String()+"/accept", nil), user)
		req.SetPathValue("requesterId", requester.String())
		rr := httptest.NewRecorder()
		NewFriendHandler(svc).AcceptRequest(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rr.Code)
		}
		if got != requester {
			t.Errorf("accepted %s, want %s", got, requester)
		}
	})

	t.Run("no pending request", func(t *testing.T) {
		svc := &mockFriendService{
			AcceptRequestFunc: func(ctx context.Context, userID, requesterID uuid.UUID) (*models.FriendEdge, error) {
				return nil, services.ErrFriendRequestNotFound
			},
		}
		req := withUser(httptest.NewRequest(http.MethodPost, "/", nil), user)
		req.SetPathValue("requesterId", requester.String())
		rr := httptest.NewRecorder()
		NewFriendHandler(svc).AcceptRequest(rr, req)

		assertErrorResponse(t, rr, http.StatusNotFound, "Friend request not found")
	})

	t.Run("invalid requester", func(t *testing.T) {
		req := withUser(httptest.NewRequest(http.MethodPost, "/", nil), user)
		req.SetPathValue("requesterId", "nope")
		rr := httptest.NewRecorder()
		NewFriendHandler(&mockFriendService{}).AcceptRequest(rr, req)

		assertErrorResponse(t, rr, http.StatusBadRequest, "Invalid requester ID")
	})
}

func TestFriendHandler_Secret(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	friend := uuid.New()

	t.Run("friend reads secret", func(t *testing.T) {
		svc := &mockFriendService{
			FetchSecretMessageFunc: func(ctx context.Context, userID, friendID uuid.UUID) (*models.FriendSecret, error) {
				return &models.FriendSecret{FriendID: friendID, Message: "psst", Found: true}, nil
			},
		}
		req := withUser(httptest.NewRequest(http.MethodGet, "/api/friends/"+friend.String()+"/secret", nil), user)
		req.SetPathValue("id", friend.String())
		rr := httptest.NewRecorder()
		NewFriendHandler(svc).Secret(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rr.Code)
		}
		var result models.FriendSecret
		if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if result.Message != "psst" || !result.Found {
			t.Errorf("unexpected result %+v", result)
		}
	})

	t.Run("non-friend is refused", func(t *testing.T) {
		req := withUser(httptest.NewRequest(http.MethodGet, "/", nil), user)
		req.SetPathValue("id", friend.String())
		rr := httptest.NewRecorder()
		NewFriendHandler(&mockFriendService{}).Secret(rr, req)

		assertErrorResponse(t, rr, http.StatusForbidden, models.SecretUnauthorizedMessage)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.SetPathValue("id", friend.String())
		rr := httptest.NewRecorder()
		NewFriendHandler(&mockFriendService{}).Secret(rr, req)

		assertErrorResponse(t, rr, http.StatusUnauthorized, msgNotAuthenticated)
	})
}
