package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/secretapp/internal/logging"
	"github.com/HammerMeetNail/secretapp/internal/models"
)

type FriendAPI interface {
	FriendView(ctx context.Context) (*models.FriendView, error)
	SendFriendRequest(ctx context.Context, friendID uuid.UUID) (*FriendRequestResult, error)
	AcceptFriendRequest(ctx context.Context, requesterID uuid.UUID) (*FriendRequestResult, error)
	FriendSecret(ctx context.Context, friendID uuid.UUID) (*models.FriendSecret, error)
}

// FriendsPage is the friends screen: the last loaded view, revealed secrets
// keyed by friend, and the latest user-facing message.
type FriendsPage struct {
	api FriendAPI

	View    *models.FriendView
	Secrets map[uuid.UUID]string
	Message string
}

func NewFriendsPage(api FriendAPI) *FriendsPage {
	return &FriendsPage{
		api:     api,
		View:    &models.FriendView{},
		Secrets: map[uuid.UUID]string{},
	}
}

func (p *FriendsPage) Load(ctx context.Context) error {
	view, err := p.api.FriendView(ctx)
	if err != nil {
		logging.Warn("Error loading friends", map[string]interface{}{"error": err.Error()})
		p.Message = "Could not load friends: " + MessageOf(err)
		return err
	}
	p.View = view
	return nil
}

func (p *FriendsPage) SendFriendRequest(ctx context.Context, friendID uuid.UUID) error {
	result, err := p.api.SendFriendRequest(ctx, friendID)
	if err != nil {
		p.Message = "Error sending friend request: " + MessageOf(err)
		return err
	}
	p.Message = "Friend request sent."
	return p.refresh(ctx, result)
}

func (p *FriendsPage) AcceptFriendRequest(ctx context.Context, requesterID uuid.UUID) error {
	result, err := p.api.AcceptFriendRequest(ctx, requesterID)
	if err != nil {
		p.Message = "Error accepting friend request: " + MessageOf(err)
		return err
	}
	p.Message = "Friend request accepted."
	return p.refresh(ctx, result)
}

// refresh adopts the view returned with a write, or reloads it when the
// server could not include one.
func (p *FriendsPage) refresh(ctx context.Context, result *FriendRequestResult) error {
	if result != nil && result.View != nil {
		p.View = result.View
		return nil
	}
	return p.Load(ctx)
}

// FetchSecretMessage reveals a friend's secret. Users not in the loaded
// friends list get the unauthorized message without a server call. A failed
// read leaves Secrets untouched, sets Message and returns the error.
func (p *FriendsPage) FetchSecretMessage(ctx context.Context, friendID uuid.UUID) (string, error) {
	if !p.View.HasFriend(friendID) {
		p.Secrets[friendID] = models.SecretUnauthorizedMessage
		return models.SecretUnauthorizedMessage, nil
	}

	result, err := p.api.FriendSecret(ctx, friendID)
	var message string
	switch {
	case StatusOf(err) == http.StatusForbidden:
		message = models.SecretUnauthorizedMessage
	case err != nil:
		logging.Warn("Error fetching friend secret", map[string]interface{}{"error": err.Error()})
		p.Message = "Error fetching secret: " + MessageOf(err)
		return "", err
	case !result.Found || result.Message == "":
		message = models.SecretNotFoundMessage
	default:
		message = result.Message
	}

	p.Secrets[friendID] = message
	return message, nil
}
