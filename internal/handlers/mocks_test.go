package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/secretapp/internal/models"
	"github.com/HammerMeetNail/secretapp/internal/services"
)

type mockUserService struct {
	CreateFunc     func(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*models.User, error)
	DeleteFunc     func(ctx context.Context, id uuid.UUID) error
}

func (m *mockUserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *mockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockUserService) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

type mockAuthService struct {
	HashPasswordFunc          func(password string) (string, error)
	VerifyPasswordFunc        func(hash, password string) bool
	SignInWithPasswordFunc    func(ctx context.Context, email, password string) (*models.User, error)
	CreateSessionFunc         func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateSessionFunc       func(ctx context.Context, token string) (*models.User, error)
	DeleteSessionFunc         func(ctx context.Context, token string) error
	DeleteAllUserSessionsFunc func(ctx context.Context, userID uuid.UUID) error
}

func (m *mockAuthService) HashPassword(password string) (string, error) {
	if m.HashPasswordFunc != nil {
		return m.HashPasswordFunc(password)
	}
	return "hashed_" + password, nil
}

func (m *mockAuthService) VerifyPassword(hash, password string) bool {
	if m.VerifyPasswordFunc != nil {
		return m.VerifyPasswordFunc(hash, password)
	}
	return hash == "hashed_"+password
}

func (m *mockAuthService) SignInWithPassword(ctx context.Context, email, password string) (*models.User, error) {
	if m.SignInWithPasswordFunc != nil {
		return m.SignInWithPasswordFunc(ctx, email, password)
	}
	return nil, services.ErrInvalidCredentials
}

func (m *mockAuthService) CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, userID)
	}
	return "session-token", nil
}

func (m *mockAuthService) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	if m.ValidateSessionFunc != nil {
		return m.ValidateSessionFunc(ctx, token)
	}
	return nil, services.ErrSessionNotFound
}

func (m *mockAuthService) DeleteSession(ctx context.Context, token string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, token)
	}
	return nil
}

func (m *mockAuthService) DeleteAllUserSessions(ctx context.Context, userID uuid.UUID) error {
	if m.DeleteAllUserSessionsFunc != nil {
		return m.DeleteAllUserSessionsFunc(ctx, userID)
	}
	return nil
}

type mockProfileService struct {
	GetFunc    func(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpsertFunc func(ctx context.Context, userID uuid.UUID, params models.UpsertProfileParams) (*models.Profile, error)
}

func (m *mockProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, userID)
	}
	return nil, services.ErrProfileNotFound
}

func (m *mockProfileService) Upsert(ctx context.Context, userID uuid.UUID, params models.UpsertProfileParams) (*models.Profile, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, userID, params)
	}
	return &models.Profile{UserID: userID, DisplayName: params.DisplayName, Bio: params.Bio}, nil
}

type mockSecretService struct {
	ListByUserFunc func(ctx context.Context, userID uuid.UUID) ([]models.Secret, error)
	CreateFunc     func(ctx context.Context, userID uuid.UUID, message string) (*models.Secret, error)
	UpdateFunc     func(ctx context.Context, userID, secretID uuid.UUID, message string) (*models.Secret, error)
	DeleteFunc     func(ctx context.Context, userID, secretID uuid.UUID) error
}

func (m *mockSecretService) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Secret, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return []models.Secret{}, nil
}

func (m *mockSecretService) Create(ctx context.Context, userID uuid.UUID, message string) (*models.Secret, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, message)
	}
	return &models.Secret{ID: uuid.New(), UserID: userID, Message: message}, nil
}

func (m *mockSecretService) Update(ctx context.Context, userID, secretID uuid.UUID, message string) (*models.Secret, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, userID, secretID, message)
	}
	return &models.Secret{ID: secretID, UserID: userID, Message: message}, nil
}

func (m *mockSecretService) Delete(ctx context.Context, userID, secretID uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, secretID)
	}
	return nil
}

type mockFriendService struct {
	LoadViewFunc           func(ctx context.Context, userID uuid.UUID) (*models.FriendView, error)
	SendRequestFunc        func(ctx context.Context, userID, friendID uuid.UUID) (*models.FriendEdge, error)
	AcceptRequestFunc      func(ctx context.Context, userID, requesterID uuid.UUID) (*models.FriendEdge, error)
	IsFriendFunc           func(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error)
	FetchSecretMessageFunc func(ctx context.Context, userID, friendID uuid.UUID) (*models.FriendSecret, error)
}

func (m *mockFriendService) LoadView(ctx context.Context, userID uuid.UUID) (*models.FriendView, error) {
	if m.LoadViewFunc != nil {
		return m.LoadViewFunc(ctx, userID)
	}
	return &models.FriendView{}, nil
}

func (m *mockFriendService) SendRequest(ctx context.Context, userID, friendID uuid.UUID) (*models.FriendEdge, error) {
	if m.SendRequestFunc != nil {
		return m.SendRequestFunc(ctx, userID, friendID)
	}
	return &models.FriendEdge{UserID: userID, FriendID: friendID, Status: models.FriendStatusPending}, nil
}

func (m *mockFriendService) AcceptRequest(ctx context.Context, userID, requesterID uuid.UUID) (*models.FriendEdge, error) {
	if m.AcceptRequestFunc != nil {
		return m.AcceptRequestFunc(ctx, userID, requesterID)
	}
	return &models.FriendEdge{UserID: userID, FriendID: requesterID, Status: models.FriendStatusAccepted}, nil
}

func (m *mockFriendService) IsFriend(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error) {
	if m.IsFriendFunc != nil {
		return m.IsFriendFunc(ctx, userID, otherUserID)
	}
	return false, nil
}

func (m *mockFriendService) FetchSecretMessage(ctx context.Context, userID, friendID uuid.UUID) (*models.FriendSecret, error) {
	if m.FetchSecretMessageFunc != nil {
		return m.FetchSecretMessageFunc(ctx, userID, friendID)
	}
	return nil, services.ErrNotFriend
}
