package services

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/HammerMeetNail/secretapp/internal/models"
)

// UserServiceInterface defines the contract for user operations.
type UserServiceInterface interface {
	Create(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuthServiceInterface defines the contract for authentication operations.
type AuthServiceInterface interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hash, password string) bool
	SignInWithPassword(ctx context.Context, email, password string) (*models.User, error)
	CreateSession(ctx context.Context, userID uuid.UUID) (token string, err error)
	ValidateSession(ctx context.Context, token string) (*models.User, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteAllUserSessions(ctx context.Context, userID uuid.UUID) error
}

// ProfileServiceInterface defines the contract for profile operations.
type ProfileServiceInterface interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	Upsert(ctx context.Context, userID uuid.UUID, params models.UpsertProfileParams) (*models.Profile, error)
}

// SecretServiceInterface defines the contract for the owner's secret message.
type SecretServiceInterface interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Secret, error)
	Create(ctx context.Context, userID uuid.UUID, message string) (*models.Secret, error)
	Update(ctx context.Context, userID, secretID uuid.UUID, message string) (*models.Secret, error)
	Delete(ctx context.Context, userID, secretID uuid.UUID) error
}

// FriendServiceInterface defines the contract for the friends graph.
type FriendServiceInterface interface {
	LoadView(ctx context.Context, userID uuid.UUID) (*models.FriendView, error)
	SendRequest(ctx context.Context, userID, friendID uuid.UUID) (*models.FriendEdge, error)
	AcceptRequest(ctx context.Context, userID, requesterID uuid.UUID) (*models.FriendEdge, error)
	IsFriend(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error)
	FetchSecretMessage(ctx context.Context, userID, friendID uuid.UUID) (*models.FriendSecret, error)
}

// ServiceRoleVerifierInterface validates administrative bearer tokens.
type ServiceRoleVerifierInterface interface {
	Enabled() bool
	Verify(tokenString string) (jwt.MapClaims, error)
}
