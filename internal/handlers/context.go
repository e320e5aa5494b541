package handlers

import (
	"context"

	"github.com/HammerMeetNail/secretapp/internal/models"
)

type contextKey string

const (
	userContextKey       contextKey = "user"
	serviceSubjectCtxKey contextKey = "service_subject"
)

func SetUserInContext(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func GetUserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

// SetServiceSubjectInContext records the subject of a verified service-role token.
func SetServiceSubjectInContext(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, serviceSubjectCtxKey, subject)
}

func GetServiceSubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(serviceSubjectCtxKey).(string)
	return subject, ok
}
