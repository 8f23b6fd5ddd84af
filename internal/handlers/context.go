package handlers

import (
	"context"

	"github.com/okovalenko/wishlink/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

func SetUserInContext(ctx context.Context, user *models.UserSummary) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func GetUserFromContext(ctx context.Context) *models.UserSummary {
	user, _ := ctx.Value(userContextKey).(*models.UserSummary)
	return user
}
