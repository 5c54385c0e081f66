package auth

import (
	"context"

	"github.com/tdnguyen/novelnest/models"
)

type contextKey string

const userContextKey contextKey = "novelnest.user"

// ContextWithUser stores the authenticated user on the request context.
func ContextWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext retrieves the authenticated user placed on the
// context by the authentication middleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok && user != nil
}
