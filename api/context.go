package api

import (
	"context"

	"github.com/rpupo63/blog-backend/models"
)

type keyType string

const userKey keyType = "user"

// ctxWithUser stores the authenticated user on the context
func ctxWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// ctxGetUser returns the authenticated user, or nil for anonymous requests
func ctxGetUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}
