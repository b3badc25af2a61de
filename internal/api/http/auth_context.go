package httpapi

import (
	"context"

	"github.com/google/uuid"
)

type authContextKey string

const authUserKey authContextKey = "authUser"

// AuthUser represents the authenticated user in context.
type AuthUser struct {
	UserID    uuid.UUID
	Username  string
	Nickname  string
	SessionID uuid.UUID
}

func withAuthUser(ctx context.Context, u *AuthUser) context.Context {
	if u == nil {
		return ctx
	}
	return context.WithValue(ctx, authUserKey, u)
}

func authUserFromContext(ctx context.Context) *AuthUser {
	val := ctx.Value(authUserKey)
	if v, ok := val.(*AuthUser); ok {
		return v
	}
	return nil
}
