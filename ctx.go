package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// Locals keys used by the authentication gate
const (
	UserLocalsKey  = "user"
	TokenLocalsKey = "token"
)

var userCtxKey = &contextKey{"user"}
var tokenCtxKey = &contextKey{"token"}

type contextKey struct {
	name string
}

// WithContext sets the User in the given context
func WithContext(r context.Context, user *User) context.Context {
	return context.WithValue(r, userCtxKey, user)
}

// FromContext finds the user from the context.
func FromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok && raw != nil
}

// WithTokenContext sets the raw bearer token in the given context
func WithTokenContext(r context.Context, token string) context.Context {
	return context.WithValue(r, tokenCtxKey, token)
}

// TokenFromContext returns the raw bearer token used to authenticate
func TokenFromContext(ctx context.Context) (string, bool) {
	raw, ok := ctx.Value(tokenCtxKey).(string)
	return raw, ok && raw != ""
}

// CurrentUser returns the authenticated user for the request
func CurrentUser(c *fiber.Ctx) (*User, bool) {
	if user, ok := c.Locals(UserLocalsKey).(*User); ok && user != nil {
		return user, true
	}
	return FromContext(c.UserContext())
}

// CurrentToken returns the bearer token that authenticated the request
func CurrentToken(c *fiber.Ctx) (string, bool) {
	if token, ok := c.Locals(TokenLocalsKey).(string); ok && token != "" {
		return token, true
	}
	return TokenFromContext(c.UserContext())
}
