package auth_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-task-auth"
	"github.com/goliatone/go-task-auth/middleware/jwtware"
)

func TestProtectedRoute(t *testing.T) {
	ctx := context.Background()
	auther, repo := newTestAuther(t)
	seedUser(t, repo, "Mike", "mike@example.com", "56what!!")

	var reasons []string
	app := fiber.New()
	app.Get("/private",
		auther.ProtectedRoute(auth.WithRejectHook(func(_ *fiber.Ctx, reason string, _ error) {
			reasons = append(reasons, reason)
		})),
		func(c *fiber.Ctx) error {
			user, ok := auth.FromContext(c.UserContext())
			if !ok {
				return c.SendStatus(fiber.StatusInternalServerError)
			}
			return c.SendString(user.Email)
		},
	)

	user, token, err := auther.Login(ctx, "mike@example.com", "56what!!")
	require.NoError(t, err)

	get := func(header string) int {
		req := httptest.NewRequest("GET", "/private", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusOK, get("Bearer "+token))
	assert.Equal(t, fiber.StatusUnauthorized, get(""))
	assert.Equal(t, fiber.StatusUnauthorized, get(token))
	assert.Equal(t, fiber.StatusUnauthorized, get("Bearer garbage"))

	expired := sign(t, testSigningKey, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.ID.String(),
		"uid": user.ID.String(),
		"iss": "test-issuer",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	assert.Equal(t, fiber.StatusUnauthorized, get("Bearer "+expired))

	require.NoError(t, auther.Logout(ctx, user, token))
	assert.Equal(t, fiber.StatusUnauthorized, get("Bearer "+token))

	assert.Equal(t, []string{
		jwtware.ReasonMissing,
		jwtware.ReasonMissing,
		jwtware.ReasonInvalid,
		auth.RejectReasonExpired,
		jwtware.ReasonRevoked,
	}, reasons)
}

func TestProtectedRoute_ValidationListenersAndLookup(t *testing.T) {
	ctx := context.Background()
	auther, repo := newTestAuther(t)
	seedUser(t, repo, "Mike", "mike@example.com", "56what!!")

	_, token, err := auther.Login(ctx, "mike@example.com", "56what!!")
	require.NoError(t, err)

	blocked := true
	app := fiber.New()
	app.Get("/private",
		auther.ProtectedRoute(
			auth.WithTokenLookup("query:auth_token"),
			auth.WithValidationListeners(func(_ *fiber.Ctx, claims jwtware.AuthClaims) error {
				if blocked {
					return errors.New("blocked")
				}
				return nil
			}),
		),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) },
	)

	resp, err := app.Test(httptest.NewRequest("GET", "/private?auth_token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	blocked = false
	resp, err = app.Test(httptest.NewRequest("GET", "/private?auth_token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestGateConfig(t *testing.T) {
	auther, _ := newTestAuther(t)

	cfg := auther.GateConfig()
	assert.Equal(t, auth.UserLocalsKey, cfg.ContextKey)
	assert.Equal(t, auth.TokenLocalsKey, cfg.TokenContextKey)
	assert.Equal(t, "Bearer", cfg.AuthScheme)
	assert.NotNil(t, cfg.TokenValidator)
	assert.NotNil(t, cfg.IdentityResolver)

	var jc jwtware.Config
	auth.RegisterValidationListeners(&jc)
	assert.Empty(t, jc.ValidationListeners)
	auth.RegisterValidationListeners(nil, func(*fiber.Ctx, jwtware.AuthClaims) error { return nil })
}
