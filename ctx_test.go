package auth_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-task-auth"
)

func TestContextRoundTrip(t *testing.T) {
	user := &auth.User{ID: uuid.New()}

	ctx := auth.WithTokenContext(auth.WithContext(context.Background(), user), "tok")

	got, ok := auth.FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, user, got)

	token, ok := auth.TokenFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "tok", token)

	_, ok = auth.FromContext(context.Background())
	assert.False(t, ok)
	_, ok = auth.FromContext(auth.WithContext(context.Background(), nil))
	assert.False(t, ok)
	_, ok = auth.TokenFromContext(auth.WithTokenContext(context.Background(), ""))
	assert.False(t, ok)
}

func TestContextEnricherAdapter(t *testing.T) {
	user := &auth.User{ID: uuid.New()}

	ctx := auth.ContextEnricherAdapter(context.Background(), user, "tok")
	got, ok := auth.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, user.ID, got.ID)

	plain := context.Background()
	assert.Equal(t, plain, auth.ContextEnricherAdapter(plain, "not a user", "tok"))
}

func TestCurrentUser(t *testing.T) {
	user := &auth.User{ID: uuid.New(), Name: "Mike"}

	app := fiber.New()
	app.Get("/locals", func(c *fiber.Ctx) error {
		c.Locals(auth.UserLocalsKey, user)
		c.Locals(auth.TokenLocalsKey, "tok-locals")
		return next(c)
	})
	app.Get("/context", func(c *fiber.Ctx) error {
		c.SetUserContext(auth.ContextEnricherAdapter(c.UserContext(), user, "tok-ctx"))
		return next(c)
	})
	app.Get("/none", next)

	tests := []struct {
		path   string
		status int
		token  string
	}{
		{path: "/locals", status: fiber.StatusOK, token: "tok-locals"},
		{path: "/context", status: fiber.StatusOK, token: "tok-ctx"},
		{path: "/none", status: fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.token != "" {
				assert.Equal(t, tt.token, resp.Header.Get("X-Token"))
			}
		})
	}
}

func next(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	token, _ := auth.CurrentToken(c)
	c.Set("X-Token", token)
	return c.SendString(user.Name)
}
