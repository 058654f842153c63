package auth_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	auth "github.com/goliatone/go-task-auth"
	"github.com/goliatone/go-task-auth/internal/persistence"
)

const testSigningKey = "test-signing-key"

func init() {
	auth.SetPasswordHashCost(4)
}

func sign(t *testing.T, key string, method jwt.SigningMethod, claims jwt.Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return tok
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, target, err := persistence.Open(ctx, dsn, persistence.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = persistence.Migrate(ctx, db, target.Dialect)
	require.NoError(t, err)
	return db
}

func newTestAuther(t *testing.T) (*auth.Auther, auth.RepositoryManager) {
	t.Helper()
	repo := auth.NewRepositoryManager(newTestDB(t))
	ts := auth.NewTokenService([]byte(testSigningKey), time.Hour, "test-issuer", nil)
	return auth.NewAuthenticator(repo, ts), repo
}

func seedUser(t *testing.T, repo auth.RepositoryManager, name, email, password string) *auth.User {
	t.Helper()
	user, err := repo.Users().Create(context.Background(), &auth.User{
		Name:     name,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return user
}
