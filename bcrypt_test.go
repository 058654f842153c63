package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	auth "github.com/goliatone/go-task-auth"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{
			name:     "Valid password",
			password: "securePass123!",
		},
		{
			name:     "Empty password",
			password: "",
			wantErr:  auth.ErrNoEmptyString,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := auth.HashPassword(tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.NotEqual(t, tt.password, hash)
			assert.NoError(t, auth.ComparePasswordAndHash(tt.password, hash))
		})
	}
}

func TestHashPassword_Salted(t *testing.T) {
	first, err := auth.HashPassword("Red12345!")
	require.NoError(t, err)
	second, err := auth.HashPassword("Red12345!")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, auth.VerifyPassword("Red12345!", first))
	assert.True(t, auth.VerifyPassword("Red12345!", second))
}

func TestComparePasswordAndHash(t *testing.T) {
	password := "testPass123!"
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		wantErr  error
		anyErr   bool
	}{
		{name: "Matching password", password: password, hash: hash},
		{name: "Wrong password", password: "wrongPass123!", hash: hash, wantErr: auth.ErrMismatchedHashAndPassword},
		{name: "Broken hash", password: password, hash: "not-a-hash", anyErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ComparePasswordAndHash(tt.password, tt.hash)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.anyErr:
				assert.Error(t, err)
				assert.Equal(t, auth.CodeHashFailure, auth.ErrorCode(err))
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetPasswordHashCost(t *testing.T) {
	t.Cleanup(func() { auth.SetPasswordHashCost(4) })

	auth.SetPasswordHashCost(bcrypt.MinCost + 1)
	assert.Equal(t, bcrypt.MinCost+1, auth.PasswordHashCost())

	hash, err := auth.HashPassword("Red12345!")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)

	auth.SetPasswordHashCost(bcrypt.MaxCost + 1)
	assert.NotEqual(t, bcrypt.MaxCost+1, auth.PasswordHashCost())
	assert.GreaterOrEqual(t, auth.PasswordHashCost(), bcrypt.MinCost)
}
