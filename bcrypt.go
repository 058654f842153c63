package auth

import (
	"errors"
	"sync/atomic"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPasswordHashCost is the work factor used when none is configured
const DefaultPasswordHashCost = 8

var hashCost atomic.Int64

// SetPasswordHashCost overrides the bcrypt work factor used by HashPassword.
// Values outside bcrypt's accepted range reset it to the build default.
func SetPasswordHashCost(cost int) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		hashCost.Store(0)
		return
	}
	hashCost.Store(int64(cost))
}

// PasswordHashCost returns the bcrypt work factor in use
func PasswordHashCost() int {
	if c := hashCost.Load(); c > 0 {
		return int(c)
	}
	return passwordHashCost()
}

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost())
	if err != nil {
		return "", oops.Code(CodeHashFailure).Wrap(err)
	}
	return string(h), nil
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return oops.Code(CodeHashFailure).Wrap(err)
	}
	return nil
}

// VerifyPassword reports whether password matches hash
func VerifyPassword(password, hash string) bool {
	return ComparePasswordAndHash(password, hash) == nil
}
