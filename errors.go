package auth

import (
	"errors"

	"github.com/samber/oops"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found")

// ErrNotFound is returned for missing records, including records owned by
// somebody else
var ErrNotFound = errors.New("record not found")

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = errors.New("empty string not allowed")

// ErrMismatchedHashAndPassword password does not match stored hash
var ErrMismatchedHashAndPassword = errors.New("password does not match")

// ErrInvalidCredentials unknown email or wrong password, callers can not
// tell which
var ErrInvalidCredentials = errors.New("unable to login")

// ErrTokenExpired token exp claim is in the past
var ErrTokenExpired = errors.New("token is expired")

// ErrTokenMalformed bad signature, unexpected algorithm or broken token
var ErrTokenMalformed = errors.New("token is malformed")

// ErrTokenRevoked token verifies but is no longer in the active set
var ErrTokenRevoked = errors.New("token is revoked")

// ErrInvalidUpdates update payload carries fields that can not be changed
var ErrInvalidUpdates = errors.New("invalid updates")

// ErrDuplicateEmail email already registered
var ErrDuplicateEmail = errors.New("email already registered")

// ErrUnableToParseData parse error
var ErrUnableToParseData = errors.New("unable to parse data")

// Error codes attached to wrapped storage failures.
const (
	CodeUsersStore  = "USERS_STORE_FAILED"
	CodeTokenSign   = "TOKEN_SIGN_FAILED"
	CodeHashFailure = "PASSWORD_HASH_FAILED"
	CodeAvatarStore = "AVATAR_STORE_FAILED"
)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	return errors.Is(err, ErrTokenExpired)
}

// IsAuthenticationError reports errors that should surface as 401
func IsAuthenticationError(err error) bool {
	return errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrTokenRevoked) ||
		errors.Is(err, ErrIdentityNotFound)
}

// ErrorCode returns the oops code attached to err, if any
func ErrorCode(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code, _ := oopsErr.Code().(string)
	return code
}

// LogError logs err with its oops code and context when present
func LogError(logger Logger, msg string, err error) {
	if logger == nil {
		logger = defLogger{}
	}
	if oopsErr, ok := oops.AsOops(err); ok {
		attrs := []any{"error", oopsErr.Error()}
		if code := oopsErr.Code(); code != nil {
			attrs = append(attrs, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			attrs = append(attrs, "context", ctx)
		}
		logger.Error(msg, attrs...)
		return
	}
	logger.Error(msg, "error", err)
}
