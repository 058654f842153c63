package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// UserFinder is the read side of the credential store used for login
type UserFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// UserProvider verifies credentials against the user store
type UserProvider struct {
	store  UserFinder
	logger Logger
}

var _ IdentityProvider = (*UserProvider)(nil)

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserFinder) *UserProvider {
	return &UserProvider{
		store:  store,
		logger: defLogger{},
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	u.logger = normalizeLogger(l)
	return u
}

// dummyHash is compared against when the email is unknown so both failure
// paths pay for one bcrypt comparison
var dummyHash = sync.OnceValue(func() string {
	h, err := HashPassword(uuid.NewString())
	if err != nil {
		return ""
	}
	return h
})

// VerifyIdentity finds the user by normalized email and checks the
// password. Unknown email and wrong password both return
// ErrInvalidCredentials.
func (u *UserProvider) VerifyIdentity(ctx context.Context, email, password string) (*User, error) {
	user, err := u.store.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = ComparePasswordAndHash(password, dummyHash())
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if !errors.Is(err, ErrMismatchedHashAndPassword) {
			u.logger.Warn("stored password hash could not be compared", "user_id", user.ID, "error", err)
		}
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// FindIdentityByID loads a user by its string id. Unparsable ids are
// reported as ErrIdentityNotFound.
func (u *UserProvider) FindIdentityByID(ctx context.Context, id string) (*User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrIdentityNotFound
	}

	user, err := u.store.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}
	return user, nil
}
