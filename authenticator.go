package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-task-auth/middleware/jwtware"
	"github.com/goliatone/go-task-auth/notify"
	"github.com/goliatone/go-task-auth/storage"
)

// Auther runs the session lifecycle: register, login, logout, logout-all,
// profile updates and account deletion. It also resolves identities for
// the authentication gate.
type Auther struct {
	repo         RepositoryManager
	provider     IdentityProvider
	tokenService *TokenService
	register     *RegisterUserHandler
	logger       Logger
	activitySink ActivitySink
	notifier     notify.Notifier
	objects      storage.Store
	maxUpload    int64
	now          func() time.Time
}

var _ jwtware.IdentityResolver = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(repo RepositoryManager, tokenService *TokenService) *Auther {
	return &Auther{
		repo:         repo,
		provider:     NewUserProvider(repo.Users()),
		tokenService: tokenService,
		register:     NewRegisterUserHandler(repo, tokenService),
		logger:       defLogger{},
		activitySink: noopActivitySink{},
		notifier:     notify.LogNotifier{},
		objects:      storage.NewMemoryStore(),
		now:          time.Now,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = normalizeLogger(logger)
	if up, ok := s.provider.(*UserProvider); ok {
		up.WithLogger(s.logger)
	}
	return s
}

// WithIdentityProvider replaces the credential verifier
func (s *Auther) WithIdentityProvider(provider IdentityProvider) *Auther {
	if provider != nil {
		s.provider = provider
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithNotifier sets where welcome and farewell messages go
func (s *Auther) WithNotifier(n notify.Notifier) *Auther {
	if n != nil {
		s.notifier = n
	}
	return s
}

// WithObjectStore sets where avatars are kept
func (s *Auther) WithObjectStore(store storage.Store) *Auther {
	if store != nil {
		s.objects = store
	}
	return s
}

// WithMaxUploadBytes bounds avatar uploads
func (s *Auther) WithMaxUploadBytes(n int64) *Auther {
	s.maxUpload = n
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() *TokenService {
	return s.tokenService
}

// Register creates the account, issues its first token and sends the
// welcome message
func (s *Auther) Register(ctx context.Context, msg RegisterUserMessage) (*User, string, error) {
	user, token, err := s.register.Execute(ctx, msg)
	if err != nil {
		if !IsValidationError(err) && !errors.Is(err, ErrDuplicateEmail) {
			LogError(s.logger, "register user failed", err)
		}
		return nil, "", err
	}

	s.emitAuthEvent(ctx, ActivityEventRegistered, user.ID.String(), nil)
	s.notify(ctx, notify.Welcome(user.Email, user.Name))

	return user, token, nil
}

// Login verifies the credentials, appends a fresh token to the user's active
// set and returns both
func (s *Auther) Login(ctx context.Context, email, password string) (*User, string, error) {
	user, err := s.provider.VerifyIdentity(ctx, email, password)
	if err != nil {
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, "", map[string]any{
			"identifier": NormalizeEmail(email),
			"error":      err.Error(),
		})
		if errors.Is(err, ErrInvalidCredentials) {
			s.logger.Debug("login rejected", "identifier", NormalizeEmail(email))
			return nil, "", err
		}
		LogError(s.logger, "login verify identity error", err)
		return nil, "", err
	}

	token, err := s.tokenService.Generate(user.ID.String())
	if err != nil {
		LogError(s.logger, "login token generation failed", err)
		return nil, "", err
	}

	user.Tokens.Add(token)
	if user, err = s.repo.Users().Update(ctx, user); err != nil {
		LogError(s.logger, "login token persist failed", err)
		return nil, "", err
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, user.ID.String(), nil)

	return user, token, nil
}

// Logout revokes exactly token, leaving every other session active
func (s *Auther) Logout(ctx context.Context, user *User, token string) error {
	if user == nil {
		return ErrIdentityNotFound
	}

	user.Tokens.Remove(token)
	if _, err := s.repo.Users().Update(ctx, user); err != nil {
		LogError(s.logger, "logout persist failed", err)
		return err
	}

	s.emitAuthEvent(ctx, ActivityEventLogout, user.ID.String(), nil)
	return nil
}

// LogoutAll revokes every token the user holds
func (s *Auther) LogoutAll(ctx context.Context, user *User) error {
	if user == nil {
		return ErrIdentityNotFound
	}

	revoked := user.Tokens.Len()
	user.Tokens.Clear()
	if _, err := s.repo.Users().Update(ctx, user); err != nil {
		LogError(s.logger, "logout all persist failed", err)
		return err
	}

	s.emitAuthEvent(ctx, ActivityEventLogoutAll, user.ID.String(), map[string]any{
		"revoked": revoked,
	})
	return nil
}

// AllowedProfileUpdates lists the fields a user may change on their profile
var AllowedProfileUpdates = []string{"name", "email", "password", "age"}

// UpdateProfile applies updates to user. Any key outside
// AllowedProfileUpdates fails the whole request with ErrInvalidUpdates.
func (s *Auther) UpdateProfile(ctx context.Context, user *User, updates map[string]any) (*User, error) {
	if user == nil {
		return nil, ErrIdentityNotFound
	}

	if err := applyProfileUpdates(user, updates); err != nil {
		return nil, err
	}

	updated, err := s.repo.Users().Update(ctx, user)
	if err != nil {
		if !IsValidationError(err) && !errors.Is(err, ErrDuplicateEmail) {
			LogError(s.logger, "update profile failed", err)
		}
		return nil, err
	}

	fields := make([]string, 0, len(updates))
	for k := range updates {
		fields = append(fields, k)
	}
	s.emitAuthEvent(ctx, ActivityEventProfileUpdated, updated.ID.String(), map[string]any{
		"fields": fields,
	})
	return updated, nil
}

func applyProfileUpdates(user *User, updates map[string]any) error {
	for key := range updates {
		if !isAllowedUpdate(key) {
			return ErrInvalidUpdates
		}
	}

	for key, value := range updates {
		switch key {
		case "name", "email", "password":
			str, ok := value.(string)
			if !ok {
				return fmt.Errorf("%w: %s must be a string", ErrInvalidUpdates, key)
			}
			switch key {
			case "name":
				user.Name = str
			case "email":
				user.Email = str
			case "password":
				if strings.TrimSpace(str) == "" {
					return fmt.Errorf("%w: password must not be empty", ErrInvalidUpdates)
				}
				user.Password = str
			}
		case "age":
			age, ok := toInt(value)
			if !ok {
				return fmt.Errorf("%w: age must be a number", ErrInvalidUpdates)
			}
			user.Age = age
		}
	}
	return nil
}

func isAllowedUpdate(key string) bool {
	for _, allowed := range AllowedProfileUpdates {
		if key == allowed {
			return true
		}
	}
	return false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

// DeleteAccount removes the user record and avatar, then sends the farewell
// message. Tasks owned by the user are left in place.
func (s *Auther) DeleteAccount(ctx context.Context, user *User) error {
	if user == nil {
		return ErrIdentityNotFound
	}

	if err := s.repo.Users().Delete(ctx, user); err != nil {
		LogError(s.logger, "delete account failed", err)
		return err
	}

	if user.AvatarKey != "" {
		if err := s.objects.Delete(ctx, user.AvatarKey); err != nil {
			LogError(s.logger, "delete account avatar cleanup failed", err)
		}
	}

	s.emitAuthEvent(ctx, ActivityEventAccountDeleted, user.ID.String(), nil)
	s.notify(ctx, notify.Farewell(user.Email, user.Name))
	return nil
}

// ResolveIdentity implements jwtware.IdentityResolver. It loads the token's
// owner and requires the raw token to still be in the active set.
func (s *Auther) ResolveIdentity(ctx context.Context, claims jwtware.AuthClaims, token string) (any, error) {
	user, err := s.provider.FindIdentityByID(ctx, claims.UserID())
	if err != nil {
		if !errors.Is(err, ErrIdentityNotFound) {
			LogError(s.logger, "resolve identity lookup failed", err)
		}
		return nil, err
	}

	if !user.Tokens.Has(token) {
		return nil, ErrTokenRevoked
	}
	return user, nil
}

func (s *Auther) notify(ctx context.Context, msg notify.Message) {
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Warn("notification failed", "subject", msg.Subject, "error", err)
	}
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, userID string, metadata map[string]any) {
	if s.activitySink == nil {
		return
	}

	event := ActivityEvent{
		EventType:  eventType,
		UserID:     userID,
		Metadata:   metadata,
		OccurredAt: s.now().UTC(),
	}

	if err := s.activitySink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record failed", "event", eventType, "error", err)
	}
}
