package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/goliatone/go-task-auth/middleware/jwtware"
)

// RejectReasonExpired is reported to reject hooks in place of
// jwtware.ReasonInvalid when the token only failed on its exp claim
const RejectReasonExpired = "expired"

// GateOption customizes the jwtware configuration built by ProtectedRoute
type GateOption func(*jwtware.Config)

// WithRejectHook registers a callback for rejected requests
func WithRejectHook(fn func(c *fiber.Ctx, reason string, err error)) GateOption {
	return func(cfg *jwtware.Config) {
		cfg.OnReject = fn
	}
}

// WithTokenLookup overrides where the token is read from
func WithTokenLookup(lookup string) GateOption {
	return func(cfg *jwtware.Config) {
		cfg.TokenLookup = lookup
	}
}

// WithValidationListeners appends listeners run after identity resolution
func WithValidationListeners(listeners ...ValidationListener) GateOption {
	return func(cfg *jwtware.Config) {
		RegisterValidationListeners(cfg, listeners...)
	}
}

// GateConfig returns the jwtware configuration for the Bearer token gate:
// verify signature and expiry, load the owner, require the token to still
// be active, then expose user and token to handlers
func (s *Auther) GateConfig(opts ...GateOption) jwtware.Config {
	cfg := jwtware.Config{
		ContextKey:       UserLocalsKey,
		TokenContextKey:  TokenLocalsKey,
		AuthScheme:       "Bearer",
		TokenValidator:   tokenValidatorAdapter{s.tokenService},
		IdentityResolver: s,
		ContextEnricher:  ContextEnricherAdapter,
		ErrorHandler:     jwtware.DefaultErrorHandler,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if hook := cfg.OnReject; hook != nil {
		cfg.OnReject = func(c *fiber.Ctx, reason string, err error) {
			if reason == jwtware.ReasonInvalid && IsTokenExpiredError(err) {
				reason = RejectReasonExpired
			}
			hook(c, reason, err)
		}
	}
	return cfg
}

// ProtectedRoute returns the authentication gate handler
func (s *Auther) ProtectedRoute(opts ...GateOption) fiber.Handler {
	return jwtware.New(s.GateConfig(opts...))
}

type tokenValidatorAdapter struct {
	ts *TokenService
}

func (a tokenValidatorAdapter) Validate(token string) (jwtware.AuthClaims, error) {
	claims, err := a.ts.Validate(token)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

var _ jwtware.TokenValidator = tokenValidatorAdapter{}

// ContextEnricherAdapter stores the resolved user and raw token in the
// request's standard context
func ContextEnricherAdapter(c context.Context, identity any, token string) context.Context {
	user, ok := identity.(*User)
	if !ok {
		return c
	}
	return WithTokenContext(WithContext(c, user), token)
}
