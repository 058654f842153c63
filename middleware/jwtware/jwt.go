package jwtware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var (
	defaultTokenLookup       = "header:" + fiber.HeaderAuthorization
	ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")
	ErrIdentityUnresolved    = errors.New("identity could not be resolved")
)

// DefaultRejectionMessage is the body sent for every rejected request
const DefaultRejectionMessage = "Please authenticate."

// Rejection reasons passed to Config.OnReject
const (
	ReasonMissing  = "missing"
	ReasonInvalid  = "invalid"
	ReasonRevoked  = "revoked"
	ReasonListener = "listener"
)

// TokenValidator interface for validating tokens without import cycles
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidatorFunc adapts a function to TokenValidator
type TokenValidatorFunc func(tokenString string) (AuthClaims, error)

// Validate implements TokenValidator
func (f TokenValidatorFunc) Validate(tokenString string) (AuthClaims, error) {
	return f(tokenString)
}

// AuthClaims interface for structured claims without import cycles
type AuthClaims interface {
	Subject() string
	UserID() string
}

// IdentityResolver turns verified claims into the identity stored on the
// request. It also decides whether the raw token is still active.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, claims AuthClaims, token string) (any, error)
}

// ValidationListener is invoked after the identity is resolved and before the
// request proceeds. Returning an error rejects the request.
type ValidationListener func(c *fiber.Ctx, claims AuthClaims) error

type Config struct {
	Filter         func(*fiber.Ctx) bool
	SuccessHandler fiber.Handler
	ErrorHandler   fiber.ErrorHandler
	// ContextKey is the Locals key for the resolved identity
	ContextKey string
	// TokenContextKey is the Locals key for the raw token
	TokenContextKey string
	TokenLookup     string
	AuthScheme      string
	// TokenValidator is required for token validation
	TokenValidator TokenValidator
	// IdentityResolver is optional. Without it the claims are stored as the
	// identity.
	IdentityResolver IdentityResolver

	// ContextEnricher is an optional function to propagate the identity to the
	// request's standard context.
	ContextEnricher func(c context.Context, identity any, token string) context.Context

	// ValidationListeners are invoked after the identity resolves.
	ValidationListeners []ValidationListener

	// OnReject is called for every rejected request before ErrorHandler runs
	OnReject func(c *fiber.Ctx, reason string, err error)
}

// New returns the authentication gate. Every request re-verifies its token,
// nothing is cached between requests.
func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)
	extractors := cfg.getExtractors()

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := ExtractRawTokenFromContext(c, extractors)
		if err != nil {
			return cfg.reject(c, ReasonMissing, err)
		}

		claims, err := cfg.TokenValidator.Validate(raw)
		if err != nil {
			return cfg.reject(c, ReasonInvalid, err)
		}

		var identity any = claims
		if cfg.IdentityResolver != nil {
			identity, err = cfg.IdentityResolver.ResolveIdentity(c.UserContext(), claims, raw)
			if err != nil {
				return cfg.reject(c, ReasonRevoked, err)
			}
			if identity == nil {
				return cfg.reject(c, ReasonRevoked, ErrIdentityUnresolved)
			}
		}

		if err := cfg.runValidationListeners(c, claims); err != nil {
			return cfg.reject(c, ReasonListener, err)
		}

		c.Locals(cfg.ContextKey, identity)
		c.Locals(cfg.TokenContextKey, raw)

		if cfg.ContextEnricher != nil {
			c.SetUserContext(cfg.ContextEnricher(c.UserContext(), identity, raw))
		}

		return cfg.SuccessHandler(c)
	}
}

func (cfg *Config) reject(c *fiber.Ctx, reason string, err error) error {
	if cfg.OnReject != nil {
		cfg.OnReject(c, reason, err)
	}
	return cfg.ErrorHandler(c, err)
}

// DefaultErrorHandler answers every rejection with 401 and a fixed body so
// callers can not tell why authentication failed
func DefaultErrorHandler(c *fiber.Ctx, _ error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": DefaultRejectionMessage,
	})
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = DefaultErrorHandler
	}

	if cfg.TokenValidator == nil {
		panic("AUTH: JWT middleware configuration: TokenValidator is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.TokenContextKey == "" {
		cfg.TokenContextKey = "token"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

func (cfg *Config) getExtractors() []JWTExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func (cfg *Config) runValidationListeners(c *fiber.Ctx, claims AuthClaims) error {
	for _, listener := range cfg.ValidationListeners {
		if listener == nil {
			continue
		}
		if err := listener(c, claims); err != nil {
			return err
		}
	}
	return nil
}

func ExtractRawTokenFromContext(c *fiber.Ctx, extractors []JWTExtractor) (string, error) {
	raw := ""
	err := ErrJWTMissingOrMalformed

	for _, extractor := range extractors {
		raw, err = extractor(c)
		if raw != "" && err == nil {
			break
		}
	}

	if raw == "" && err == nil {
		err = ErrJWTMissingOrMalformed
	}

	return raw, err
}

func GetExtractors(tokenLookup string, authSchemes ...string) []JWTExtractor {
	extractors := make([]JWTExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 {
		authScheme = authSchemes[0]
	}

	// header:Authorization,cookie:jwt,query:auth_token,param:token
	rootParts := strings.Split(tokenLookup, ",")
	for _, rootPart := range rootParts {
		//header:Authorization
		parts := strings.Split(strings.TrimSpace(rootPart), ":")
		if len(parts) != 2 {
			continue
		}

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, jwtFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, jwtFromQuery(parts[1]))
		case "param":
			extractors = append(extractors, jwtFromParam(parts[1]))
		case "cookie":
			extractors = append(extractors, jwtFromCookie(parts[1]))
		}
	}

	return extractors
}

type JWTExtractor func(c *fiber.Ctx) (string, error)

// jwtFromHeader returns a function that extracts token from the request header.
func jwtFromHeader(header string, authScheme string) JWTExtractor {
	authScheme = strings.TrimSpace(authScheme)
	return func(c *fiber.Ctx) (string, error) {
		a := c.Get(header)
		l := len(authScheme)
		if l == 0 {
			return "", ErrJWTMissingOrMalformed
		}
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) && a[l] == ' ' {
			if token := strings.TrimSpace(a[l+1:]); token != "" {
				return token, nil
			}
		}
		return "", ErrJWTMissingOrMalformed
	}
}

// jwtFromQuery returns a function that extracts token from the query string.
func jwtFromQuery(param string) JWTExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Query(param)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

// jwtFromParam returns a function that extracts token from the url param string.
func jwtFromParam(param string) JWTExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Params(param)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

// jwtFromCookie returns a function that extracts token from the named cookie.
func jwtFromCookie(name string) JWTExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}
