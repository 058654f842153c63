package auth

import (
	"context"
	"log/slog"
)

// Logger is the structured logger used across the package. *slog.Logger
// satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// IdentityProvider ensure we have a store to retrieve auth identity
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, email, password string) (*User, error)
	FindIdentityByID(ctx context.Context, id string) (*User, error)
}

// defLogger forwards to slog.Default so the process wide handler applies
type defLogger struct{}

func (defLogger) Debug(msg string, args ...any) { slog.Default().Debug(msg, args...) }
func (defLogger) Info(msg string, args ...any)  { slog.Default().Info(msg, args...) }
func (defLogger) Warn(msg string, args ...any)  { slog.Default().Warn(msg, args...) }
func (defLogger) Error(msg string, args ...any) { slog.Default().Error(msg, args...) }

func normalizeLogger(l Logger) Logger {
	if l == nil {
		return defLogger{}
	}
	return l
}
