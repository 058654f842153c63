package auth

import (
	"context"
	"time"

	"github.com/samber/oops"
	"github.com/uptrace/bun"
)

// RegisterUserMessage is the payload accepted by registration
type RegisterUserMessage struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      int    `json:"age"`
}

// RegisterUserHandler creates the user and its first token in one
// transaction so a failed token write leaves no account behind
type RegisterUserHandler struct {
	repo   RepositoryManager
	tokens *TokenService
}

// NewRegisterUserHandler returns a handler backed by repo
func NewRegisterUserHandler(repo RepositoryManager, tokens *TokenService) *RegisterUserHandler {
	return &RegisterUserHandler{repo: repo, tokens: tokens}
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) (*User, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", oops.Code("CONTEXT_CANCELLED").
			With("operation", "register user").
			Wrap(ctx.Err())
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) (*User, string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var (
		user  *User
		token string
	)

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		created, err := h.repo.Users().CreateTx(ctx, tx, &User{
			Name:     event.Name,
			Email:    event.Email,
			Password: event.Password,
			Age:      event.Age,
		})
		if err != nil {
			return err
		}

		if token, err = h.tokens.Generate(created.ID.String()); err != nil {
			return err
		}
		created.Tokens.Add(token)

		if user, err = h.repo.Users().UpdateTx(ctx, tx, created); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}
