package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
	"github.com/uptrace/bun"
)

// Users is the credential store
type Users interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	Update(ctx context.Context, user *User) (*User, error)
	UpdateTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	Delete(ctx context.Context, user *User) error
	DeleteTx(ctx context.Context, tx bun.IDB, user *User) error
}

type users struct {
	db  *bun.DB
	now func() time.Time
}

var _ Users = (*users)(nil)

// UsersOption configures the users repository
type UsersOption func(*users)

// WithUsersClock overrides the clock used for timestamps
func WithUsersClock(now func() time.Time) UsersOption {
	return func(u *users) {
		if now != nil {
			u.now = now
		}
	}
}

// NewUsersRepository returns a bun backed Users store
func NewUsersRepository(db *bun.DB, opts ...UsersOption) Users {
	repo := &users{db: db, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	return repo
}

func (a *users) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	if id == uuid.Nil {
		return nil, ErrNotFound
	}
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, a.mapError(err, "get_by_id")
	}
	return record, nil
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrNotFound
	}
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, a.mapError(err, "get_by_email")
	}
	return record, nil
}

func (a *users) Create(ctx context.Context, user *User) (*User, error) {
	return a.CreateTx(ctx, a.db, user)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	if err := prepareUserForWrite(user); err != nil {
		return nil, err
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Tokens == nil {
		user.Tokens = TokenSet{}
	}
	now := a.now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := tx.NewInsert().Model(user).Exec(ctx); err != nil {
		return nil, a.mapError(err, "create")
	}
	return user, nil
}

func (a *users) Update(ctx context.Context, user *User) (*User, error) {
	return a.UpdateTx(ctx, a.db, user)
}

func (a *users) UpdateTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	if user == nil || user.ID == uuid.Nil {
		return nil, ErrNotFound
	}
	if err := prepareUserForWrite(user); err != nil {
		return nil, err
	}
	if user.Tokens == nil {
		user.Tokens = TokenSet{}
	}
	user.UpdatedAt = a.now().UTC()

	res, err := tx.NewUpdate().
		Model(user).
		ExcludeColumn("id", "created_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, a.mapError(err, "update")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return user, nil
}

func (a *users) Delete(ctx context.Context, user *User) error {
	return a.DeleteTx(ctx, a.db, user)
}

func (a *users) DeleteTx(ctx context.Context, tx bun.IDB, user *User) error {
	if user == nil || user.ID == uuid.Nil {
		return ErrNotFound
	}
	res, err := tx.NewDelete().
		Model((*User)(nil)).
		Where("id = ?", user.ID).
		Exec(ctx)
	if err != nil {
		return a.mapError(err, "delete")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (a *users) mapError(err error, op string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case isUniqueViolation(err):
		return ErrDuplicateEmail
	}
	return oops.Code(CodeUsersStore).With("operation", op).Wrap(err)
}

// prepareUserForWrite runs before every persistence of a user: normalize,
// validate, and hash a plaintext password when one is present. An existing
// hash is never rehashed.
func prepareUserForWrite(user *User) error {
	if user == nil {
		return ErrUnableToParseData
	}

	normalizeUser(user)

	if err := ValidateUser(user); err != nil {
		return err
	}

	if user.Password != "" {
		hash, err := HashPassword(user.Password)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
		user.Password = ""
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
