package auth

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model. Password is transient: the write path hashes it
// into PasswordHash and clears it. Hash, tokens and avatar never serialize.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID `bun:"id,pk" json:"id"`
	Name          string    `bun:"name,notnull" json:"name"`
	Email         string    `bun:"email,notnull,unique" json:"email"`
	Age           int       `bun:"age,notnull" json:"age"`
	Password      string    `bun:"-" json:"-"`
	PasswordHash  string    `bun:"password_hash,notnull" json:"-"`
	Tokens        TokenSet  `bun:"tokens,notnull" json:"-"`
	AvatarKey     string    `bun:"avatar_key" json:"-"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// HasAvatar reports whether an avatar image is stored for the user
func (u *User) HasAvatar() bool {
	return u != nil && u.AvatarKey != ""
}

// TokenSet is the ordered collection of bearer tokens currently accepted for
// a user. It is stored as a JSON array.
type TokenSet []string

// Add appends token unless already present
func (s *TokenSet) Add(token string) {
	if token == "" || s.Has(token) {
		return
	}
	*s = append(*s, token)
}

// Remove drops token, reporting whether it was present
func (s *TokenSet) Remove(token string) bool {
	for i, t := range *s {
		if t == token {
			*s = append((*s)[:i:i], (*s)[i+1:]...)
			return true
		}
	}
	return false
}

// Has reports whether token is active
func (s TokenSet) Has(token string) bool {
	if token == "" {
		return false
	}
	for _, t := range s {
		if t == token {
			return true
		}
	}
	return false
}

// Clear removes every token
func (s *TokenSet) Clear() {
	*s = TokenSet{}
}

// Len returns the number of active tokens
func (s TokenSet) Len() int {
	return len(s)
}

// Value implements driver.Valuer
func (s TokenSet) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (s *TokenSet) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = TokenSet{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("token set: unsupported source %T", src)
	}

	if len(raw) == 0 {
		*s = TokenSet{}
		return nil
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("token set: %w", err)
	}
	*s = out
	return nil
}
