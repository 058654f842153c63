package auth

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 7

// MaxPasswordBytes is the longest password bcrypt accepts, counted in bytes
const MaxPasswordBytes = 72

var (
	errPasswordWord    = errors.New(`password cannot contain "password"`)
	errPasswordTooLong = errors.New("password must be at most 72 bytes long")
)

// NormalizeEmail trims and lower cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeUser(u *User) {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = NormalizeEmail(u.Email)
	u.Password = strings.TrimSpace(u.Password)
}

// ValidateUser checks user fields. The password rules apply to the
// plaintext password, which is required until a hash exists.
func ValidateUser(u *User) error {
	if u == nil {
		return ErrUnableToParseData
	}

	passwordRules := []validation.Rule{
		validation.Length(MinPasswordLength, 0),
		validation.By(maxPasswordBytes),
		validation.By(notContainsPasswordWord),
	}
	if u.PasswordHash == "" {
		passwordRules = append([]validation.Rule{validation.Required}, passwordRules...)
	}

	return validation.Errors{
		"name":     validation.Validate(u.Name, validation.Required, validation.Length(1, 200)),
		"email":    validation.Validate(u.Email, validation.Required, is.Email),
		"age":      validation.Validate(u.Age, validation.Min(0)),
		"password": validation.Validate(u.Password, passwordRules...),
	}.Filter()
}

// ozzo Length counts runes, bcrypt limits bytes
func maxPasswordBytes(value any) error {
	s, _ := value.(string)
	if len(s) > MaxPasswordBytes {
		return errPasswordTooLong
	}
	return nil
}

func notContainsPasswordWord(value any) error {
	s, _ := value.(string)
	if strings.Contains(strings.ToLower(s), "password") {
		return errPasswordWord
	}
	return nil
}

// IsValidationError reports field validation failures
func IsValidationError(err error) bool {
	var verrs validation.Errors
	return errors.As(err, &verrs)
}
