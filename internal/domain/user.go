package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// User validation errors
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyName           = errors.New("name cannot be empty")
	ErrNameTooLong         = errors.New("name must be at most 255 characters long")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
)

const (
	// MaxNameLength is the maximum number of characters in a user's name.
	MaxNameLength = 255

	// MinPasswordLength is the minimum plaintext password length.
	MinPasswordLength = 8

	// MaxPasswordLength is bcrypt's input limit.
	MaxPasswordLength = 72
)

// User represents a registered account. Regular users only see their own
// tasks; administrators (IsAdmin) can read aggregate data of every account
// and delete any task.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // plaintext, only set during registration or password changes
	HashedPassword string    `json:"-"`
	IsAdmin        bool      `json:"is_admin"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a non-admin User with a fresh ID. The plaintext password
// is kept on the struct until the caller replaces it with a hash.
func NewUser(name, email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     NormalizeEmail(email),
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data. Failures are
// *ValidationError values naming the offending field and wrapping one of
// the sentinels above.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return NewValidationError("id", "is required", ErrEmptyUserID)
	}

	if u.Name == "" {
		return NewValidationError("name", "is required", ErrEmptyName)
	}
	if utf8.RuneCountInString(u.Name) > MaxNameLength {
		return NewValidationError("name", "must not exceed 255 characters", ErrNameTooLong)
	}

	if u.Email == "" {
		return NewValidationError("email", "is required", ErrEmptyEmail)
	}
	if !validateEmailFormat(u.Email) {
		return NewValidationError("email", "must be a valid email address", ErrInvalidEmail)
	}

	if u.Password != "" {
		switch {
		case len(u.Password) < MinPasswordLength:
			return NewValidationError("password", "must be at least 8 characters", ErrPasswordTooShort)
		case len(u.Password) > MaxPasswordLength:
			return NewValidationError("password", "must not exceed 72 characters", ErrPasswordTooLong)
		}
	} else if u.HashedPassword == "" {
		return NewValidationError("password", "is required", ErrEmptyHashedPassword)
	}

	return nil
}

// NormalizeEmail lower-cases and trims an email address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateEmailFormat accepts a bare address with a dotted domain part.
func validateEmailFormat(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}

	at := strings.LastIndex(email, "@")
	domainPart := email[at+1:]
	dot := strings.Index(domainPart, ".")
	return dot > 0 && dot < len(domainPart)-1
}
