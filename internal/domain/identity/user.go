package identity

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/meterly/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
)

// Password cost for bcrypt
const bcryptCost = 12

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User is an account that owns subscriptions and may call the API
type User struct {
	shared.BaseEntity
	Email        string
	FullName     string
	PasswordHash string
	Role         Role
	IsGuest      bool
}

// NewUser creates a user that can sign in with a password
func NewUser(email, fullName, password string, role Role) (*User, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.ErrInvalidInput.WithMessage("Invalid role")
	}
	user := &User{
		BaseEntity: shared.NewBaseEntity(),
		Email:      email,
		FullName:   strings.TrimSpace(fullName),
		Role:       role,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	return user, nil
}

// NewGuestUser creates a password-less customer account, as made at checkout
func NewGuestUser(email string) (*User, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	return &User{
		BaseEntity: shared.NewBaseEntity(),
		Email:      email,
		Role:       RoleUser,
		IsGuest:    true,
	}, nil
}

// SetPassword validates and hashes a new password
func (u *User) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = string(hash)
	u.IsGuest = false
	u.Touch()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// CanLogin reports whether the account has credentials
func (u *User) CanLogin() bool {
	return !u.IsGuest && u.PasswordHash != ""
}

// NormalizeEmail trims and case-folds an email address
func NormalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return shared.ErrInvalidInput.WithMessage("Email is required")
	}
	if utf8.RuneCountInString(email) > 200 {
		return shared.ErrInvalidInput.WithMessage("Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.ErrInvalidInput.WithMessage("Invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.ErrInvalidInput.WithMessage("Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.ErrInvalidInput.WithMessage("Password cannot exceed 72 bytes")
	}
	return nil
}
