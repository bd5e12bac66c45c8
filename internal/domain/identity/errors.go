package identity

import "github.com/meterly/backend/internal/domain/shared"

var (
	ErrUserNotFound       = shared.ErrNotFound.WithMessage("User not found")
	ErrEmailTaken         = shared.ErrAlreadyExists.WithMessage("Email is already registered")
	ErrInvalidCredentials = shared.ErrUnauthorized.WithMessage("Invalid email or password")
)
