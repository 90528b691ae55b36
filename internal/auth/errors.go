package auth

import (
	"errors"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/user"
)

// The orchestrator only ever returns one of these.
var (
	ErrEmailConflict      = user.ErrEmailConflict
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInternal           = errors.New("internal server error")
)

// ErrMissingSecret is returned at construction when no signing secret is configured.
var ErrMissingSecret = errors.New("jwt secret is not configured")
