package auth

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/user"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-account-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/utilities"
)

// IdentityStore is the narrow lookup/insert contract the orchestrator needs.
// Lookups return userrepo.ErrNotFound when absent; Create returns
// userrepo.ErrConflict when the email uniqueness constraint fires.
type IdentityStore interface {
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	Create(ctx context.Context, name, email, passwordHash string) (*entity.User, error)
}

// TokenIssuer signs access tokens; *TokenService satisfies it.
type TokenIssuer interface {
	Issue(subject, email string) (string, error)
}

// TokenResponse is returned by register and login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Service composes store, hasher and token issuer into register, login and
// per-request identity validation.
type Service struct {
	store  IdentityStore
	hasher user.PasswordHasher
	tokens TokenIssuer
	logger *zap.SugaredLogger

	// verified against on unknown-email logins so both failure paths pay for bcrypt
	dummyHash string
}

func NewService(store IdentityStore, hasher user.PasswordHasher, tokens TokenIssuer, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	dummy, err := hasher.Hash(utilities.NewKSUID())
	if err != nil {
		logger.Warnw("could not precompute login dummy hash", "err", err)
	}
	return &Service{store: store, hasher: hasher, tokens: tokens, logger: logger, dummyHash: dummy}
}

// Register creates an identity for email and returns a token for it.
// The lookup is a fast path only; the store's unique constraint decides races.
func (s *Service) Register(ctx context.Context, name, email, password string) (*TokenResponse, error) {
	const op = "register"
	email = user.NormalizeEmail(email)

	_, err := s.store.GetByEmail(ctx, email)
	switch {
	case err == nil:
		s.logger.Warnw("register with existing email", "op", op, "email", email)
		return nil, ErrEmailConflict
	case !errors.Is(err, userrepo.ErrNotFound):
		return nil, s.internal(op, err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, s.internal(op, err)
	}

	created, err := s.store.Create(ctx, strings.TrimSpace(name), email, hash)
	if err != nil {
		if errors.Is(err, userrepo.ErrConflict) {
			s.logger.Warnw("register lost uniqueness race", "op", op, "email", email)
			return nil, ErrEmailConflict
		}
		return nil, s.internal(op, err)
	}

	token, err := s.tokens.Issue(created.ID, created.Email)
	if err != nil {
		return nil, s.internal(op, err)
	}
	s.logger.Infow("user registered", "op", op, "id", created.ID, "email", created.Email)
	return &TokenResponse{AccessToken: token}, nil
}

// Login verifies credentials. Unknown email and wrong password are indistinguishable.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	const op = "login"
	email = user.NormalizeEmail(email)

	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			s.logger.Warnw("login with unknown email", "op", op, "email", email)
			return nil, ErrInvalidCredentials
		}
		return nil, s.internal(op, err)
	}

	if !s.hasher.Verify(password, u.PasswordHash) {
		s.logger.Warnw("login with invalid password", "op", op, "email", email)
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, s.internal(op, err)
	}
	s.logger.Infow("user logged in", "op", op, "id", u.ID, "email", u.Email)
	return &TokenResponse{AccessToken: token}, nil
}

// ValidateByID rehydrates the principal for a verified token subject. It never
// fails: any lookup problem is logged and reported as absence.
func (s *Service) ValidateByID(ctx context.Context, id string) (*entity.Principal, bool) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			s.logger.Warnw("user not found during validation", "op", "validate", "id", id)
		} else {
			s.logger.Errorw("error validating user", "op", "validate", "id", id, "err", err)
		}
		return nil, false
	}
	return u.Principal(), true
}

func (s *Service) internal(op string, err error) error {
	s.logger.Errorw("unexpected error", "op", op, "err", err)
	return ErrInternal
}
