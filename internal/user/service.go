package user

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-account-go/internal/user/repo"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailConflict = errors.New("a user with this email already exists")
)

// Store is the persistence contract the user service needs; *repo.UserRepo satisfies it.
type Store interface {
	Create(ctx context.Context, name, email, passwordHash string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	Delete(ctx context.Context, id string) error
}

// NormalizeEmail is the single email policy: trimmed and lower-cased, so
// uniqueness and login are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserService manages user records outside the register/login flow.
type UserService struct {
	store  Store
	hasher PasswordHasher
	logger *zap.SugaredLogger
}

func NewUserService(store Store, hasher PasswordHasher, logger *zap.SugaredLogger) *UserService {
	if hasher == nil {
		hasher = NewBcryptHasher(DefaultSaltRounds)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &UserService{store: store, hasher: hasher, logger: logger}
}

// Create hashes password and stores a new user. Plaintext never reaches the store.
func (s *UserService) Create(ctx context.Context, name, email, password string) (*entity.User, error) {
	email = NormalizeEmail(email)
	if _, err := s.store.GetByEmail(ctx, email); err == nil {
		s.logger.Warnw("create user with existing email", "email", email)
		return nil, ErrEmailConflict
	} else if !errors.Is(err, userrepo.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u, err := s.store.Create(ctx, strings.TrimSpace(name), email, hash)
	if err != nil {
		if errors.Is(err, userrepo.ErrConflict) {
			return nil, ErrEmailConflict
		}
		return nil, err
	}
	s.logger.Infow("user created", "id", u.ID, "email", u.Email)
	return u, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// List returns every user.
func (s *UserService) List(ctx context.Context) ([]*entity.User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Debugw("users listed", "count", len(users))
	return users, nil
}

// Delete removes a user; tokens already issued for it stop authenticating immediately.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.logger.Infow("user deleted", "id", id)
	return nil
}
