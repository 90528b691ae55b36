package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/utilities"
)

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrConflict is returned when the email unique constraint rejects an insert.
	ErrConflict = errors.New("user email already exists")
)

const userColumns = `id, name, email, password_hash, created_at`

// UserRepo provides data access for users table using sqlx.
// Queries are written with `?` and rebound for the connected driver.
type UserRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db, now: time.Now}
}

// EnsureTable creates the users table if not exists (idempotent).
// The UNIQUE constraint on email is the authoritative duplicate guard.
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	ddl := `
CREATE EXTENSION IF NOT EXISTS citext;
CREATE TABLE IF NOT EXISTS users (
  id UUID PRIMARY KEY,
  name TEXT NOT NULL,
  email CITEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
	if r.db.DriverName() == database.DriverSQLite {
		ddl = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE COLLATE NOCASE,
  password_hash TEXT NOT NULL,
  created_at TIMESTAMP NOT NULL
);
`
	}
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Create inserts a new user in a single statement and returns the stored row.
func (r *UserRepo) Create(ctx context.Context, name, email, passwordHash string) (*entity.User, error) {
	u := &entity.User{
		ID:           utilities.NewUUID(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    r.now().UTC().Truncate(time.Microsecond),
	}
	q := r.db.Rebind(`INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, q, u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// GetByEmail returns a user matched by email or ErrNotFound.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

// GetByID fetches a full user row or ErrNotFound.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (*entity.User, error) {
	var row entity.User
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(q), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &row, nil
}

// List returns all users ordered by creation time.
func (r *UserRepo) List(ctx context.Context) ([]*entity.User, error) {
	users := []*entity.User{}
	if err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Delete removes a user by id. Returns ErrNotFound when nothing was deleted.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
