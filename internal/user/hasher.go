package user

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultSaltRounds is the bcrypt work factor used when none (or an invalid one) is configured.
const DefaultSaltRounds = 10

// PasswordHasher defines minimal hashing interface (abstract so we can swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(pw, hash string) bool
}

// BcryptHasher implementation. The digest embeds salt and cost.
type BcryptHasher struct{ Cost int }

// NewBcryptHasher returns a hasher with rounds, falling back to DefaultSaltRounds
// when rounds lies outside bcrypt's accepted range.
func NewBcryptHasher(rounds int) BcryptHasher {
	return BcryptHasher{Cost: normalizeCost(rounds)}
}

func normalizeCost(rounds int) int {
	if rounds < bcrypt.MinCost || rounds > bcrypt.MaxCost {
		return DefaultSaltRounds
	}
	return rounds
}

func (b BcryptHasher) Hash(pw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), normalizeCost(b.Cost))
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// Verify compares in constant time. A malformed stored hash is a failed verification.
func (b BcryptHasher) Verify(pw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
