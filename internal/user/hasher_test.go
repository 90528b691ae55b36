package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	for _, pw := range []string{"secret123", "p@ss wörd", "x"} {
		digest, err := h.Hash(pw)
		require.NoError(t, err)
		assert.NotEqual(t, pw, digest)
		assert.True(t, h.Verify(pw, digest), pw)
		assert.False(t, h.Verify(pw+"!", digest), pw)
	}
}

func TestBcryptHasherSalted(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	a, err := h.Hash("secret123")
	require.NoError(t, err)
	b, err := h.Hash("secret123")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("secret123", a))
	assert.True(t, h.Verify("secret123", b))
}

func TestBcryptHasherEmbedsCost(t *testing.T) {
	h := NewBcryptHasher(5)
	digest, err := h.Hash("secret123")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, 5, cost)
}

func TestBcryptHasherMalformedHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	assert.False(t, h.Verify("secret123", ""))
	assert.False(t, h.Verify("secret123", "not-a-bcrypt-hash"))
	assert.False(t, h.Verify("secret123", "$2a$10$short"))
}

func TestBcryptHasherTooLongPassword(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	_, err := h.Hash(strings.Repeat("a", 73))
	assert.Error(t, err)
}

func TestNormalizeCost(t *testing.T) {
	assert.Equal(t, DefaultSaltRounds, NewBcryptHasher(0).Cost)
	assert.Equal(t, DefaultSaltRounds, NewBcryptHasher(-3).Cost)
	assert.Equal(t, DefaultSaltRounds, NewBcryptHasher(bcrypt.MaxCost+1).Cost)
	assert.Equal(t, 12, NewBcryptHasher(12).Cost)
	assert.Equal(t, bcrypt.MinCost, NewBcryptHasher(bcrypt.MinCost).Cost)
}
