package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("p@ssW0rd1")
	require.NoError(t, err)

	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "p@ssW0rd1", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$"), "expected bcrypt hash, got %q", hash)
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}

func TestHashPassword_Salted(t *testing.T) {
	// Один и тот же пароль дает разные хеши благодаря соли
	h1, err := HashPassword("p@ssW0rd1")
	require.NoError(t, err)
	h2, err := HashPassword("p@ssW0rd1")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("p@ssW0rd1")
	require.NoError(t, err)

	t.Run("Correct password", func(t *testing.T) {
		assert.NoError(t, VerifyPassword("p@ssW0rd1", hash))
	})

	t.Run("Wrong password", func(t *testing.T) {
		assert.Error(t, VerifyPassword("wrong-password", hash))
	})

	t.Run("Empty password", func(t *testing.T) {
		assert.Error(t, VerifyPassword("", hash))
	})

	t.Run("Empty hash", func(t *testing.T) {
		assert.Error(t, VerifyPassword("p@ssW0rd1", ""))
	})
}
