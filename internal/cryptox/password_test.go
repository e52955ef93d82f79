package cryptox

import (
	"testing"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_Deterministic(t *testing.T) {
	salt := common.GenerateRandByteArray(SaltSize)

	a := HashPassword([]byte("secret"), salt)
	b := HashPassword([]byte("secret"), salt)

	require.Len(t, a, keyLen)
	assert.Equal(t, a, b)
}

func TestHashPassword_SaltMatters(t *testing.T) {
	a := HashPassword([]byte("secret"), []byte("salt-one-salt-on"))
	b := HashPassword([]byte("secret"), []byte("salt-two-salt-tw"))
	assert.NotEqual(t, a, b)
}

func TestVerifyPassword(t *testing.T) {
	salt := common.GenerateRandByteArray(SaltSize)
	hash := HashPassword([]byte("secret"), salt)

	assert.True(t, VerifyPassword([]byte("secret"), salt, hash))
	assert.False(t, VerifyPassword([]byte("Secret"), salt, hash))
	assert.False(t, VerifyPassword([]byte("secret"), salt, hash[:8]))
}
