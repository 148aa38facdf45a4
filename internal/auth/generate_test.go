package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateToken(t *testing.T) {
	token, bearer, err := GenerateToken("sales.lead")
	require.NoError(t, err)

	assert.Equal(t, "sales.lead", token.Actor)
	assert.False(t, token.Revoked)

	id, secret, ok := strings.Cut(bearer, ".")
	require.True(t, ok)
	assert.Equal(t, token.ID, id)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(token.SecretHash), []byte(secret)))
}

func TestGenerateTokenUnique(t *testing.T) {
	a, bearerA, err := GenerateToken("x")
	require.NoError(t, err)
	b, bearerB, err := GenerateToken("x")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, bearerA, bearerB)
}
