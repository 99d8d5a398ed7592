package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret1234")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1234", hash)

	assert.True(t, CheckPasswordHash("secret1234", hash))
	assert.False(t, CheckPasswordHash("wrongpass1", hash))
}

func TestGenerateTokenClaims(t *testing.T) {
	InitJWTSecret()

	tokenString, err := GenerateToken(42, "admin")
	require.NoError(t, err)

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return JWTSecret, nil
	}, jwt.WithExpirationRequired())
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(42), claims["member_id"])
	assert.Equal(t, "admin", claims["role"])
	assert.NotNil(t, claims["exp"])
}
