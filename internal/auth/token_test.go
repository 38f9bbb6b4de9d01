package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_SignAndValidate(t *testing.T) {
	ts := NewTokenService("test-secret", 3600)

	signed, err := ts.SignAccessToken("user-1", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	isValid, claims, err := ts.ValidateAccessToken(signed)
	require.NoError(t, err)
	assert.True(t, isValid)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	signed, err := NewTokenService("secret-a", 3600).SignAccessToken("user-1", "user")
	require.NoError(t, err)

	isValid, claims, err := NewTokenService("secret-b", 3600).ValidateAccessToken(signed)
	require.NoError(t, err)
	assert.False(t, isValid)
	assert.Nil(t, claims)
}

func TestTokenService_RejectsExpiredToken(t *testing.T) {
	ts := NewTokenService("test-secret", -60)

	signed, err := ts.SignAccessToken("user-1", "user")
	require.NoError(t, err)

	isValid, _, err := ts.ValidateAccessToken(signed)
	require.NoError(t, err)
	assert.False(t, isValid)
}

func TestTokenService_RejectsGarbage(t *testing.T) {
	ts := NewTokenService("test-secret", 3600)

	isValid, _, err := ts.ValidateAccessToken("not-a-token")
	require.NoError(t, err)
	assert.False(t, isValid)
}
