package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-testing"

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken("user-1", "test@example.com", testSecret, 15*time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestValidateToken(t *testing.T) {
	token, err := GenerateToken("user-123", "test@example.com", testSecret, 15*time.Minute)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "test@example.com", claims.Email)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("user-123", "test@example.com", testSecret, 15*time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, "another-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := GenerateToken("user-123", "test@example.com", testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, testSecret)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := ValidateToken("not-a-token", testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
