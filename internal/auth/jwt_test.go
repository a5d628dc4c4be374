package auth_test

import (
	"testing"
	"time"

	"boardflow/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

var secret = []byte("test-secret-key")

func TestGenerateAndParseToken(t *testing.T) {
	token, err := auth.GenerateToken(secret, "test-user-id", 24*time.Hour)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	parsedUserID, err := auth.ParseToken(secret, token)

	assert.NoError(t, err)
	assert.Equal(t, "test-user-id", parsedUserID)
}

func TestParseToken_InvalidToken(t *testing.T) {
	_, err := auth.ParseToken(secret, "invalid-token")

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _ := auth.GenerateToken([]byte("other"), "test-user-id", time.Hour)

	_, err := auth.ParseToken(secret, token)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_ExpiredToken(t *testing.T) {
	claims := jwt.MapClaims{
		"user_id": "test-user-id",
		"exp":     time.Now().Add(-1 * time.Hour).Unix(),
	}
	expiredToken, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)

	_, err := auth.ParseToken(secret, expiredToken)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_MissingClaims(t *testing.T) {
	claims := jwt.MapClaims{
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	tokenWithoutUserID, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)

	_, err := auth.ParseToken(secret, tokenWithoutUserID)

	assert.ErrorIs(t, err, auth.ErrInvalidClaims)
}
