package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionToken(t *testing.T) {
	a, err := NewSessionToken()
	require.NoError(t, err)
	b, err := NewSessionToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestOAuthStateRoundTrip(t *testing.T) {
	nonce, state, err := NewOAuthState("secret")
	require.NoError(t, err)

	got, err := ParseOAuthState("secret", state)
	require.NoError(t, err)
	assert.Equal(t, nonce, got)
}

func TestOAuthStateWrongSecret(t *testing.T) {
	_, state, err := NewOAuthState("secret")
	require.NoError(t, err)

	_, err = ParseOAuthState("other", state)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestOAuthStateExpired(t *testing.T) {
	claims := jwt.RegisteredClaims{
		ID:        "nonce",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}
	state, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseOAuthState("secret", state)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestOAuthStateGarbage(t *testing.T) {
	_, err := ParseOAuthState("secret", "not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidState)
}
