package utils // package utils provides helpers for password hashing and opaque tokens

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidState is returned when an OAuth state token is malformed,
// expired, or signed with another secret.
var ErrInvalidState = errors.New("invalid oauth state")

// OAuthStateTTL bounds how long a user may take on the consent screen.
const OAuthStateTTL = 10 * time.Minute

// NewSessionToken returns a 32-byte random token hex encoded (64 chars).
func NewSessionToken() (string, error) {
	return randomHex(32)
}

// NewOAuthState returns a random nonce and an HS256 JWT carrying it.  The
// nonce goes into a cookie; the JWT is sent to the provider as `state` and
// must come back unchanged.
func NewOAuthState(secret string) (nonce, state string, err error) {
	nonce, err = randomHex(16)
	if err != nil {
		return "", "", err
	}
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		ID:        nonce,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(OAuthStateTTL)),
	}
	state, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", "", fmt.Errorf("sign oauth state: %w", err)
	}
	return nonce, state, nil
}

// ParseOAuthState validates state and returns the nonce it carries.
func ParseOAuthState(secret, state string) (string, error) {
	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(state, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid || claims.ID == "" {
		return "", ErrInvalidState
	}
	return claims.ID, nil
}

// randomHex returns a hex‑encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
