package credstore

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo describes a stored access token for display purposes.
// The claims are read without signature verification; only the server can
// vouch for a token, so nothing here gates authorization decisions.
type TokenInfo struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token's expiry claim has passed.
// Tokens without an expiry claim are never reported expired.
func (t *TokenInfo) Expired() bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(t.ExpiresAt)
}

// ExpiresIn returns the remaining lifetime, or zero if already expired or
// the token carries no expiry claim.
func (t *TokenInfo) ExpiresIn() time.Duration {
	if t.ExpiresAt.IsZero() {
		return 0
	}
	remaining := time.Until(t.ExpiresAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Inspect parses a JWT access token without verifying its signature and
// returns the subject and lifetime claims.
func Inspect(token string) (*TokenInfo, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()

	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}

	info := &TokenInfo{}

	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}

	return info, nil
}
