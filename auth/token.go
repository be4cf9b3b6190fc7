package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is what the client can learn from a bearer token without
// the server secret. Nothing here is trusted for authorization; the
// server remains the only judge of validity.
type TokenClaims struct {
	UserID    any
	ExpiresAt *time.Time
}

var parser = jwt.NewParser()

// PeekClaims reads the claims of a JWT without verifying its signature.
// ok is false for opaque tokens.
func PeekClaims(token string) (TokenClaims, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return TokenClaims{}, false
	}
	result := TokenClaims{UserID: claims["userID"]}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		at := exp.Time
		result.ExpiresAt = &at
	}
	return result, true
}

// IsExpired reports whether token is a JWT whose exp claim is before now.
// Opaque tokens and tokens without exp are never considered expired.
func IsExpired(token string, now time.Time) bool {
	claims, ok := PeekClaims(token)
	if !ok || claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.After(now)
}
