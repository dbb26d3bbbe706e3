package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var parser = jwt.NewParser()

// InspectToken decodes the claims of a backend token without verifying its
// signature. Opaque (non-JWT) tokens return an error.
func InspectToken(tokenString string) (*BackendClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, fmt.Errorf("token is required")
	}
	claims := &BackendClaims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}
	return claims, nil
}

// CapTTL shortens ttl so a stored token never outlives its exp claim. Tokens
// without a readable exp leave ttl unchanged. A token that is already expired
// yields a zero ttl and ok=false.
func CapTTL(tokenString string, ttl time.Duration, now time.Time) (time.Duration, bool) {
	claims, err := InspectToken(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return ttl, true
	}
	remaining := claims.ExpiresAt.Sub(now)
	if remaining <= 0 {
		return 0, false
	}
	if ttl <= 0 || remaining < ttl {
		return remaining, true
	}
	return ttl, true
}
