package auth

import "github.com/golang-jwt/jwt/v5"

// BackendClaims is the subset of the commerce backend's JWT the gateway reads.
// The backend owns signing and verification; the gateway never trusts these
// fields for authorization, only for cache lifetimes and log context.
type BackendClaims struct {
	UserID string `json:"id,omitempty"`
	Sub    string `json:"userId,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Identity returns the best user identifier present in the claims.
func (c BackendClaims) Identity() string {
	switch {
	case c.UserID != "":
		return c.UserID
	case c.Sub != "":
		return c.Sub
	default:
		return c.RegisteredClaims.Subject
	}
}
