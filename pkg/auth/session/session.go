// Package session issues and validates visitor session identifiers.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

const idBytes = 32

// HeaderName carries the session id for non-browser clients.
const HeaderName = "X-Session-Id"

// NewID produces an unguessable URL-safe visitor session id.
func NewID() (string, error) {
	bytes := make([]byte, idBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// Valid reports whether id has the shape produced by NewID.
func Valid(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	decoded, err := base64.RawURLEncoding.DecodeString(id)
	return err == nil && len(decoded) == idBytes
}
