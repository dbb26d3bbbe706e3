// Package kvstore holds visitor state (guest cart, guest wishlist, auth token)
// behind a small get/set/delete capability with pluggable backends.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("kvstore: key not found")

// Fixed keys inside a visitor scope.
const (
	KeyGuestCart       = "guest_cart"
	KeyGuestWishlist   = "guest_wishlist"
	KeyToken           = "token"
	KeyUser            = "user"
	KeyCheckoutAttempt = "checkout_attempt"
)

// Store is the key/value capability injected into the reconciliation services.
// A ttl of zero means the entry does not expire.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type scoped struct {
	store  Store
	prefix string
}

// Scope namespaces every key under the visitor session id.
func Scope(store Store, sessionID string) Store {
	return &scoped{store: store, prefix: "session:" + strings.TrimSpace(sessionID) + ":"}
}

func (s *scoped) Get(ctx context.Context, key string) ([]byte, error) {
	return s.store.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.store.Set(ctx, s.prefix+key, value, ttl)
}

func (s *scoped) Delete(ctx context.Context, key string) error {
	return s.store.Delete(ctx, s.prefix+key)
}

// GetJSON decodes the value at key into dst. It reports false, nil when the key is absent.
func GetJSON(ctx context.Context, store Store, key string, dst any) (bool, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes value as JSON and stores it at key.
func SetJSON(ctx context.Context, store Store, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return store.Set(ctx, key, raw, ttl)
}

// GetString returns the value at key as a string, or "" when absent.
func GetString(ctx context.Context, store Store, key string) (string, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
