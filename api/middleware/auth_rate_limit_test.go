package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bhargavsatvara/zyqora-storefront/pkg/config"
	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
)

func TestAuthRateLimit_AllowsUnderLimitAndPreservesBody(t *testing.T) {
	limiter := newFakeLimiter()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 2, 2)
	handler := AuthRateLimit(policy, limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if !strings.Contains(string(body), `"email":"tester@example.com"`) {
			t.Fatalf("unexpected body: %s", string(body))
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"tester@example.com","password":"secret"}`))
	req.RemoteAddr = "1.2.3.4:5678"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthRateLimit_EmailLimitIgnoresCase(t *testing.T) {
	limiter := newFakeLimiter()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 2)
	handler := AuthRateLimit(policy, limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	emails := []string{"blocked@example.com", " Blocked@Example.com", "BLOCKED@example.com"}
	for i, email := range emails {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(fmt.Sprintf(`{"email":%q,"password":"secret"}`, email)))
		req.RemoteAddr = "1.2.3.4:5678"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if i < 2 {
			if rec.Code != http.StatusOK {
				t.Fatalf("expected success before limit, got %d", rec.Code)
			}
			continue
		}
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", rec.Code)
		}
		if rec.Header().Get("Retry-After") != "60" {
			t.Fatalf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
		}
		var payload struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode error: %v", err)
		}
		if payload.Error.Code != string(pkgerrors.CodeRateLimit) {
			t.Fatalf("unexpected code: %s", payload.Error.Code)
		}
	}
}

func TestAuthRateLimit_IPLimitUsesForwardedFor(t *testing.T) {
	limiter := newFakeLimiter()
	policy := SignupPolicy(config.AuthRateLimitConfig{SignupWindow: time.Minute, SignupIPLimit: 1})
	handler := AuthRateLimit(policy, limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", strings.NewReader(`{}`))
		req.RemoteAddr = fmt.Sprintf("10.0.0.%d:1234", i+1)
		req.Header.Set("X-Forwarded-For", "5.6.7.8, 10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("expected [200 429], got %v", codes)
	}
	if _, ok := limiter.counts["auth:signup:ip:5.6.7.8"]; !ok {
		t.Fatalf("expected forwarded client ip scope, got %v", limiter.counts)
	}
}

func TestAuthRateLimit_LimiterFailureIsDependencyError(t *testing.T) {
	limiter := newFakeLimiter()
	limiter.err = fmt.Errorf("redis down")
	handler := AuthRateLimit(NewAuthRateLimitPolicy("login", time.Minute, 1, 0), limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != pkgerrors.MetadataFor(pkgerrors.CodeDependency).HTTPStatus {
		t.Fatalf("expected dependency status, got %d", rec.Code)
	}
}

func TestAuthRateLimit_DisabledPolicyPassesThrough(t *testing.T) {
	calls := 0
	handler := AuthRateLimit(LoginPolicy(config.AuthRateLimitConfig{}), newFakeLimiter(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	for i := 0; i < 5; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))
	}
	if calls != 5 {
		t.Fatalf("expected every request through, got %d", calls)
	}
}

type fakeLimiter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newFakeLimiter() *fakeLimiter {
	return &fakeLimiter{counts: map[string]int64{}}
}

func (f *fakeLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, 0, f.err
	}
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}
