package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bhargavsatvara/zyqora-storefront/api/responses"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/config"
	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/logger"
)

const maxAuthBody = 64 << 10

// WindowLimiter counts hits per scope inside a fixed window.
type WindowLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// AuthRateLimitPolicy throttles one auth surface per client IP and per email.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	return AuthRateLimitPolicy{
		name:       strings.ToLower(strings.TrimSpace(name)),
		window:     window,
		ipLimit:    ipLimit,
		emailLimit: emailLimit,
	}
}

// LoginPolicy guards sign-in.
func LoginPolicy(cfg config.AuthRateLimitConfig) AuthRateLimitPolicy {
	return NewAuthRateLimitPolicy("login", cfg.LoginWindow, cfg.LoginIPLimit, cfg.LoginEmailLimit)
}

// SignupPolicy guards account creation.
func SignupPolicy(cfg config.AuthRateLimitConfig) AuthRateLimitPolicy {
	return NewAuthRateLimitPolicy("signup", cfg.SignupWindow, cfg.SignupIPLimit, cfg.SignupEmailLimit)
}

// ForgotPasswordPolicy reuses the signup budget; reset mails are as costly as new accounts.
func ForgotPasswordPolicy(cfg config.AuthRateLimitConfig) AuthRateLimitPolicy {
	return NewAuthRateLimitPolicy("forgot_password", cfg.SignupWindow, cfg.SignupIPLimit, cfg.SignupEmailLimit)
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

func (p AuthRateLimitPolicy) label() string {
	if p.name == "" {
		return "auth"
	}
	return p.name
}

func (p AuthRateLimitPolicy) scope(kind, value string) string {
	return "auth:" + p.label() + ":" + kind + ":" + value
}

// AuthRateLimit rejects requests over the policy limits with RATE_LIMITED.
// A nil limiter or a disabled policy passes everything through.
func AuthRateLimit(policy AuthRateLimitPolicy, limiter WindowLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if policy.ipLimit > 0 {
				if ip := clientIP(r); ip != "" {
					ok, count, err := limiter.FixedWindowAllow(ctx, policy.scope("ip", ip), int64(policy.ipLimit), policy.window)
					if err != nil {
						responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
						return
					}
					if !ok {
						respondRateLimited(ctx, logg, w, policy, map[string]any{"scope": "ip", "ip": ip, "attempts": count, "limit": policy.ipLimit})
						return
					}
				}
			}

			if policy.emailLimit > 0 {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxAuthBody))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))

				if email := normalizeEmail(extractEmail(body)); email != "" {
					hash := hashValue(email)
					ok, count, err := limiter.FixedWindowAllow(ctx, policy.scope("email", hash), int64(policy.emailLimit), policy.window)
					if err != nil {
						responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
						return
					}
					if !ok {
						respondRateLimited(ctx, logg, w, policy, map[string]any{"scope": "email", "email_hash": hash, "attempts": count, "limit": policy.emailLimit})
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func respondRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy AuthRateLimitPolicy, fields map[string]any) {
	if logg != nil {
		fields["policy"] = policy.label()
		fields["window_seconds"] = int(policy.window.Seconds())
		logg.Warn(logg.WithFields(ctx, fields), "auth.rate_limit.blocked")
	}
	w.Header().Set("Retry-After", retryAfter(policy.window))
	responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
}

func retryAfter(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}

func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func extractEmail(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return body.Email
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
